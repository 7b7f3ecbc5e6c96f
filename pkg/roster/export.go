package roster

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// HeaderCell is a category header spanning Span columns.
type HeaderCell struct {
	Label string
	Span  int
}

// Export is a rendered view: a category header row, a column header row and one row of cell text per
// record.
type Export struct {
	Categories []HeaderCell
	Columns    []string
	Rows       [][]string
}

// BuildExport lays out rows for export. Columns are emitted group by group so every category header
// spans adjacent columns.
func BuildExport(schema Schema, rows []Row) Export {
	var columns []ColumnDescriptor
	var export Export
	for _, group := range schema.Groups {
		export.Categories = append(export.Categories, HeaderCell{Label: group.Label, Span: len(group.Columns)})
		for _, id := range group.Columns {
			column, _ := schema.Column(id)
			columns = append(columns, column)
			export.Columns = append(export.Columns, column.Header)
		}
	}

	export.Rows = make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, column := range columns {
			cells[i] = FormatCell(column, row.Value(column.FieldPath))
		}
		export.Rows = append(export.Rows, cells)
	}
	return export
}

// FormatCell renders a value for people rather than for comparison.
func FormatCell(column ColumnDescriptor, v any) string {
	v = deref(v)
	if column.Transport && v != nil {
		if truthy(v) {
			return "Yes"
		}
		return "No"
	}
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case time.Time:
		if column.ValueType == TypeDate {
			return x.Format("Jan 2, 2006")
		}
		return x.Format("Jan 2, 2006 15:04")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return stringify(column, v)
}

// WriteCSV writes the export as CSV. The category label is written in the first column it spans.
func (e Export) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	categories := make([]string, 0, len(e.Columns))
	for _, category := range e.Categories {
		categories = append(categories, category.Label)
		for range category.Span - 1 {
			categories = append(categories, "")
		}
	}
	if err := writer.Write(categories); err != nil {
		return err
	}
	if err := writer.Write(e.Columns); err != nil {
		return err
	}
	if err := writer.WriteAll(e.Rows); err != nil {
		return err
	}
	return writer.Error()
}
