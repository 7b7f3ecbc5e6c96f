package roster

import (
	"io"

	"gitee.com/gooffice/gooffice/color"
	"gitee.com/gooffice/gooffice/document"
	"gitee.com/gooffice/gooffice/measurement"
	"gitee.com/gooffice/gooffice/schema/soo/wml"
)

// WriteDocx renders the export as a Word document with a merged category header row.
func WriteDocx(w io.Writer, title string, export Export) error {
	doc := document.New()

	para := doc.AddParagraph()
	para.Properties().SetAlignment(wml.ST_JcCenter)
	run := para.AddRun()
	run.Properties().SetSize(16)
	run.Properties().SetBold(true)
	run.AddText(title)

	table := doc.AddTable()
	table.Properties().SetWidthPercent(100)
	borders := table.Properties().Borders()
	borders.SetAll(wml.ST_BorderSingle, color.Auto, 1*measurement.Point)

	row := table.AddRow()
	for _, category := range export.Categories {
		cell := row.AddCell()
		if category.Span > 1 {
			cell.Properties().SetColumnSpan(category.Span)
		}
		addCellText(cell, category.Label, true)
	}

	row = table.AddRow()
	for _, header := range export.Columns {
		addCellText(row.AddCell(), header, true)
	}

	for _, cells := range export.Rows {
		row = table.AddRow()
		for _, text := range cells {
			addCellText(row.AddCell(), text, false)
		}
	}

	return doc.Save(w)
}

func addCellText(cell document.Cell, text string, bold bool) {
	para := cell.AddParagraph()
	if bold {
		para.Properties().SetAlignment(wml.ST_JcCenter)
	}
	run := para.AddRun()
	run.Properties().SetSize(10)
	run.Properties().SetBold(bold)
	run.AddText(text)
}
