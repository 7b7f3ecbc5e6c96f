package roster

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nuptial-ops/wedding-manager/internal/errdef"
	"golang.org/x/text/cases"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

type Sort struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// sortRows sorts rows in place. Missing values go last in both directions.
func sortRows(schema Schema, rows []Row, s Sort) error {
	column, ok := schema.Column(s.Column)
	if !ok {
		return errdef.NewBadRequest("unknown sort column: %s", s.Column)
	}
	var descending bool
	switch s.Direction {
	case Ascending, "":
	case Descending:
		descending = true
	default:
		return errdef.NewBadRequest("unknown sort direction: %s", s.Direction)
	}

	fold := cases.Fold()
	slices.SortStableFunc(rows, func(a, b Row) int {
		va := deref(a.Value(column.FieldPath))
		vb := deref(b.Value(column.FieldPath))
		switch {
		case va == nil && vb == nil:
			return 0
		case va == nil:
			return 1
		case vb == nil:
			return -1
		}
		c := compareValues(column, va, vb, fold)
		if descending {
			return -c
		}
		return c
	})
	return nil
}

func compareValues(column ColumnDescriptor, a, b any, fold cases.Caser) int {
	if x, ok := a.(bool); ok {
		if y, ok := b.(bool); ok {
			return compareBool(x, y)
		}
	}
	if isNumber(a) && isNumber(b) {
		x, _ := toFloat(a)
		y, _ := toFloat(b)
		return cmp.Compare(x, y)
	}
	return strings.Compare(fold.String(stringify(column, a)), fold.String(stringify(column, b)))
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
