package roster

import (
	"strings"

	"github.com/nuptial-ops/wedding-manager/internal/errdef"
	"golang.org/x/text/cases"
)

type Operator string

const (
	OpEquals     Operator = "equals"
	OpContains   Operator = "contains"
	OpIn         Operator = "in"
	OpGte        Operator = "gte"
	OpLte        Operator = "lte"
	OpIsEmpty    Operator = "isEmpty"
	OpIsNotEmpty Operator = "isNotEmpty"
)

// ColumnFilter restricts rows by the value of a single column. Value is used by every operator but
// in, which uses Values.
type ColumnFilter struct {
	Column   string   `json:"column"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
	Values   []any    `json:"values,omitempty"`
}

// SharedFilter holds the filters every view offers regardless of its columns.
type SharedFilter struct {
	Search string `json:"search,omitempty"`
	// Categories maps a column id to the accepted values. A single value is an equality test.
	Categories       map[string][]any `json:"categories,omitempty"`
	AttendingEventID *uint            `json:"attendingEventId,omitempty"`
}

type predicate func(Row) bool

func compileShared(schema Schema, filter SharedFilter) ([]predicate, error) {
	var predicates []predicate

	if query := strings.TrimSpace(filter.Search); query != "" {
		var columns []ColumnDescriptor
		for _, id := range schema.SearchFields {
			column, ok := schema.Column(id)
			if !ok {
				return nil, errdef.NewBadRequest("unknown search field: %s", id)
			}
			columns = append(columns, column)
		}
		fold := cases.Fold()
		needle := fold.String(query)
		predicates = append(predicates, func(row Row) bool {
			for _, column := range columns {
				if strings.Contains(fold.String(stringify(column, row.Value(column.FieldPath))), needle) {
					return true
				}
			}
			return false
		})
	}

	for id, values := range filter.Categories {
		if len(values) == 0 {
			continue
		}
		p, err := compileColumn(schema, ColumnFilter{Column: id, Operator: OpIn, Values: values})
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, p)
	}

	if filter.AttendingEventID != nil {
		eventID := *filter.AttendingEventID
		if !schema.HasEvent(eventID) {
			return nil, errdef.NewBadRequest("event %d is not part of the view", eventID)
		}
		predicates = append(predicates, func(row Row) bool {
			return row.EventAttendance[eventID].Attending
		})
	}

	return predicates, nil
}

func compileColumn(schema Schema, filter ColumnFilter) (predicate, error) {
	column, ok := schema.Column(filter.Column)
	if !ok {
		return nil, errdef.NewBadRequest("unknown column: %s", filter.Column)
	}
	value := func(row Row) any {
		return row.Value(column.FieldPath)
	}

	switch filter.Operator {
	case OpEquals:
		want := Normalize(column, filter.Value)
		return func(row Row) bool {
			return Normalize(column, value(row)) == want
		}, nil
	case OpContains:
		fold := cases.Fold()
		needle := fold.String(stringify(column, filter.Value))
		return func(row Row) bool {
			return strings.Contains(fold.String(stringify(column, value(row))), needle)
		}, nil
	case OpIn:
		accepted := make(map[string]struct{}, len(filter.Values))
		for _, v := range filter.Values {
			accepted[Normalize(column, v)] = struct{}{}
		}
		return func(row Row) bool {
			_, ok := accepted[Normalize(column, value(row))]
			return ok
		}, nil
	case OpGte, OpLte:
		bound, ok := toFloat(filter.Value)
		if !ok {
			return nil, errdef.NewBadRequest("%s on %s expects a number, got %v", filter.Operator, filter.Column, filter.Value)
		}
		gte := filter.Operator == OpGte
		return func(row Row) bool {
			v, ok := toFloat(value(row))
			if !ok {
				return false
			}
			if gte {
				return v >= bound
			}
			return v <= bound
		}, nil
	case OpIsEmpty:
		return func(row Row) bool {
			return isEmpty(value(row))
		}, nil
	case OpIsNotEmpty:
		return func(row Row) bool {
			return !isEmpty(value(row))
		}, nil
	}
	return nil, errdef.NewBadRequest("unknown operator: %s", filter.Operator)
}
