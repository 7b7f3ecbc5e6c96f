package roster

// Query is the full filter and sort state of a view.
type Query struct {
	Shared  SharedFilter   `json:"shared"`
	Filters []ColumnFilter `json:"filters,omitempty"`
	Sort    *Sort          `json:"sort,omitempty"`
}

// Apply filters rows by the shared filter, then by every column filter, and finally sorts them. The
// result is a new slice, rows is left untouched.
func Apply(schema Schema, rows []Row, query Query) ([]Row, error) {
	predicates, err := compileShared(schema, query.Shared)
	if err != nil {
		return nil, err
	}
	for _, filter := range query.Filters {
		p, err := compileColumn(schema, filter)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, p)
	}

	filtered := make([]Row, 0, len(rows))
	for _, row := range rows {
		if matches(predicates, row) {
			filtered = append(filtered, row)
		}
	}

	if query.Sort != nil {
		if err := sortRows(schema, filtered, *query.Sort); err != nil {
			return nil, err
		}
	}
	return filtered, nil
}

func matches(predicates []predicate, row Row) bool {
	for _, p := range predicates {
		if !p(row) {
			return false
		}
	}
	return true
}
