package roster

import (
	"cmp"
	"slices"
)

// CategoryGroup lists the ids of the columns rendered under one category header.
type CategoryGroup struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Columns []string `json:"columns"`
}

// Schema is the projected column layout of a view for one wedding.
type Schema struct {
	View         string               `json:"view"`
	Columns      []ColumnDescriptor   `json:"columns"`
	Groups       []CategoryGroup      `json:"groups"`
	FieldPaths   map[string]FieldPath `json:"fieldPaths"`
	Events       []Event              `json:"events"`
	SearchFields []string             `json:"searchFields"`
	Storage      Storage              `json:"-"`
	index        map[string]int
}

// Column returns the descriptor with the given id.
func (s Schema) Column(id string) (ColumnDescriptor, bool) {
	i, ok := s.index[id]
	if !ok {
		return ColumnDescriptor{}, false
	}
	return s.Columns[i], true
}

// HasEvent reports whether the event is part of the projection.
func (s Schema) HasEvent(eventID uint) bool {
	return slices.ContainsFunc(s.Events, func(e Event) bool { return e.ID == eventID })
}

// Project builds the column schema of a view given the wedding's events. Events are ordered by
// their sort order, then id, and only the first MaxEventColumns are projected.
func Project(def Definition, events []Event) Schema {
	projected := projectEvents(events)

	columns := make([]ColumnDescriptor, 0, len(def.BaseColumns)+len(projected)*(1+len(def.EventFields)))
	columns = append(columns, def.BaseColumns...)
	for _, event := range projected {
		eventID := event.ID
		category := eventCategoryID(eventID)
		columns = append(columns, ColumnDescriptor{
			ID:        eventColumnID(eventID, FieldAttending),
			Header:    event.Name,
			Category:  category,
			FieldPath: FieldPath{Field: FieldAttending, EventID: eventID},
			ValueType: TypeBoolean,
			EventID:   &eventID,
			Editable:  true,
		})
		for _, field := range def.EventFields {
			columns = append(columns, ColumnDescriptor{
				ID:        eventColumnID(eventID, field.Field),
				Header:    event.Name + " " + field.Label,
				Category:  category,
				FieldPath: FieldPath{Field: field.Field, EventID: eventID},
				ValueType: field.ValueType,
				EventID:   &eventID,
				Editable:  field.Editable,
				Nullable:  true,
				Transport: field.Transport,
			})
		}
	}

	index := make(map[string]int, len(columns))
	fieldPaths := make(map[string]FieldPath, len(columns))
	for i, column := range columns {
		index[column.ID] = i
		fieldPaths[column.ID] = column.FieldPath
	}

	return Schema{
		View:         def.Name,
		Columns:      columns,
		Groups:       groupColumns(def, columns, projected),
		FieldPaths:   fieldPaths,
		Events:       projected,
		SearchFields: slices.Clone(def.SearchFields),
		Storage:      def.Storage,
		index:        index,
	}
}

func projectEvents(events []Event) []Event {
	projected := slices.Clone(events)
	slices.SortStableFunc(projected, func(a, b Event) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.ID, b.ID))
	})
	if len(projected) > MaxEventColumns {
		projected = projected[:MaxEventColumns]
	}
	if projected == nil {
		projected = []Event{}
	}
	return projected
}

func groupColumns(def Definition, columns []ColumnDescriptor, events []Event) []CategoryGroup {
	precedence := make(map[string]int, len(def.CategoryOrder))
	labels := make(map[string]string, len(def.CategoryOrder))
	for i, category := range def.CategoryOrder {
		precedence[category.ID] = i
		labels[category.ID] = category.Label
	}
	for _, event := range events {
		labels[eventCategoryID(event.ID)] = event.Name
	}

	groups := make(map[string]*CategoryGroup)
	var base []string
	var eventGroups []string
	for _, column := range columns {
		group, ok := groups[column.Category]
		if !ok {
			label, known := labels[column.Category]
			if !known {
				label = column.Category
			}
			group = &CategoryGroup{ID: column.Category, Label: label}
			groups[column.Category] = group
			if column.EventID != nil {
				eventGroups = append(eventGroups, column.Category)
			} else {
				base = append(base, column.Category)
			}
		}
		group.Columns = append(group.Columns, column.ID)
	}

	// unknown categories keep their first appearance order after the known ones
	rank := func(category string, appearance int) int {
		if p, ok := precedence[category]; ok {
			return p
		}
		return len(precedence) + appearance
	}
	ranks := make(map[string]int, len(base))
	for i, category := range base {
		ranks[category] = rank(category, i)
	}
	slices.SortStableFunc(base, func(a, b string) int {
		return cmp.Compare(ranks[a], ranks[b])
	})

	ordered := make([]CategoryGroup, 0, len(base)+len(eventGroups))
	for _, category := range append(base, eventGroups...) {
		ordered = append(ordered, *groups[category])
	}
	return ordered
}
