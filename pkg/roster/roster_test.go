package roster

func testDefinition() Definition {
	return Definition{
		Name: "guests",
		BaseColumns: []ColumnDescriptor{
			{ID: "name", Header: "Name", Category: "guest", FieldPath: FieldPath{Field: "name"}, ValueType: TypeString, Editable: true},
			{ID: "email", Header: "Email", Category: "contact", FieldPath: FieldPath{Field: "email"}, ValueType: TypeString, Editable: true, Nullable: true},
			{ID: "guest_type", Header: "Type", Category: "guest", FieldPath: FieldPath{Field: "guest_type"}, ValueType: TypeEnum, Editable: true},
			{ID: "side", Header: "Side code", Category: "guest", FieldPath: FieldPath{Field: "side"}, ValueType: TypeEnum, Editable: true, Nullable: true},
			{ID: "side_label", Header: "Side", Category: "guest", FieldPath: FieldPath{Field: "side_label"}, ValueType: TypeDisplay, Lookup: &Lookup{Kind: "side", Source: "side"}},
			{ID: "table_number", Header: "Table", Category: "seating", FieldPath: FieldPath{Field: "table_number"}, ValueType: TypeNumber, Editable: true, Nullable: true},
			{ID: "notes", Header: "Notes", Category: "extra", FieldPath: FieldPath{Field: "notes"}, ValueType: TypeString, Editable: true, Nullable: true},
		},
		EventFields: []EventField{
			{Field: FieldShuttleToEvent, Label: "shuttle to", ValueType: TypeString, Transport: true, Editable: true},
			{Field: FieldShuttleFromEvent, Label: "shuttle from", ValueType: TypeString, Transport: true, Editable: true},
		},
		CategoryOrder: []Category{
			{ID: "guest", Label: "Guest"},
			{ID: "contact", Label: "Contact"},
			{ID: "seating", Label: "Seating"},
		},
		SearchFields: []string{"name", "email"},
		Storage:      Storage{Table: "guests", AttendanceTable: "guest_event_attendances", RecordKey: "guest_id"},
	}
}

func testEvents() []Event {
	return []Event{
		{ID: 7, Name: "Reception", SortOrder: 2},
		{ID: 3, Name: "Ceremony", SortOrder: 1},
	}
}

func record(id uint, name, guestType string, table any) Record {
	return Record{ID: id, Fields: map[string]any{
		"name":         name,
		"guest_type":   guestType,
		"table_number": table,
	}}
}

func ptr[T any](v T) *T {
	return &v
}
