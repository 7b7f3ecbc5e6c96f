package roster

// Lookups maps a lookup kind to its code to label table.
type Lookups map[string]map[string]string

// Label returns the label of a code, falling back to the code itself. A nil code stays nil.
func (l Lookups) Label(kind string, code any) any {
	code = deref(code)
	if code == nil {
		return nil
	}
	s, ok := code.(string)
	if !ok {
		return code
	}
	if label, ok := l[kind][s]; ok {
		return label
	}
	return s
}

// Transform joins records with their attendance facts into dense rows, one per record in input
// order. Facts for events outside the projection are ignored and missing facts default to not
// attending.
func Transform(schema Schema, records []Record, facts []Fact, lookups Lookups) []Row {
	projected := make(map[uint]struct{}, len(schema.Events))
	for _, event := range schema.Events {
		projected[event.ID] = struct{}{}
	}

	byRecord := make(map[uint]map[uint]Attendance)
	for _, fact := range facts {
		if _, ok := projected[fact.EventID]; !ok {
			continue
		}
		attendance, ok := byRecord[fact.RecordID]
		if !ok {
			attendance = make(map[uint]Attendance)
			byRecord[fact.RecordID] = attendance
		}
		attendance[fact.EventID] = fact.Attendance
	}

	var base, display []ColumnDescriptor
	for _, column := range schema.Columns {
		if column.FieldPath.IsEvent() {
			continue
		}
		if column.Lookup != nil {
			display = append(display, column)
		} else {
			base = append(base, column)
		}
	}

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		fields := make(map[string]any, len(record.Fields)+len(display))
		for k, v := range record.Fields {
			fields[k] = deref(v)
		}
		for _, column := range base {
			if _, ok := fields[column.FieldPath.Field]; !ok {
				fields[column.FieldPath.Field] = nil
			}
		}
		for _, column := range display {
			fields[column.FieldPath.Field] = lookups.Label(column.Lookup.Kind, fields[column.Lookup.Source])
		}

		attendance := make(map[uint]Attendance, len(schema.Events))
		for _, event := range schema.Events {
			// the zero value is the default fact, stored shuttles of absent guests are dropped
			attendance[event.ID] = byRecord[record.ID][event.ID].Normalized()
		}

		rows = append(rows, Row{ID: record.ID, Fields: fields, EventAttendance: attendance})
	}
	return rows
}
