package roster

import (
	"fmt"
	"maps"
)

const (
	FieldAttending        = "attending"
	FieldShuttleToEvent   = "shuttle_to_event"
	FieldShuttleFromEvent = "shuttle_from_event"
)

// Record is a base row as read from the store.
type Record struct {
	ID     uint
	Fields map[string]any
}

// Attendance is the per (record, event) fact. A missing fact is the zero value.
type Attendance struct {
	Attending        bool    `json:"attending"`
	ShuttleToEvent   *string `json:"shuttleToEvent"`
	ShuttleFromEvent *string `json:"shuttleFromEvent"`
}

// Fact is an attendance fact as read from the store.
type Fact struct {
	RecordID uint
	EventID  uint
	Attendance
}

// Field returns the value of one attendance field, or false if there is no such field.
func (a Attendance) Field(name string) (any, bool) {
	switch name {
	case FieldAttending:
		return a.Attending, true
	case FieldShuttleToEvent:
		return stringOrNil(a.ShuttleToEvent), true
	case FieldShuttleFromEvent:
		return stringOrNil(a.ShuttleFromEvent), true
	}
	return nil, false
}

// With returns a copy with one field replaced. Shuttle fields take a string or nil.
func (a Attendance) With(name string, value any) (Attendance, error) {
	switch name {
	case FieldAttending:
		attending, ok := value.(bool)
		if !ok {
			return a, fmt.Errorf("%s expects a boolean, got %T", name, value)
		}
		a.Attending = attending
	case FieldShuttleToEvent, FieldShuttleFromEvent:
		var shuttle *string
		switch v := value.(type) {
		case nil:
		case string:
			shuttle = &v
		case *string:
			if v != nil {
				s := *v
				shuttle = &s
			}
		default:
			return a, fmt.Errorf("%s expects a string or null, got %T", name, value)
		}
		if name == FieldShuttleToEvent {
			a.ShuttleToEvent = shuttle
		} else {
			a.ShuttleFromEvent = shuttle
		}
	default:
		return a, fmt.Errorf("unknown attendance field: %s", name)
	}
	return a, nil
}

// Normalized clears the shuttle fields of a guest who is not attending.
func (a Attendance) Normalized() Attendance {
	if !a.Attending {
		a.ShuttleToEvent = nil
		a.ShuttleFromEvent = nil
	}
	return a
}

// UsesShuttle reports whether a shuttle field value means taking the shuttle. Blank values and notes
// like "no" or "false" don't. Transport filters and attendance totals both go by it.
func UsesShuttle(v any) bool {
	return truthy(v)
}

// Columns returns the attendance as storage columns, always carrying every field.
func (a Attendance) Columns() map[string]any {
	return map[string]any{
		FieldAttending:        a.Attending,
		FieldShuttleToEvent:   stringOrNil(a.ShuttleToEvent),
		FieldShuttleFromEvent: stringOrNil(a.ShuttleFromEvent),
	}
}

// Row is a dense projected row. EventAttendance has an entry for every projected event.
type Row struct {
	ID              uint                `json:"id"`
	Fields          map[string]any      `json:"fields"`
	EventAttendance map[uint]Attendance `json:"eventAttendance"`
}

// Value resolves a field path against the row.
func (r Row) Value(path FieldPath) any {
	if path.IsEvent() {
		v, _ := r.EventAttendance[path.EventID].Field(path.Field)
		return v
	}
	return r.Fields[path.Field]
}

// Clone returns a row sharing nothing with r. Attendance values are copied by value, shuttle
// strings are immutable so the pointers may be shared.
func (r Row) Clone() Row {
	return Row{
		ID:              r.ID,
		Fields:          maps.Clone(r.Fields),
		EventAttendance: maps.Clone(r.EventAttendance),
	}
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
