package roster

import "fmt"

// MaxEventColumns caps how many events are projected into column groups. Events past the cap are
// left out of the grid.
const MaxEventColumns = 10

type ValueType string

const (
	TypeString   ValueType = "string"
	TypeNumber   ValueType = "number"
	TypeBoolean  ValueType = "boolean"
	TypeDate     ValueType = "date"
	TypeDateTime ValueType = "datetime"
	TypeEnum     ValueType = "enum"
	TypeDisplay  ValueType = "display"
)

func (t ValueType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeDate, TypeDateTime, TypeEnum, TypeDisplay:
		return true
	}
	return false
}

// FieldPath locates a cell value. Base fields only carry the field name, event scoped fields also
// carry the event id. Event ids are never zero.
type FieldPath struct {
	Field   string `json:"field"`
	EventID uint   `json:"eventId,omitempty"`
}

func (p FieldPath) IsEvent() bool {
	return p.EventID != 0
}

func (p FieldPath) String() string {
	if p.IsEvent() {
		return fmt.Sprintf("eventAttendance.%d.%s", p.EventID, p.Field)
	}
	return p.Field
}

// Lookup marks a display column whose value is the label of the code stored in Source.
type Lookup struct {
	Kind   string `json:"kind"`
	Source string `json:"source"`
}

// ColumnDescriptor describes a single grid column. Descriptors are generated by Project and never
// persisted.
type ColumnDescriptor struct {
	ID        string    `json:"id"`
	Header    string    `json:"header"`
	Category  string    `json:"category"`
	FieldPath FieldPath `json:"fieldPath"`
	ValueType ValueType `json:"valueType"`
	EventID   *uint     `json:"eventId,omitempty"`
	Editable  bool      `json:"editable"`
	Nullable  bool      `json:"nullable"`
	Transport bool      `json:"transport,omitempty"`
	Lookup    *Lookup   `json:"lookup,omitempty"`
}

// EventField is a sub-field projected once per event, next to the attendance flag.
type EventField struct {
	Field     string
	Label     string
	ValueType ValueType
	Transport bool
	Editable  bool
}

type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Storage names the tables a view reads from and writes to.
type Storage struct {
	Table           string
	AttendanceTable string
	// RecordKey is the column of the attendance table referencing the record
	RecordKey string
}

// Definition is the fixed part of a view: its base columns, the sub-fields projected per event and
// the presentation order of categories.
type Definition struct {
	Name          string
	BaseColumns   []ColumnDescriptor
	EventFields   []EventField
	CategoryOrder []Category
	SearchFields  []string
	Storage       Storage
}

// Event is the part of a wedding event the projection needs.
type Event struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

func eventColumnID(eventID uint, field string) string {
	return fmt.Sprintf("event_%d_%s", eventID, field)
}

func eventCategoryID(eventID uint) string {
	return fmt.Sprintf("event_%d", eventID)
}
