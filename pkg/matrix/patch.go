package matrix

import (
	"database/sql"
	"encoding/json"

	"github.com/nuptial-ops/wedding-manager/internal/errdef"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
)

// Patch is a partial attendance update. Unset fields leave the stored value alone, a shuttle field
// set to an invalid NullString clears it.
type Patch struct {
	Attending        *bool
	ShuttleToEvent   *sql.NullString
	ShuttleFromEvent *sql.NullString
}

func (p Patch) IsEmpty() bool {
	return p.Attending == nil && p.ShuttleToEvent == nil && p.ShuttleFromEvent == nil
}

// Merge returns p overridden by every field set in next.
func (p Patch) Merge(next Patch) Patch {
	if next.Attending != nil {
		p.Attending = next.Attending
	}
	if next.ShuttleToEvent != nil {
		p.ShuttleToEvent = next.ShuttleToEvent
	}
	if next.ShuttleFromEvent != nil {
		p.ShuttleFromEvent = next.ShuttleFromEvent
	}
	return p
}

// withClearedShuttles nulls both shuttle fields when the patch unchecks attendance.
func (p Patch) withClearedShuttles() Patch {
	if p.Attending != nil && !*p.Attending {
		p.ShuttleToEvent = &sql.NullString{}
		p.ShuttleFromEvent = &sql.NullString{}
	}
	return p
}

// ApplyTo returns a with the patch applied, normalized so a guest who doesn't attend has no shuttles.
func (p Patch) ApplyTo(a roster.Attendance) roster.Attendance {
	if p.Attending != nil {
		a.Attending = *p.Attending
	}
	if p.ShuttleToEvent != nil {
		a.ShuttleToEvent = nullableString(*p.ShuttleToEvent)
	}
	if p.ShuttleFromEvent != nil {
		a.ShuttleFromEvent = nullableString(*p.ShuttleFromEvent)
	}
	return a.Normalized()
}

func (p Patch) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 3)
	if p.Attending != nil {
		m[roster.FieldAttending] = *p.Attending
	}
	if p.ShuttleToEvent != nil {
		m[roster.FieldShuttleToEvent] = nullableString(*p.ShuttleToEvent)
	}
	if p.ShuttleFromEvent != nil {
		m[roster.FieldShuttleFromEvent] = nullableString(*p.ShuttleFromEvent)
	}
	return json.Marshal(m)
}

func (p *Patch) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	patch, err := ParsePatch(fields)
	if err != nil {
		return err
	}
	*p = patch
	return nil
}

// ParsePatch reads a patch from a decoded JSON object. Keys are attendance field names.
func ParsePatch(fields map[string]any) (Patch, error) {
	var patch Patch
	for field, value := range fields {
		switch field {
		case roster.FieldAttending:
			attending, ok := value.(bool)
			if !ok {
				return Patch{}, errdef.NewBadRequest("%s must be a boolean", field)
			}
			patch.Attending = &attending
		case roster.FieldShuttleToEvent, roster.FieldShuttleFromEvent:
			shuttle, err := parseShuttle(field, value)
			if err != nil {
				return Patch{}, err
			}
			if field == roster.FieldShuttleToEvent {
				patch.ShuttleToEvent = shuttle
			} else {
				patch.ShuttleFromEvent = shuttle
			}
		default:
			return Patch{}, errdef.NewBadRequest("unknown attendance field: %s", field)
		}
	}
	return patch, nil
}

func parseShuttle(field string, value any) (*sql.NullString, error) {
	switch v := value.(type) {
	case nil:
		return &sql.NullString{}, nil
	case string:
		return &sql.NullString{String: v, Valid: true}, nil
	}
	return nil, errdef.NewBadRequest("%s must be a string or null, got %T", field, value)
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
