package roster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	t.Run("NoEvents", func(t *testing.T) {
		schema := Project(testDefinition(), nil)

		assert.Len(t, schema.Columns, 7)
		assert.Empty(t, schema.Events)
		ids := make([]string, len(schema.Groups))
		for i, group := range schema.Groups {
			ids[i] = group.ID
		}
		assert.Equal(t, []string{"guest", "contact", "seating", "extra"}, ids)
		assert.Equal(t, "extra", schema.Groups[3].Label)
	})

	t.Run("EventColumns", func(t *testing.T) {
		schema := Project(testDefinition(), testEvents())

		require.Len(t, schema.Columns, 7+2*3)
		assert.Equal(t, []Event{{ID: 3, Name: "Ceremony", SortOrder: 1}, {ID: 7, Name: "Reception", SortOrder: 2}}, schema.Events)

		attending, ok := schema.Column("event_3_attending")
		require.True(t, ok)
		assert.Equal(t, "Ceremony", attending.Header)
		assert.Equal(t, TypeBoolean, attending.ValueType)
		assert.Equal(t, FieldPath{Field: FieldAttending, EventID: 3}, attending.FieldPath)
		require.NotNil(t, attending.EventID)
		assert.Equal(t, uint(3), *attending.EventID)
		assert.False(t, attending.Nullable)

		shuttle, ok := schema.Column("event_7_shuttle_from_event")
		require.True(t, ok)
		assert.Equal(t, "Reception shuttle from", shuttle.Header)
		assert.True(t, shuttle.Transport)
		assert.True(t, shuttle.Nullable)
		assert.Equal(t, "event_7", shuttle.Category)

		// event groups follow the base groups in event order
		require.Len(t, schema.Groups, 6)
		assert.Equal(t, CategoryGroup{
			ID:      "event_3",
			Label:   "Ceremony",
			Columns: []string{"event_3_attending", "event_3_shuttle_to_event", "event_3_shuttle_from_event"},
		}, schema.Groups[4])
		assert.Equal(t, "event_7", schema.Groups[5].ID)
	})

	t.Run("CapsEvents", func(t *testing.T) {
		var events []Event
		for i := 12; i > 0; i-- {
			events = append(events, Event{ID: uint(i), Name: fmt.Sprintf("Event %d", i), SortOrder: i})
		}

		schema := Project(testDefinition(), events)

		require.Len(t, schema.Events, MaxEventColumns)
		assert.Equal(t, uint(1), schema.Events[0].ID)
		assert.Equal(t, uint(10), schema.Events[9].ID)
		assert.Len(t, schema.Columns, 7+MaxEventColumns*3)
		_, ok := schema.Column("event_11_attending")
		assert.False(t, ok)
		// input is left in its original order
		assert.Equal(t, uint(12), events[0].ID)
	})

	t.Run("SortOrderTieBrokenById", func(t *testing.T) {
		schema := Project(testDefinition(), []Event{{ID: 9, Name: "B"}, {ID: 4, Name: "A"}})

		assert.Equal(t, uint(4), schema.Events[0].ID)
		assert.Equal(t, uint(9), schema.Events[1].ID)
	})

	t.Run("FieldPathsAreBijective", func(t *testing.T) {
		schema := Project(testDefinition(), testEvents())

		require.Len(t, schema.FieldPaths, len(schema.Columns))
		seen := make(map[FieldPath]string)
		for id, path := range schema.FieldPaths {
			other, duplicate := seen[path]
			assert.False(t, duplicate, "%s and %s share %s", id, other, path)
			seen[path] = id
		}
		for _, column := range schema.Columns {
			assert.Equal(t, column.FieldPath, schema.FieldPaths[column.ID])
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, Project(testDefinition(), testEvents()), Project(testDefinition(), testEvents()))
	})
}
