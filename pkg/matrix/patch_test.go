package matrix

import (
	"encoding/json"
	"testing"

	"github.com/nuptial-ops/wedding-manager/internal/errdef"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatch(t *testing.T) {
	t.Run("Fields", func(t *testing.T) {
		patch, err := ParsePatch(map[string]any{"attending": true, "shuttle_to_event": "bus", "shuttle_from_event": nil})

		require.NoError(t, err)
		assert.True(t, *patch.Attending)
		assert.Equal(t, "bus", patch.ShuttleToEvent.String)
		assert.True(t, patch.ShuttleToEvent.Valid)
		require.NotNil(t, patch.ShuttleFromEvent)
		assert.False(t, patch.ShuttleFromEvent.Valid)
	})

	tests := map[string]map[string]any{
		"UnknownField":  {"dietary": "vegan"},
		"AttendingType": {"attending": "yes"},
		"ShuttleType":   {"shuttle_to_event": 3},
	}
	for name, fields := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePatch(fields)

			require.Error(t, err)
			assert.True(t, errdef.IsBadRequest(err))
		})
	}
}

func TestPatch_ApplyTo(t *testing.T) {
	base := roster.Attendance{Attending: true, ShuttleToEvent: ptr("bus")}

	t.Run("KeepsUnsetFields", func(t *testing.T) {
		got := shuttleTo("car").ApplyTo(base)

		assert.Equal(t, roster.Attendance{Attending: true, ShuttleToEvent: ptr("car")}, got)
		assert.Equal(t, "bus", *base.ShuttleToEvent)
	})

	t.Run("NotAttendingHasNoShuttles", func(t *testing.T) {
		got := attend(false).ApplyTo(base)

		assert.Equal(t, roster.Attendance{}, got)
	})
}

func TestPatch_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(attend(false).withClearedShuttles())

	require.NoError(t, err)
	assert.JSONEq(t, `{"attending":false,"shuttle_to_event":null,"shuttle_from_event":null}`, string(b))
}

func TestPending_Under(t *testing.T) {
	base := make(Pending)
	base.Set(1, 1, attend(true))
	base.Set(1, 1, shuttleTo("bus"))
	base.Set(2, 1, attend(true))
	later := make(Pending)
	later.Set(1, 1, shuttleTo("car"))

	merged := later.Under(base)

	assert.Equal(t, 2, merged.Len())
	patch, _ := merged.Get(1, 1)
	assert.True(t, *patch.Attending)
	assert.Equal(t, "car", patch.ShuttleToEvent.String)
	original, _ := base.Get(1, 1)
	assert.Equal(t, "bus", original.ShuttleToEvent.String, "want base untouched")
}
