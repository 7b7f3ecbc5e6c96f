package matrix

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/nuptial-ops/wedding-manager/internal/errdef"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = roster.CacheKey{WeddingID: 1, View: "guests"}

func testSchema() roster.Schema {
	return roster.Project(roster.Definition{
		Name: "guests",
		BaseColumns: []roster.ColumnDescriptor{
			{ID: "name", Header: "Name", Category: "guest", FieldPath: roster.FieldPath{Field: "name"}, ValueType: roster.TypeString, Editable: true},
		},
		EventFields: []roster.EventField{
			{Field: roster.FieldShuttleToEvent, Label: "shuttle to", ValueType: roster.TypeString, Transport: true, Editable: true},
			{Field: roster.FieldShuttleFromEvent, Label: "shuttle from", ValueType: roster.TypeString, Transport: true, Editable: true},
		},
		Storage: roster.Storage{Table: "guests", AttendanceTable: "guest_event_attendances", RecordKey: "guest_id"},
	}, []roster.Event{
		{ID: 1, Name: "Ceremony", SortOrder: 1},
		{ID: 2, Name: "Reception", SortOrder: 2},
	})
}

type fakeSource struct {
	mu    sync.Mutex
	facts []roster.Fact
	loads int
	err   error
}

func (f *fakeSource) Load(context.Context, uint) (roster.Schema, []roster.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return roster.Schema{}, nil, f.err
	}
	schema := testSchema()
	records := []roster.Record{
		{ID: 1, Fields: map[string]any{"name": "Ann"}},
		{ID: 2, Fields: map[string]any{"name": "Bob"}},
		{ID: 3, Fields: map[string]any{"name": "Cid"}},
	}
	return schema, roster.Transform(schema, records, f.facts, nil), nil
}

type upsertCall struct {
	table        string
	rows         []map[string]any
	conflictKeys []string
}

type spyWriter struct {
	mu    sync.Mutex
	calls []upsertCall
	err   error
	// block, when set, is waited on before the upsert returns
	block chan struct{}
}

func (w *spyWriter) Upsert(_ context.Context, table string, rows []map[string]any, conflictKeys []string) error {
	w.mu.Lock()
	w.calls = append(w.calls, upsertCall{table: table, rows: rows, conflictKeys: conflictKeys})
	block, err := w.block, w.err
	w.mu.Unlock()
	if block != nil {
		<-block
	}
	return err
}

func (w *spyWriter) callCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.calls)
}

type spyInvalidator struct {
	mu   sync.Mutex
	keys []roster.CacheKey
}

func (i *spyInvalidator) Invalidate(_ context.Context, key roster.CacheKey) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.keys = append(i.keys, key)
}

func openSession(t *testing.T, source *fakeSource, writer *spyWriter, invalidator *spyInvalidator) *Session {
	t.Helper()
	load := func(ctx context.Context) (roster.Schema, []roster.Row, error) {
		return source.Load(ctx, testKey.WeddingID)
	}
	session, err := newSession(context.Background(), slog.New(slog.DiscardHandler), testKey, writer, invalidator, load)
	require.NoError(t, err)
	return session
}

func attend(v bool) Patch {
	return Patch{Attending: &v}
}

func shuttleTo(v string) Patch {
	return Patch{ShuttleToEvent: &sql.NullString{String: v, Valid: true}}
}

func TestSession_ScenarioA(t *testing.T) {
	session := openSession(t, &fakeSource{}, &spyWriter{}, &spyInvalidator{})

	rows := session.Rows()
	require.Len(t, rows, 3)
	for _, row := range rows {
		require.Len(t, row.EventAttendance, 2)
		for _, attendance := range row.EventAttendance {
			assert.Equal(t, roster.Attendance{}, attendance)
		}
	}
	assert.Equal(t, Clean, session.State())

	require.NoError(t, session.SetPending(1, 1, attend(true)))

	display := session.DisplayRows()
	totals := session.EventTotals(display)
	assert.Equal(t, []EventTotal{
		{EventID: 1, Name: "Ceremony", Attending: 1},
		{EventID: 2, Name: "Reception"},
	}, totals)
	assert.Equal(t, 0, session.EventTotals(session.Rows())[0].Attending)
	assert.Equal(t, Dirty, session.State())
}

func TestSession_ScenarioB(t *testing.T) {
	writer := &spyWriter{err: errors.New("connection reset")}
	invalidator := &spyInvalidator{}
	session := openSession(t, &fakeSource{}, writer, invalidator)
	require.NoError(t, session.SetPending(1, 1, attend(true)))
	require.NoError(t, session.SetPending(2, 2, attend(true)))
	before := session.Pending()

	_, err := session.Commit(context.Background())

	require.Error(t, err)
	assert.True(t, errdef.IsRetryable(err))
	assert.Equal(t, before, session.Pending())
	assert.Equal(t, 2, session.Pending().Len())
	assert.Equal(t, Dirty, session.State())
	assert.Empty(t, invalidator.keys)

	_, err = session.Commit(context.Background())

	require.Error(t, err)
	require.Equal(t, 2, writer.callCount())
	assert.Equal(t, writer.calls[0], writer.calls[1])
	assert.Len(t, writer.calls[1].rows, 2)
}

func TestSession_SetPending(t *testing.T) {
	t.Run("UncheckingClearsShuttles", func(t *testing.T) {
		session := openSession(t, &fakeSource{}, &spyWriter{}, &spyInvalidator{})
		require.NoError(t, session.SetPending(1, 1, attend(true)))
		require.NoError(t, session.SetPending(1, 1, shuttleTo("bus")))

		require.NoError(t, session.SetPending(1, 1, attend(false)))

		patch, ok := session.Pending().Get(1, 1)
		require.True(t, ok)
		require.NotNil(t, patch.ShuttleToEvent)
		require.NotNil(t, patch.ShuttleFromEvent)
		assert.False(t, patch.ShuttleToEvent.Valid)
		assert.False(t, patch.ShuttleFromEvent.Valid)
		assert.False(t, *patch.Attending)
	})

	t.Run("MergesFields", func(t *testing.T) {
		session := openSession(t, &fakeSource{}, &spyWriter{}, &spyInvalidator{})
		require.NoError(t, session.SetPending(1, 1, attend(true)))
		require.NoError(t, session.SetPending(1, 1, shuttleTo("bus")))

		patch, _ := session.Pending().Get(1, 1)
		assert.True(t, *patch.Attending)
		assert.Equal(t, "bus", patch.ShuttleToEvent.String)
		assert.Nil(t, patch.ShuttleFromEvent)
	})

	t.Run("Rejects", func(t *testing.T) {
		session := openSession(t, &fakeSource{}, &spyWriter{}, &spyInvalidator{})

		tests := map[string]struct {
			recordID uint
			eventID  uint
			patch    Patch
		}{
			"EmptyPatch":    {1, 1, Patch{}},
			"UnknownEvent":  {1, 9, attend(true)},
			"UnknownRecord": {9, 1, attend(true)},
		}
		for name, test := range tests {
			t.Run(name, func(t *testing.T) {
				err := session.SetPending(test.recordID, test.eventID, test.patch)

				require.Error(t, err)
				assert.True(t, errdef.IsBadRequest(err))
			})
		}
		assert.Zero(t, session.Pending().Len())
	})
}

func TestSession_DisplayRows(t *testing.T) {
	source := &fakeSource{facts: []roster.Fact{
		{RecordID: 2, EventID: 1, Attendance: roster.Attendance{Attending: true, ShuttleToEvent: ptr("bus"), ShuttleFromEvent: ptr("bus")}},
	}}
	session := openSession(t, source, &spyWriter{}, &spyInvalidator{})
	fetched := session.Rows()
	require.NoError(t, session.SetPending(2, 1, attend(false)))

	display := session.DisplayRows()

	assert.Equal(t, roster.Attendance{}, display[1].EventAttendance[1])
	assert.Equal(t, fetched, session.Rows(), "want fetched rows untouched")
	assert.True(t, session.Rows()[1].EventAttendance[1].Attending)
	assert.Equal(t, 1, session.EventTotals(fetched)[0].ShuttleTo)
	assert.Equal(t, 0, session.EventTotals(display)[0].ShuttleTo)
}

func TestSession_Commit(t *testing.T) {
	t.Run("NothingToSave", func(t *testing.T) {
		writer := &spyWriter{}
		session := openSession(t, &fakeSource{}, writer, &spyInvalidator{})

		result, err := session.Commit(context.Background())

		require.NoError(t, err)
		assert.True(t, result.NothingToSave)
		assert.Zero(t, writer.callCount())
	})

	t.Run("WritesFullRowsInOrder", func(t *testing.T) {
		source := &fakeSource{facts: []roster.Fact{
			{RecordID: 3, EventID: 2, Attendance: roster.Attendance{Attending: true, ShuttleFromEvent: ptr("car")}},
		}}
		writer := &spyWriter{}
		invalidator := &spyInvalidator{}
		session := openSession(t, source, writer, invalidator)
		require.NoError(t, session.SetPending(3, 2, shuttleTo("bus")))
		require.NoError(t, session.SetPending(1, 2, attend(true)))
		require.NoError(t, session.SetPending(1, 1, attend(false)))

		result, err := session.Commit(context.Background())

		require.NoError(t, err)
		assert.Equal(t, CommitResult{Saved: 3}, result)
		require.Equal(t, 1, writer.callCount())
		call := writer.calls[0]
		assert.Equal(t, "guest_event_attendances", call.table)
		assert.Equal(t, []string{"guest_id", "event_id"}, call.conflictKeys)
		assert.Equal(t, []map[string]any{
			{"guest_id": uint(1), "event_id": uint(1), "attending": false, "shuttle_to_event": nil, "shuttle_from_event": nil},
			{"guest_id": uint(1), "event_id": uint(2), "attending": true, "shuttle_to_event": nil, "shuttle_from_event": nil},
			{"guest_id": uint(3), "event_id": uint(2), "attending": true, "shuttle_to_event": "bus", "shuttle_from_event": "car"},
		}, call.rows)
		assert.Equal(t, Clean, session.State())
		assert.Equal(t, []roster.CacheKey{testKey}, invalidator.keys)
		assert.Equal(t, 2, source.loads, "want rows refetched after commit")
	})

	t.Run("ConflictWhileCommitting", func(t *testing.T) {
		writer := &spyWriter{block: make(chan struct{})}
		session := openSession(t, &fakeSource{}, writer, &spyInvalidator{})
		require.NoError(t, session.SetPending(1, 1, attend(true)))

		done := make(chan error)
		go func() {
			_, err := session.Commit(context.Background())
			done <- err
		}()
		require.Eventually(t, func() bool { return writer.callCount() == 1 }, time.Second, time.Millisecond)

		assert.Equal(t, Committing, session.State())
		_, err := session.Commit(context.Background())
		require.Error(t, err)
		assert.True(t, errdef.IsConflict(err))

		require.NoError(t, session.SetPending(2, 1, attend(true)))
		display := session.DisplayRows()
		assert.True(t, display[0].EventAttendance[1].Attending, "want in flight change shown")
		assert.True(t, display[1].EventAttendance[1].Attending, "want pending change shown")

		close(writer.block)
		require.NoError(t, <-done)
		assert.Equal(t, Dirty, session.State())
		assert.Equal(t, 1, session.Pending().Len())
	})

	t.Run("FailureKeepsLaterEditsOnTop", func(t *testing.T) {
		writer := &spyWriter{block: make(chan struct{}), err: errors.New("timeout")}
		session := openSession(t, &fakeSource{}, writer, &spyInvalidator{})
		require.NoError(t, session.SetPending(1, 1, attend(true)))
		require.NoError(t, session.SetPending(1, 1, shuttleTo("bus")))

		done := make(chan error)
		go func() {
			_, err := session.Commit(context.Background())
			done <- err
		}()
		require.Eventually(t, func() bool { return writer.callCount() == 1 }, time.Second, time.Millisecond)
		require.NoError(t, session.SetPending(1, 1, shuttleTo("car")))
		close(writer.block)

		err := <-done
		require.Error(t, err)
		patch, ok := session.Pending().Get(1, 1)
		require.True(t, ok)
		assert.True(t, *patch.Attending, "want field from failed commit kept")
		assert.Equal(t, "car", patch.ShuttleToEvent.String, "want later edit to win")
	})

	t.Run("RefetchFailureKeepsCommittedValues", func(t *testing.T) {
		source := &fakeSource{}
		session := openSession(t, source, &spyWriter{}, &spyInvalidator{})
		require.NoError(t, session.SetPending(1, 1, attend(true)))
		source.err = errors.New("read timeout")

		_, err := session.Commit(context.Background())

		require.NoError(t, err)
		assert.True(t, session.Rows()[0].EventAttendance[1].Attending)
		assert.Equal(t, Clean, session.State())
	})
}

func ptr[T any](v T) *T {
	return &v
}

func TestEventTotals_ShuttleNotes(t *testing.T) {
	events := []roster.Event{{ID: 1, Name: "Ceremony"}}
	rows := []roster.Row{
		{ID: 1, EventAttendance: map[uint]roster.Attendance{1: {Attending: true, ShuttleToEvent: ptr("bus"), ShuttleFromEvent: ptr("no")}}},
		{ID: 2, EventAttendance: map[uint]roster.Attendance{1: {Attending: true, ShuttleToEvent: ptr(" "), ShuttleFromEvent: ptr("false")}}},
	}

	totals := eventTotals(events, rows)

	assert.Equal(t, []EventTotal{{EventID: 1, Name: "Ceremony", Attending: 2, ShuttleTo: 1}}, totals)
}

func TestSession_Snapshot(t *testing.T) {
	session := openSession(t, &fakeSource{}, &spyWriter{}, &spyInvalidator{})
	require.NoError(t, session.SetPending(1, 1, attend(true)))

	view := session.Snapshot()

	assert.Equal(t, session.ID.String(), view.ID)
	assert.Equal(t, Dirty, view.State)
	assert.Len(t, view.Pending, 1)
	assert.True(t, view.Rows[0].EventAttendance[1].Attending)
	assert.Equal(t, 1, view.Totals[0].Attending)
}
