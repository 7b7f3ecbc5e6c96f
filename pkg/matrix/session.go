package matrix

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nuptial-ops/wedding-manager/internal/errdef"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
)

type State string

const (
	Clean      State = "clean"
	Dirty      State = "dirty"
	Committing State = "committing"
)

type writer interface {
	Upsert(ctx context.Context, table string, rows []map[string]any, conflictKeys []string) error
}

// EventTotal counts attending guests of an event and, among them, those using each shuttle.
type EventTotal struct {
	EventID     uint   `json:"eventId"`
	Name        string `json:"name"`
	Attending   int    `json:"attending"`
	ShuttleTo   int    `json:"shuttleTo"`
	ShuttleFrom int    `json:"shuttleFrom"`
}

type CommitResult struct {
	Saved         int  `json:"saved"`
	NothingToSave bool `json:"nothingToSave,omitempty"`
}

// Session is a bulk attendance editing session. Edits accumulate in a pending map which is written
// in a single upsert on commit.
type Session struct {
	ID  uuid.UUID
	key roster.CacheKey

	logger      *slog.Logger
	writer      writer
	invalidator roster.Invalidator
	load        roster.LoadFunc

	mu       sync.Mutex
	schema   roster.Schema
	rows     []roster.Row
	pending  Pending
	inFlight Pending
	lastUsed time.Time
}

func newSession(ctx context.Context, logger *slog.Logger, key roster.CacheKey, writer writer, invalidator roster.Invalidator, load roster.LoadFunc) (*Session, error) {
	schema, rows, err := load(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:          uuid.New(),
		key:         key,
		logger:      logger,
		writer:      writer,
		invalidator: invalidator,
		load:        load,
		schema:      schema,
		rows:        rows,
		pending:     make(Pending),
		lastUsed:    time.Now(),
	}, nil
}

func (s *Session) WeddingID() uint {
	return s.key.WeddingID
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() State {
	switch {
	case s.inFlight != nil:
		return Committing
	case len(s.pending) > 0:
		return Dirty
	}
	return Clean
}

// Pending returns a copy of the pending map.
func (s *Session) Pending() Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Clone()
}

// SetPending records a change of one (record, event) pair. Unchecking attendance also clears both
// shuttle fields.
func (s *Session) SetPending(recordID, eventID uint, patch Patch) error {
	if patch.IsEmpty() {
		return errdef.NewBadRequest("empty patch for record %d event %d", recordID, eventID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()

	if !s.schema.HasEvent(eventID) {
		return errdef.NewBadRequest("event %d is not part of the matrix", eventID)
	}
	if !slices.ContainsFunc(s.rows, func(r roster.Row) bool { return r.ID == recordID }) {
		return errdef.NewBadRequest("record %d is not part of the matrix", recordID)
	}

	s.pending.Set(recordID, eventID, patch.withClearedShuttles())
	return nil
}

// DisplayRows returns the fetched rows with the changes being committed and the pending changes laid
// over them. The fetched rows are left untouched.
func (s *Session) DisplayRows() []roster.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return overlay(s.rows, s.inFlight, s.pending)
}

// Rows returns the rows as last fetched.
func (s *Session) Rows() []roster.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rows)
}

func overlay(rows []roster.Row, layers ...Pending) []roster.Row {
	result := make([]roster.Row, len(rows))
	for i, row := range rows {
		var changed bool
		for _, layer := range layers {
			if len(layer[row.ID]) > 0 {
				changed = true
			}
		}
		if !changed {
			result[i] = row
			continue
		}

		row = row.Clone()
		for _, layer := range layers {
			for eventID, patch := range layer[row.ID] {
				if _, ok := row.EventAttendance[eventID]; ok {
					row.EventAttendance[eventID] = patch.ApplyTo(row.EventAttendance[eventID])
				}
			}
		}
		result[i] = row
	}
	return result
}

// Snapshot returns the session as the grid renders it, everything read at one point in time.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := overlay(s.rows, s.inFlight, s.pending)
	return View{
		ID:      s.ID.String(),
		State:   s.state(),
		Schema:  s.schema,
		Rows:    rows,
		Totals:  eventTotals(s.schema.Events, rows),
		Pending: s.pending.Clone(),
	}
}

// EventTotals counts attendance per projected event.
func (s *Session) EventTotals(rows []roster.Row) []EventTotal {
	s.mu.Lock()
	events := s.schema.Events
	s.mu.Unlock()
	return eventTotals(events, rows)
}

func eventTotals(events []roster.Event, rows []roster.Row) []EventTotal {
	totals := make([]EventTotal, len(events))
	for i, event := range events {
		total := EventTotal{EventID: event.ID, Name: event.Name}
		for _, row := range rows {
			attendance := row.EventAttendance[event.ID]
			if !attendance.Attending {
				continue
			}
			total.Attending++
			if roster.UsesShuttle(attendance.ShuttleToEvent) {
				total.ShuttleTo++
			}
			if roster.UsesShuttle(attendance.ShuttleFromEvent) {
				total.ShuttleFrom++
			}
		}
		totals[i] = total
	}
	return totals
}

// Commit writes every pending change in one upsert. On failure the changes are kept, merged under
// any change made while the commit was running.
func (s *Session) Commit(ctx context.Context) (CommitResult, error) {
	s.mu.Lock()
	s.lastUsed = time.Now()
	if s.inFlight != nil {
		s.mu.Unlock()
		return CommitResult{}, errdef.NewConflict("a commit is already in progress")
	}
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return CommitResult{NothingToSave: true}, nil
	}
	snapshot := s.pending
	s.pending = make(Pending)
	s.inFlight = snapshot
	rows := flatten(s.schema.Storage, s.rows, snapshot)
	storage := s.schema.Storage
	s.mu.Unlock()

	// only use context for values when writing
	ctx = context.WithoutCancel(ctx)
	err := s.writer.Upsert(ctx, storage.AttendanceTable, rows, []string{storage.RecordKey, "event_id"})
	if err != nil {
		s.mu.Lock()
		s.pending = s.pending.Under(snapshot)
		s.inFlight = nil
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "Attendance commit failed", "session", s.ID, "rows", len(rows), "error", err)
		return CommitResult{}, errdef.NewRetryable("failed to save %d attendance changes: %w", len(rows), err)
	}

	s.invalidator.Invalidate(ctx, s.key)
	schema, fresh, loadErr := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if loadErr != nil {
		s.logger.WarnContext(ctx, "Failed to refetch attendance after commit", "session", s.ID, "error", loadErr)
		s.rows = overlay(s.rows, snapshot)
	} else {
		s.schema, s.rows = schema, fresh
	}
	s.inFlight = nil
	return CommitResult{Saved: len(rows)}, nil
}

// flatten turns pending changes into full attendance rows ordered by record, then event.
func flatten(storage roster.Storage, rows []roster.Row, pending Pending) []map[string]any {
	current := make(map[uint]roster.Row, len(rows))
	for _, row := range rows {
		current[row.ID] = row
	}

	pairs := pending.pairs()
	result := make([]map[string]any, 0, len(pairs))
	for _, p := range pairs {
		attendance := p.patch.ApplyTo(current[p.recordID].EventAttendance[p.eventID])
		row := attendance.Columns()
		row[storage.RecordKey] = p.recordID
		row["event_id"] = p.eventID
		result = append(result, row)
	}
	return result
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
