package roster

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/nuptial-ops/wedding-manager/internal/errdef"
)

// Writer is the part of the record store the mutator writes through.
type Writer interface {
	Update(ctx context.Context, table string, id uint, patch map[string]any) error
	Upsert(ctx context.Context, table string, rows []map[string]any, conflictKeys []string) error
}

// Invalidator makes every holder of a projection refetch it.
type Invalidator interface {
	Invalidate(ctx context.Context, key CacheKey)
}

// Edit sets one cell of a view.
type Edit struct {
	RecordID uint
	Column   string
	Value    any
}

type cellKey struct {
	cache    CacheKey
	recordID uint
	column   string
}

// writeKey identifies what one store write touches: a base cell, or the whole attendance row of a
// (record, event) pair.
type writeKey struct {
	cache    CacheKey
	recordID uint
	field    string
	eventID  uint
}

type writeLock struct {
	mu   sync.Mutex
	refs int
}

func NewMutator(logger *slog.Logger, cache *Cache, writer Writer, invalidator Invalidator) *Mutator {
	return &Mutator{
		logger:      logger,
		cache:       cache,
		writer:      writer,
		invalidator: invalidator,
		generations: make(map[cellKey]uint64),
		writes:      make(map[writeKey]*writeLock),
	}
}

// Mutator applies single cell edits optimistically to the cached projection and writes them to the
// store. Writes touching the same cell or attendance row run one at a time, and a write superseded by
// a newer edit of its cell is dropped. A failed write restores the cell unless a newer edit of the
// same cell was made meanwhile.
type Mutator struct {
	logger      *slog.Logger
	cache       *Cache
	writer      Writer
	invalidator Invalidator

	mu          sync.Mutex
	sequence    uint64
	generations map[cellKey]uint64
	writes      map[writeKey]*writeLock
}

func (m *Mutator) Edit(ctx context.Context, key CacheKey, load LoadFunc, edit Edit) error {
	projection, err := m.cache.Load(ctx, key, load)
	if err != nil {
		return err
	}

	column, ok := projection.Schema.Column(edit.Column)
	if !ok {
		return errdef.NewBadRequest("unknown column: %s", edit.Column)
	}
	if !column.Editable {
		return errdef.NewBadRequest("column %s is not editable", edit.Column)
	}
	value, err := coerce(column, edit.Value)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(projection.Rows, func(r Row) bool { return r.ID == edit.RecordID }) {
		return errdef.NewNotFound("record %d not found in %s", edit.RecordID, key.View)
	}

	cell := cellKey{cache: key, recordID: edit.RecordID, column: column.ID}
	path := column.FieldPath
	target := writeKey{cache: key, recordID: edit.RecordID, field: path.Field}
	if path.IsEvent() {
		target = writeKey{cache: key, recordID: edit.RecordID, eventID: path.EventID}
	}

	m.mu.Lock()
	// the current entry may be newer than the one used for validation
	current, ok := m.cache.Get(key)
	if !ok {
		current = projection
	}
	i := slices.IndexFunc(current.Rows, func(r Row) bool { return r.ID == edit.RecordID })
	if i < 0 {
		m.mu.Unlock()
		return errdef.NewNotFound("record %d not found in %s", edit.RecordID, key.View)
	}
	previous := current.Rows[i]

	var attendance Attendance
	if path.IsEvent() {
		attendance, err = previous.EventAttendance[path.EventID].With(path.Field, value)
		if err != nil {
			m.mu.Unlock()
			return errdef.NewBadRequest("%s: %v", column.ID, err)
		}
		attendance = attendance.Normalized()
	}

	m.sequence++
	generation := m.sequence
	m.generations[cell] = generation

	applied := m.cache.updateRow(key, current.version, edit.RecordID, func(r Row) Row {
		r = r.Clone()
		if path.IsEvent() {
			r.EventAttendance[path.EventID] = attendance
		} else {
			r.Fields[path.Field] = value
		}
		return r
	})
	m.mu.Unlock()

	unlock := m.lockWrite(target)
	defer unlock()

	m.mu.Lock()
	if m.generations[cell] != generation {
		m.mu.Unlock()
		m.logger.DebugContext(ctx, "Dropping superseded cell edit", "view", key.View, "record", edit.RecordID, "column", column.ID)
		return nil
	}
	if path.IsEvent() {
		// siblings written before this edit are in the cache, the row sent must carry them
		attendance = m.latestAttendance(key, edit.RecordID, path, value, attendance)
	}
	m.mu.Unlock()

	// only use context for values when writing
	writeCtx := context.WithoutCancel(ctx)
	storage := projection.Schema.Storage
	if path.IsEvent() {
		row := attendance.Columns()
		row[storage.RecordKey] = edit.RecordID
		row["event_id"] = path.EventID
		err = m.writer.Upsert(writeCtx, storage.AttendanceTable, []map[string]any{row}, []string{storage.RecordKey, "event_id"})
	} else {
		err = m.writer.Update(writeCtx, storage.Table, edit.RecordID, map[string]any{path.Field: value})
	}

	m.mu.Lock()
	latest := m.generations[cell] == generation
	if err != nil && applied && latest {
		m.cache.updateRow(key, current.version, edit.RecordID, func(r Row) Row {
			r = r.Clone()
			if path.IsEvent() {
				r.EventAttendance[path.EventID] = restore(r.EventAttendance[path.EventID], previous.EventAttendance[path.EventID], path.Field)
			} else {
				r.Fields[path.Field] = previous.Fields[path.Field]
			}
			return r
		})
	}
	m.finish(cell, generation)
	m.mu.Unlock()

	m.invalidator.Invalidate(writeCtx, key)

	if err != nil {
		m.logger.ErrorContext(ctx, "Cell edit failed", "view", key.View, "record", edit.RecordID, "column", column.ID, "rolledBack", applied && latest, "error", err)
		return errdef.NewRetryable("failed to save %s of record %d: %w", column.ID, edit.RecordID, err)
	}
	return nil
}

// lockWrite waits for the writes of key made before this call. The returned func releases it.
func (m *Mutator) lockWrite(key writeKey) func() {
	m.mu.Lock()
	lock, ok := m.writes[key]
	if !ok {
		lock = &writeLock{}
		m.writes[key] = lock
	}
	lock.refs++
	m.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		m.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(m.writes, key)
		}
		m.mu.Unlock()
	}
}

// latestAttendance sets field of the cached attendance of the pair to value. fallback is used when
// the row is no longer cached. Must be called with mu held.
func (m *Mutator) latestAttendance(key CacheKey, recordID uint, path FieldPath, value any, fallback Attendance) Attendance {
	p, ok := m.cache.Get(key)
	if !ok {
		return fallback
	}
	i := slices.IndexFunc(p.Rows, func(r Row) bool { return r.ID == recordID })
	if i < 0 {
		return fallback
	}
	attendance, err := p.Rows[i].EventAttendance[path.EventID].With(path.Field, value)
	if err != nil {
		return fallback
	}
	return attendance.Normalized()
}

// restore puts back the previous value of field. Unchecking attendance clears the shuttles, so a
// failed attending edit restores the whole fact.
func restore(current, previous Attendance, field string) Attendance {
	if field == FieldAttending {
		return previous
	}
	v, _ := previous.Field(field)
	restored, err := current.With(field, v)
	if err != nil {
		return previous
	}
	return restored
}

// finish forgets the generation of a cell once its latest edit completed. Must be called with mu held.
func (m *Mutator) finish(cell cellKey, generation uint64) {
	if m.generations[cell] == generation {
		delete(m.generations, cell)
	}
}

// coerce checks a client supplied value against the column type. Dates arrive as strings and are
// parsed.
func coerce(column ColumnDescriptor, value any) (any, error) {
	if value == nil {
		if !column.Nullable {
			return nil, errdef.NewBadRequest("column %s can't be empty", column.ID)
		}
		return nil, nil
	}

	switch column.ValueType {
	case TypeBoolean:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case TypeNumber:
		if isNumber(value) {
			f, _ := toFloat(value)
			return f, nil
		}
	case TypeString, TypeEnum:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case TypeDate:
		if s, ok := value.(string); ok {
			t, err := time.Parse(time.DateOnly, s)
			if err != nil {
				return nil, errdef.NewBadRequest("column %s expects a date: %v", column.ID, err)
			}
			return t, nil
		}
	case TypeDateTime:
		if s, ok := value.(string); ok {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, errdef.NewBadRequest("column %s expects a timestamp: %v", column.ID, err)
			}
			return t, nil
		}
	}
	return nil, errdef.NewBadRequest("column %s expects a %s value, got %T", column.ID, column.ValueType, value)
}
