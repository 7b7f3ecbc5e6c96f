// Package recordstore is a generic table/row client over gorm. Rows are plain maps so views can be
// defined without a Go type per table.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/nuptial-ops/wedding-manager/internal/errdef"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Query selects rows of Table whose columns equal every value in Equals.
type Query struct {
	Table   string
	Equals  map[string]any
	OrderBy []Order
	Limit   int
}

type Order struct {
	Column string
	Desc   bool
}

// New returns a store that only touches the given tables.
func New(db *gorm.DB, tables ...string) *Store {
	allowed := make(map[string]struct{}, len(tables))
	for _, table := range tables {
		allowed[table] = struct{}{}
	}
	return &Store{db: db, tables: allowed}
}

type Store struct {
	db     *gorm.DB
	tables map[string]struct{}
}

func (s *Store) Query(ctx context.Context, q Query) ([]map[string]any, error) {
	if err := s.check(q.Table, slices.Collect(maps.Keys(q.Equals))...); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Table(q.Table)
	if len(q.Equals) > 0 {
		tx = tx.Where(q.Equals)
	}
	for _, order := range q.OrderBy {
		if !identifier.MatchString(order.Column) {
			return nil, fmt.Errorf("invalid column name %q", order.Column)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: order.Column}, Desc: order.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, errdef.NewUnavailable("failed to query %s: %v", q.Table, err)
	}
	return rows, nil
}

func (s *Store) Insert(ctx context.Context, table string, row map[string]any) error {
	if err := s.check(table, slices.Collect(maps.Keys(row))...); err != nil {
		return err
	}

	// only use context for values when writing
	ctx = context.WithoutCancel(ctx)
	err := s.db.WithContext(ctx).Table(table).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("row already exists in %s", table)
	}
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %v", table, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, table string, id uint, patch map[string]any) error {
	if err := s.check(table, slices.Collect(maps.Keys(patch))...); err != nil {
		return err
	}
	if len(patch) == 0 {
		return errdef.NewBadRequest("nothing to update in %s %d", table, id)
	}

	ctx = context.WithoutCancel(ctx)
	result := s.db.WithContext(ctx).Table(table).Where("id = ?", id).Updates(patch)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s %d: %v", table, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errdef.NewNotFound("%s %d not found", table, id)
	}
	return nil
}

// Upsert inserts rows, overwriting every non key column of rows whose conflictKeys already exist.
// All rows must carry the same columns. The rows are written in one statement.
func (s *Store) Upsert(ctx context.Context, table string, rows []map[string]any, conflictKeys []string) error {
	if len(rows) == 0 {
		return nil
	}
	columns := slices.Sorted(maps.Keys(rows[0]))
	if err := s.check(table, append(columns, conflictKeys...)...); err != nil {
		return err
	}
	for _, row := range rows[1:] {
		if !slices.Equal(columns, slices.Sorted(maps.Keys(row))) {
			return fmt.Errorf("upsert into %s: rows have different columns", table)
		}
	}
	for _, key := range conflictKeys {
		if !slices.Contains(columns, key) {
			return fmt.Errorf("upsert into %s: rows are missing conflict key %q", table, key)
		}
	}

	keys := make([]clause.Column, len(conflictKeys))
	for i, key := range conflictKeys {
		keys[i] = clause.Column{Name: key}
	}
	updates := slices.DeleteFunc(slices.Clone(columns), func(c string) bool { return slices.Contains(conflictKeys, c) })
	onConflict := clause.OnConflict{Columns: keys, DoNothing: len(updates) == 0}
	if len(updates) > 0 {
		onConflict.DoUpdates = clause.AssignmentColumns(updates)
	}

	ctx = context.WithoutCancel(ctx)
	err := s.db.WithContext(ctx).Table(table).Clauses(onConflict).Create(rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %d rows into %s: %v", len(rows), table, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, table string, id uint) error {
	if err := s.check(table); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	result := s.db.WithContext(ctx).Table(table).Where("id = ?", id).Delete(map[string]any{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s %d: %v", table, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errdef.NewNotFound("%s %d not found", table, id)
	}
	return nil
}

func (s *Store) check(table string, columns ...string) error {
	if _, ok := s.tables[table]; !ok {
		return fmt.Errorf("table %q is not managed by this store", table)
	}
	for _, column := range columns {
		if !identifier.MatchString(column) {
			return errdef.NewBadRequest("invalid column name %q", column)
		}
	}
	return nil
}
