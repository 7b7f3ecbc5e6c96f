// Package lookup manages the code to label tables of display columns.
package lookup

import (
	"context"
	"fmt"

	"github.com/nuptial-ops/wedding-manager/internal/errdef"
	"github.com/nuptial-ops/wedding-manager/pkg/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

func (r repository) findAll(ctx context.Context, weddingID uint) ([]model.LookupOption, error) {
	var options []model.LookupOption
	err := r.db.
		WithContext(ctx).
		Where("wedding_id = ?", weddingID).
		Order("kind").
		Order("sort_order").
		Order("code").
		Find(&options).Error
	if err != nil {
		return nil, errdef.NewUnavailable("failed to find lookup options of wedding %d: %v", weddingID, err)
	}
	return options, nil
}

// save creates the option or replaces the label and sort order of an existing one.
func (r repository) save(ctx context.Context, option *model.LookupOption) error {
	// only use context for values when writing
	ctx = context.WithoutCancel(ctx)
	err := r.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wedding_id"}, {Name: "kind"}, {Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"label", "sort_order"}),
		}).
		Create(option).Error
	if err != nil {
		return fmt.Errorf("failed to save lookup option %s/%s: %v", option.Kind, option.Code, err)
	}
	return nil
}

func (r repository) delete(ctx context.Context, weddingID uint, kind, code string) error {
	ctx = context.WithoutCancel(ctx)
	result := r.db.
		WithContext(ctx).
		Where("wedding_id = ? AND kind = ? AND code = ?", weddingID, kind, code).
		Delete(&model.LookupOption{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete lookup option %s/%s: %v", kind, code, result.Error)
	}
	if result.RowsAffected == 0 {
		return errdef.NewNotFound("lookup option %s/%s not found", kind, code)
	}
	return nil
}
