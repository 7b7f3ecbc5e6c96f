// Package guest loads the guest roster: guests joined with their attendance of every event.
package guest

import (
	"context"

	"github.com/nuptial-ops/wedding-manager/internal/errdef"
	"github.com/nuptial-ops/wedding-manager/pkg/model"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

func (r repository) findGuests(ctx context.Context, weddingID uint) ([]model.Guest, error) {
	var guests []model.Guest
	err := r.db.
		WithContext(ctx).
		Where("wedding_id = ?", weddingID).
		Order("name").
		Order("id").
		Find(&guests).Error
	if err != nil {
		return nil, errdef.NewUnavailable("failed to find guests of wedding %d: %v", weddingID, err)
	}
	return guests, nil
}

func (r repository) findEvents(ctx context.Context, weddingID uint) ([]model.Event, error) {
	var events []model.Event
	err := r.db.
		WithContext(ctx).
		Where("wedding_id = ?", weddingID).
		Order("sort_order").
		Order("id").
		Find(&events).Error
	if err != nil {
		return nil, errdef.NewUnavailable("failed to find events of wedding %d: %v", weddingID, err)
	}
	return events, nil
}

func (r repository) findAttendance(ctx context.Context, weddingID uint) ([]model.GuestEventAttendance, error) {
	var attendance []model.GuestEventAttendance
	err := r.db.
		WithContext(ctx).
		Joins("JOIN guests ON guests.id = guest_event_attendances.guest_id").
		Where("guests.wedding_id = ?", weddingID).
		Find(&attendance).Error
	if err != nil {
		return nil, errdef.NewUnavailable("failed to find attendance of wedding %d: %v", weddingID, err)
	}
	return attendance, nil
}
