package model

import (
	"context"
	"time"
)

// Wedding owns every guest, event, vendor and lookup option.
// swagger:model
type Wedding struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Name      string     `json:"name"`
	Date      *time.Time `json:"date"`
}

type weddingCtxKey int

var weddingKey weddingCtxKey

// NewContextWithWedding returns a new [context.Context] that carries the wedding id.
func NewContextWithWedding(ctx context.Context, weddingID uint) context.Context {
	return context.WithValue(ctx, weddingKey, weddingID)
}

// GetWeddingFromContext returns the wedding id stored in ctx, if any.
func GetWeddingFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(weddingKey).(uint)
	return id, ok
}
