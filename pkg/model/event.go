package model

import "time"

// Event is an ordered part of a wedding, e.g. the ceremony or the reception.
// swagger:model
type Event struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	WeddingID        uint       `gorm:"index;not null" json:"weddingId"`
	Name             string     `gorm:"not null" json:"name"`
	SortOrder        int        `gorm:"not null;default:0" json:"sortOrder"`
	Location         *string    `json:"location"`
	StartsAt         *time.Time `json:"startsAt"`
	EndsAt           *time.Time `json:"endsAt"`
	ShuttleAvailable bool       `json:"shuttleAvailable"`
	ShuttleNotes     *string    `json:"shuttleNotes"`
}
