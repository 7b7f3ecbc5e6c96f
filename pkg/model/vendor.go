package model

import "time"

// Vendor domain object defining a wedding supplier
// swagger:model
type Vendor struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	WeddingID   uint       `gorm:"index;not null" json:"weddingId"`
	Name        string     `gorm:"not null" json:"name"`
	Category    *string    `json:"category"`
	Status      string     `gorm:"not null;default:'researching'" json:"status"`
	ContactName *string    `json:"contactName"`
	Email       *string    `json:"email"`
	Phone       *string    `json:"phone"`
	Cost        *float64   `json:"cost"`
	DepositPaid bool       `json:"depositPaid"`
	DueDate     *time.Time `json:"dueDate"`
}
