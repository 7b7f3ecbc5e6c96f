package model

import "time"

const (
	GuestTypeAdult  = "adult"
	GuestTypeChild  = "child"
	GuestTypeInfant = "infant"
)

const (
	RSVPPending  = "pending"
	RSVPAccepted = "accepted"
	RSVPDeclined = "declined"
)

// Guest domain object defining a wedding guest
// swagger:model
type Guest struct {
	ID                  uint      `gorm:"primarykey" json:"id"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	WeddingID           uint      `gorm:"index;not null" json:"weddingId"`
	Name                string    `gorm:"not null" json:"name"`
	Email               *string   `json:"email"`
	Phone               *string   `json:"phone"`
	GuestType           string    `gorm:"not null;default:'adult'" json:"guestType"`
	RSVPStatus          string    `gorm:"column:rsvp_status;not null;default:'pending'" json:"rsvpStatus"`
	Side                *string   `json:"side"`
	GroupCode           *string   `json:"groupCode"`
	TableNumber         *int      `json:"tableNumber"`
	PlusOne             bool      `json:"plusOne"`
	PlusOneName         *string   `json:"plusOneName"`
	DietaryRestrictions *string   `json:"dietaryRestrictions"`
	Notes               *string   `json:"notes"`
}

// GuestEventAttendance is the sparse (guest, event) attendance relation. A missing row means the
// guest hasn't decided yet.
// swagger:model
type GuestEventAttendance struct {
	GuestID          uint    `gorm:"primaryKey;autoIncrement:false" json:"guestId"`
	EventID          uint    `gorm:"primaryKey;autoIncrement:false" json:"eventId"`
	Attending        bool    `gorm:"not null;default:false" json:"attending"`
	ShuttleToEvent   *string `json:"shuttleToEvent"`
	ShuttleFromEvent *string `json:"shuttleFromEvent"`
}
