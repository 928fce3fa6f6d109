package models

import (
	"strings"
	"time"
)

// Booking is one email's reservation for an event. EventID is a weak
// reference: events do not track their bookings.
type Booking struct {
	ID        string    `json:"id" db:"id" bson:"_id" readOnly:"true"`
	EventID   string    `validate:"required,uuid" json:"eventId" db:"event_id" bson:"event_id"`
	Email     string    `validate:"required,email" json:"email" db:"email" bson:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"created_at" readOnly:"true"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" bson:"updated_at"`
}

func (Booking) TableName() string {
	return BookingCollection
}

func (b Booking) GetID() string {
	return b.ID
}

func (b Booking) EmptySlice() interface{} {
	return &[]Booking{}
}

func (Booking) validationMessages() map[string]map[string]string {
	return map[string]map[string]string{
		"eventId": {"required": "Event ID is required", "uuid": "Event ID is not a valid identifier"},
		"email":   {"required": "Email is required", "email": "Please provide a valid email address"},
	}
}

// Normalize trims the event reference and trims and lowercases the email.
func (b *Booking) Normalize() {
	b.EventID = strings.TrimSpace(b.EventID)
	b.Email = NormalizeEmail(b.Email)
}
