package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResponseStatus string

const (
	ResponsePending  ResponseStatus = "PENDING"
	ResponseAccepted ResponseStatus = "ACCEPTED"
	ResponseDeclined ResponseStatus = "DECLINED"
)

// Attendee is a participant on a booking. Public cancellation by UID
// matches the supplied email against every attendee on the booking, not
// just the first.
type Attendee struct {
	ID        string  `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID string  `gorm:"index;type:uuid;not null" json:"bookingId"`
	Email     string  `gorm:"type:varchar(255);not null" json:"email"`
	Name      string  `gorm:"type:varchar(255);not null" json:"name"`
	Phone     *string `gorm:"type:varchar(50)" json:"phone,omitempty"`
	UserID    *string `gorm:"type:uuid" json:"userId,omitempty"`

	ResponseStatus ResponseStatus `gorm:"type:varchar(20);default:PENDING" json:"responseStatus"`
	IsHost         bool           `gorm:"default:false" json:"isHost"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Attendee) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

func (Attendee) TableName() string { return "attendees" }

// BookingResource links a booking to a bookable resource (a room, a
// piece of equipment). Exclusivity mirrors the host invariant: at most
// one active booking per resourceId overlap.
type BookingResource struct {
	BookingID  string `gorm:"primaryKey;type:uuid" json:"bookingId"`
	ResourceID string `gorm:"primaryKey;type:uuid;index" json:"resourceId"`
}

func (BookingResource) TableName() string { return "booking_resources" }

// BusyBlock is externally-sourced unavailability for a user (from
// calendar sync), treated as additional busy time alongside bookings
// when computing availability.
type BusyBlock struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"index;type:uuid;not null" json:"userId"`
	StartTime time.Time `gorm:"index;not null" json:"startTime"`
	EndTime   time.Time `gorm:"index;not null" json:"endTime"`

	CreatedAt time.Time `json:"createdAt"`
}

func (b *BusyBlock) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

func (BusyBlock) TableName() string { return "busy_blocks" }
