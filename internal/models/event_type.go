package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentType string

const (
	AssignmentSingle     AssignmentType = "SINGLE"
	AssignmentRoundRobin AssignmentType = "ROUND_ROBIN"
	AssignmentCollective AssignmentType = "COLLECTIVE"
)

type LocationType string

const (
	LocationMeet     LocationType = "MEET"
	LocationPhone    LocationType = "PHONE"
	LocationInPerson LocationType = "IN_PERSON"
	LocationCustom   LocationType = "CUSTOM"
)

// EventType is a bookable offering within an organization. Its own
// constraint fields, when non-nil, override the owning user's schedule
// defaults for bookings of this type.
type EventType struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string         `gorm:"index;type:uuid;not null" json:"organizationId"`
	OwnerID        *string        `gorm:"type:uuid" json:"ownerId,omitempty"`
	Slug           string         `gorm:"type:varchar(255);not null" json:"slug"`
	DurationMinutes int           `gorm:"not null" json:"durationMinutes"`
	AssignmentType AssignmentType `gorm:"type:varchar(20);not null" json:"assignmentType"`
	LocationType   LocationType   `gorm:"type:varchar(20);not null" json:"locationType"`

	RequiresConfirmation bool `gorm:"default:false" json:"requiresConfirmation"`

	BufferBeforeMinutes *int `json:"bufferBeforeMinutes,omitempty"`
	BufferAfterMinutes  *int `json:"bufferAfterMinutes,omitempty"`
	MinimumNoticeHours  *int `json:"minimumNoticeHours,omitempty"`
	MaxBookingsPerDay   *int `json:"maxBookingsPerDay,omitempty"`

	IsActive bool `gorm:"default:true" json:"isActive"`
	IsPublic bool `gorm:"default:true" json:"isPublic"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Hosts []EventTypeHost `gorm:"foreignKey:EventTypeID" json:"hosts,omitempty"`
}

func (e *EventType) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

func (EventType) TableName() string { return "event_types" }

// EventTypeHost links an EventType to a candidate host and carries the
// state that drives round-robin fairness ordering.
type EventTypeHost struct {
	EventTypeID string     `gorm:"primaryKey;type:uuid" json:"eventTypeId"`
	UserID      string     `gorm:"primaryKey;type:uuid" json:"userId"`
	Priority    int        `gorm:"default:0" json:"priority"`
	IsActive    bool       `gorm:"default:true" json:"isActive"`
	BookingCount int       `gorm:"default:0" json:"bookingCount"`
	LastBookedAt *time.Time `json:"lastBookedAt,omitempty"`
}

func (EventTypeHost) TableName() string { return "event_type_hosts" }
