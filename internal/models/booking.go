package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatus defines the possible statuses of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusNoShow    BookingStatus = "NO_SHOW"
)

// ActiveBookingStatuses are the statuses that count toward the
// no-overlap invariant and the daily booking cap.
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

type BookingSource string

const (
	BookingSourceWeb      BookingSource = "WEB"
	BookingSourceAPI      BookingSource = "API"
	BookingSourceInternal BookingSource = "INTERNAL"
)

type CancelledBy string

const (
	CancelledByHost     CancelledBy = "HOST"
	CancelledByAttendee CancelledBy = "ATTENDEE"
	CancelledBySystem   CancelledBy = "SYSTEM"
)

// Booking is a single scheduled interval for one host. At most one active
// booking may exist per (hostId, [startTime, endTime)) overlap; this
// invariant is enforced transactionally by internal/booking, not by a DB
// constraint (overlap isn't expressible as a simple unique index).
type Booking struct {
	ID             string  `gorm:"type:uuid;primaryKey" json:"id"`
	UID            string  `gorm:"uniqueIndex;type:varchar(12);not null" json:"uid"`
	OrganizationID string  `gorm:"index;type:uuid;not null" json:"organizationId"`
	EventTypeID    *string `gorm:"index;type:uuid" json:"eventTypeId,omitempty"`
	HostID         string  `gorm:"index;type:uuid;not null" json:"hostId"`

	StartTime time.Time     `gorm:"index;not null" json:"startTime"`
	EndTime   time.Time     `gorm:"index;not null" json:"endTime"`
	Timezone  string        `gorm:"type:varchar(100);not null" json:"timezone"`
	Status    BookingStatus `gorm:"type:varchar(20);index;not null" json:"status"`
	Source    BookingSource `gorm:"type:varchar(20);not null" json:"source"`

	Title       *string `gorm:"type:varchar(255)" json:"title,omitempty"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	MeetingURL  *string `gorm:"type:varchar(512)" json:"meetingUrl,omitempty"`

	RescheduledFrom *string `gorm:"type:uuid" json:"rescheduledFrom,omitempty"`

	CancelledAt     *time.Time   `json:"cancelledAt,omitempty"`
	CancelReason    *string      `gorm:"type:text" json:"cancelReason,omitempty"`
	CancelledByType *CancelledBy `gorm:"type:varchar(20)" json:"cancelledBy,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Attendees []Attendee        `gorm:"foreignKey:BookingID" json:"attendees,omitempty"`
	Resources []BookingResource `gorm:"foreignKey:BookingID" json:"resources,omitempty"`
}

// BeforeCreate will set a UUID for the booking ID.
func (booking *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	return
}

// TableName explicitly sets the table name.
func (Booking) TableName() string {
	return "bookings"
}

// IsActive reports whether the booking counts toward the no-overlap
// invariant (status PENDING or CONFIRMED).
func (booking *Booking) IsActive() bool {
	return booking.Status == BookingStatusPending || booking.Status == BookingStatusConfirmed
}
