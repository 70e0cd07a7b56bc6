package booking

import (
	"time"

	"github.com/slotwise/scheduling-core/internal/models"
)

// AttendeeInput is the attendee half of CreateInput.
type AttendeeInput struct {
	Email  string
	Name   string
	Phone  *string
	UserID *string
}

// CreateInput is the input to Create.
type CreateInput struct {
	OrganizationID string
	EventTypeID    *string
	HostID         string
	Start          time.Time
	End            time.Time
	Timezone       string
	Title          *string
	Description    *string
	Attendee       AttendeeInput
	ResourceIDs    []string
	Source         models.BookingSource
}

// CancelInput is the input to Cancel.
type CancelInput struct {
	BookingID   string
	Reason      *string
	CancelledBy models.CancelledBy
}

// CancelByUIDInput is the input to CancelByUID, the public
// attendee-initiated cancellation path. Email must match one of the
// booking's attendees case-insensitively.
type CancelByUIDInput struct {
	UID    string
	Email  string
	Reason *string
}

// RescheduleInput is the input to Reschedule.
type RescheduleInput struct {
	BookingID string
	NewStart  time.Time
	NewEnd    time.Time
	Reason    *string
}

// ListResult is the output of List: one page of an organization's
// bookings plus the total count for pagination.
type ListResult struct {
	Bookings []models.Booking
	Total    int64
	Limit    int
	Offset   int
}
