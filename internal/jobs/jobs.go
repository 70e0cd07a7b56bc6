// Package jobs implements the async job sinks: write-only queues for
// notifications and webhooks, plus a reminder scheduler supporting
// delayed, dedup-keyed jobs. Ready jobs fan out over NATS publish; the
// delay queue itself is a Redis sorted set keyed by due time.
package jobs

import "time"

// AddOptions mirrors an add(name, payload, opts?) contract.
type AddOptions struct {
	// Delay defers visibility of the job by this duration. Zero means
	// dispatch immediately.
	Delay time.Duration
	// JobID, when set on a delayed job, makes Add idempotent: a second
	// Add with the same JobID replaces rather than duplicates the pending
	// job. Immediate jobs (Delay zero) ignore it.
	JobID string
	// Attempts is the worker's retry budget; defaults to 3.
	Attempts int
	// BackoffBase is the worker's exponential backoff base; defaults to
	// 1 second. The core never retries itself — this is metadata for
	// the external worker that consumes the job.
	BackoffBase time.Duration
}

// DefaultOptions fills in the standard retry budget and backoff base.
func DefaultOptions() AddOptions {
	return AddOptions{Attempts: 3, BackoffBase: time.Second}
}

func (o AddOptions) withDefaults() AddOptions {
	if o.Attempts == 0 {
		o.Attempts = 3
	}
	if o.BackoffBase == 0 {
		o.BackoffBase = time.Second
	}
	return o
}

// Queue is the write-only interface shared by the notification and
// webhook sinks. Workers are external; the core never awaits job
// completion.
type Queue interface {
	Add(name string, payload any, opts AddOptions) error
}

// ReminderScheduler additionally supports removing a previously
// scheduled delayed job by its stable id, a best-effort call a
// cancellation makes to clean up reminders that haven't fired yet.
type ReminderScheduler interface {
	Queue
	Remove(jobID string) error
}

// Job names the core enqueues. Email verification, password reset, and
// member-invite notifications belong to the auth service and are out
// of this module's scope; only the booking-lifecycle variants below
// are realized here.
const (
	JobBookingCreated   = "BOOKING_CREATED"
	JobBookingConfirmed = "BOOKING_CONFIRMED"
	JobBookingCancelled = "BOOKING_CANCELLED"
	JobReminder         = "REMINDER"
)

// Webhook event names.
const (
	WebhookBookingCreated   = "booking.created"
	WebhookBookingCancelled = "booking.cancelled"
)

// ReminderOffsets are the three delayed reminders scheduled on booking
// create.
var ReminderOffsets = []struct {
	Label string
	Delay time.Duration
}{
	{"24h", 24 * time.Hour},
	{"1h", time.Hour},
	{"15m", 15 * time.Minute},
}

// ReminderJobID builds the stable dedupe key for one booking/offset
// pair.
func ReminderJobID(bookingID, offsetLabel string) string {
	return "reminder:" + bookingID + ":" + offsetLabel
}

// NotificationPayload carries the fields a notification job needs to
// address recipients and render a message.
type NotificationPayload struct {
	BookingID      string   `json:"bookingId"`
	BookingUID     string   `json:"bookingUid"`
	RecipientEmail string   `json:"recipientEmail"`
	HostID         string   `json:"hostId"`
	AttendeeEmails []string `json:"attendeeEmails"`
}

// WebhookPayload is the wire shape delivered to registered webhook
// endpoints for a booking lifecycle event.
type WebhookPayload struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	UID            string    `json:"uid"`
	Status         string    `json:"status"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	Host           string    `json:"host"`
	Attendees      []string  `json:"attendees,omitempty"`
	EventType      *string   `json:"eventType,omitempty"`
	MeetingURL     *string   `json:"meetingUrl,omitempty"`
	CancelReason   *string   `json:"cancelReason,omitempty"`
	CancelledBy    *string   `json:"cancelledBy,omitempty"`
	DeliveryID     string    `json:"deliveryId"`
}

// ReminderPayload identifies the booking and offset a reminder fires for.
type ReminderPayload struct {
	BookingID   string `json:"bookingId"`
	OffsetLabel string `json:"offsetLabel"`
}
