package booking

import (
	"github.com/slotwise/scheduling-core/internal/jobs"
	"github.com/slotwise/scheduling-core/internal/models"
)

// fanOutCreated enqueues the BOOKING_CREATED notification, the
// booking.created webhook, and the three delayed reminders. Every
// enqueue failure is logged and swallowed: fan-out is best-effort and
// never fails an otherwise-successful booking.
func (e *Engine) fanOutCreated(b *models.Booking, attendeeEmail string) {
	e.enqueueNotification(jobs.JobBookingCreated, b, attendeeEmail)
	e.enqueueWebhook(jobs.WebhookBookingCreated, webhookPayloadFromBooking(b, nil))
	e.scheduleReminders(b)
}

func (e *Engine) fanOutConfirmed(b *models.Booking, attendeeEmail string) {
	e.enqueueNotification(jobs.JobBookingConfirmed, b, attendeeEmail)
}

func (e *Engine) fanOutCancelled(b *models.Booking, attendeeEmails []string) {
	for _, email := range attendeeEmails {
		e.enqueueNotification(jobs.JobBookingCancelled, b, email)
	}
	reason := cancelDetailReason(b)
	e.enqueueWebhook(jobs.WebhookBookingCancelled, webhookPayloadFromBooking(b, reason))
	e.removeReminders(b.ID)
}

func (e *Engine) enqueueNotification(name string, b *models.Booking, recipient string) {
	payload := jobs.NotificationPayload{
		BookingID:      b.ID,
		BookingUID:     b.UID,
		RecipientEmail: recipient,
		HostID:         b.HostID,
	}
	if err := e.notifications.Add(name, payload, jobs.DefaultOptions()); err != nil {
		e.logger.Warn("notification enqueue failed", "bookingId", b.ID, "job", name, "error", err)
	}
}

func (e *Engine) enqueueWebhook(name string, payload jobs.WebhookPayload) {
	if err := e.webhooks.Add(name, payload, jobs.DefaultOptions()); err != nil {
		e.logger.Warn("webhook enqueue failed", "bookingId", payload.ID, "event", name, "error", err)
	}
}

func (e *Engine) scheduleReminders(b *models.Booking) {
	for _, offset := range jobs.ReminderOffsets {
		payload := jobs.ReminderPayload{BookingID: b.ID, OffsetLabel: offset.Label}
		opts := jobs.DefaultOptions()
		opts.JobID = jobs.ReminderJobID(b.ID, offset.Label)
		opts.Delay = b.StartTime.Sub(e.clock.Now()) - offset.Delay
		if opts.Delay < 0 {
			continue
		}
		if err := e.reminders.Add(jobs.JobReminder, payload, opts); err != nil {
			e.logger.Warn("reminder schedule failed", "bookingId", b.ID, "offset", offset.Label, "error", err)
		}
	}
}

func (e *Engine) removeReminders(bookingID string) {
	for _, offset := range jobs.ReminderOffsets {
		if err := e.reminders.Remove(jobs.ReminderJobID(bookingID, offset.Label)); err != nil {
			e.logger.Warn("reminder removal failed", "bookingId", bookingID, "offset", offset.Label, "error", err)
		}
	}
}

func webhookPayloadFromBooking(b *models.Booking, cancelReason *string) jobs.WebhookPayload {
	var eventTypeID *string
	if b.EventTypeID != nil {
		eventTypeID = b.EventTypeID
	}
	var cancelledBy *string
	if b.CancelledByType != nil {
		v := string(*b.CancelledByType)
		cancelledBy = &v
	}
	return jobs.WebhookPayload{
		ID:             b.ID,
		OrganizationID: b.OrganizationID,
		UID:            b.UID,
		Status:       string(b.Status),
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		Host:         b.HostID,
		EventType:    eventTypeID,
		MeetingURL:   b.MeetingURL,
		CancelReason: cancelReason,
		CancelledBy:  cancelledBy,
		DeliveryID:   b.ID + ":" + string(b.Status),
	}
}

func cancelDetailReason(b *models.Booking) *string {
	return b.CancelReason
}
