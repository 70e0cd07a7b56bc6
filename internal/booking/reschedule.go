package booking

import (
	"context"

	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/internal/reqctx"
)

// Reschedule creates a replacement booking at the new time and cancels
// the original. The two steps are not atomic: if
// creation fails the original booking is untouched and the error
// surfaces to the caller; if the follow-up cancel fails after creation
// succeeds, Reschedule still returns the new booking and leaves the
// original active rather than wrapping both steps in one
// cross-aggregate transaction.
func (e *Engine) Reschedule(ctx context.Context, in RescheduleInput) (*models.Booking, error) {
	original, err := e.storage.GetBookingByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if !original.IsActive() {
		return nil, coreerr.Validationf("booking %s is %s, not reschedulable", in.BookingID, original.Status)
	}

	var attendee AttendeeInput
	if len(original.Attendees) > 0 {
		a := original.Attendees[0]
		attendee = AttendeeInput{Email: a.Email, Name: a.Name, Phone: a.Phone, UserID: a.UserID}
	}

	var resourceIDs []string
	for _, r := range original.Resources {
		resourceIDs = append(resourceIDs, r.ResourceID)
	}

	created, err := e.Create(ctx, CreateInput{
		OrganizationID: original.OrganizationID,
		EventTypeID:    original.EventTypeID,
		HostID:         original.HostID,
		Start:          in.NewStart,
		End:            in.NewEnd,
		Timezone:       original.Timezone,
		Title:          original.Title,
		Description:    original.Description,
		Attendee:       attendee,
		ResourceIDs:    resourceIDs,
		Source:         original.Source,
	})
	if err != nil {
		return nil, err
	}

	reschedFrom := original.ID
	created.RescheduledFrom = &reschedFrom
	if err := e.storage.DB().WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", created.ID).
		Update("rescheduled_from", reschedFrom).Error; err != nil {
		e.logger.Warn("rescheduled_from backfill failed", "bookingId", created.ID, "error", err)
	}

	if _, err := e.Cancel(ctx, CancelInput{
		BookingID:   original.ID,
		Reason:      in.Reason,
		CancelledBy: models.CancelledBySystem,
	}); err != nil {
		e.logger.Warn("original booking cancel after reschedule failed", "bookingId", original.ID, "error", err)
	}

	actorType, actorID := reqctx.Actor(ctx)
	entry := &models.BookingAuditLog{
		BookingID: created.ID,
		Action:    models.AuditActionRescheduled,
		ActorType: models.ActorType(actorType),
		Details:   "rescheduled from booking " + original.ID,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if err := e.storage.CreateAuditLog(ctx, entry); err != nil {
		e.logger.Warn("reschedule audit log write failed", "bookingId", created.ID, "error", err)
	}

	return created, nil
}
