package booking

import (
	"context"
	"strings"

	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/internal/reqctx"
	"github.com/slotwise/scheduling-core/internal/storage"
)

// Cancel moves a booking to CANCELLED. CANCELLED is
// terminal; re-cancelling is a Validation error rather than a silent
// no-op so callers notice a stale client state.
func (e *Engine) Cancel(ctx context.Context, in CancelInput) (*models.Booking, error) {
	b, err := e.storage.GetBookingByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	return e.cancelBooking(ctx, b, in.Reason, in.CancelledBy)
}

// CancelByUID is the public, unauthenticated cancellation path: an
// attendee who knows a booking's UID and the email it was booked under
// can cancel it without holding an organization session. It rejects any
// email that doesn't match one of the booking's attendees, so knowing
// the UID alone is not enough.
func (e *Engine) CancelByUID(ctx context.Context, in CancelByUIDInput) (*models.Booking, error) {
	b, err := e.storage.GetBookingByUID(ctx, in.UID)
	if err != nil {
		return nil, err
	}

	matched := false
	for _, a := range b.Attendees {
		if strings.EqualFold(a.Email, in.Email) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, coreerr.Validationf("email does not match an attendee on booking %s", in.UID)
	}

	return e.cancelBooking(ctx, b, in.Reason, models.CancelledByAttendee)
}

// cancelBooking runs the shared status-update/audit-log transaction and
// post-commit fan-out for both cancellation entry points.
func (e *Engine) cancelBooking(ctx context.Context, b *models.Booking, reason *string, cancelledBy models.CancelledBy) (*models.Booking, error) {
	if b.Status == models.BookingStatusCancelled {
		return nil, coreerr.Validationf("booking %s is already cancelled", b.ID)
	}

	now := e.clock.Now()
	err := e.storage.WithTransaction(ctx, func(tx *storage.Storage) error {
		extra := map[string]any{
			"cancelled_at":      now,
			"cancel_reason":     reason,
			"cancelled_by_type": cancelledBy,
		}
		if err := tx.UpdateBookingStatus(ctx, b.ID, models.BookingStatusCancelled, extra); err != nil {
			return err
		}
		actorType, actorID := reqctx.Actor(ctx)
		entry := &models.BookingAuditLog{
			BookingID: b.ID,
			Action:    models.AuditActionCancelled,
			ActorType: models.ActorType(actorType),
			Details:   "booking cancelled",
		}
		if actorID != "" {
			entry.ActorID = &actorID
		}
		return tx.CreateAuditLog(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	b.Status = models.BookingStatusCancelled
	b.CancelledAt = &now
	b.CancelReason = reason
	b.CancelledByType = &cancelledBy

	var emails []string
	for _, a := range b.Attendees {
		emails = append(emails, a.Email)
	}
	e.fanOutCancelled(b, emails)

	return b, nil
}
