package booking

import (
	"context"

	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/internal/reqctx"
	"github.com/slotwise/scheduling-core/internal/storage"
)

// Confirm transitions a PENDING booking to CONFIRMED.
// Any other starting status is a Validation error, not a Conflict: the
// caller asked for a transition the state machine doesn't allow, not one
// that raced against another writer.
func (e *Engine) Confirm(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := e.storage.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusPending {
		return nil, coreerr.Validationf("booking %s is %s, not pending", bookingID, b.Status)
	}

	err = e.storage.WithTransaction(ctx, func(tx *storage.Storage) error {
		if err := tx.UpdateBookingStatus(ctx, bookingID, models.BookingStatusConfirmed, nil); err != nil {
			return err
		}
		actorType, actorID := reqctx.Actor(ctx)
		entry := &models.BookingAuditLog{
			BookingID: bookingID,
			Action:    models.AuditActionConfirmed,
			ActorType: models.ActorType(actorType),
			Details:   "booking confirmed",
		}
		if actorID != "" {
			entry.ActorID = &actorID
		}
		return tx.CreateAuditLog(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	b.Status = models.BookingStatusConfirmed

	var attendeeEmail string
	if len(b.Attendees) > 0 {
		attendeeEmail = b.Attendees[0].Email
	}
	e.fanOutConfirmed(b, attendeeEmail)

	return b, nil
}
