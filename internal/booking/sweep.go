package booking

import (
	"context"

	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/internal/storage"
)

// sweepBatchSize bounds how many bookings one CompletePastBookings call
// transitions, so a long scheduler outage doesn't turn the next run into
// an unbounded table scan.
const sweepBatchSize = 200

// CompletePastBookings transitions CONFIRMED bookings whose end time has
// already passed to COMPLETED. It is driven by pkg/scheduler's periodic
// sweep rather than any caller-facing operation, since that transition
// fires purely because time passes.
func (e *Engine) CompletePastBookings(ctx context.Context) (int, error) {
	due, err := e.storage.ListConfirmedPastEnd(ctx, e.clock.Now(), sweepBatchSize)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, b := range due {
		err := e.storage.WithTransaction(ctx, func(tx *storage.Storage) error {
			if err := tx.UpdateBookingStatus(ctx, b.ID, models.BookingStatusCompleted, nil); err != nil {
				return err
			}
			return tx.CreateAuditLog(ctx, &models.BookingAuditLog{
				BookingID: b.ID,
				Action:    models.AuditActionCompleted,
				ActorType: models.ActorTypeSystem,
				Details:   "booking completed by scheduled sweep",
			})
		})
		if err != nil {
			e.logger.Warn("complete past booking failed", "bookingId", b.ID, "error", err)
			continue
		}
		completed++
	}
	return completed, nil
}
