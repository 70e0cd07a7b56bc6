package storage

import (
	"context"

	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/models"
)

// CreateAuditLog appends an audit entry. BookingAuditLog is
// intentionally not tenant-scoped directly; it is scoped transitively
// via its parent booking.
func (s *Storage) CreateAuditLog(ctx context.Context, entry *models.BookingAuditLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return coreerr.WrapFatal(err, "create audit log entry failed")
	}
	return nil
}

// ListAuditLogForBooking returns the append-only history of a booking,
// oldest first.
func (s *Storage) ListAuditLogForBooking(ctx context.Context, bookingID string) ([]models.BookingAuditLog, error) {
	var entries []models.BookingAuditLog
	err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, coreerr.WrapFatal(err, "audit log lookup failed for booking %s", bookingID)
	}
	return entries, nil
}
