package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/internal/tenant"
)

// GetEventTypeByID loads an event type, respecting soft-delete: a
// deleted event type is invisible to booking/availability.
// Guarded against cross-tenant reads the same way GetBookingByID is.
func (s *Storage) GetEventTypeByID(ctx context.Context, id string) (*models.EventType, error) {
	var et models.EventType
	if err := s.db.WithContext(ctx).First(&et, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "event type %s not found", id)
	}
	if err := tenant.Guard(ctx, et.OrganizationID); err != nil {
		return nil, err
	}
	return &et, nil
}

// GetEventTypeBySlug loads an event type by its organization-scoped slug.
func (s *Storage) GetEventTypeBySlug(ctx context.Context, organizationID, slug string) (*models.EventType, error) {
	var et models.EventType
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND slug = ?", organizationID, slug).
		First(&et).Error
	if err != nil {
		return nil, wrapNotFound(err, "event type %q not found", slug)
	}
	return &et, nil
}

// ListActiveHosts returns the active EventTypeHost rows for an event
// type, ordered for round-robin fairness selection: least-loaded first,
// then least-recently-booked, then highest priority.
func (s *Storage) ListActiveHosts(ctx context.Context, eventTypeID string) ([]models.EventTypeHost, error) {
	var hosts []models.EventTypeHost
	err := s.db.WithContext(ctx).
		Where("event_type_id = ? AND is_active = ?", eventTypeID, true).
		Order("booking_count ASC, last_booked_at ASC NULLS FIRST, priority DESC").
		Find(&hosts).Error
	if err != nil {
		return nil, wrapNotFound(err, "hosts lookup failed for event type %s", eventTypeID)
	}
	return hosts, nil
}

// BumpHostCounter increments bookingCount and sets lastBookedAt for the
// (eventTypeId, hostId) pair. Must be called
// inside the same transaction as the booking insert.
func (s *Storage) BumpHostCounter(ctx context.Context, eventTypeID, hostID string, now time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.EventTypeHost{}).
		Where("event_type_id = ? AND user_id = ?", eventTypeID, hostID).
		Updates(map[string]any{
			"booking_count":  gorm.Expr("booking_count + 1"),
			"last_booked_at": now,
		})
	if result.Error != nil {
		return wrapNotFound(result.Error, "host counter update failed for %s/%s", eventTypeID, hostID)
	}
	return nil
}
