package storage

import (
	"context"
	"time"

	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/internal/tenant"
)

// CreateBooking inserts a booking record. Callers run this inside
// WithTransaction alongside attendee/resource/audit-log writes.
func (s *Storage) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if err := s.db.WithContext(ctx).Create(booking).Error; err != nil {
		return coreerr.WrapFatal(err, "create booking failed")
	}
	return nil
}

// GetBookingByID retrieves a booking by its internal ID. The lookup key
// isn't itself organization-scoped, so a Guard check backstops the
// interceptor against a cross-tenant read.
func (s *Storage) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Attendees").Preload("Resources").First(&booking, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "booking %s not found", id)
	}
	if err := tenant.Guard(ctx, booking.OrganizationID); err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBookingByUID retrieves a booking by its public short identifier.
// Public cancellation flows call this with no organizationId in
// context, so Guard is a no-op there; authenticated flows still get
// cross-tenant protection.
func (s *Storage) GetBookingByUID(ctx context.Context, uid string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Attendees").First(&booking, "uid = ?", uid).Error; err != nil {
		return nil, wrapNotFound(err, "booking %q not found", uid)
	}
	if err := tenant.Guard(ctx, booking.OrganizationID); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListActiveBookingsForHost returns active bookings for hostID
// overlapping [start, end), using the half-open overlap predicate
// s < e' AND e > s'.
func (s *Storage) ListActiveBookingsForHost(ctx context.Context, hostID string, start, end time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Where("status IN ?", activeStatusStrings()).
		Where("start_time < ? AND end_time > ?", end, start).
		Find(&bookings).Error
	if err != nil {
		return nil, coreerr.WrapFatal(err, "active bookings lookup failed for host %s", hostID)
	}
	return bookings, nil
}

// ListActiveBookingsForResource returns active bookings linked to
// resourceID overlapping [start, end).
func (s *Storage) ListActiveBookingsForResource(ctx context.Context, resourceID string, start, end time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Joins("JOIN booking_resources ON booking_resources.booking_id = bookings.id").
		Where("booking_resources.resource_id = ?", resourceID).
		Where("bookings.status IN ?", activeStatusStrings()).
		Where("bookings.start_time < ? AND bookings.end_time > ?", end, start).
		Find(&bookings).Error
	if err != nil {
		return nil, coreerr.WrapFatal(err, "active bookings lookup failed for resource %s", resourceID)
	}
	return bookings, nil
}

// UpdateBookingStatus transitions a booking's status and stamps the
// fields relevant to that transition. extra carries transition-specific
// columns (cancelledAt, cancelReason, meetingUrl, ...).
func (s *Storage) UpdateBookingStatus(ctx context.Context, bookingID string, status models.BookingStatus, extra map[string]any) error {
	updates := map[string]any{"status": status}
	for k, v := range extra {
		updates[k] = v
	}
	result := s.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", bookingID).Updates(updates)
	if result.Error != nil {
		return coreerr.WrapFatal(result.Error, "update booking status failed for %s", bookingID)
	}
	if result.RowsAffected == 0 {
		return coreerr.NotFoundf("booking %s not found for status update", bookingID)
	}
	return nil
}

// CreateAttendee inserts an attendee for a booking.
func (s *Storage) CreateAttendee(ctx context.Context, attendee *models.Attendee) error {
	if err := s.db.WithContext(ctx).Create(attendee).Error; err != nil {
		return coreerr.WrapFatal(err, "create attendee failed")
	}
	return nil
}

// CreateBookingResources links resources to a booking in a single insert.
func (s *Storage) CreateBookingResources(ctx context.Context, links []models.BookingResource) error {
	if len(links) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&links).Error; err != nil {
		return coreerr.WrapFatal(err, "create booking resources failed")
	}
	return nil
}

// ListBookingsByOrganization paginates bookings for an organization,
// newest start time first. organizationID is redundant with the
// interceptor scope whenever ctx carries one; it is required explicitly
// so background jobs without a request context can still call this.
func (s *Storage) ListBookingsByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]models.Booking, int64, error) {
	var bookings []models.Booking
	var total int64

	if err := s.db.WithContext(ctx).Scopes(tenant.Scope(ctx)).
		Model(&models.Booking{}).Where("organization_id = ?", organizationID).
		Count(&total).Error; err != nil {
		return nil, 0, coreerr.WrapFatal(err, "count bookings failed for org %s", organizationID)
	}
	err := s.db.WithContext(ctx).Scopes(tenant.Scope(ctx)).
		Where("organization_id = ?", organizationID).
		Order("start_time desc").
		Limit(limit).
		Offset(offset).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, coreerr.WrapFatal(err, "list bookings failed for org %s", organizationID)
	}
	return bookings, total, nil
}

// ListConfirmedPastEnd returns CONFIRMED bookings whose EndTime has
// already passed asOf, the candidate set for the background
// CONFIRMED->COMPLETED sweep" transition;
// no operation in the core triggers it explicitly).
func (s *Storage) ListConfirmedPastEnd(ctx context.Context, asOf time.Time, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("status = ?", models.BookingStatusConfirmed).
		Where("end_time < ?", asOf).
		Order("end_time asc").
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, coreerr.WrapFatal(err, "list confirmed-past-end bookings failed")
	}
	return bookings, nil
}

func activeStatusStrings() []models.BookingStatus {
	return models.ActiveBookingStatuses
}
