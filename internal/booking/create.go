package booking

import (
	"context"

	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/locking"
	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/internal/reqctx"
	"github.com/slotwise/scheduling-core/internal/storage"
	"github.com/slotwise/scheduling-core/internal/tenant"
)

// Create validates and persists a new booking, acquiring a slot lock and
// running the conflict checks inside a serializable transaction before
// fanning out the resulting side effects.
func (e *Engine) Create(ctx context.Context, in CreateInput) (*models.Booking, error) {
	if !in.End.After(in.Start) {
		return nil, coreerr.Validationf("booking interval [%s, %s) is empty or inverted", in.Start, in.End)
	}
	if in.HostID == "" {
		return nil, coreerr.Validationf("hostId is required")
	}

	orgID := in.OrganizationID
	if ctxOrg, ok := tenant.OrganizationID(ctx); ok {
		orgID = ctxOrg
	}
	if orgID == "" {
		return nil, coreerr.Validationf("organizationId is required")
	}

	// Acquire the slot lock. Unavailability or loss of the race both
	// surface as an empty token; Acquire cannot distinguish an explicit
	// held-by-another signal from a store outage, so both fall through
	// to the serializable transaction below rather than failing here.
	key := locking.Key(in.HostID, in.Start, in.End)
	token, _ := e.locker.Acquire(ctx, key)
	defer e.locker.Release(ctx, key, token)

	var created *models.Booking
	var attendeeEmail string

	err := e.storage.WithTransaction(ctx, func(tx *storage.Storage) error {
		// Step 3: re-verify availability against active bookings and
		// resources, using the half-open overlap predicate s < e' AND
		// e > s'.
		conflicting, err := tx.ListActiveBookingsForHost(ctx, in.HostID, in.Start, in.End)
		if err != nil {
			return err
		}
		if len(conflicting) > 0 {
			return coreerr.Conflictf("slot being booked")
		}
		for _, resourceID := range in.ResourceIDs {
			conflicting, err := tx.ListActiveBookingsForResource(ctx, resourceID, in.Start, in.End)
			if err != nil {
				return err
			}
			if len(conflicting) > 0 {
				return coreerr.Conflictf("resource %s unavailable for requested slot", resourceID)
			}
		}

		// Step 4: resolve event-type policy.
		requiresConfirmation := false
		var meetingURL *string
		if in.EventTypeID != nil {
			et, err := tx.GetEventTypeByID(ctx, *in.EventTypeID)
			if err != nil {
				return err
			}
			requiresConfirmation = et.RequiresConfirmation
			if et.LocationType == models.LocationMeet {
				url, err := synthesizeMeetingURL()
				if err != nil {
					return coreerr.WrapFatal(err, "meeting url synthesis failed")
				}
				meetingURL = &url
			}
		}

		status := models.BookingStatusConfirmed
		if requiresConfirmation {
			status = models.BookingStatusPending
		}

		uid, err := newUID()
		if err != nil {
			return coreerr.WrapFatal(err, "uid generation failed")
		}

		source := in.Source
		if source == "" {
			source = models.BookingSource(reqctx.BookingSource(ctx))
		}

		booking := &models.Booking{
			UID:            uid,
			OrganizationID: orgID,
			EventTypeID:    in.EventTypeID,
			HostID:         in.HostID,
			StartTime:      in.Start,
			EndTime:        in.End,
			Timezone:       in.Timezone,
			Status:         status,
			Source:         source,
			Title:          in.Title,
			Description:    in.Description,
			MeetingURL:     meetingURL,
		}

		// Step 5: insert booking, attendee, resource links.
		if err := tx.CreateBooking(ctx, booking); err != nil {
			return err
		}
		attendee := &models.Attendee{
			BookingID: booking.ID,
			Email:     in.Attendee.Email,
			Name:      in.Attendee.Name,
			Phone:     in.Attendee.Phone,
			UserID:    in.Attendee.UserID,
		}
		if err := tx.CreateAttendee(ctx, attendee); err != nil {
			return err
		}
		attendeeEmail = attendee.Email

		var links []models.BookingResource
		for _, resourceID := range in.ResourceIDs {
			links = append(links, models.BookingResource{BookingID: booking.ID, ResourceID: resourceID})
		}
		if err := tx.CreateBookingResources(ctx, links); err != nil {
			return err
		}

		// Step 6: round-robin counters.
		if in.EventTypeID != nil {
			if err := tx.BumpHostCounter(ctx, *in.EventTypeID, in.HostID, e.clock.Now()); err != nil {
				return err
			}
		}

		// Step 7: audit log.
		actorType, actorID := reqctx.Actor(ctx)
		entry := &models.BookingAuditLog{
			BookingID: booking.ID,
			Action:    models.AuditActionCreated,
			ActorType: models.ActorType(actorType),
			Details:   "booking created",
		}
		if actorID != "" {
			entry.ActorID = &actorID
		}
		if err := tx.CreateAuditLog(ctx, entry); err != nil {
			return err
		}

		created = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Step 10: fan-out, best-effort, only on success.
	e.fanOutCreated(created, attendeeEmail)

	return created, nil
}

// synthesizeMeetingURL produces an opaque meeting URL for MEET-location
// event types. The real provider integration lives outside the core
//; this is a
// placeholder token with the shape callers can route on.
func synthesizeMeetingURL() (string, error) {
	uid, err := newUID()
	if err != nil {
		return "", err
	}
	return "https://meet.slotwise.example/" + uid, nil
}
