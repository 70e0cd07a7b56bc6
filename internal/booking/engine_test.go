package booking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/slotwise/scheduling-core/internal/booking"
	"github.com/slotwise/scheduling-core/internal/clock"
	"github.com/slotwise/scheduling-core/internal/coreerr"
	"github.com/slotwise/scheduling-core/internal/jobs"
	"github.com/slotwise/scheduling-core/internal/locking"
	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/internal/storage"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

// fakeQueue records every Add/Remove call in memory, standing in for
// the Redis-backed jobs.RedisQueue so the booking engine's fan-out can
// be asserted on without a live Redis or NATS connection.
type fakeQueue struct {
	mu       sync.Mutex
	added    []fakeJob
	removed  []string
	addErr   error
}

type fakeJob struct {
	name    string
	payload any
	opts    jobs.AddOptions
}

func (q *fakeQueue) Add(name string, payload any, opts jobs.AddOptions) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.addErr != nil {
		return q.addErr
	}
	q.added = append(q.added, fakeJob{name: name, payload: payload, opts: opts})
	return nil
}

func (q *fakeQueue) Remove(jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removed = append(q.removed, jobID)
	return nil
}

func (q *fakeQueue) names() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []string
	for _, j := range q.added {
		out = append(out, j.name)
	}
	return out
}

type EngineTestSuite struct {
	suite.Suite
	db            *gorm.DB
	store         *storage.Storage
	notifications *fakeQueue
	webhooks      *fakeQueue
	reminders     *fakeQueue
	fixedClock    *clock.FixedClock
	engine        *booking.Engine
}

func (s *EngineTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(
		&models.Organization{}, &models.User{}, &models.UserSchedule{},
		&models.ScheduleWindow{}, &models.EventType{}, &models.EventTypeHost{},
		&models.Booking{}, &models.Attendee{}, &models.BookingResource{},
		&models.BusyBlock{}, &models.BookingAuditLog{}, &models.APIKey{},
	))
	s.db = db
	s.store = storage.New(db)
	s.notifications = &fakeQueue{}
	s.webhooks = &fakeQueue{}
	s.reminders = &fakeQueue{}
	s.fixedClock = clock.NewFixed(mustParse("2024-03-01T00:00:00Z"))

	locker := locking.New(nil, logger.New("error"), time.Minute) // nil client: lock store "unavailable", always falls through
	s.engine = booking.New(s.store, locker, s.notifications, s.webhooks, s.reminders, s.fixedClock, logger.New("error"))
}

func (s *EngineTestSuite) TearDownTest() {
	sqlDB, _ := s.db.DB()
	sqlDB.Close()
}

func mustParse(str string) time.Time {
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		panic(err)
	}
	return t
}

func (s *EngineTestSuite) basicInput() booking.CreateInput {
	return booking.CreateInput{
		OrganizationID: "org-1",
		HostID:         "host-1",
		Start:          mustParse("2024-03-04T09:00:00Z"),
		End:            mustParse("2024-03-04T09:30:00Z"),
		Timezone:       "UTC",
		Attendee:       booking.AttendeeInput{Email: "attendee@example.com", Name: "Attendee"},
		Source:         models.BookingSourceAPI,
	}
}

func (s *EngineTestSuite) TestCreateConfirmsImmediatelyWithoutEventType() {
	b, err := s.engine.Create(context.Background(), s.basicInput())
	require.NoError(s.T(), err)
	s.Equal(models.BookingStatusConfirmed, b.Status)
	s.Len(b.UID, 12)
	s.Contains(s.notifications.names(), jobs.JobBookingCreated)
	s.Contains(s.webhooks.names(), jobs.WebhookBookingCreated)
	s.Len(s.reminders.added, 3, "all three reminder offsets are scheduled when the booking starts far enough in the future")
}

func (s *EngineTestSuite) TestCreateRejectsOverlappingBooking() {
	_, err := s.engine.Create(context.Background(), s.basicInput())
	s.Require().NoError(err)

	overlapping := s.basicInput()
	overlapping.Start = mustParse("2024-03-04T09:15:00Z")
	overlapping.End = mustParse("2024-03-04T09:45:00Z")

	_, err = s.engine.Create(context.Background(), overlapping)
	s.Require().Error(err)
	s.Equal(coreerr.Conflict, coreerr.KindOf(err))
}

func (s *EngineTestSuite) TestCreateAllowsBackToBackBookings() {
	_, err := s.engine.Create(context.Background(), s.basicInput())
	s.Require().NoError(err)

	backToBack := s.basicInput()
	backToBack.Start = mustParse("2024-03-04T09:30:00Z")
	backToBack.End = mustParse("2024-03-04T10:00:00Z")

	_, err = s.engine.Create(context.Background(), backToBack)
	s.NoError(err, "touching at the boundary is not an overlap")
}

func (s *EngineTestSuite) TestCreateRequiresConfirmationWhenEventTypeSaysSo() {
	etID := "et-confirm"
	s.Require().NoError(s.db.Create(&models.EventType{
		ID: etID, OrganizationID: "org-1", Slug: "interview", DurationMinutes: 30,
		AssignmentType: models.AssignmentSingle, LocationType: models.LocationPhone,
		RequiresConfirmation: true,
	}).Error)

	in := s.basicInput()
	in.EventTypeID = &etID
	b, err := s.engine.Create(context.Background(), in)
	s.Require().NoError(err)
	s.Equal(models.BookingStatusPending, b.Status)
}

func (s *EngineTestSuite) TestCreateSynthesizesMeetingURLForMeetLocation() {
	etID := "et-meet"
	s.Require().NoError(s.db.Create(&models.EventType{
		ID: etID, OrganizationID: "org-1", Slug: "demo", DurationMinutes: 30,
		AssignmentType: models.AssignmentSingle, LocationType: models.LocationMeet,
	}).Error)

	in := s.basicInput()
	in.EventTypeID = &etID
	b, err := s.engine.Create(context.Background(), in)
	s.Require().NoError(err)
	s.Require().NotNil(b.MeetingURL)
	s.Contains(*b.MeetingURL, "https://meet.slotwise.example/")
}

func (s *EngineTestSuite) TestConfirmTransitionsPendingToConfirmed() {
	etID := "et-confirm2"
	s.Require().NoError(s.db.Create(&models.EventType{
		ID: etID, OrganizationID: "org-1", Slug: "interview2", DurationMinutes: 30,
		AssignmentType: models.AssignmentSingle, LocationType: models.LocationPhone,
		RequiresConfirmation: true,
	}).Error)
	in := s.basicInput()
	in.EventTypeID = &etID
	created, err := s.engine.Create(context.Background(), in)
	s.Require().NoError(err)

	confirmed, err := s.engine.Confirm(context.Background(), created.ID)
	s.Require().NoError(err)
	s.Equal(models.BookingStatusConfirmed, confirmed.Status)
}

func (s *EngineTestSuite) TestConfirmRejectsNonPendingBooking() {
	created, err := s.engine.Create(context.Background(), s.basicInput())
	s.Require().NoError(err) // already CONFIRMED, no event type

	_, err = s.engine.Confirm(context.Background(), created.ID)
	s.Require().Error(err)
	s.Equal(coreerr.Validation, coreerr.KindOf(err))
}

func (s *EngineTestSuite) TestCancelMarksBookingCancelledAndRemovesReminders() {
	created, err := s.engine.Create(context.Background(), s.basicInput())
	s.Require().NoError(err)

	reason := "schedule conflict"
	cancelled, err := s.engine.Cancel(context.Background(), booking.CancelInput{
		BookingID: created.ID, Reason: &reason, CancelledBy: models.CancelledByHost,
	})
	s.Require().NoError(err)
	s.Equal(models.BookingStatusCancelled, cancelled.Status)
	s.Equal(3, len(s.reminders.removed), "all three reminder offsets are removed on cancel")
}

func (s *EngineTestSuite) TestCancelIsNotIdempotent() {
	created, err := s.engine.Create(context.Background(), s.basicInput())
	s.Require().NoError(err)

	reason := "first cancellation"
	_, err = s.engine.Cancel(context.Background(), booking.CancelInput{
		BookingID: created.ID, Reason: &reason, CancelledBy: models.CancelledByHost,
	})
	s.Require().NoError(err)

	_, err = s.engine.Cancel(context.Background(), booking.CancelInput{
		BookingID: created.ID, CancelledBy: models.CancelledByHost,
	})
	s.Require().Error(err)
	s.Equal(coreerr.Validation, coreerr.KindOf(err))
}

func (s *EngineTestSuite) TestRescheduleCreatesNewAndCancelsOriginal() {
	created, err := s.engine.Create(context.Background(), s.basicInput())
	s.Require().NoError(err)

	rescheduled, err := s.engine.Reschedule(context.Background(), booking.RescheduleInput{
		BookingID: created.ID,
		NewStart:  mustParse("2024-03-04T11:00:00Z"),
		NewEnd:    mustParse("2024-03-04T11:30:00Z"),
	})
	s.Require().NoError(err)
	s.NotEqual(created.ID, rescheduled.ID)
	s.Equal(models.BookingStatusConfirmed, rescheduled.Status)

	original, err := s.store.GetBookingByID(context.Background(), created.ID)
	s.Require().NoError(err)
	s.Equal(models.BookingStatusCancelled, original.Status)
}

func (s *EngineTestSuite) TestCompletePastBookingsSweepsConfirmedPastEnd() {
	created, err := s.engine.Create(context.Background(), s.basicInput())
	s.Require().NoError(err)

	s.fixedClock.Set(mustParse("2024-03-04T10:00:00Z")) // well after the booking's 09:30 end

	n, err := s.engine.CompletePastBookings(context.Background())
	s.Require().NoError(err)
	s.Equal(1, n)

	updated, err := s.store.GetBookingByID(context.Background(), created.ID)
	s.Require().NoError(err)
	s.Equal(models.BookingStatusCompleted, updated.Status)
}

func (s *EngineTestSuite) TestCancelByUIDRejectsNonMatchingEmail() {
	in := s.basicInput()
	in.Attendee = booking.AttendeeInput{Email: "alice@example.com", Name: "Alice"}
	created, err := s.engine.Create(context.Background(), in)
	s.Require().NoError(err)

	_, err = s.engine.CancelByUID(context.Background(), booking.CancelByUIDInput{
		UID:   created.UID,
		Email: "bob@example.com",
	})
	s.Require().Error(err)
	s.Equal(coreerr.Validation, coreerr.KindOf(err))
}

func (s *EngineTestSuite) TestCancelByUIDMatchesEmailCaseInsensitively() {
	in := s.basicInput()
	in.Attendee = booking.AttendeeInput{Email: "alice@example.com", Name: "Alice"}
	created, err := s.engine.Create(context.Background(), in)
	s.Require().NoError(err)

	cancelled, err := s.engine.CancelByUID(context.Background(), booking.CancelByUIDInput{
		UID:   created.UID,
		Email: "ALICE@example.com",
	})
	s.Require().NoError(err)
	s.Equal(models.BookingStatusCancelled, cancelled.Status)
	s.Require().NotNil(cancelled.CancelledByType)
	s.Equal(models.CancelledByAttendee, *cancelled.CancelledByType)
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
