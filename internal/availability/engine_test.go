package availability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/slotwise/scheduling-core/internal/availability"
	"github.com/slotwise/scheduling-core/internal/clock"
	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/internal/storage"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

type EngineTestSuite struct {
	suite.Suite
	db     *gorm.DB
	store  *storage.Storage
	zones  *clock.ZoneLoader
	engine *availability.Engine
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
	s.zones = clock.NewZoneLoader()
}

func (s *EngineTestSuite) TearDownTest() {
	sqlDB, _ := s.db.DB()
	sqlDB.Close()
}

func (s *EngineTestSuite) seedSchedule(userID string, windows []models.ScheduleWindow) {
	sched := models.UserSchedule{UserID: userID, Name: "default", IsDefault: true}
	s.Require().NoError(s.db.Create(&sched).Error)
	for i := range windows {
		windows[i].ScheduleID = sched.ID
		s.Require().NoError(s.db.Create(&windows[i]).Error)
	}
}

func newEngine(s *EngineTestSuite, now time.Time) *availability.Engine {
	return availability.New(s.store, clock.NewFixed(now), s.zones, logger.New("error"))
}

// A Monday 09:00-12:00 window, querying a Monday, with no existing
// bookings, must slice into 30-minute starts on the 15-minute grid.
func (s *EngineTestSuite) TestSingleHostBasicSlicing() {
	s.seedSchedule("host-1", []models.ScheduleWindow{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
	})
	now := mustParse("2024-03-01T00:00:00Z") // a Friday, well before the query window
	e := newEngine(s, now)

	start := mustParse("2024-03-04T00:00:00Z") // Monday
	end := mustParse("2024-03-05T00:00:00Z")

	slots, err := e.GetAvailability(context.Background(), availability.Query{
		UserIDs: []string{"host-1"}, Start: start, End: end,
		DurationMinutes: 30, Timezone: "UTC",
	})
	require.NoError(s.T(), err)
	require.Len(s.T(), slots, 11, "a 3-hour window sliced on a 15-min grid with a 30-min duration yields 11 overlapping starts")
	s.Equal(mustParse("2024-03-04T09:00:00Z"), slots[0].Start)
	s.Equal([]string{"host-1"}, slots[0].HostIDs)
	s.Equal(mustParse("2024-03-04T11:30:00Z"), slots[len(slots)-1].Start)
}

func (s *EngineTestSuite) TestExistingBookingRemovesOverlappingSlots() {
	s.seedSchedule("host-1", []models.ScheduleWindow{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00", IsAvailable: true},
	})
	booking := models.Booking{
		UID: "abcdef012345", OrganizationID: "org-1", HostID: "host-1",
		StartTime: mustParse("2024-03-04T09:30:00Z"), EndTime: mustParse("2024-03-04T10:00:00Z"),
		Timezone: "UTC", Status: models.BookingStatusConfirmed, Source: models.BookingSourceAPI,
	}
	s.Require().NoError(s.db.Create(&booking).Error)

	now := mustParse("2024-03-01T00:00:00Z")
	e := newEngine(s, now)

	slots, err := e.GetAvailability(context.Background(), availability.Query{
		UserIDs: []string{"host-1"},
		Start:   mustParse("2024-03-04T00:00:00Z"), End: mustParse("2024-03-05T00:00:00Z"),
		DurationMinutes: 30, Timezone: "UTC",
	})
	require.NoError(s.T(), err)
	for _, slot := range slots {
		s.False(slot.Start.Before(mustParse("2024-03-04T10:00:00Z")) && slot.Start.Add(30*time.Minute).After(mustParse("2024-03-04T09:30:00Z")),
			"slot %v overlaps the existing booking", slot.Start)
	}
}

func (s *EngineTestSuite) TestMinimumNoticeExcludesNearSlots() {
	s.seedSchedule("host-1", []models.ScheduleWindow{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
	})
	// "now" sits inside the window itself, one hour of notice required.
	now := mustParse("2024-03-04T09:00:00Z")
	e := newEngine(s, now)

	etID := "et-1"
	et := models.EventType{
		ID: etID, OrganizationID: "org-1", Slug: "consult", DurationMinutes: 30,
		AssignmentType: models.AssignmentSingle, LocationType: models.LocationMeet,
	}
	hours := 1
	et.MinimumNoticeHours = &hours
	s.Require().NoError(s.db.Create(&et).Error)

	slots, err := e.GetAvailability(context.Background(), availability.Query{
		EventTypeID: &etID, UserIDs: []string{"host-1"},
		Start: mustParse("2024-03-04T00:00:00Z"), End: mustParse("2024-03-05T00:00:00Z"),
		DurationMinutes: 30, Timezone: "UTC",
	})
	require.NoError(s.T(), err)
	for _, slot := range slots {
		s.False(slot.Start.Before(mustParse("2024-03-04T10:00:00Z")), "slot %v starts before the one-hour notice floor", slot.Start)
	}
}

func (s *EngineTestSuite) TestCollectiveAssignmentRequiresAllHostsFree() {
	s.seedSchedule("host-a", []models.ScheduleWindow{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsAvailable: true},
	})
	s.seedSchedule("host-b", []models.ScheduleWindow{
		{DayOfWeek: 1, StartTime: "09:30", EndTime: "10:30", IsAvailable: true},
	})
	etID := "et-collective"
	et := models.EventType{
		ID: etID, OrganizationID: "org-1", Slug: "panel", DurationMinutes: 30,
		AssignmentType: models.AssignmentCollective, LocationType: models.LocationMeet,
	}
	s.Require().NoError(s.db.Create(&et).Error)

	now := mustParse("2024-03-01T00:00:00Z")
	e := newEngine(s, now)

	slots, err := e.GetAvailability(context.Background(), availability.Query{
		EventTypeID: &etID, UserIDs: []string{"host-a", "host-b"},
		Start: mustParse("2024-03-04T00:00:00Z"), End: mustParse("2024-03-05T00:00:00Z"),
		DurationMinutes: 30, Timezone: "UTC",
	})
	require.NoError(s.T(), err)
	require.Len(s.T(), slots, 1, "only the 09:30 start is within both hosts' windows")
	s.Equal(mustParse("2024-03-04T09:30:00Z"), slots[0].Start)
	s.ElementsMatch([]string{"host-a", "host-b"}, slots[0].HostIDs)
}

func (s *EngineTestSuite) TestRoundRobinPicksLeastLoadedHost() {
	s.seedSchedule("host-a", []models.ScheduleWindow{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsAvailable: true},
	})
	s.seedSchedule("host-b", []models.ScheduleWindow{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsAvailable: true},
	})
	etID := "et-rr"
	et := models.EventType{
		ID: etID, OrganizationID: "org-1", Slug: "support", DurationMinutes: 30,
		AssignmentType: models.AssignmentRoundRobin, LocationType: models.LocationMeet,
	}
	s.Require().NoError(s.db.Create(&et).Error)
	s.Require().NoError(s.db.Create(&models.EventTypeHost{EventTypeID: etID, UserID: "host-a", BookingCount: 5, IsActive: true}).Error)
	s.Require().NoError(s.db.Create(&models.EventTypeHost{EventTypeID: etID, UserID: "host-b", BookingCount: 1, IsActive: true}).Error)

	now := mustParse("2024-03-01T00:00:00Z")
	e := newEngine(s, now)

	slots, err := e.GetAvailability(context.Background(), availability.Query{
		EventTypeID: &etID, UserIDs: []string{"host-a", "host-b"},
		Start: mustParse("2024-03-04T00:00:00Z"), End: mustParse("2024-03-05T00:00:00Z"),
		DurationMinutes: 30, Timezone: "UTC",
	})
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), slots)
	s.Equal([]string{"host-b"}, slots[0].HostIDs, "the less-loaded host is offered first")
}

func (s *EngineTestSuite) TestEmptyQueryRangeIsValidationError() {
	e := newEngine(s, mustParse("2024-03-01T00:00:00Z"))
	_, err := e.GetAvailability(context.Background(), availability.Query{
		UserIDs: []string{"host-1"},
		Start:   mustParse("2024-03-04T10:00:00Z"), End: mustParse("2024-03-04T09:00:00Z"),
		DurationMinutes: 30, Timezone: "UTC",
	})
	s.Error(err)
}

func (s *EngineTestSuite) TestNoHostsReturnsEmptySlotsWithoutError() {
	e := newEngine(s, mustParse("2024-03-01T00:00:00Z"))
	slots, err := e.GetAvailability(context.Background(), availability.Query{
		UserIDs: nil,
		Start:   mustParse("2024-03-04T00:00:00Z"), End: mustParse("2024-03-05T00:00:00Z"),
		DurationMinutes: 30, Timezone: "UTC",
	})
	s.NoError(err)
	s.Empty(slots)
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func mustParse(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
