package subscribers_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/slotwise/scheduling-core/internal/models"
	"github.com/slotwise/scheduling-core/internal/subscribers"
	"github.com/slotwise/scheduling-core/pkg/logger"
)

type EventHandlersTestSuite struct {
	suite.Suite
	db       *gorm.DB
	handlers *subscribers.EventHandlers
}

func (s *EventHandlersTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(&models.EventType{}, &models.UserSchedule{}, &models.ScheduleWindow{}))
	s.db = db
	s.handlers = subscribers.New(db, logger.New("error"))
}

func (s *EventHandlersTestSuite) TearDownTest() {
	sqlDB, _ := s.db.DB()
	sqlDB.Close()
}

func TestEventHandlersSuite(t *testing.T) {
	suite.Run(t, new(EventHandlersTestSuite))
}

func (s *EventHandlersTestSuite) TestHandleEventTypeUpsertedCreatesRow() {
	payload := subscribers.EventTypeUpsertedPayload{
		ID:              "et-1",
		OrganizationID:  "org-1",
		Slug:            "intro-call",
		DurationMinutes: 30,
		AssignmentType:  "SINGLE",
		LocationType:    "MEET",
		IsActive:        true,
		IsPublic:        true,
	}
	body, err := json.Marshal(payload)
	s.Require().NoError(err)

	s.Require().NoError(s.handlers.HandleEventTypeUpserted(body))

	var stored models.EventType
	s.Require().NoError(s.db.First(&stored, "id = ?", "et-1").Error)
	s.Equal("intro-call", stored.Slug)
	s.Equal(30, stored.DurationMinutes)
	s.Equal(models.AssignmentSingle, stored.AssignmentType)
}

func (s *EventHandlersTestSuite) TestHandleEventTypeUpsertedUpdatesExistingRow() {
	first := subscribers.EventTypeUpsertedPayload{
		ID: "et-1", OrganizationID: "org-1", Slug: "intro-call",
		DurationMinutes: 30, AssignmentType: "SINGLE", LocationType: "MEET",
		IsActive: true, IsPublic: true,
	}
	body, _ := json.Marshal(first)
	s.Require().NoError(s.handlers.HandleEventTypeUpserted(body))

	second := first
	second.DurationMinutes = 45
	second.Slug = "intro-call-extended"
	body2, _ := json.Marshal(second)
	s.Require().NoError(s.handlers.HandleEventTypeUpserted(body2))

	var all []models.EventType
	s.Require().NoError(s.db.Find(&all).Error)
	s.Len(all, 1, "upsert must not create a duplicate row")
	s.Equal(45, all[0].DurationMinutes)
	s.Equal("intro-call-extended", all[0].Slug)
}

func (s *EventHandlersTestSuite) TestHandleScheduleUpdatedCreatesScheduleAndWindows() {
	payload := subscribers.ScheduleUpdatedPayload{
		UserID:              "user-1",
		BufferBeforeMinutes: 5,
		BufferAfterMinutes:  10,
		MinimumNoticeHours:  2,
		Windows: []subscribers.ScheduleWindowPayload{
			{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
			{DayOfWeek: 2, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
		},
	}
	body, err := json.Marshal(payload)
	s.Require().NoError(err)

	s.Require().NoError(s.handlers.HandleScheduleUpdated(body))

	var sched models.UserSchedule
	s.Require().NoError(s.db.Where("user_id = ? AND is_default = ?", "user-1", true).First(&sched).Error)
	s.Equal(5, sched.BufferBeforeMinutes)

	var windows []models.ScheduleWindow
	s.Require().NoError(s.db.Where("schedule_id = ?", sched.ID).Find(&windows).Error)
	s.Len(windows, 2)
}

func (s *EventHandlersTestSuite) TestHandleScheduleUpdatedReplacesWindowsOnSecondEvent() {
	first := subscribers.ScheduleUpdatedPayload{
		UserID: "user-1",
		Windows: []subscribers.ScheduleWindowPayload{
			{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
			{DayOfWeek: 2, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
		},
	}
	body1, _ := json.Marshal(first)
	s.Require().NoError(s.handlers.HandleScheduleUpdated(body1))

	second := subscribers.ScheduleUpdatedPayload{
		UserID:             "user-1",
		MinimumNoticeHours: 4,
		Windows: []subscribers.ScheduleWindowPayload{
			{DayOfWeek: 3, StartTime: "10:00", EndTime: "14:00", IsAvailable: true},
		},
	}
	body2, _ := json.Marshal(second)
	s.Require().NoError(s.handlers.HandleScheduleUpdated(body2))

	var sched models.UserSchedule
	s.Require().NoError(s.db.Where("user_id = ? AND is_default = ?", "user-1", true).First(&sched).Error)
	s.Equal(4, sched.MinimumNoticeHours, "the second event must replace the schedule row in place, not create another")

	var all []models.UserSchedule
	s.Require().NoError(s.db.Where("user_id = ?", "user-1").Find(&all).Error)
	s.Len(all, 1)

	var windows []models.ScheduleWindow
	s.Require().NoError(s.db.Where("schedule_id = ?", sched.ID).Find(&windows).Error)
	s.Require().Len(windows, 1, "old windows must be replaced, not appended to")
	s.Equal(3, windows[0].DayOfWeek)
}
