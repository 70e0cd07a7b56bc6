package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSchedule is a named bundle of weekly/override availability plus the
// default booking constraints applied to slots produced from it. At most
// one schedule per user may have IsDefault=true. Neither a DB constraint
// nor internal/storage enforces this; when several defaults exist,
// storage picks the oldest one.
type UserSchedule struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string `gorm:"index;type:uuid;not null" json:"userId"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	IsDefault bool   `gorm:"default:false" json:"isDefault"`

	BufferBeforeMinutes  int  `gorm:"default:0" json:"bufferBeforeMinutes"`
	BufferAfterMinutes   int  `gorm:"default:0" json:"bufferAfterMinutes"`
	MinimumNoticeHours   int  `gorm:"default:0" json:"minimumNoticeHours"`
	MaxBookingsPerDay    *int `json:"maxBookingsPerDay,omitempty"`
	MaxBookingsPerWeek   *int `json:"maxBookingsPerWeek,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Windows []ScheduleWindow `gorm:"foreignKey:ScheduleID" json:"windows,omitempty"`
}

func (s *UserSchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (UserSchedule) TableName() string { return "user_schedules" }

// ScheduleWindow is a weekday-plus-time range, or a specific-date override
// of one, defining nominal availability before busy time is subtracted.
type ScheduleWindow struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	ScheduleID string `gorm:"index;type:uuid;not null" json:"scheduleId"`

	// DayOfWeek follows time.Weekday numbering: 0=Sunday .. 6=Saturday.
	DayOfWeek int `gorm:"not null" json:"dayOfWeek"`
	// StartTime/EndTime are "HH:MM" in the schedule owner's query timezone.
	StartTime string `gorm:"type:varchar(5);not null" json:"startTime"`
	EndTime   string `gorm:"type:varchar(5);not null" json:"endTime"`

	// SpecificDate, when set, overrides the weekday windows for that one
	// calendar date ("YYYY-MM-DD"). nil means a recurring weekly window.
	SpecificDate *string `gorm:"type:varchar(10)" json:"specificDate,omitempty"`
	IsAvailable  bool    `gorm:"default:true" json:"isAvailable"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (w *ScheduleWindow) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

func (ScheduleWindow) TableName() string { return "schedule_windows" }
