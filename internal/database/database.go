package database

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/slotwise/scheduling-core/internal/config"
	"github.com/slotwise/scheduling-core/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect connects to the PostgreSQL database.
func Connect(cfg config.Database) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate runs database migrations for every model the core persists
//.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.UserSchedule{},
		&models.ScheduleWindow{},
		&models.EventType{},
		&models.EventTypeHost{},
		&models.Booking{},
		&models.Attendee{},
		&models.BookingResource{},
		&models.BusyBlock{},
		&models.BookingAuditLog{},
		&models.APIKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run auto-migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes adds the composite indexes the availability and booking
// engines' hot-path queries rely on, beyond what AutoMigrate derives
// from field tags.
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_bookings_host_status_start ON bookings(host_id, status, start_time)",
		"CREATE INDEX IF NOT EXISTS idx_bookings_org_start ON bookings(organization_id, start_time)",
		"CREATE INDEX IF NOT EXISTS idx_busy_blocks_user_start ON busy_blocks(user_id, start_time)",
		"CREATE INDEX IF NOT EXISTS idx_schedule_windows_schedule_day ON schedule_windows(schedule_id, day_of_week)",
		"CREATE INDEX IF NOT EXISTS idx_event_type_hosts_count ON event_type_hosts(event_type_id, booking_count)",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// ConnectRedis connects to Redis.
func ConnectRedis(cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return client, nil
}
