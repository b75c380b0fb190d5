package database

import (
	"fmt"

	"github.com/olive-green/api-scheduler/internal/database/models"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date: targets, schedules, runs and
// attempts. The lookup indexes that matter for listing/filtering (schedules.status,
// runs.schedule_id, runs.started_at, attempts.run_id) are declared as gorm
// tags on the model fields themselves, so AutoMigrate creates them alongside
// the tables. AutoMigrate is idempotent, so this is safe to call on every
// startup.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Target{},
		&models.Schedule{},
		&models.Run{},
		&models.Attempt{},
	); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}
