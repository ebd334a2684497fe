package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations creates the indexes the listing queries rely on
func RunMigrations(db *gorm.DB) error {
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func createIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_query_logs_time ON query_logs(query_time)`,
		`CREATE INDEX IF NOT EXISTS idx_query_logs_case ON query_logs(case_type, case_number, case_year)`,
		`CREATE INDEX IF NOT EXISTS idx_watches_active ON watches(active)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_watch ON notifications(watch_id, notified_at)`,
		`CREATE INDEX IF NOT EXISTS idx_judgments_pending ON judgments(downloaded)`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
