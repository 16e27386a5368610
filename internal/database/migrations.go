package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for lifecycle cascades, instance lookups and analytics
		{"tasks", "idx_tasks_user_status", "user_id, status"},
		{"tasks", "idx_tasks_parent_status", "parent_task_id, status"},
		{"tasks", "idx_tasks_parent_date", "parent_task_id, task_date"},
		{"tasks", "idx_tasks_updated_at", "updated_at"},

		// Achievement evaluation
		{"achievements", "idx_achievements_requirement", "requirement_type"},
		{"user_achievements", "idx_user_achievements_user", "user_id"},

		// Template lookup for daily generation
		{"subtask_templates", "idx_subtask_templates_parent", "parent_task_id"},
	}

	for _, idx := range indexes {
		exists, err := indexExists(db, idx.table, idx.name)
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}
		if exists {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

func indexExists(db *gorm.DB, table, name string) (bool, error) {
	var count int64

	switch db.Dialector.Name() {
	case "postgres":
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, table, name).Scan(&count).Error
		return count > 0, err
	case "mysql":
		err := db.Raw(`
			SELECT COUNT(*)
			FROM information_schema.statistics
			WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?
		`, table, name).Scan(&count).Error
		return count > 0, err
	default:
		// sqlite in tests: AutoMigrate's tag-declared indexes are enough.
		return true, nil
	}
}
