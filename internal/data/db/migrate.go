package db

import (
	"fmt"

	types "github.com/yungbote/notebook-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Notebook{},
		&types.Page{},
		&types.PageVersion{},
	)
}

// EnsurePageIndexes adds the composite sibling-order index used by tree loads.
func EnsurePageIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_page_notebook_parent_position
		ON page (notebook_id, parent_page_id, position);
	`).Error; err != nil {
		return fmt.Errorf("create idx_page_notebook_parent_position: %w", err)
	}
	return nil
}
