// Package storage is the boundary to the relational database. It owns the
// gorm session, schema migration, and the repositories the services use.
package storage

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yourusername/todo-api/internal/model"
)

// Open connects to PostgreSQL. TranslateError maps driver-specific
// constraint failures onto gorm's sentinel errors so repositories can
// detect duplicates and broken foreign keys without postgres imports.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the tables for all models. Users must be
// migrated before tasks so the foreign key target exists.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
