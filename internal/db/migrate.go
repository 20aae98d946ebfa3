package db

import (
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the catalog.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Category{},
		&model.Subcategory{},
		&model.Group{},
		&model.Sticker{},
		&model.StickerGroupLink{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB creates or updates the catalog tables on conn. Natural keys get
// plain indexes only so that duplicates written by older clients stay visible
// to the audit and can be healed by seeding and cleanup.
func MigrateDB(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run database migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
