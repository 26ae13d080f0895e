package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/config"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

// Connect opens the Postgres connection and configures the pool.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if !cfg.App.IsProduction() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate runs schema auto-migration for all models.
func Migrate(db *gorm.DB) error {
	log.Println("running database migrations")
	return db.AutoMigrate(
		&domain.User{},
		&domain.Category{},
		&domain.Resource{},
		&domain.Comment{},
		&domain.CommentImage{},
		&domain.Collection{},
		&domain.Follow{},
		&domain.Notification{},
		&domain.Conversation{},
		&domain.ChatMessage{},
		&domain.RoleChangeRequest{},
		&domain.OperationLog{},
		&domain.AnalyticsEvent{},
	)
}
