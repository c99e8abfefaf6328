package database

import (
	"fmt"

	"sparkmatch/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Uniqueness violations surface as gorm.ErrDuplicatedKey so the
		// service layer can distinguish duplicates from other failures.
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(databaseURL), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logrus.Info("Database connected and migrated successfully")
	return db, nil
}

// Migrate creates or updates the schema for every model. It is also used by
// the test helpers against an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.UserPhoto{},
		&models.Interaction{},
		&models.ViewHistory{},
		&models.Match{},
		&models.DateInvitation{},
		&models.ContactExchange{},
	)
}
