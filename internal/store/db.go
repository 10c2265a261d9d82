package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
)

// Open connects to Postgres. SQL statements are logged when debug is set.
func Open(dsn string, debug bool) (*gorm.DB, error) {
	gormConfig := &gorm.Config{}
	if debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{DSN: dsn}), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables. Order matters for foreign keys.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Tournament{},
		&models.Team{},
		&models.Player{},
		&models.Auction{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
