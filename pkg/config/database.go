package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"presalecontrol/internal/models"
)

var DB *gorm.DB

// InitDB initializes the database connection
func InitDB() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database instance:", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db

	if err := MigrateModels(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
}

// MigrateModels runs gorm automigration for all models. Shared with the
// test setup, which runs against sqlite.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.PresaleConfig{},
		&models.InvestorRecord{},
		&models.LedgerAccount{},
		&models.TokenAccount{},
		&models.TokenConfig{},
		&models.FundTransferRecord{},
		&models.PresaleSnapshot{},
	)
}
