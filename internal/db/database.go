package db

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scavnger-backend/internal/config"
	"scavnger-backend/internal/metrics"
	"scavnger-backend/internal/models"
)

var DB *gorm.DB

// InitDB connects to Postgres and migrates the schema. The DSN is required:
// the application server cannot run without its off-chain store.
func InitDB() {
	var err error

	if config.AppConfig == nil || config.AppConfig.Database.DSN == "" {
		log.Fatalf("Database DSN is required")
	}

	dsn := config.AppConfig.Database.DSN

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
		PrepareStmt:                              true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		metrics.DBConnectionStatus.Set(0)
		log.Fatalf("Failed to connect database: %v", err)
	}

	metrics.DBConnectionStatus.Set(1)
	log.Println("✅ Database connected successfully")

	log.Println("🚀 Starting database schema migration with GORM AutoMigrate...")
	if err := DB.AutoMigrate(
		&models.Challenge{},
		&models.Profile{},
		&models.CheckinRecord{},
		&models.ManualReviewTask{},
	); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("✅ Database schema migrated successfully")
}
