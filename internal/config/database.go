package config

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/HuNTer8272/surplus2share-project/internal/logger"
	"github.com/HuNTer8272/surplus2share-project/internal/models"
)

// pendingRequestIndex enforces at most one PENDING request per receiver and
// donation. Both Postgres and SQLite support partial indexes.
const pendingRequestIndex = `CREATE UNIQUE INDEX IF NOT EXISTS uniq_pending_request
	ON donation_requests (donation_id, receiver_id)
	WHERE status = 'PENDING'`

// DSN builds the Postgres connection string, preferring DATABASE_URL.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimezone,
	)
}

// OpenDatabase connects to Postgres and applies migrations.
func OpenDatabase(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Gorm(200 * time.Millisecond),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table and the pending-request index.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	if err := db.Exec(pendingRequestIndex).Error; err != nil {
		return fmt.Errorf("creating pending request index: %w", err)
	}
	return nil
}
