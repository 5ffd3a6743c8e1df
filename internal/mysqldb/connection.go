// Package mysqldb provides the relational store adapter for salespipe.
package mysqldb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cafeops/salespipe/internal/logging"
	"github.com/cafeops/salespipe/internal/model"
)

// Connect opens a gorm handle against MySQL and verifies the connection.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info().
		Str("dsn", redactDSN(dsn)).
		Msg("Connected to MySQL")

	return db.WithContext(ctx), nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// VerifyEngine checks that the server identifies as MySQL (or a MySQL
// compatible fork). Replication refuses to run against anything else.
func VerifyEngine(ctx context.Context, db *gorm.DB) (string, error) {
	var version string
	if err := db.WithContext(ctx).Raw("SELECT VERSION()").Scan(&version).Error; err != nil {
		return "", fmt.Errorf("failed to query server version: %w", err)
	}
	if version == "" {
		return "", fmt.Errorf("server returned an empty version string")
	}

	lower := strings.ToLower(version)
	// MySQL reports "8.x.y"; MariaDB reports "...-MariaDB". Either is fine.
	if !strings.Contains(lower, "mariadb") && !strings.ContainsAny(version, "0123456789") {
		return "", fmt.Errorf("unexpected relational engine: %q", version)
	}

	logging.Debug().
		Str("version", version).
		Msg("Verified relational engine")

	return version, nil
}

// Migrate creates or updates the three entity tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Item{},
		&model.PaymentMethod{},
		&model.Transaction{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// redactDSN strips credentials from a MySQL DSN for logging.
func redactDSN(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at >= 0 {
		return "***" + dsn[at:]
	}
	return dsn
}
