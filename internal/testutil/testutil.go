//-------------------------------------------------------------------------
//
// salespipe - cafe sales data pipeline
//
// Copyright (c) 2025 - 2026, the salespipe authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides utilities for integration testing.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	// DefaultMySQLDSN is the default connection string for tests.
	// Override with the SALESPIPE_TEST_MYSQL environment variable.
	DefaultMySQLDSN = "root@tcp(localhost:3306)/salespipe_test?parseTime=true"

	// DefaultMongoURI is the default MongoDB URI for tests.
	// Override with the SALESPIPE_TEST_MONGO environment variable.
	DefaultMongoURI = "mongodb://localhost:27017"

	// TestDBPrefix is the prefix for test Mongo databases.
	TestDBPrefix = "salespipe_test_"
)

// MySQLAvailable checks if MySQL is available for testing.
// Returns the DSN if available, empty string otherwise.
func MySQLAvailable() string {
	dsn := os.Getenv("SALESPIPE_TEST_MYSQL")
	if dsn == "" {
		dsn = DefaultMySQLDSN
	}

	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return ""
	}
	sqlDB, err := db.DB()
	if err != nil {
		return ""
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return ""
	}

	return dsn
}

// SkipIfNoMySQL skips the test if MySQL is not available.
func SkipIfNoMySQL(t *testing.T) string {
	t.Helper()
	dsn := MySQLAvailable()
	if dsn == "" {
		t.Skip("MySQL not available, skipping integration test")
	}
	return dsn
}

// MongoAvailable checks if MongoDB is available for testing.
// Returns the URI if available, empty string otherwise.
func MongoAvailable() string {
	uri := os.Getenv("SALESPIPE_TEST_MONGO")
	if uri == "" {
		uri = DefaultMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return ""
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return ""
	}

	return uri
}

// SkipIfNoMongo skips the test if MongoDB is not available.
func SkipIfNoMongo(t *testing.T) string {
	t.Helper()
	uri := MongoAvailable()
	if uri == "" {
		t.Skip("MongoDB not available, skipping integration test")
	}
	return uri
}

// TestMongoDatabase returns a uniquely named Mongo database and a cleanup
// that drops it.
func TestMongoDatabase(t *testing.T, uri string) *mongo.Database {
	t.Helper()

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		t.Fatalf("Failed to generate random database name: %v", err)
	}
	name := TestDBPrefix + hex.EncodeToString(randomBytes)

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	db := client.Database(name)
	t.Cleanup(func() {
		if err := db.Drop(ctx); err != nil {
			t.Logf("Failed to drop test database %s: %v", name, err)
		}
		client.Disconnect(ctx)
	})

	return db
}

// TestMySQLTables migrates the given models into the test database and
// registers a cleanup that truncates them.
func TestMySQLTables(t *testing.T, dsn string, models ...any) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open MySQL: %v", err)
	}

	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		for _, m := range models {
			stmt := &gorm.Statement{DB: db}
			if err := stmt.Parse(m); err != nil {
				continue
			}
			db.Exec(fmt.Sprintf("DELETE FROM %s", stmt.Schema.Table))
		}
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}
