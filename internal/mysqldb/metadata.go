//-------------------------------------------------------------------------
//
// salespipe - cafe sales data pipeline
//
// Copyright (c) 2025 - 2026, the salespipe authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package mysqldb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cafeops/salespipe/internal/logging"
	"github.com/cafeops/salespipe/pkg/version"
)

// metadataEntry is one key/value pair recording how the store was populated.
type metadataEntry struct {
	Key   string `gorm:"primaryKey;size:64;column:meta_key"`
	Value string `gorm:"size:255;column:meta_value"`
}

func (metadataEntry) TableName() string { return "salespipe_metadata" }

// SaveIngestMetadata records which file was ingested and when. Replication
// surfaces this in its logs so a stale relational snapshot is visible.
func SaveIngestMetadata(ctx context.Context, db *gorm.DB, sourceFile string) error {
	if err := db.WithContext(ctx).AutoMigrate(&metadataEntry{}); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	metadata := map[string]string{
		"source_file": sourceFile,
		"version":     version.Short(),
		"ingested_at": time.Now().UTC().Format(time.RFC3339),
	}

	for key, value := range metadata {
		err := db.WithContext(ctx).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&metadataEntry{Key: key, Value: value}).Error
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().
		Str("source_file", sourceFile).
		Msg("Saved ingest metadata")

	return nil
}

// GetMetadataValue retrieves a metadata value. Returns "" without error when
// the key (or the whole table) does not exist.
func GetMetadataValue(ctx context.Context, db *gorm.DB, key string) (string, error) {
	var entry metadataEntry
	err := db.WithContext(ctx).First(&entry, "meta_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		// Missing table means nothing was ever ingested; treat like a
		// missing key.
		return "", nil
	}
	return entry.Value, nil
}
