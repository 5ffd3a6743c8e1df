//-------------------------------------------------------------------------
//
// salespipe - cafe sales data pipeline
//
// Copyright (c) 2025 - 2026, the salespipe authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for salespipe.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for salespipe.
type Config struct {
	// MySQLDSN is the MySQL connection string, e.g.
	// "user:pass@tcp(localhost:3306)/cafe_sales?parseTime=true".
	MySQLDSN string `mapstructure:"mysql_dsn"`

	// MongoURI is the MongoDB connection string.
	MongoURI string `mapstructure:"mongo_uri"`

	// MongoDatabase is the MongoDB database holding the target collections.
	MongoDatabase string `mapstructure:"mongo_database"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Ingest holds configuration for the ingest subcommand.
	Ingest IngestConfig `mapstructure:"ingest"`

	// Replicate holds configuration for the replicate subcommand.
	Replicate ReplicateConfig `mapstructure:"replicate"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`
}

// IngestConfig holds configuration for CSV ingestion.
type IngestConfig struct {
	// File is the default CSV file ingested when no positional
	// argument is given.
	File string `mapstructure:"file"`
}

// ReplicateConfig holds configuration for MySQL to MongoDB replication.
type ReplicateConfig struct {
	// BatchSize is the number of rows moved per read-transform-write cycle.
	BatchSize int `mapstructure:"batch_size"`
}

// SeedConfig holds configuration for synthetic data generation.
type SeedConfig struct {
	// Rows is the number of CSV rows to generate.
	Rows int `mapstructure:"rows"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		MongoDatabase: "cafe_sales",
		LogLevel:      "info",
		Ingest: IngestConfig{
			File: "cleaned_cafe_sales.csv",
		},
		Replicate: ReplicateConfig{
			BatchSize: 1000,
		},
		Seed: SeedConfig{
			Rows: 10000,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./salespipe.yaml
// 3. ~/.config/salespipe/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("salespipe")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "salespipe"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// ValidateIngest checks configuration required for the ingest command.
func (c *Config) ValidateIngest() error {
	if c.MySQLDSN == "" {
		return fmt.Errorf("mysql_dsn is required")
	}
	return nil
}

// ValidateReplicate checks configuration required for the replicate command.
func (c *Config) ValidateReplicate() error {
	if c.MySQLDSN == "" {
		return fmt.Errorf("mysql_dsn is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("mongo_uri is required")
	}
	if c.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if c.Replicate.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if c.Seed.Rows < 1 {
		return fmt.Errorf("rows must be at least 1")
	}
	return nil
}
