//-------------------------------------------------------------------------
//
// salespipe - cafe sales data pipeline
//
// Copyright (c) 2025 - 2026, the salespipe authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for salespipe.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/cafeops/salespipe/internal/config"
	"github.com/cafeops/salespipe/internal/logging"
	"github.com/cafeops/salespipe/pkg/version"
)

var (
	// Global flags
	cfgFile       string
	mysqlDSN      string
	mongoURI      string
	mongoDatabase string
	logLevel      string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "salespipe",
		Short: "Cafe sales data pipeline: CSV to MySQL to MongoDB",
		Long: `salespipe moves cafe sales transactions through three stages:
raw CSV files, a normalized MySQL store, and MongoDB projections in either
a normalized or a denormalized layout.

The ingest command loads a cleaned CSV export into MySQL, creating menu
items and payment methods on first sighting and skipping transactions it
has already seen. The replicate command copies the relational rows into
MongoDB collections, dropping and rebuilding them on every run.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./salespipe.yaml)")
	rootCmd.PersistentFlags().StringVar(&mysqlDSN, "mysql-dsn", "",
		"MySQL connection string (user:pass@tcp(host:port)/db?parseTime=true)")
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", "",
		"MongoDB connection string")
	rootCmd.PersistentFlags().StringVar(&mongoDatabase, "mongo-db", "",
		"MongoDB database name")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(replicateCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(seedCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if mysqlDSN != "" {
		cfg.MySQLDSN = mysqlDSN
	}
	if mongoURI != "" {
		cfg.MongoURI = mongoURI
	}
	if mongoDatabase != "" {
		cfg.MongoDatabase = mongoDatabase
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
