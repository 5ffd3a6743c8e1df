package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/cafeops/salespipe/internal/csvfile"
	"github.com/cafeops/salespipe/internal/ingest"
	"github.com/cafeops/salespipe/internal/logging"
	"github.com/cafeops/salespipe/internal/mysqldb"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Load a cleaned sales CSV into MySQL",
	Long: `Load a cleaned sales CSV into the relational store. Menu items and
payment methods are created on first sighting of a new name; transactions
whose id already exists are skipped; a malformed row is counted as an error
and never aborts the run.

The whole run executes inside one database transaction: on an unexpected
failure nothing is committed.

Example:
  salespipe ingest cleaned_cafe_sales.csv --mysql-dsn "user:pass@tcp(localhost:3306)/cafe_sales?parseTime=true"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateIngest(); err != nil {
		return err
	}

	file := cfg.Ingest.File
	if len(args) == 1 {
		file = args[0]
	}

	src, err := csvfile.Open(file)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx := context.Background()
	db, err := mysqldb.Connect(ctx, cfg.MySQLDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	defer mysqldb.Close(db)

	if err := mysqldb.Migrate(db); err != nil {
		return err
	}

	logging.Info().
		Str("file", file).
		Msg("Starting ingest")

	// One transactional scope for the run: either all non-error rows
	// commit together, or none do.
	var result *ingest.Result
	err = db.Transaction(func(tx *gorm.DB) error {
		var runErr error
		result, runErr = ingest.New(mysqldb.NewStore(tx)).Run(ctx, src)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if err := mysqldb.SaveIngestMetadata(ctx, db, file); err != nil {
		logging.Warn().Err(err).Msg("Could not save ingest metadata")
	}

	printIngestSummary(result, src.Dropped())
	return nil
}
