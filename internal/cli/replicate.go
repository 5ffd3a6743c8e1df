package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cafeops/salespipe/internal/logging"
	"github.com/cafeops/salespipe/internal/mongodb"
	"github.com/cafeops/salespipe/internal/mysqldb"
	"github.com/cafeops/salespipe/internal/replicate"
)

var (
	replicateBatchSize   int
	replicateDenormalize bool
	replicateDryRun      bool
	replicateMigrate     bool
)

var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Copy MySQL rows into MongoDB collections",
	Long: `Copy the relational tables into MongoDB, either one collection per
table (default) or a single collection of transactions with item and
payment-method data embedded inline (--denormalize).

Every run is a full resync: the target collections are dropped and rebuilt.
Under --dry-run every read and count still happens but nothing is dropped or
written, so the reported numbers match exactly what a real run would do.

Examples:
  salespipe replicate --batch-size 500
  salespipe replicate --denormalize --dry-run`,
	RunE: runReplicate,
}

func init() {
	replicateCmd.Flags().IntVar(&replicateBatchSize, "batch-size", 0,
		"rows per read-transform-write cycle (default 1000)")
	replicateCmd.Flags().BoolVar(&replicateDenormalize, "denormalize", false,
		"embed item and payment-method data in each transaction document")
	replicateCmd.Flags().BoolVar(&replicateDryRun, "dry-run", false,
		"simulate the copy without dropping or writing anything")
	replicateCmd.Flags().BoolVar(&replicateMigrate, "migrate", false,
		"provision target collections and indexes before copying")
}

func runReplicate(cmd *cobra.Command, args []string) error {
	if replicateBatchSize > 0 {
		cfg.Replicate.BatchSize = replicateBatchSize
	}
	if err := cfg.ValidateReplicate(); err != nil {
		return err
	}

	mode := replicate.ModeNormalized
	if replicateDenormalize {
		mode = replicate.ModeDenormalized
	}

	ctx := context.Background()

	// Precondition gates: both stores must be reachable and answer their
	// probes before anything destructive happens.
	db, err := mysqldb.Connect(ctx, cfg.MySQLDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	defer mysqldb.Close(db)

	engine, err := mysqldb.VerifyEngine(ctx, db)
	if err != nil {
		return err
	}

	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer client.Disconnect(ctx)

	mongoDB := client.Database(cfg.MongoDatabase)
	if err := mongodb.Probe(ctx, mongoDB); err != nil {
		return err
	}

	if sourceFile, _ := mysqldb.GetMetadataValue(ctx, db, "source_file"); sourceFile != "" {
		logging.Debug().
			Str("source_file", sourceFile).
			Msg("Relational store was last populated from")
	}

	if replicateMigrate && !replicateDryRun {
		if err := mongodb.Migrate(ctx, mongoDB, mode.Collections()); err != nil {
			return err
		}
	}

	logging.Info().
		Str("engine", engine).
		Str("mode", string(mode)).
		Msg("Preconditions verified")

	copier := replicate.New(
		mysqldb.NewStore(db),
		mongodb.NewSink(mongoDB),
		replicate.Options{
			Mode:      mode,
			BatchSize: cfg.Replicate.BatchSize,
			DryRun:    replicateDryRun,
		},
	)

	result, err := copier.Run(ctx)
	if err != nil {
		return fmt.Errorf("replication failed: %w", err)
	}

	if result.SourceRows == 0 {
		logging.Warn().Msg("Relational store is empty; nothing to copy")
		return nil
	}

	printReplicateSummary(result)
	return nil
}
