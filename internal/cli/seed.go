package cli

import (
	"github.com/spf13/cobra"

	"github.com/cafeops/salespipe/internal/datagen"
)

var (
	seedRows  int
	seedDirty bool
	seedSeed  uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed <out.csv>",
	Short: "Generate a synthetic sales CSV",
	Long: `Generate a synthetic sales CSV shaped like the cafe export:
sequential TXN ids, menu items at menu prices, quantities 1-5, and dates
across one year. With --dirty, cells are degraded the way the real raw
export is degraded (blank/ERROR/UNKNOWN markers, wrong totals) so the clean
command has work to do.

Example:
  salespipe seed dirty_cafe_sales.csv --rows 10000 --dirty --seed 42`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedRows, "rows", 0,
		"number of rows to generate (default 10000)")
	seedCmd.Flags().BoolVar(&seedDirty, "dirty", false,
		"inject the raw export's defect classes")
	seedCmd.Flags().Uint64Var(&seedSeed, "seed", 0,
		"random seed for reproducible output (0 = time-based)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedRows > 0 {
		cfg.Seed.Rows = seedRows
	}
	if err := cfg.ValidateSeed(); err != nil {
		return err
	}

	n, err := datagen.WriteFile(args[0], datagen.SeedSpec{
		Rows:  cfg.Seed.Rows,
		Dirty: seedDirty,
		Seed:  seedSeed,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Wrote %d rows to %s\n", n, args[0])
	return nil
}
