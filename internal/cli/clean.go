package cli

import (
	"github.com/spf13/cobra"

	"github.com/cafeops/salespipe/internal/clean"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <in.csv> <out.csv>",
	Short: "Repair a dirty sales export",
	Long: `Repair a raw sales export so it can be ingested. Blank, ERROR and
UNKNOWN cells are treated as missing; rows without a transaction id or a
parseable date are dropped; missing items are inferred from an exact menu
price match where possible; quantities and prices are repaired against the
menu; totals are recomputed; missing payment methods and locations fall back
to the column's most common value.

Example:
  salespipe clean dirty_cafe_sales.csv cleaned_cafe_sales.csv`,
	Args: cobra.ExactArgs(2),
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	stats, err := clean.File(args[0], args[1])
	if err != nil {
		return err
	}

	printCleanSummary(stats)
	return nil
}
