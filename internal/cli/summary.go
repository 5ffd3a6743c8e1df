package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cafeops/salespipe/internal/clean"
	"github.com/cafeops/salespipe/internal/ingest"
	"github.com/cafeops/salespipe/internal/replicate"
)

// Every run ends with a tabular summary on stdout; structured logs carry
// the same numbers for machines.

func printIngestSummary(res *ingest.Result, dropped int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RESULT\tROWS")
	fmt.Fprintf(w, "imported\t%d\n", res.Imported)
	fmt.Fprintf(w, "skipped\t%d\n", res.Skipped)
	fmt.Fprintf(w, "errors\t%d\n", res.Errors)
	if dropped > 0 {
		fmt.Fprintf(w, "malformed lines dropped\t%d\n", dropped)
	}
	fmt.Fprintf(w, "total\t%d\n", res.Attempted())
	w.Flush()
}

func printReplicateSummary(res *replicate.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COLLECTION\tATTEMPTED\tCOPIED\tERRORS")
	for _, c := range res.Collections {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", c.Collection, c.Attempted, c.Copied, c.Errors)
	}
	w.Flush()
	if res.DryRun {
		fmt.Println("(dry run: no collections dropped, no documents written)")
	}
}

func printCleanSummary(stats *clean.Stats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tROWS")
	fmt.Fprintf(w, "input rows\t%d\n", stats.TotalRows)
	fmt.Fprintf(w, "dropped: missing transaction id\t%d\n", stats.DroppedNoID)
	fmt.Fprintf(w, "dropped: unresolvable item\t%d\n", stats.DroppedNoItem)
	fmt.Fprintf(w, "dropped: missing date\t%d\n", stats.DroppedNoDate)
	fmt.Fprintf(w, "items inferred from price\t%d\n", stats.InferredItems)
	fmt.Fprintf(w, "quantities fixed\t%d\n", stats.FixedQuantities)
	fmt.Fprintf(w, "prices filled\t%d\n", stats.FilledPrices)
	fmt.Fprintf(w, "prices corrected\t%d\n", stats.CorrectedPrices)
	fmt.Fprintf(w, "payment methods filled\t%d\n", stats.FilledPayments)
	fmt.Fprintf(w, "locations filled\t%d\n", stats.FilledLocations)
	fmt.Fprintf(w, "kept rows\t%d\n", stats.KeptRows)
	w.Flush()
}
