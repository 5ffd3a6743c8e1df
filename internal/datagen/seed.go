package datagen

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cafeops/salespipe/internal/csvfile"
	"github.com/cafeops/salespipe/internal/ingest"
	"github.com/cafeops/salespipe/internal/logging"
	"github.com/cafeops/salespipe/internal/model"
)

var (
	paymentMethods = []string{"Cash", "Credit Card", "Digital Wallet"}
	locations      = []string{model.LocationInStore, model.LocationTakeaway}

	// Corruption markers seen in the source dataset.
	badValues = []string{"", "ERROR", "UNKNOWN"}
)

// Per-column corruption rates for dirty mode, roughly matching the defect
// density of the source dataset.
const (
	dirtyItemRate     = 0.09
	dirtyQuantityRate = 0.05
	dirtyPriceRate    = 0.05
	dirtyTotalRate    = 0.10
	dirtyPaymentRate  = 0.25
	dirtyLocationRate = 0.33
	dirtyDateRate     = 0.05
)

// SeedSpec configures synthetic file generation.
type SeedSpec struct {
	// Rows is the number of transaction rows to emit.
	Rows int

	// Dirty injects the source dataset's defect classes so the clean
	// command has something to repair.
	Dirty bool

	// Seed fixes the random sequence; zero means time-based.
	Seed uint64
}

// Generate produces rows in file order with sequential TXN ids.
func Generate(spec SeedSpec) []csvfile.Record {
	f := NewFaker()
	if spec.Seed != 0 {
		f = NewFakerWithSeed(spec.Seed)
	}

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	rows := make([]csvfile.Record, 0, spec.Rows)
	for i := 1; i <= spec.Rows; i++ {
		item := Choose(f, model.MenuItems)
		price := model.MenuPrices[item]
		qty := decimal.NewFromInt(int64(f.Int(1, 5)))

		rec := csvfile.Record{
			ingest.FieldTransactionID: fmt.Sprintf("TXN_%07d", i),
			ingest.FieldItem:          item,
			ingest.FieldQuantity:      qty.String(),
			ingest.FieldPricePerUnit:  price.StringFixed(2),
			ingest.FieldTotalSpent:    qty.Mul(price).StringFixed(2),
			ingest.FieldPaymentMethod: ChooseWeighted(f, paymentMethods, []int{40, 35, 25}),
			ingest.FieldLocation:      Choose(f, locations),
			ingest.FieldDate:          f.Date(start, end).Format(model.DateFormat),
		}

		if spec.Dirty {
			corrupt(f, rec)
		}
		rows = append(rows, rec)
	}
	return rows
}

// corrupt degrades one row the way the source dataset is degraded: cells
// replaced by blank/ERROR/UNKNOWN markers and totals that disagree with
// quantity times price. Transaction IDs are never corrupted; rows without
// them would just be dropped again by clean.
func corrupt(f *Faker, rec csvfile.Record) {
	maybe := func(rate float64, field string) {
		if f.Float64(0, 1) < rate {
			rec[field] = Choose(f, badValues)
		}
	}

	maybe(dirtyItemRate, ingest.FieldItem)
	maybe(dirtyQuantityRate, ingest.FieldQuantity)
	maybe(dirtyPriceRate, ingest.FieldPricePerUnit)
	maybe(dirtyPaymentRate, ingest.FieldPaymentMethod)
	maybe(dirtyLocationRate, ingest.FieldLocation)
	maybe(dirtyDateRate, ingest.FieldDate)

	if f.Float64(0, 1) < dirtyTotalRate {
		if f.Bool() {
			rec[ingest.FieldTotalSpent] = Choose(f, badValues)
		} else {
			rec[ingest.FieldTotalSpent] = decimal.NewFromFloat(f.Float64(0.5, 30)).StringFixed(2)
		}
	}
}

// WriteFile generates rows and writes them to path.
func WriteFile(path string, spec SeedSpec) (int, error) {
	rows := Generate(spec)

	w, err := csvfile.Create(path, ingest.Header)
	if err != nil {
		return 0, err
	}
	for _, rec := range rows {
		if err := w.Write(rec); err != nil {
			w.Close()
			return 0, err
		}
	}
	if err := w.Close(); err != nil {
		return 0, err
	}

	logging.Info().
		Str("file", path).
		Int("rows", len(rows)).
		Bool("dirty", spec.Dirty).
		Msg("Seed file written")

	return len(rows), nil
}
