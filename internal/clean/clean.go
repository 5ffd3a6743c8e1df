//-------------------------------------------------------------------------
//
// salespipe - cafe sales data pipeline
//
// Copyright (c) 2025 - 2026, the salespipe authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package clean repairs a dirty sales export so it can be ingested.
//
// The source dataset carries three flavors of bad cell: empty, "ERROR" and
// "UNKNOWN". Cleaning normalizes those to missing, then repairs or drops
// each row by a fixed rule set: rows need a transaction id and a date to
// survive; items can be inferred from an exact menu-price match; quantities
// and prices are repaired against the menu; totals are recomputed for every
// surviving row; payment method and location fall back to the column's most
// common value.
package clean

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cafeops/salespipe/internal/csvfile"
	"github.com/cafeops/salespipe/internal/ingest"
	"github.com/cafeops/salespipe/internal/logging"
	"github.com/cafeops/salespipe/internal/model"
)

// Fallbacks when a column has no usable values at all.
const (
	fallbackPayment  = "Cash"
	fallbackLocation = model.LocationInStore
)

// dateLayouts are the formats accepted for Transaction Date, tried in
// order. Output is always model.DateFormat.
var dateLayouts = []string{
	model.DateFormat,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// Stats reports what cleaning did to the file.
type Stats struct {
	TotalRows int
	KeptRows  int

	DroppedNoID   int
	DroppedNoItem int
	DroppedNoDate int

	InferredItems   int
	FixedQuantities int
	FilledPrices    int
	CorrectedPrices int
	FilledPayments  int
	FilledLocations int
}

// Dropped is the total number of rows removed.
func (s *Stats) Dropped() int {
	return s.DroppedNoID + s.DroppedNoItem + s.DroppedNoDate
}

// File cleans inPath and writes the surviving rows to outPath.
func File(inPath, outPath string) (*Stats, error) {
	rows, _, err := csvfile.ReadAll(inPath)
	if err != nil {
		return nil, err
	}

	cleaned, stats := Rows(rows)

	w, err := csvfile.Create(outPath, ingest.Header)
	if err != nil {
		return nil, err
	}
	for _, rec := range cleaned {
		if err := w.Write(rec); err != nil {
			w.Close()
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	logging.Info().
		Int("total", stats.TotalRows).
		Int("kept", stats.KeptRows).
		Int("dropped", stats.Dropped()).
		Msg("Clean complete")

	return stats, nil
}

// Rows cleans records in memory. Input records are not modified.
func Rows(rows []csvfile.Record) ([]csvfile.Record, *Stats) {
	stats := &Stats{TotalRows: len(rows)}

	// Normalize bad cells to missing and drop rows without an id.
	var kept []csvfile.Record
	for _, row := range rows {
		rec := normalize(row)
		if rec[ingest.FieldTransactionID] == "" {
			stats.DroppedNoID++
			continue
		}
		kept = append(kept, rec)
	}

	kept = repairItems(kept, stats)
	repairQuantities(kept, stats)
	repairPrices(kept, stats)
	recomputeTotals(kept)
	fillMostCommon(kept, ingest.FieldPaymentMethod, fallbackPayment, &stats.FilledPayments)
	fillMostCommon(kept, ingest.FieldLocation, fallbackLocation, &stats.FilledLocations)
	kept = repairDates(kept, stats)

	stats.KeptRows = len(kept)
	return kept, stats
}

// normalize copies a record, mapping "", "ERROR" and "UNKNOWN" to missing.
func normalize(row csvfile.Record) csvfile.Record {
	rec := make(csvfile.Record, len(row))
	for k, v := range row {
		v = strings.TrimSpace(v)
		if v == "ERROR" || v == "UNKNOWN" {
			v = ""
		}
		rec[k] = v
	}
	return rec
}

// repairItems infers a missing item name from an exact menu-price match and
// drops rows whose item stays unresolved.
func repairItems(rows []csvfile.Record, stats *Stats) []csvfile.Record {
	out := rows[:0]
	for _, rec := range rows {
		if rec[ingest.FieldItem] == "" {
			if price, err := decimal.NewFromString(rec[ingest.FieldPricePerUnit]); err == nil {
				if name := model.ItemForPrice(price); name != "" {
					rec[ingest.FieldItem] = name
					stats.InferredItems++
				}
			}
		}
		if rec[ingest.FieldItem] == "" {
			stats.DroppedNoItem++
			continue
		}
		out = append(out, rec)
	}
	return out
}

// repairQuantities replaces non-numeric or non-positive quantities with 1.
func repairQuantities(rows []csvfile.Record, stats *Stats) {
	one := decimal.NewFromInt(1)
	for _, rec := range rows {
		qty, err := decimal.NewFromString(rec[ingest.FieldQuantity])
		if err != nil || qty.LessThanOrEqual(decimal.Zero) {
			rec[ingest.FieldQuantity] = one.String()
			stats.FixedQuantities++
		}
	}
}

// repairPrices fills missing prices from the menu and corrects prices that
// disagree with it. Items off the menu keep whatever price they carry.
func repairPrices(rows []csvfile.Record, stats *Stats) {
	for _, rec := range rows {
		menuPrice, onMenu := model.MenuPrices[rec[ingest.FieldItem]]
		if !onMenu {
			continue
		}

		price, err := decimal.NewFromString(rec[ingest.FieldPricePerUnit])
		switch {
		case err != nil:
			rec[ingest.FieldPricePerUnit] = menuPrice.StringFixed(2)
			stats.FilledPrices++
		case !price.Equal(menuPrice):
			rec[ingest.FieldPricePerUnit] = menuPrice.StringFixed(2)
			stats.CorrectedPrices++
		}
	}
}

// recomputeTotals rewrites Total Spent as quantity times price for every
// surviving row. This is the only place in the system that computes totals.
func recomputeTotals(rows []csvfile.Record) {
	for _, rec := range rows {
		qty, err := decimal.NewFromString(rec[ingest.FieldQuantity])
		if err != nil {
			continue
		}
		price, err := decimal.NewFromString(rec[ingest.FieldPricePerUnit])
		if err != nil {
			continue
		}
		rec[ingest.FieldTotalSpent] = qty.Mul(price).StringFixed(2)
	}
}

// fillMostCommon replaces missing values in a column with the column's most
// common present value, or the fallback when the column is entirely empty.
func fillMostCommon(rows []csvfile.Record, field, fallback string, filled *int) {
	counts := make(map[string]int)
	for _, rec := range rows {
		if v := rec[field]; v != "" {
			counts[v]++
		}
	}

	mode := fallback
	best := 0
	for v, n := range counts {
		if n > best || (n == best && v < mode) {
			mode, best = v, n
		}
	}

	for _, rec := range rows {
		if rec[field] == "" {
			rec[field] = mode
			*filled++
		}
	}
}

// repairDates drops rows without a parseable date and normalizes the rest
// to the canonical layout.
func repairDates(rows []csvfile.Record, stats *Stats) []csvfile.Record {
	out := rows[:0]
	for _, rec := range rows {
		d, ok := parseDate(rec[ingest.FieldDate])
		if !ok {
			stats.DroppedNoDate++
			continue
		}
		rec[ingest.FieldDate] = d.Format(model.DateFormat)
		out = append(out, rec)
	}
	return out
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
