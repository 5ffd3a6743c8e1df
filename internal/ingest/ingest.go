//-------------------------------------------------------------------------
//
// salespipe - cafe sales data pipeline
//
// Copyright (c) 2025 - 2026, the salespipe authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package ingest moves cleaned CSV rows into the relational store.
//
// Each row resolves (or creates) its Item and PaymentMethod reference rows
// and inserts one Transaction row. A transaction id that already exists is a
// skip, not an error. A malformed row is an error that never aborts the
// batch. The caller is expected to run the whole thing inside one
// transactional scope so an unexpected top-level failure rolls back every
// row of the run.
package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cafeops/salespipe/internal/csvfile"
	"github.com/cafeops/salespipe/internal/logging"
	"github.com/cafeops/salespipe/internal/model"
)

// Field names expected in the source file header.
const (
	FieldTransactionID = "Transaction ID"
	FieldItem          = "Item"
	FieldPricePerUnit  = "Price Per Unit"
	FieldQuantity      = "Quantity"
	FieldTotalSpent    = "Total Spent"
	FieldPaymentMethod = "Payment Method"
	FieldLocation      = "Location"
	FieldDate          = "Transaction Date"
)

// Header lists the source fields in canonical file order.
var Header = []string{
	FieldTransactionID, FieldItem, FieldQuantity, FieldPricePerUnit,
	FieldTotalSpent, FieldPaymentMethod, FieldLocation, FieldDate,
}

// Store is the relational collaborator the pipeline writes through.
type Store interface {
	ItemIDsByName(ctx context.Context) (map[string]uint, error)
	PaymentMethodIDsByName(ctx context.Context) (map[string]uint, error)
	TransactionExists(ctx context.Context, id string) (bool, error)
	CreateItem(ctx context.Context, item *model.Item) error
	CreatePaymentMethod(ctx context.Context, method *model.PaymentMethod) error
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
}

// RowSource yields input rows in file order, ending with io.EOF.
type RowSource interface {
	Next() (csvfile.Record, error)
}

// Result summarizes one ingest run.
type Result struct {
	Imported int64
	Skipped  int64
	Errors   int64
}

// Attempted is the total number of rows the run looked at.
func (r *Result) Attempted() int64 {
	return r.Imported + r.Skipped + r.Errors
}

// Pipeline ingests rows into a Store.
type Pipeline struct {
	store Store

	// In-run memoization of name-to-id lookups. First occurrence of a new
	// name wins its price for the rest of the run.
	itemIDs   map[string]uint
	methodIDs map[string]uint
}

// New creates an ingest pipeline over the given store.
func New(store Store) *Pipeline {
	return &Pipeline{store: store}
}

// Run processes every row from src. Per-row failures are counted and logged;
// only store-level failures on the preload or an aborted source surface as
// an error.
func (p *Pipeline) Run(ctx context.Context, src RowSource) (*Result, error) {
	var err error
	p.itemIDs, err = p.store.ItemIDsByName(ctx)
	if err != nil {
		return nil, err
	}
	p.methodIDs, err = p.store.PaymentMethodIDsByName(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for {
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row source failed: %w", err)
		}

		outcome, err := p.ingestRow(ctx, rec)
		if err != nil {
			result.Errors++
			logging.Warn().
				Str("transaction_id", rec[FieldTransactionID]).
				Err(err).
				Msg("Row failed")
			continue
		}
		switch outcome {
		case rowImported:
			result.Imported++
		case rowSkipped:
			result.Skipped++
		}
	}

	logging.Info().
		Int64("imported", result.Imported).
		Int64("skipped", result.Skipped).
		Int64("errors", result.Errors).
		Msg("Ingest complete")

	return result, nil
}

type rowOutcome int

const (
	rowImported rowOutcome = iota
	rowSkipped
)

func (p *Pipeline) ingestRow(ctx context.Context, rec csvfile.Record) (rowOutcome, error) {
	id := strings.TrimSpace(rec[FieldTransactionID])
	if id == "" {
		return 0, fmt.Errorf("missing transaction id")
	}

	exists, err := p.store.TransactionExists(ctx, id)
	if err != nil {
		return 0, err
	}
	if exists {
		// Pre-existing id is an expected no-op; nothing is compared or
		// updated.
		return rowSkipped, nil
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(rec[FieldQuantity]))
	if err != nil {
		return 0, fmt.Errorf("bad quantity %q: %w", rec[FieldQuantity], err)
	}
	total, err := decimal.NewFromString(strings.TrimSpace(rec[FieldTotalSpent]))
	if err != nil {
		return 0, fmt.Errorf("bad total %q: %w", rec[FieldTotalSpent], err)
	}
	date, err := time.Parse(model.DateFormat, strings.TrimSpace(rec[FieldDate]))
	if err != nil {
		return 0, fmt.Errorf("bad date %q: %w", rec[FieldDate], err)
	}

	itemID, err := p.resolveItem(ctx, rec)
	if err != nil {
		return 0, err
	}
	methodID, err := p.resolveMethod(ctx, rec)
	if err != nil {
		return 0, err
	}

	tx := model.Transaction{
		TransactionID:   id,
		ItemID:          itemID,
		PaymentMethodID: methodID,
		Quantity:        quantity,
		TotalSpent:      total,
		Location:        strings.TrimSpace(rec[FieldLocation]),
		TransactionDate: date,
	}
	if err := p.store.CreateTransaction(ctx, &tx); err != nil {
		return 0, err
	}
	return rowImported, nil
}

// resolveItem returns the id for the row's item name, inserting a new Item
// with the row's stated price on first sighting. A row without an item name
// yields a null foreign key.
func (p *Pipeline) resolveItem(ctx context.Context, rec csvfile.Record) (*uint, error) {
	name := strings.TrimSpace(rec[FieldItem])
	if name == "" {
		return nil, nil
	}

	if id, ok := p.itemIDs[name]; ok {
		return &id, nil
	}

	price, err := decimal.NewFromString(strings.TrimSpace(rec[FieldPricePerUnit]))
	if err != nil {
		return nil, fmt.Errorf("bad price %q: %w", rec[FieldPricePerUnit], err)
	}

	item := model.Item{ItemName: name, PricePerUnit: price}
	if err := p.store.CreateItem(ctx, &item); err != nil {
		return nil, err
	}
	p.itemIDs[name] = item.ItemID

	logging.Debug().
		Str("item", name).
		Str("price", price.String()).
		Msg("Created item")

	return &item.ItemID, nil
}

// resolveMethod is the payment-method analogue of resolveItem.
func (p *Pipeline) resolveMethod(ctx context.Context, rec csvfile.Record) (*uint, error) {
	name := strings.TrimSpace(rec[FieldPaymentMethod])
	if name == "" {
		return nil, nil
	}

	if id, ok := p.methodIDs[name]; ok {
		return &id, nil
	}

	method := model.PaymentMethod{MethodName: name}
	if err := p.store.CreatePaymentMethod(ctx, &method); err != nil {
		return nil, err
	}
	p.methodIDs[name] = method.PaymentMethodID

	logging.Debug().
		Str("payment_method", name).
		Msg("Created payment method")

	return &method.PaymentMethodID, nil
}
