//-------------------------------------------------------------------------
//
// salespipe - cafe sales data pipeline
//
// Copyright (c) 2025 - 2026, the salespipe authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package replicate copies relational rows into document collections.
//
// Two layouts are supported: normalized (one collection per table, foreign
// keys kept as plain scalars) and denormalized (one collection of
// transactions with item and payment-method snapshots embedded inline).
// Every run is a full resync: target collections are dropped and rebuilt.
// There is no transactional scope on the document side; a failed run leaves
// whatever it managed to write.
package replicate

import (
	"context"
	"fmt"

	"github.com/cafeops/salespipe/internal/logging"
	"github.com/cafeops/salespipe/internal/model"
)

// Target collection names.
const (
	CollItems              = "items"
	CollPaymentMethods     = "payment_methods"
	CollTransactions       = "transactions"
	CollTransactionDetails = "transactions_with_details"
)

// DefaultBatchSize is the number of rows moved per read-transform-write
// cycle when the caller does not choose one. Batch size affects throughput
// and memory only, never document contents.
const DefaultBatchSize = 1000

// Mode selects the output layout.
type Mode string

const (
	// ModeNormalized mirrors each relational table into its own collection.
	ModeNormalized Mode = "normalized"

	// ModeDenormalized emits one document per transaction with related
	// rows embedded.
	ModeDenormalized Mode = "denormalized"
)

// Collections returns the target collections for a mode, in copy order.
func (m Mode) Collections() []string {
	if m == ModeDenormalized {
		return []string{CollTransactionDetails}
	}
	return []string{CollItems, CollPaymentMethods, CollTransactions}
}

// Source reads relational rows. Batch callbacks receive rows in primary-key
// order; across batches, batch N completes before batch N+1 is read.
type Source interface {
	CountAll(ctx context.Context) (items, methods, transactions int64, err error)
	ItemsInBatches(ctx context.Context, size int, fn func([]model.Item) error) error
	PaymentMethodsInBatches(ctx context.Context, size int, fn func([]model.PaymentMethod) error) error
	TransactionsInBatches(ctx context.Context, size int, fn func([]model.Transaction) error) error
	ItemsByID(ctx context.Context) (map[uint]model.Item, error)
	PaymentMethodsByID(ctx context.Context) (map[uint]model.PaymentMethod, error)
}

// Sink writes documents into named collections.
type Sink interface {
	Drop(ctx context.Context, collection string) error
	Insert(ctx context.Context, collection string, doc any) error
}

// Options configures a copy run.
type Options struct {
	Mode      Mode
	BatchSize int
	// DryRun suppresses the drop and every write; reads, iteration and
	// bookkeeping still happen so the reported counts match a real run.
	DryRun bool
}

// CollectionResult reports one collection's copy counts. The numbers always
// reconcile: Copied + Errors == Attempted.
type CollectionResult struct {
	Collection string
	Attempted  int64
	Copied     int64
	Errors     int64
}

// Result reports a whole run.
type Result struct {
	DryRun      bool
	SourceRows  int64
	Collections []CollectionResult
}

// Copier moves rows from a Source to a Sink.
type Copier struct {
	src  Source
	sink Sink
	opts Options
}

// New creates a Copier. A zero or negative batch size falls back to
// DefaultBatchSize; an empty mode falls back to normalized.
func New(src Source, sink Sink, opts Options) *Copier {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Mode == "" {
		opts.Mode = ModeNormalized
	}
	return &Copier{src: src, sink: sink, opts: opts}
}

// Run executes the copy. When the relational store holds no rows at all the
// returned Result has SourceRows == 0 and no collections; the caller decides
// how loudly to warn. Precondition validation (connectivity, engine) is the
// caller's job, before Run.
func (c *Copier) Run(ctx context.Context) (*Result, error) {
	items, methods, transactions, err := c.src.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count source rows: %w", err)
	}

	result := &Result{
		DryRun:     c.opts.DryRun,
		SourceRows: items + methods + transactions,
	}
	if result.SourceRows == 0 {
		return result, nil
	}

	logging.Info().
		Str("mode", string(c.opts.Mode)).
		Int("batch_size", c.opts.BatchSize).
		Bool("dry_run", c.opts.DryRun).
		Int64("items", items).
		Int64("payment_methods", methods).
		Int64("transactions", transactions).
		Msg("Starting copy")

	// Full resync: every target collection goes first.
	if !c.opts.DryRun {
		for _, coll := range c.opts.Mode.Collections() {
			if err := c.sink.Drop(ctx, coll); err != nil {
				return nil, err
			}
		}
	}

	if c.opts.Mode == ModeDenormalized {
		res, err := c.copyTransactionDetails(ctx)
		if err != nil {
			return nil, err
		}
		result.Collections = append(result.Collections, res)
		return result, nil
	}

	itemRes, err := c.copyItems(ctx)
	if err != nil {
		return nil, err
	}
	methodRes, err := c.copyPaymentMethods(ctx)
	if err != nil {
		return nil, err
	}
	txRes, err := c.copyTransactions(ctx)
	if err != nil {
		return nil, err
	}
	result.Collections = append(result.Collections, itemRes, methodRes, txRes)
	return result, nil
}

func (c *Copier) copyItems(ctx context.Context) (CollectionResult, error) {
	res := CollectionResult{Collection: CollItems}
	err := c.src.ItemsInBatches(ctx, c.opts.BatchSize, func(batch []model.Item) error {
		for _, item := range batch {
			c.write(ctx, &res, item.Doc(), item.ItemName)
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to copy items: %w", err)
	}
	return res, nil
}

func (c *Copier) copyPaymentMethods(ctx context.Context) (CollectionResult, error) {
	res := CollectionResult{Collection: CollPaymentMethods}
	err := c.src.PaymentMethodsInBatches(ctx, c.opts.BatchSize, func(batch []model.PaymentMethod) error {
		for _, method := range batch {
			c.write(ctx, &res, method.Doc(), method.MethodName)
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to copy payment methods: %w", err)
	}
	return res, nil
}

func (c *Copier) copyTransactions(ctx context.Context) (CollectionResult, error) {
	res := CollectionResult{Collection: CollTransactions}
	err := c.src.TransactionsInBatches(ctx, c.opts.BatchSize, func(batch []model.Transaction) error {
		for _, tx := range batch {
			c.write(ctx, &res, tx.Doc(), tx.TransactionID)
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to copy transactions: %w", err)
	}
	return res, nil
}

func (c *Copier) copyTransactionDetails(ctx context.Context) (CollectionResult, error) {
	res := CollectionResult{Collection: CollTransactionDetails}

	itemsByID, err := c.src.ItemsByID(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to load items for embedding: %w", err)
	}
	methodsByID, err := c.src.PaymentMethodsByID(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to load payment methods for embedding: %w", err)
	}

	err = c.src.TransactionsInBatches(ctx, c.opts.BatchSize, func(batch []model.Transaction) error {
		for _, tx := range batch {
			var item *model.Item
			if tx.ItemID != nil {
				if i, ok := itemsByID[*tx.ItemID]; ok {
					item = &i
				}
			}
			var method *model.PaymentMethod
			if tx.PaymentMethodID != nil {
				if m, ok := methodsByID[*tx.PaymentMethodID]; ok {
					method = &m
				}
			}
			c.write(ctx, &res, tx.DetailDoc(item, method), tx.TransactionID)
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to copy transaction details: %w", err)
	}
	return res, nil
}

// write inserts one document, keeping the counters reconciled. A failed
// insert is counted and logged, never fatal. Under dry-run the insert is
// suppressed and the record counts as one that would succeed.
func (c *Copier) write(ctx context.Context, res *CollectionResult, doc any, key string) {
	res.Attempted++
	if c.opts.DryRun {
		res.Copied++
		return
	}
	if err := c.sink.Insert(ctx, res.Collection, doc); err != nil {
		res.Errors++
		logging.Warn().
			Str("collection", res.Collection).
			Str("record", key).
			Err(err).
			Msg("Record failed")
		return
	}
	res.Copied++
}
