package ingest

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cafeops/salespipe/internal/csvfile"
	"github.com/cafeops/salespipe/internal/model"
)

// memStore is an in-memory relational store.
type memStore struct {
	items        []model.Item
	methods      []model.PaymentMethod
	transactions map[string]model.Transaction
	nextItemID   uint
	nextMethodID uint

	failTransactionID string // CreateTransaction fails for this id
}

func newMemStore() *memStore {
	return &memStore{
		transactions: make(map[string]model.Transaction),
		nextItemID:   1,
		nextMethodID: 1,
	}
}

func (s *memStore) ItemIDsByName(ctx context.Context) (map[string]uint, error) {
	ids := make(map[string]uint)
	for _, item := range s.items {
		ids[item.ItemName] = item.ItemID
	}
	return ids, nil
}

func (s *memStore) PaymentMethodIDsByName(ctx context.Context) (map[string]uint, error) {
	ids := make(map[string]uint)
	for _, m := range s.methods {
		ids[m.MethodName] = m.PaymentMethodID
	}
	return ids, nil
}

func (s *memStore) TransactionExists(ctx context.Context, id string) (bool, error) {
	_, ok := s.transactions[id]
	return ok, nil
}

func (s *memStore) CreateItem(ctx context.Context, item *model.Item) error {
	item.ItemID = s.nextItemID
	s.nextItemID++
	s.items = append(s.items, *item)
	return nil
}

func (s *memStore) CreatePaymentMethod(ctx context.Context, method *model.PaymentMethod) error {
	method.PaymentMethodID = s.nextMethodID
	s.nextMethodID++
	s.methods = append(s.methods, *method)
	return nil
}

func (s *memStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	if tx.TransactionID == s.failTransactionID {
		return fmt.Errorf("write conflict on %s", tx.TransactionID)
	}
	s.transactions[tx.TransactionID] = *tx
	return nil
}

// sliceSource yields records from a slice.
type sliceSource struct {
	rows []csvfile.Record
	pos  int
}

func (s *sliceSource) Next() (csvfile.Record, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	rec := s.rows[s.pos]
	s.pos++
	return rec, nil
}

func row(id, item, qty, price, total, payment, location, date string) csvfile.Record {
	return csvfile.Record{
		FieldTransactionID: id,
		FieldItem:          item,
		FieldQuantity:      qty,
		FieldPricePerUnit:  price,
		FieldTotalSpent:    total,
		FieldPaymentMethod: payment,
		FieldLocation:      location,
		FieldDate:          date,
	}
}

func cakeRow() csvfile.Record {
	return row("TXN_1", "Cake", "5.0", "3.00", "15.00", "Digital Wallet", "Takeaway", "2023-07-28")
}

func TestIngestSingleRow(t *testing.T) {
	store := newMemStore()
	res, err := New(store).Run(context.Background(), &sliceSource{rows: []csvfile.Record{cakeRow()}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Imported != 1 || res.Skipped != 0 || res.Errors != 0 {
		t.Fatalf("Unexpected result: %+v", res)
	}

	if len(store.items) != 1 || store.items[0].ItemName != "Cake" {
		t.Fatalf("Expected one Cake item, got %+v", store.items)
	}
	if !store.items[0].PricePerUnit.Equal(mustDecimal(t, "3.00")) {
		t.Errorf("Expected price 3.00, got %s", store.items[0].PricePerUnit)
	}
	if len(store.methods) != 1 || store.methods[0].MethodName != "Digital Wallet" {
		t.Fatalf("Expected one Digital Wallet method, got %+v", store.methods)
	}

	tx, ok := store.transactions["TXN_1"]
	if !ok {
		t.Fatal("Transaction TXN_1 not stored")
	}
	if tx.ItemID == nil || *tx.ItemID != store.items[0].ItemID {
		t.Errorf("Transaction not linked to item: %+v", tx)
	}
	if tx.PaymentMethodID == nil || *tx.PaymentMethodID != store.methods[0].PaymentMethodID {
		t.Errorf("Transaction not linked to payment method: %+v", tx)
	}
	if !tx.Quantity.Equal(mustDecimal(t, "5.0")) || !tx.TotalSpent.Equal(mustDecimal(t, "15.00")) {
		t.Errorf("Quantity/total not stored verbatim: %+v", tx)
	}
	if tx.Location != "Takeaway" {
		t.Errorf("Expected location Takeaway, got %q", tx.Location)
	}
}

// Running ingest twice on the same file yields the same row count; the
// second run reports zero imported and N skipped.
func TestIngestIsIdempotent(t *testing.T) {
	store := newMemStore()
	rows := []csvfile.Record{
		cakeRow(),
		row("TXN_2", "Tea", "1.0", "1.50", "1.50", "Cash", "In-store", "2023-07-29"),
	}

	first, err := New(store).Run(context.Background(), &sliceSource{rows: rows})
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if first.Imported != 2 || first.Skipped != 0 {
		t.Fatalf("Unexpected first result: %+v", first)
	}

	second, err := New(store).Run(context.Background(), &sliceSource{rows: rows})
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if second.Imported != 0 || second.Skipped != 2 || second.Errors != 0 {
		t.Fatalf("Unexpected second result: %+v", second)
	}
	if len(store.transactions) != 2 {
		t.Errorf("Expected 2 transactions after re-ingest, got %d", len(store.transactions))
	}
	if len(store.items) != 2 {
		t.Errorf("Re-ingest must not create duplicate items, got %d", len(store.items))
	}
}

// The first occurrence of an item name wins its price; later rows with the
// same name reuse it even when their own stated price differs.
func TestFirstOccurrenceWinsItemPrice(t *testing.T) {
	store := newMemStore()
	rows := []csvfile.Record{
		cakeRow(),
		row("TXN_2", "Cake", "1.0", "99.00", "99.00", "Cash", "In-store", "2023-07-29"),
	}

	res, err := New(store).Run(context.Background(), &sliceSource{rows: rows})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Imported != 2 {
		t.Fatalf("Unexpected result: %+v", res)
	}

	if len(store.items) != 1 {
		t.Fatalf("Expected a single Cake item, got %+v", store.items)
	}
	if !store.items[0].PricePerUnit.Equal(mustDecimal(t, "3.00")) {
		t.Errorf("First occurrence price must win, got %s", store.items[0].PricePerUnit)
	}

	// Both transactions reference the same item, each keeping its own
	// totals verbatim.
	tx2 := store.transactions["TXN_2"]
	if tx2.ItemID == nil || *tx2.ItemID != store.items[0].ItemID {
		t.Errorf("Second row not linked to first item: %+v", tx2)
	}
	if !tx2.TotalSpent.Equal(mustDecimal(t, "99.00")) {
		t.Errorf("Total must be stored verbatim, got %s", tx2.TotalSpent)
	}
}

func TestMalformedRowsAreCountedAndSkipped(t *testing.T) {
	store := newMemStore()
	rows := []csvfile.Record{
		row("TXN_1", "Cake", "not-a-number", "3.00", "15.00", "Cash", "In-store", "2023-07-28"),
		row("TXN_2", "Tea", "1.0", "1.50", "1.50", "Cash", "In-store", "31-12-2023"),
		row("", "Tea", "1.0", "1.50", "1.50", "Cash", "In-store", "2023-07-28"),
		cakeRow(),
	}

	res, err := New(store).Run(context.Background(), &sliceSource{rows: rows})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Errors != 3 {
		t.Errorf("Expected 3 error rows, got %d", res.Errors)
	}
	if res.Imported != 1 {
		t.Errorf("Expected 1 imported row, got %d", res.Imported)
	}
	if _, ok := store.transactions["TXN_1"]; ok {
		t.Error("Malformed TXN_1 must not be stored")
	}
}

func TestMissingItemYieldsNullForeignKey(t *testing.T) {
	store := newMemStore()
	rows := []csvfile.Record{
		row("TXN_1", "", "1.0", "", "3.00", "Cash", "In-store", "2023-07-28"),
	}

	res, err := New(store).Run(context.Background(), &sliceSource{rows: rows})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("Unexpected result: %+v", res)
	}

	tx := store.transactions["TXN_1"]
	if tx.ItemID != nil {
		t.Errorf("Expected null item foreign key, got %v", *tx.ItemID)
	}
	if len(store.items) != 0 {
		t.Errorf("No item should be created for an empty name, got %+v", store.items)
	}
}

func TestWriteConflictIsPerRowError(t *testing.T) {
	store := newMemStore()
	store.failTransactionID = "TXN_1"
	rows := []csvfile.Record{
		cakeRow(),
		row("TXN_2", "Tea", "1.0", "1.50", "1.50", "Cash", "In-store", "2023-07-29"),
	}

	res, err := New(store).Run(context.Background(), &sliceSource{rows: rows})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Errors != 1 || res.Imported != 1 {
		t.Fatalf("Unexpected result: %+v", res)
	}
	if _, ok := store.transactions["TXN_2"]; !ok {
		t.Error("TXN_2 must still be processed after TXN_1 failed")
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("Bad decimal literal %q: %v", s, err)
	}
	return d
}
