package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

func uintPtr(v uint) *uint { return &v }

func sampleTransaction() Transaction {
	return Transaction{
		TransactionID:   "TXN_1",
		ItemID:          uintPtr(1),
		PaymentMethodID: uintPtr(2),
		Quantity:        decimal.NewFromFloat(5.0),
		TotalSpent:      decimal.NewFromFloat(15.0),
		Location:        LocationTakeaway,
		TransactionDate: time.Date(2023, 7, 28, 0, 0, 0, 0, time.UTC),
	}
}

func TestTransactionDoc(t *testing.T) {
	doc := sampleTransaction().Doc()

	if doc.ID != "TXN_1" || doc.TransactionID != "TXN_1" {
		t.Errorf("Primary key not copied into document identifier: %+v", doc)
	}
	if doc.ItemID == nil || *doc.ItemID != 1 {
		t.Errorf("Foreign key not preserved as scalar: %+v", doc.ItemID)
	}
	if doc.Quantity != 5.0 || doc.TotalSpent != 15.0 {
		t.Errorf("Unexpected numeric fields: %+v", doc)
	}
	if doc.TransactionDate != "2023-07-28" {
		t.Errorf("Expected date '2023-07-28', got %q", doc.TransactionDate)
	}
}

func TestDetailDocEmbedsSnapshots(t *testing.T) {
	item := Item{ItemID: 1, ItemName: "Cake", PricePerUnit: decimal.NewFromFloat(3.0)}
	method := PaymentMethod{PaymentMethodID: 2, MethodName: "Digital Wallet"}

	doc := sampleTransaction().DetailDoc(&item, &method)

	if doc.ID != "TXN_1" {
		t.Errorf("Expected _id TXN_1, got %q", doc.ID)
	}
	if doc.Item == nil || doc.Item.ItemName != "Cake" || doc.Item.PricePerUnit != 3.0 {
		t.Errorf("Unexpected item embed: %+v", doc.Item)
	}
	if doc.PaymentMethod == nil || doc.PaymentMethod.MethodName != "Digital Wallet" {
		t.Errorf("Unexpected payment method embed: %+v", doc.PaymentMethod)
	}
	if doc.Location != "Takeaway" {
		t.Errorf("Expected location Takeaway, got %q", doc.Location)
	}
}

// An unresolvable foreign key must omit the sub-document key entirely, not
// write item: null.
func TestDetailDocOmitsUnresolvedEmbeds(t *testing.T) {
	tx := sampleTransaction()
	tx.ItemID = nil

	doc := tx.DetailDoc(nil, nil)

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded bson.M
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if _, present := decoded["item"]; present {
		t.Error("Expected no 'item' key in marshalled document")
	}
	if _, present := decoded["payment_method"]; present {
		t.Error("Expected no 'payment_method' key in marshalled document")
	}
	if decoded["_id"] != "TXN_1" {
		t.Errorf("Expected _id TXN_1, got %v", decoded["_id"])
	}
}

func TestItemDoc(t *testing.T) {
	item := Item{ItemID: 7, ItemName: "Cake", PricePerUnit: decimal.NewFromFloat(3.0)}
	doc := item.Doc()

	if doc.ID != 7 || doc.ItemID != 7 {
		t.Errorf("Surrogate key not reused as document id: %+v", doc)
	}
	if doc.PricePerUnit != 3.0 {
		t.Errorf("Expected price 3.0, got %v", doc.PricePerUnit)
	}
}

func TestItemForPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{2.0, "Coffee"},
		{1.5, "Tea"},
		{5.0, "Salad"},
		{4.0, "Sandwich"}, // shared price resolves to the earlier menu entry
		{3.0, "Cake"},
		{9.99, ""},
	}

	for _, tt := range tests {
		if got := ItemForPrice(decimal.NewFromFloat(tt.price)); got != tt.want {
			t.Errorf("ItemForPrice(%v) = %q, want %q", tt.price, got, tt.want)
		}
	}
}
