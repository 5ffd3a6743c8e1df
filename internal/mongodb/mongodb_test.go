package mongodb

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/cafeops/salespipe/internal/model"
	"github.com/cafeops/salespipe/internal/testutil"
)

// Integration tests; skipped unless MongoDB is reachable (see
// SALESPIPE_TEST_MONGO).

func TestSinkInsertDropCount(t *testing.T) {
	uri := testutil.SkipIfNoMongo(t)
	db := testutil.TestMongoDatabase(t, uri)
	sink := NewSink(db)
	ctx := context.Background()

	doc := model.ItemDoc{ID: 1, ItemID: 1, ItemName: "Cake", PricePerUnit: 3.0}
	if err := sink.Insert(ctx, "items", doc); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	n, err := sink.Count(ctx, "items")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 document, got %d", n)
	}

	// Duplicate _id is a per-record write conflict.
	if err := sink.Insert(ctx, "items", doc); err == nil {
		t.Error("Expected duplicate key error")
	}

	if err := sink.Drop(ctx, "items"); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	n, err = sink.Count(ctx, "items")
	if err != nil {
		t.Fatalf("Count after drop failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected empty collection after drop, got %d", n)
	}

	// Dropping a collection that does not exist is a no-op.
	if err := sink.Drop(ctx, "never_created"); err != nil {
		t.Errorf("Drop of missing collection failed: %v", err)
	}
}

func TestProbe(t *testing.T) {
	uri := testutil.SkipIfNoMongo(t)
	db := testutil.TestMongoDatabase(t, uri)

	if err := Probe(context.Background(), db); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	uri := testutil.SkipIfNoMongo(t)
	db := testutil.TestMongoDatabase(t, uri)
	ctx := context.Background()

	collections := []string{"items", "transactions_with_details"}
	if err := Migrate(ctx, db, collections); err != nil {
		t.Fatalf("First migrate failed: %v", err)
	}
	if err := Migrate(ctx, db, collections); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	found := make(map[string]bool, len(names))
	for _, n := range names {
		found[n] = true
	}
	for _, want := range collections {
		if !found[want] {
			t.Errorf("Collection %s not created; have %v", want, names)
		}
	}
}
