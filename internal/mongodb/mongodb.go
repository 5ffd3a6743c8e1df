// Package mongodb provides the document store adapter for salespipe.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/cafeops/salespipe/internal/logging"
)

// Connect establishes a client connection to MongoDB and verifies it with a
// ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logging.Info().Msg("Connected to MongoDB")

	return client, nil
}

// Probe verifies the database supports a collection-listing query. This is
// the precondition gate for replication: a server that cannot list
// collections cannot be dropped into or written to.
func Probe(ctx context.Context, db *mongo.Database) error {
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	logging.Debug().
		Str("database", db.Name()).
		Int("collections", len(names)).
		Msg("Verified document store")

	return nil
}

// Sink writes documents into named collections. It satisfies
// replicate.Sink.
type Sink struct {
	db *mongo.Database
}

// NewSink wraps a database handle.
func NewSink(db *mongo.Database) *Sink {
	return &Sink{db: db}
}

// Drop removes a collection in its entirety, data and indexes. Dropping a
// collection that does not exist is a no-op.
func (s *Sink) Drop(ctx context.Context, collection string) error {
	if err := s.db.Collection(collection).Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop %s: %w", collection, err)
	}

	logging.Debug().
		Str("collection", collection).
		Msg("Dropped collection")

	return nil
}

// Insert writes a single document.
func (s *Sink) Insert(ctx context.Context, collection string, doc any) error {
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return nil
}

// Count returns the number of documents in a collection.
func (s *Sink) Count(ctx context.Context, collection string) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}
