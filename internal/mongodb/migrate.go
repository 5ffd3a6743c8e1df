package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cafeops/salespipe/internal/logging"
)

// collectionIndexes maps each target collection to the secondary indexes
// provisioned by --migrate. The _id index always exists; these cover the
// lookups dashboards actually run against the projections.
var collectionIndexes = map[string][]mongo.IndexModel{
	"items": {
		{Keys: bson.D{{Key: "item_name", Value: 1}}},
	},
	"payment_methods": {
		{Keys: bson.D{{Key: "method_name", Value: 1}}},
	},
	"transactions": {
		{Keys: bson.D{{Key: "item_id", Value: 1}}},
		{Keys: bson.D{{Key: "payment_method_id", Value: 1}}},
		{Keys: bson.D{{Key: "transaction_date", Value: 1}}},
	},
	"transactions_with_details": {
		{Keys: bson.D{{Key: "transaction_date", Value: 1}}},
		{Keys: bson.D{{Key: "item.item_name", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: 1}}},
	},
}

// Migrate provisions the named collections and their indexes. Creating a
// collection that already exists is tolerated.
func Migrate(ctx context.Context, db *mongo.Database, collections []string) error {
	for _, name := range collections {
		if err := db.CreateCollection(ctx, name); err != nil {
			if !isNamespaceExists(err) {
				return fmt.Errorf("failed to create collection %s: %w", name, err)
			}
		}

		indexes := collectionIndexes[name]
		if len(indexes) == 0 {
			continue
		}
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}

		logging.Info().
			Str("collection", name).
			Int("indexes", len(indexes)).
			Msg("Provisioned collection")
	}
	return nil
}

// isNamespaceExists reports the "collection already exists" server error.
func isNamespaceExists(err error) bool {
	const namespaceExists = 48
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == namespaceExists
	}
	return false
}
