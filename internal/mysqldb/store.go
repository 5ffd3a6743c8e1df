package mysqldb

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cafeops/salespipe/internal/model"
)

// Store exposes the entity-keyed read and write operations both pipelines
// need. It satisfies ingest.Store and replicate.Source structurally.
type Store struct {
	db *gorm.DB
}

// NewStore wraps a gorm handle. Pass the handle from inside a
// gorm Transaction closure to scope all writes to that transaction.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ItemIDsByName returns the name-to-id mapping for all existing items.
func (s *Store) ItemIDsByName(ctx context.Context) (map[string]uint, error) {
	var items []model.Item
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	ids := make(map[string]uint, len(items))
	for _, item := range items {
		ids[item.ItemName] = item.ItemID
	}
	return ids, nil
}

// PaymentMethodIDsByName returns the name-to-id mapping for all existing
// payment methods.
func (s *Store) PaymentMethodIDsByName(ctx context.Context) (map[string]uint, error) {
	var methods []model.PaymentMethod
	if err := s.db.WithContext(ctx).Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to load payment methods: %w", err)
	}

	ids := make(map[string]uint, len(methods))
	for _, m := range methods {
		ids[m.MethodName] = m.PaymentMethodID
	}
	return ids, nil
}

// TransactionExists reports whether a transaction with the given natural
// key is already stored.
func (s *Store) TransactionExists(ctx context.Context, id string) (bool, error) {
	var tx model.Transaction
	err := s.db.WithContext(ctx).
		Select("transaction_id").
		First(&tx, "transaction_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check transaction %s: %w", id, err)
	}
	return true, nil
}

// CreateItem inserts a new item and fills in its surrogate key.
func (s *Store) CreateItem(ctx context.Context, item *model.Item) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item %q: %w", item.ItemName, err)
	}
	return nil
}

// CreatePaymentMethod inserts a new payment method and fills in its
// surrogate key.
func (s *Store) CreatePaymentMethod(ctx context.Context, method *model.PaymentMethod) error {
	if err := s.db.WithContext(ctx).Create(method).Error; err != nil {
		return fmt.Errorf("failed to create payment method %q: %w", method.MethodName, err)
	}
	return nil
}

// CreateTransaction inserts a new transaction row.
func (s *Store) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction %s: %w", tx.TransactionID, err)
	}
	return nil
}

// CountAll returns the row counts of the three entity tables.
func (s *Store) CountAll(ctx context.Context) (items, methods, transactions int64, err error) {
	db := s.db.WithContext(ctx)
	if err = db.Model(&model.Item{}).Count(&items).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count items: %w", err)
	}
	if err = db.Model(&model.PaymentMethod{}).Count(&methods).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count payment methods: %w", err)
	}
	if err = db.Model(&model.Transaction{}).Count(&transactions).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return items, methods, transactions, nil
}

// ItemsInBatches streams item rows ordered by primary key in fixed-size
// slices.
func (s *Store) ItemsInBatches(ctx context.Context, size int, fn func([]model.Item) error) error {
	for offset := 0; ; offset += size {
		var batch []model.Item
		err := s.db.WithContext(ctx).
			Order("item_id").
			Limit(size).
			Offset(offset).
			Find(&batch).Error
		if err != nil {
			return fmt.Errorf("failed to read items at offset %d: %w", offset, err)
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < size {
			return nil
		}
	}
}

// PaymentMethodsInBatches streams payment-method rows ordered by primary
// key in fixed-size slices.
func (s *Store) PaymentMethodsInBatches(ctx context.Context, size int, fn func([]model.PaymentMethod) error) error {
	for offset := 0; ; offset += size {
		var batch []model.PaymentMethod
		err := s.db.WithContext(ctx).
			Order("payment_method_id").
			Limit(size).
			Offset(offset).
			Find(&batch).Error
		if err != nil {
			return fmt.Errorf("failed to read payment methods at offset %d: %w", offset, err)
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < size {
			return nil
		}
	}
}

// TransactionsInBatches streams transaction rows ordered by natural key in
// fixed-size slices.
func (s *Store) TransactionsInBatches(ctx context.Context, size int, fn func([]model.Transaction) error) error {
	for offset := 0; ; offset += size {
		var batch []model.Transaction
		err := s.db.WithContext(ctx).
			Order("transaction_id").
			Limit(size).
			Offset(offset).
			Find(&batch).Error
		if err != nil {
			return fmt.Errorf("failed to read transactions at offset %d: %w", offset, err)
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < size {
			return nil
		}
	}
}

// ItemsByID returns every item keyed by surrogate id, for embedding lookups.
func (s *Store) ItemsByID(ctx context.Context) (map[uint]model.Item, error) {
	var items []model.Item
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	byID := make(map[uint]model.Item, len(items))
	for _, item := range items {
		byID[item.ItemID] = item
	}
	return byID, nil
}

// PaymentMethodsByID returns every payment method keyed by surrogate id.
func (s *Store) PaymentMethodsByID(ctx context.Context) (map[uint]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	if err := s.db.WithContext(ctx).Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to load payment methods: %w", err)
	}

	byID := make(map[uint]model.PaymentMethod, len(methods))
	for _, m := range methods {
		byID[m.PaymentMethodID] = m
	}
	return byID, nil
}
