package model

// Document projections written to MongoDB. These are derived snapshots,
// never authoritative: every replication run drops and rebuilds them.
//
// Decimal columns become plain float64 fields so documents carry ordinary
// BSON doubles rather than a marshalled decimal struct.

// ItemDoc mirrors an Item row field-for-field, with the surrogate key
// copied into the document identifier.
type ItemDoc struct {
	ID           uint    `bson:"_id"`
	ItemID       uint    `bson:"item_id"`
	ItemName     string  `bson:"item_name"`
	PricePerUnit float64 `bson:"price_per_unit"`
}

// PaymentMethodDoc mirrors a PaymentMethod row.
type PaymentMethodDoc struct {
	ID              uint   `bson:"_id"`
	PaymentMethodID uint   `bson:"payment_method_id"`
	MethodName      string `bson:"method_name"`
}

// TransactionDoc mirrors a Transaction row in the normalized layout.
// Foreign keys stay plain scalars; nothing is embedded or re-resolved.
type TransactionDoc struct {
	ID              string  `bson:"_id"`
	TransactionID   string  `bson:"transaction_id"`
	ItemID          *uint   `bson:"item_id,omitempty"`
	PaymentMethodID *uint   `bson:"payment_method_id,omitempty"`
	Quantity        float64 `bson:"quantity"`
	TotalSpent      float64 `bson:"total_spent"`
	Location        string  `bson:"location"`
	TransactionDate string  `bson:"transaction_date"`
}

// ItemEmbed is the item snapshot embedded in a denormalized transaction.
type ItemEmbed struct {
	ItemID       uint    `bson:"item_id"`
	ItemName     string  `bson:"item_name"`
	PricePerUnit float64 `bson:"price_per_unit"`
}

// PaymentMethodEmbed is the payment-method snapshot embedded in a
// denormalized transaction.
type PaymentMethodEmbed struct {
	PaymentMethodID uint   `bson:"payment_method_id"`
	MethodName      string `bson:"method_name"`
}

// TransactionDetailDoc is the denormalized layout: the transaction's own
// scalars plus embedded snapshots of the related rows at copy time. When a
// foreign key does not resolve the sub-document is omitted entirely, not
// null-filled, hence the pointer fields with omitempty.
type TransactionDetailDoc struct {
	ID              string              `bson:"_id"`
	TransactionID   string              `bson:"transaction_id"`
	Quantity        float64             `bson:"quantity"`
	TotalSpent      float64             `bson:"total_spent"`
	Location        string              `bson:"location"`
	TransactionDate string              `bson:"transaction_date"`
	Item            *ItemEmbed          `bson:"item,omitempty"`
	PaymentMethod   *PaymentMethodEmbed `bson:"payment_method,omitempty"`
}

// Doc projects an Item row to its normalized document.
func (i Item) Doc() ItemDoc {
	return ItemDoc{
		ID:           i.ItemID,
		ItemID:       i.ItemID,
		ItemName:     i.ItemName,
		PricePerUnit: i.PricePerUnit.InexactFloat64(),
	}
}

// Embed projects an Item row to its embedded snapshot.
func (i Item) Embed() *ItemEmbed {
	return &ItemEmbed{
		ItemID:       i.ItemID,
		ItemName:     i.ItemName,
		PricePerUnit: i.PricePerUnit.InexactFloat64(),
	}
}

// Doc projects a PaymentMethod row to its normalized document.
func (p PaymentMethod) Doc() PaymentMethodDoc {
	return PaymentMethodDoc{
		ID:              p.PaymentMethodID,
		PaymentMethodID: p.PaymentMethodID,
		MethodName:      p.MethodName,
	}
}

// Embed projects a PaymentMethod row to its embedded snapshot.
func (p PaymentMethod) Embed() *PaymentMethodEmbed {
	return &PaymentMethodEmbed{
		PaymentMethodID: p.PaymentMethodID,
		MethodName:      p.MethodName,
	}
}

// Doc projects a Transaction row to its normalized document.
func (t Transaction) Doc() TransactionDoc {
	return TransactionDoc{
		ID:              t.TransactionID,
		TransactionID:   t.TransactionID,
		ItemID:          t.ItemID,
		PaymentMethodID: t.PaymentMethodID,
		Quantity:        t.Quantity.InexactFloat64(),
		TotalSpent:      t.TotalSpent.InexactFloat64(),
		Location:        t.Location,
		TransactionDate: t.TransactionDate.Format(DateFormat),
	}
}

// DetailDoc projects a Transaction row to its denormalized document.
// item and method may be nil when the corresponding foreign key is null or
// dangling; the embed is then left out of the document.
func (t Transaction) DetailDoc(item *Item, method *PaymentMethod) TransactionDetailDoc {
	doc := TransactionDetailDoc{
		ID:              t.TransactionID,
		TransactionID:   t.TransactionID,
		Quantity:        t.Quantity.InexactFloat64(),
		TotalSpent:      t.TotalSpent.InexactFloat64(),
		Location:        t.Location,
		TransactionDate: t.TransactionDate.Format(DateFormat),
	}
	if item != nil {
		doc.Item = item.Embed()
	}
	if method != nil {
		doc.PaymentMethod = method.Embed()
	}
	return doc
}
