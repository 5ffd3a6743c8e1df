//-------------------------------------------------------------------------
//
// salespipe - cafe sales data pipeline
//
// Copyright (c) 2025 - 2026, the salespipe authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package model defines the entity records shared by both pipelines.
// Each entity has exactly one in-memory shape; the relational and document
// stores see it through their own adapters, not through separate types.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Location values accepted on a transaction.
const (
	LocationInStore  = "In-store"
	LocationTakeaway = "Takeaway"
)

// DateFormat is the canonical transaction date layout.
const DateFormat = "2006-01-02"

// Item is a menu item referenced by transactions. Created on first sighting
// of a new name during ingest; immutable thereafter.
type Item struct {
	ItemID       uint            `gorm:"primaryKey;autoIncrement;column:item_id"`
	ItemName     string          `gorm:"size:100;index;column:item_name"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(8,2);column:price_per_unit"`
}

// TableName implements the gorm table-name convention.
func (Item) TableName() string { return "items" }

// PaymentMethod is a payment method referenced by transactions. Same
// creation policy as Item.
type PaymentMethod struct {
	PaymentMethodID uint   `gorm:"primaryKey;autoIncrement;column:payment_method_id"`
	MethodName      string `gorm:"size:50;index;column:method_name"`
}

// TableName implements the gorm table-name convention.
func (PaymentMethod) TableName() string { return "payment_methods" }

// Transaction is one sale. The natural key is the TransactionID string
// carried in the source file. Foreign keys are nullable: ingest may create a
// transaction whose item or payment lookup failed.
type Transaction struct {
	TransactionID   string          `gorm:"primaryKey;size:20;column:transaction_id"`
	ItemID          *uint           `gorm:"column:item_id"`
	PaymentMethodID *uint           `gorm:"column:payment_method_id"`
	Quantity        decimal.Decimal `gorm:"type:decimal(8,1);column:quantity"`
	TotalSpent      decimal.Decimal `gorm:"type:decimal(8,2);column:total_spent"`
	Location        string          `gorm:"size:20;column:location"`
	TransactionDate time.Time       `gorm:"type:date;column:transaction_date"`

	Item          *Item          `gorm:"foreignKey:ItemID"`
	PaymentMethod *PaymentMethod `gorm:"foreignKey:PaymentMethodID"`
}

// TableName implements the gorm table-name convention.
func (Transaction) TableName() string { return "transactions" }
