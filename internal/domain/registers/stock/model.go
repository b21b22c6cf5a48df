// Package stock provides the item stock ledger.
//
// current_stock on the item row is the authoritative on-hand quantity.
// Every change goes through Ledger.Apply, which updates it with a
// compare-and-swap and appends an immutable Transaction.
package stock

import (
	"time"

	"weavebooks/internal/core/types"
)

// Direction of a stock movement.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// DocumentKind names the document type that caused a movement.
type DocumentKind string

const (
	DocInvoice       DocumentKind = "invoice"
	DocPurchaseBill  DocumentKind = "purchase_bill"
	DocPurchaseOrder DocumentKind = "purchase_order"
)

// DocumentRef points at the originating document.
type DocumentRef struct {
	Kind   DocumentKind
	ID     string
	Number string
}

// Transaction is an append-only stock movement record.
type Transaction struct {
	ID             string         `json:"transaction_id" db:"id" bson:"_id"`
	AccountID      string         `json:"account_id" db:"account_id" bson:"account_id"`
	ItemID         string         `json:"item_id" db:"item_id" bson:"item_id"`
	ItemName       string         `json:"item_name" db:"item_name" bson:"item_name"`
	DocumentKind   DocumentKind   `json:"document_kind" db:"document_kind" bson:"document_kind"`
	DocumentID     string         `json:"document_id" db:"document_id" bson:"document_id"`
	DocumentNumber string         `json:"document_number" db:"document_number" bson:"document_number"`
	Direction      Direction      `json:"transaction_type" db:"direction" bson:"direction"`
	Quantity       types.Quantity `json:"quantity" db:"quantity" bson:"quantity"`
	PreviousStock  types.Quantity `json:"previous_stock" db:"previous_stock" bson:"previous_stock"`
	NewStock       types.Quantity `json:"new_stock" db:"new_stock" bson:"new_stock"`
	Reason         string         `json:"notes" db:"reason" bson:"reason"`
	CreatedAt      time.Time      `json:"transaction_date" db:"created_at" bson:"created_at"`
}

// Signed returns the quantity with in positive and out negative.
func (t *Transaction) Signed() types.Quantity {
	if t.Direction == DirectionOut {
		return -t.Quantity
	}
	return t.Quantity
}

// Level is the stock state of one item.
type Level struct {
	ItemID  string
	Name    string
	Current types.Quantity
}

// Requirement is a quantity a document needs to take out of stock.
type Requirement struct {
	ItemID   string
	ItemName string
	Quantity types.Quantity
}

// Movement is one signed stock change: negative for sales, positive for receipts and reversals.
type Movement struct {
	ItemID   string
	ItemName string
	Delta    types.Quantity
	Reason   string
}

// Inverse returns the movement that undoes m.
func (m Movement) Inverse(reason string) Movement {
	return Movement{ItemID: m.ItemID, ItemName: m.ItemName, Delta: -m.Delta, Reason: reason}
}
