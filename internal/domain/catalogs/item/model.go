// Package item provides the catalog of stocked goods.
package item

import (
	"context"
	"strings"
	"time"

	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
)

// Status values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Item is a sellable/purchasable good. CurrentStock is changed only by
// the stock ledger, or by an opening-stock edit before any movement exists.
type Item struct {
	ID            string         `json:"item_id" db:"id" bson:"_id"`
	AccountID     string         `json:"account_id" db:"account_id" bson:"account_id"`
	Name          string         `json:"item_name" db:"name" bson:"name"`
	ItemType      string         `json:"item_type" db:"item_type" bson:"item_type"`
	SKU           string         `json:"sku" db:"sku" bson:"sku"`
	Brand         string         `json:"brand" db:"brand" bson:"brand"`
	Category      string         `json:"category_id" db:"category" bson:"category"`
	HSNCode       string         `json:"hsn_code" db:"hsn_code" bson:"hsn_code"`
	Unit          string         `json:"unit" db:"unit" bson:"unit"`
	TaxRate       types.Percent  `json:"tax_rate" db:"tax_rate" bson:"tax_rate"`
	PurchasePrice types.Money    `json:"purchase_price" db:"purchase_price" bson:"purchase_price"`
	SellingPrice  types.Money    `json:"selling_price" db:"selling_price" bson:"selling_price"`
	ReorderLevel  types.Quantity `json:"reorder_level" db:"reorder_level" bson:"reorder_level"`
	OpeningStock  types.Quantity `json:"opening_stock" db:"opening_stock" bson:"opening_stock"`
	CurrentStock  types.Quantity `json:"current_stock" db:"current_stock" bson:"current_stock"`
	Status        string         `json:"status" db:"status" bson:"status"`
	Description   string         `json:"description" db:"description" bson:"description"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// Validate checks required fields and non-negative amounts.
func (i *Item) Validate(ctx context.Context) error {
	if strings.TrimSpace(i.Name) == "" {
		return apperror.NewValidation("item name is required").WithDetail("field", "item_name")
	}
	if i.OpeningStock.IsNegative() {
		return apperror.NewValidation("opening stock cannot be negative").WithDetail("field", "opening_stock")
	}
	if i.ReorderLevel.IsNegative() {
		return apperror.NewValidation("reorder level cannot be negative").WithDetail("field", "reorder_level")
	}
	if i.PurchasePrice.IsNegative() || i.SellingPrice.IsNegative() {
		return apperror.NewValidation("prices cannot be negative").WithDetail("field", "price")
	}
	if i.TaxRate < 0 {
		return apperror.NewValidation("tax rate cannot be negative").WithDetail("field", "tax_rate")
	}
	return nil
}

// IsActive reports whether the item is not deactivated.
func (i *Item) IsActive() bool { return i.Status != StatusInactive }

// IsLowStock reports whether stock is at or below the reorder level.
func (i *Item) IsLowStock() bool { return i.CurrentStock <= i.ReorderLevel }

// StockValue is current stock valued at purchase price.
func (i *Item) StockValue() types.Money { return i.CurrentStock.Times(i.PurchasePrice) }

// Patch holds the fields of a partial update. current_stock is not patchable.
type Patch struct {
	Name          *string
	ItemType      *string
	SKU           *string
	Brand         *string
	Category      *string
	HSNCode       *string
	Unit          *string
	TaxRate       *types.Percent
	PurchasePrice *types.Money
	SellingPrice  *types.Money
	ReorderLevel  *types.Quantity
	OpeningStock  *types.Quantity
	Status        *string
	Description   *string
}

func (p Patch) apply(i *Item) {
	for _, f := range []struct {
		dst *string
		v   *string
	}{
		{&i.Name, p.Name},
		{&i.ItemType, p.ItemType},
		{&i.SKU, p.SKU},
		{&i.Brand, p.Brand},
		{&i.Category, p.Category},
		{&i.HSNCode, p.HSNCode},
		{&i.Unit, p.Unit},
		{&i.Status, p.Status},
		{&i.Description, p.Description},
	} {
		if f.v != nil {
			*f.dst = *f.v
		}
	}
	if p.TaxRate != nil {
		i.TaxRate = *p.TaxRate
	}
	if p.PurchasePrice != nil {
		i.PurchasePrice = *p.PurchasePrice
	}
	if p.SellingPrice != nil {
		i.SellingPrice = *p.SellingPrice
	}
	if p.ReorderLevel != nil {
		i.ReorderLevel = *p.ReorderLevel
	}
	if p.OpeningStock != nil {
		i.OpeningStock = *p.OpeningStock
	}
}
