package dto

import (
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/documents/purchase_bill"
	"weavebooks/internal/domain/documents/purchase_order"
)

// PurchaseLineRequest is one line of a purchase order or bill body.
type PurchaseLineRequest struct {
	ItemID      string         `json:"item_id" binding:"required"`
	ItemName    string         `json:"item_name"`
	ItemCode    string         `json:"item_code"`
	Description string         `json:"description"`
	Quantity    types.Quantity `json:"qty" binding:"required,gt=0"`
	Unit        string         `json:"unit"`
	Rate        types.Money    `json:"rate" binding:"gte=0"`
	TaxRate     types.Percent  `json:"tax_rate" binding:"gte=0"`
}

func purchaseLines(in []PurchaseLineRequest) []purchase_order.Line {
	out := make([]purchase_order.Line, 0, len(in))
	for _, l := range in {
		out = append(out, purchase_order.Line{
			ItemID:      l.ItemID,
			ItemName:    l.ItemName,
			ItemCode:    l.ItemCode,
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			Rate:        l.Rate,
			TaxRate:     l.TaxRate,
		})
	}
	return out
}

// --- Purchase orders ---

// CreatePurchaseOrderRequest is the body of POST /purchase-orders.
type CreatePurchaseOrderRequest struct {
	WeaverID             string                `json:"weaver_id" binding:"required"`
	PODate               *Date                 `json:"po_date"`
	ExpectedDeliveryDate *Date                 `json:"expected_delivery_date"`
	Items                []PurchaseLineRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress      string                `json:"shipping_address"`
	BillingAddress       string                `json:"billing_address"`
	Notes                string                `json:"notes"`
	TermsAndConditions   string                `json:"terms_and_conditions"`
}

// ToDraft maps the request to a purchase order draft.
func (r CreatePurchaseOrderRequest) ToDraft() purchase_order.Draft {
	d := purchase_order.Draft{
		WeaverID:             r.WeaverID,
		ExpectedDeliveryDate: r.ExpectedDeliveryDate.TimePtr(),
		Items:                purchaseLines(r.Items),
		ShippingAddress:      r.ShippingAddress,
		BillingAddress:       r.BillingAddress,
		Notes:                r.Notes,
		TermsAndConditions:   r.TermsAndConditions,
	}
	if r.PODate != nil {
		d.PODate = r.PODate.Time
	}
	return d
}

// UpdatePurchaseOrderRequest is the body of PUT /purchase-orders/:id.
type UpdatePurchaseOrderRequest struct {
	WeaverID             *string                `json:"weaver_id" binding:"omitempty,min=1"`
	PODate               *Date                  `json:"po_date"`
	ExpectedDeliveryDate *Date                  `json:"expected_delivery_date"`
	Items                *[]PurchaseLineRequest `json:"items" binding:"omitempty,min=1,dive"`
	ShippingAddress      *string                `json:"shipping_address"`
	BillingAddress       *string                `json:"billing_address"`
	Notes                *string                `json:"notes"`
	TermsAndConditions   *string                `json:"terms_and_conditions"`
}

// ToPatch maps the request to a purchase order patch.
func (r UpdatePurchaseOrderRequest) ToPatch() purchase_order.Patch {
	p := purchase_order.Patch{
		WeaverID:             r.WeaverID,
		PODate:               r.PODate.TimePtr(),
		ExpectedDeliveryDate: r.ExpectedDeliveryDate.TimePtr(),
		ShippingAddress:      r.ShippingAddress,
		BillingAddress:       r.BillingAddress,
		Notes:                r.Notes,
		TermsAndConditions:   r.TermsAndConditions,
	}
	if r.Items != nil {
		lines := purchaseLines(*r.Items)
		p.Items = &lines
	}
	return p
}

// SetPurchaseOrderStatusRequest is the body of PUT /purchase-orders/:id/status.
type SetPurchaseOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft sent confirmed partially_received received cancelled"`
}

// PurchaseOrderListQuery is the query of GET /purchase-orders.
type PurchaseOrderListQuery struct {
	ListQuery
	WeaverID string `form:"weaver_id"`
	Status   string `form:"status"`
}

// ToFilter converts the query to a purchase order filter.
func (q PurchaseOrderListQuery) ToFilter() purchase_order.ListFilter {
	return purchase_order.ListFilter{
		ListFilter: q.ListQuery.ToFilter(),
		WeaverID:   q.WeaverID,
		Status:     purchase_order.Status(q.Status),
	}
}

// --- Purchase bills ---

// CreatePurchaseBillRequest is the body of POST /purchase-bills.
type CreatePurchaseBillRequest struct {
	WeaverID         string                `json:"weaver_id" binding:"required"`
	POID             string                `json:"po_id"`
	BillDate         *Date                 `json:"bill_date"`
	DueDate          *Date                 `json:"due_date"`
	VendorBillNumber string                `json:"vendor_bill_number"`
	Items            []PurchaseLineRequest `json:"items" binding:"required,min=1,dive"`
	DiscountAmount   types.Money           `json:"discount_amount" binding:"gte=0"`
	Status           string                `json:"status" binding:"omitempty,oneof=draft submitted approved paid"`
	Notes            string                `json:"notes"`
	Attachments      []string              `json:"attachments"`
}

// ToDraft maps the request to a purchase bill draft.
func (r CreatePurchaseBillRequest) ToDraft() purchase_bill.Draft {
	d := purchase_bill.Draft{
		WeaverID:         r.WeaverID,
		POID:             r.POID,
		VendorBillNumber: r.VendorBillNumber,
		Items:            purchaseLines(r.Items),
		DiscountAmount:   r.DiscountAmount,
		Status:           purchase_bill.Status(r.Status),
		Notes:            r.Notes,
		Attachments:      r.Attachments,
	}
	if r.BillDate != nil {
		d.BillDate = r.BillDate.Time
	}
	if r.DueDate != nil {
		d.DueDate = r.DueDate.Time
	}
	return d
}

// UpdatePurchaseBillRequest is the body of PUT /purchase-bills/:id.
type UpdatePurchaseBillRequest struct {
	WeaverID         *string                `json:"weaver_id" binding:"omitempty,min=1"`
	BillDate         *Date                  `json:"bill_date"`
	DueDate          *Date                  `json:"due_date"`
	VendorBillNumber *string                `json:"vendor_bill_number"`
	Items            *[]PurchaseLineRequest `json:"items" binding:"omitempty,min=1,dive"`
	DiscountAmount   *types.Money           `json:"discount_amount" binding:"omitempty,gte=0"`
	Status           *string                `json:"status" binding:"omitempty,oneof=draft submitted approved paid"`
	Notes            *string                `json:"notes"`
	Attachments      *[]string              `json:"attachments"`
}

// ToPatch maps the request to a purchase bill patch.
func (r UpdatePurchaseBillRequest) ToPatch() purchase_bill.Patch {
	p := purchase_bill.Patch{
		WeaverID:         r.WeaverID,
		BillDate:         r.BillDate.TimePtr(),
		DueDate:          r.DueDate.TimePtr(),
		VendorBillNumber: r.VendorBillNumber,
		DiscountAmount:   r.DiscountAmount,
		Notes:            r.Notes,
		Attachments:      r.Attachments,
	}
	if r.Status != nil {
		st := purchase_bill.Status(*r.Status)
		p.Status = &st
	}
	if r.Items != nil {
		lines := purchaseLines(*r.Items)
		p.Items = &lines
	}
	return p
}

// PurchaseBillListQuery is the query of GET /purchase-bills.
type PurchaseBillListQuery struct {
	ListQuery
	WeaverID      string `form:"weaver_id"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=unpaid partial paid overdue"`
}

// ToFilter converts the query to a purchase bill filter.
func (q PurchaseBillListQuery) ToFilter() purchase_bill.ListFilter {
	return purchase_bill.ListFilter{
		ListFilter:    q.ListQuery.ToFilter(),
		WeaverID:      q.WeaverID,
		PaymentStatus: balance.PaymentStatus(q.PaymentStatus),
	}
}
