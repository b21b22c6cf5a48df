package dto

import (
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/documents/invoice"
)

// InvoiceLineRequest is one line of an invoice body. Totals are always recomputed.
type InvoiceLineRequest struct {
	ItemID     string         `json:"item_id" binding:"required"`
	ItemName   string         `json:"item_name"`
	Quantity   types.Quantity `json:"qty" binding:"required,gt=0"`
	Unit       string         `json:"unit"`
	Rate       types.Money    `json:"rate" binding:"gte=0"`
	TaxPercent types.Percent  `json:"tax_percent" binding:"gte=0"`
	HSNCode    string         `json:"hsn_code"`
}

func invoiceLines(in []InvoiceLineRequest) []invoice.Line {
	out := make([]invoice.Line, 0, len(in))
	for _, l := range in {
		out = append(out, invoice.Line{
			ItemID:     l.ItemID,
			ItemName:   l.ItemName,
			Quantity:   l.Quantity,
			Unit:       l.Unit,
			Rate:       l.Rate,
			TaxPercent: l.TaxPercent,
			HSNCode:    l.HSNCode,
		})
	}
	return out
}

// CreateInvoiceRequest is the body of POST /invoices.
type CreateInvoiceRequest struct {
	CustomerID      string               `json:"customer_id" binding:"required"`
	InvoiceDate     *Date                `json:"invoice_date"`
	DueDate         *Date                `json:"due_date"`
	Items           []InvoiceLineRequest `json:"items" binding:"required,min=1,dive"`
	DiscountAmount  types.Money          `json:"discount_amount" binding:"gte=0"`
	ShippingCharges types.Money          `json:"shipping_charges" binding:"gte=0"`
	PaymentStatus   string               `json:"payment_status" binding:"omitempty,oneof=unpaid partial paid"`
	AmountReceived  types.Money          `json:"amount_received" binding:"gte=0"`
	PaymentMode     string               `json:"payment_mode"`
	Notes           string               `json:"notes"`
	PaymentTerms    string               `json:"payment_terms"`
	QuotationID     string               `json:"quotation_id"`
}

// ToDraft maps the request to an invoice draft.
func (r CreateInvoiceRequest) ToDraft() invoice.Draft {
	d := invoice.Draft{
		CustomerID:      r.CustomerID,
		DueDate:         r.DueDate.TimePtr(),
		Items:           invoiceLines(r.Items),
		DiscountAmount:  r.DiscountAmount,
		ShippingCharges: r.ShippingCharges,
		PaymentStatus:   balance.PaymentStatus(r.PaymentStatus),
		AmountReceived:  r.AmountReceived,
		PaymentMode:     r.PaymentMode,
		Notes:           r.Notes,
		PaymentTerms:    r.PaymentTerms,
		QuotationID:     r.QuotationID,
	}
	if r.InvoiceDate != nil {
		d.InvoiceDate = r.InvoiceDate.Time
	}
	return d
}

// UpdateInvoiceRequest is the body of PUT /invoices/:id.
type UpdateInvoiceRequest struct {
	CustomerID      *string               `json:"customer_id" binding:"omitempty,min=1"`
	InvoiceDate     *Date                 `json:"invoice_date"`
	DueDate         *Date                 `json:"due_date"`
	Items           *[]InvoiceLineRequest `json:"items" binding:"omitempty,min=1,dive"`
	DiscountAmount  *types.Money          `json:"discount_amount" binding:"omitempty,gte=0"`
	ShippingCharges *types.Money          `json:"shipping_charges" binding:"omitempty,gte=0"`
	AmountReceived  *types.Money          `json:"amount_received" binding:"omitempty,gte=0"`
	PaymentMode     *string               `json:"payment_mode"`
	Notes           *string               `json:"notes"`
	PaymentTerms    *string               `json:"payment_terms"`
}

// ToPatch maps the request to an invoice patch.
func (r UpdateInvoiceRequest) ToPatch() invoice.Patch {
	p := invoice.Patch{
		CustomerID:      r.CustomerID,
		InvoiceDate:     r.InvoiceDate.TimePtr(),
		DueDate:         r.DueDate.TimePtr(),
		DiscountAmount:  r.DiscountAmount,
		ShippingCharges: r.ShippingCharges,
		AmountReceived:  r.AmountReceived,
		PaymentMode:     r.PaymentMode,
		Notes:           r.Notes,
		PaymentTerms:    r.PaymentTerms,
	}
	if r.Items != nil {
		lines := invoiceLines(*r.Items)
		p.Items = &lines
	}
	return p
}

// AddPaymentRequest is the body of POST /invoices/:id/payments.
type AddPaymentRequest struct {
	Amount          types.Money `json:"amount" binding:"required,gt=0"`
	PaymentDate     *Date       `json:"payment_date"`
	PaymentMode     string      `json:"payment_mode"`
	ReferenceNumber string      `json:"reference_number"`
	Notes           string      `json:"notes"`
}

// ToInput maps the request to a payment input.
func (r AddPaymentRequest) ToInput() invoice.PaymentInput {
	in := invoice.PaymentInput{
		Amount:          r.Amount,
		PaymentMode:     r.PaymentMode,
		ReferenceNumber: r.ReferenceNumber,
		Notes:           r.Notes,
	}
	if r.PaymentDate != nil {
		in.PaymentDate = r.PaymentDate.Time
	}
	return in
}

// InvoiceListQuery is the query of GET /invoices.
type InvoiceListQuery struct {
	ListQuery
	CustomerID    string `form:"customer_id"`
	Status        string `form:"status" binding:"omitempty,oneof=active cancelled all"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=unpaid partial paid"`
	DateRangeQuery
}

// ToFilter converts the query to an invoice filter.
func (q InvoiceListQuery) ToFilter() invoice.ListFilter {
	return invoice.ListFilter{
		ListFilter:    q.ListQuery.ToFilter(),
		CustomerID:    q.CustomerID,
		Status:        q.Status,
		PaymentStatus: balance.PaymentStatus(q.PaymentStatus),
		InvoiceDate:   q.DateRangeQuery.ToRange(),
	}
}
