package dto

import (
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/payments/payment"
	"weavebooks/internal/domain/payments/vendor_payment"
)

// CreatePaymentRequest is the body of POST /payments.
type CreatePaymentRequest struct {
	PaymentType     string      `json:"payment_type" binding:"required,oneof=receive pay"`
	PartyID         string      `json:"party_id" binding:"required_without=InvoiceID"`
	InvoiceID       string      `json:"invoice_id"`
	Amount          types.Money `json:"amount" binding:"required,gt=0"`
	PaymentDate     *Date       `json:"payment_date"`
	PaymentMode     string      `json:"payment_mode"`
	ReferenceNumber string      `json:"reference_number"`
	Notes           string      `json:"notes"`
}

// ToEntity maps the request to a new payment.
func (r CreatePaymentRequest) ToEntity() *payment.Payment {
	p := &payment.Payment{
		PaymentType:     payment.Type(r.PaymentType),
		PartyID:         r.PartyID,
		InvoiceID:       r.InvoiceID,
		Amount:          r.Amount,
		PaymentMode:     r.PaymentMode,
		ReferenceNumber: r.ReferenceNumber,
		Notes:           r.Notes,
	}
	if r.PaymentDate != nil {
		p.PaymentDate = r.PaymentDate.Time
	}
	return p
}

// PaymentListQuery is the query of GET /payments.
type PaymentListQuery struct {
	ListQuery
	PaymentType string `form:"payment_type" binding:"omitempty,oneof=receive pay"`
	PartyID     string `form:"party_id"`
	InvoiceID   string `form:"invoice_id"`
}

// ToFilter converts the query to a payment filter.
func (q PaymentListQuery) ToFilter() payment.ListFilter {
	return payment.ListFilter{
		ListFilter:  q.ListQuery.ToFilter(),
		PaymentType: payment.Type(q.PaymentType),
		PartyID:     q.PartyID,
		InvoiceID:   q.InvoiceID,
	}
}

// CreateVendorPaymentRequest is the body of POST /vendor-payments.
type CreateVendorPaymentRequest struct {
	WeaverID        string      `json:"weaver_id" binding:"required_without=BillID"`
	BillID          string      `json:"bill_id"`
	Amount          types.Money `json:"amount" binding:"required,gt=0"`
	PaymentDate     *Date       `json:"payment_date"`
	PaymentMode     string      `json:"payment_mode"`
	ReferenceNumber string      `json:"reference_number"`
	Notes           string      `json:"notes"`
}

// ToEntity maps the request to a new vendor payment.
func (r CreateVendorPaymentRequest) ToEntity() *vendor_payment.VendorPayment {
	p := &vendor_payment.VendorPayment{
		WeaverID:        r.WeaverID,
		BillID:          r.BillID,
		Amount:          r.Amount,
		PaymentMode:     r.PaymentMode,
		ReferenceNumber: r.ReferenceNumber,
		Notes:           r.Notes,
	}
	if r.PaymentDate != nil {
		p.PaymentDate = r.PaymentDate.Time
	}
	return p
}

// VendorPaymentListQuery is the query of GET /vendor-payments.
type VendorPaymentListQuery struct {
	ListQuery
	WeaverID string `form:"weaver_id"`
	BillID   string `form:"bill_id"`
}

// ToFilter converts the query to a vendor payment filter.
func (q VendorPaymentListQuery) ToFilter() vendor_payment.ListFilter {
	return vendor_payment.ListFilter{ListFilter: q.ListQuery.ToFilter(), WeaverID: q.WeaverID, BillID: q.BillID}
}
