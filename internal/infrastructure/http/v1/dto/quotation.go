package dto

import (
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/documents/quotation"
)

// QuotationLineRequest is one line of a quotation body.
type QuotationLineRequest struct {
	ItemID          string         `json:"item_id"`
	ItemName        string         `json:"item_name" binding:"required"`
	Quantity        types.Quantity `json:"qty" binding:"required,gt=0"`
	Unit            string         `json:"unit"`
	Rate            types.Money    `json:"rate" binding:"gte=0"`
	DiscountPercent types.Percent  `json:"discount_percent" binding:"gte=0,lte=10000"`
	TaxPercent      types.Percent  `json:"tax_percent" binding:"gte=0"`
	HSNCode         string         `json:"hsn_code"`
}

func quotationLines(in []QuotationLineRequest) []quotation.Line {
	out := make([]quotation.Line, 0, len(in))
	for _, l := range in {
		out = append(out, quotation.Line{
			ItemID:          l.ItemID,
			ItemName:        l.ItemName,
			Quantity:        l.Quantity,
			Unit:            l.Unit,
			Rate:            l.Rate,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
			HSNCode:         l.HSNCode,
		})
	}
	return out
}

// CreateQuotationRequest is the body of POST /quotations.
type CreateQuotationRequest struct {
	CustomerID      string                 `json:"customer_id" binding:"required"`
	QuoteDate       *Date                  `json:"quote_date"`
	ValidUntil      *Date                  `json:"valid_until"`
	Items           []QuotationLineRequest `json:"items" binding:"required,min=1,dive"`
	Notes           string                 `json:"notes"`
	TermsConditions string                 `json:"terms_conditions"`
	Status          string                 `json:"status" binding:"omitempty,oneof=draft sent accepted declined active"`
}

// ToDraft maps the request to a quotation draft.
func (r CreateQuotationRequest) ToDraft() quotation.Draft {
	d := quotation.Draft{
		CustomerID:      r.CustomerID,
		ValidUntil:      r.ValidUntil.TimePtr(),
		Items:           quotationLines(r.Items),
		Notes:           r.Notes,
		TermsConditions: r.TermsConditions,
		Status:          r.Status,
	}
	if r.QuoteDate != nil {
		d.QuoteDate = r.QuoteDate.Time
	}
	return d
}

// UpdateQuotationRequest is the body of PUT /quotations/:id.
type UpdateQuotationRequest struct {
	CustomerID      *string                 `json:"customer_id" binding:"omitempty,min=1"`
	QuoteDate       *Date                   `json:"quote_date"`
	ValidUntil      *Date                   `json:"valid_until"`
	Items           *[]QuotationLineRequest `json:"items" binding:"omitempty,min=1,dive"`
	Notes           *string                 `json:"notes"`
	TermsConditions *string                 `json:"terms_conditions"`
	Status          *string                 `json:"status" binding:"omitempty,oneof=draft sent accepted declined active"`
}

// ToPatch maps the request to a quotation patch.
func (r UpdateQuotationRequest) ToPatch() quotation.Patch {
	p := quotation.Patch{
		CustomerID:      r.CustomerID,
		QuoteDate:       r.QuoteDate.TimePtr(),
		ValidUntil:      r.ValidUntil.TimePtr(),
		Notes:           r.Notes,
		TermsConditions: r.TermsConditions,
		Status:          r.Status,
	}
	if r.Items != nil {
		lines := quotationLines(*r.Items)
		p.Items = &lines
	}
	return p
}

// QuotationListQuery is the query of GET /quotations.
type QuotationListQuery struct {
	ListQuery
	CustomerID string `form:"customer_id"`
	Status     string `form:"status"`
}

// ToFilter converts the query to a quotation filter.
func (q QuotationListQuery) ToFilter() quotation.ListFilter {
	return quotation.ListFilter{ListFilter: q.ListQuery.ToFilter(), CustomerID: q.CustomerID, Status: q.Status}
}
