package handlers

import (
	"github.com/gin-gonic/gin"

	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler serves /invoices.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
}

// NewInvoiceHandler creates an invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// List handles GET /invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.InvoiceListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	res, err := h.service.List(c.Request.Context(), scope, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// Stats handles GET /invoices/stats.
func (h *InvoiceHandler) Stats(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), scope)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stats)
}

// Create handles POST /invoices.
func (h *InvoiceHandler) Create(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.service.Create(c.Request.Context(), scope, req.ToDraft())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, inv)
}

// Get handles GET /invoices/:id. The payment history is included.
func (h *InvoiceHandler) Get(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	detail, err := h.service.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, detail)
}

// GetByNumber handles GET /invoices/number/:number.
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	detail, err := h.service.GetByNumber(c.Request.Context(), scope, c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, detail)
}

// Update handles PUT /invoices/:id.
func (h *InvoiceHandler) Update(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.UpdateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.service.Update(c.Request.Context(), scope, c.Param("id"), req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// Cancel handles POST /invoices/:id/cancel and DELETE /invoices/:id.
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	inv, err := h.service.Cancel(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// AddPayment handles POST /invoices/:id/payments.
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.AddPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.service.AddPayment(c.Request.Context(), scope, c.Param("id"), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// Duplicate handles POST /invoices/:id/duplicate.
func (h *InvoiceHandler) Duplicate(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	inv, err := h.service.Duplicate(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, inv)
}

// Finalize handles POST /invoices/:id/finalize: deducts the stock of a duplicate.
func (h *InvoiceHandler) Finalize(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	inv, err := h.service.Finalize(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}
