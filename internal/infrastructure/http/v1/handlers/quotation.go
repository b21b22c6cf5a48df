package handlers

import (
	"github.com/gin-gonic/gin"

	"weavebooks/internal/domain/documents/quotation"
	"weavebooks/internal/infrastructure/http/v1/dto"
)

// QuotationHandler serves /quotations.
type QuotationHandler struct {
	*BaseHandler
	service *quotation.Service
}

// NewQuotationHandler creates a quotation handler.
func NewQuotationHandler(base *BaseHandler, service *quotation.Service) *QuotationHandler {
	return &QuotationHandler{BaseHandler: base, service: service}
}

// List handles GET /quotations.
func (h *QuotationHandler) List(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.QuotationListQuery
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

// Create handles POST /quotations.
func (h *QuotationHandler) Create(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.CreateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	q, err := h.service.Create(c.Request.Context(), scope, req.ToDraft())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, q)
}

// Get handles GET /quotations/:id.
func (h *QuotationHandler) Get(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	q, err := h.service.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, q)
}

// Update handles PUT /quotations/:id.
func (h *QuotationHandler) Update(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.UpdateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	q, err := h.service.Update(c.Request.Context(), scope, c.Param("id"), req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, q)
}

// Delete handles DELETE /quotations/:id (hard delete).
func (h *QuotationHandler) Delete(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), scope, c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Quotation deleted")
}

// Duplicate handles POST /quotations/:id/duplicate.
func (h *QuotationHandler) Duplicate(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	q, err := h.service.Duplicate(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, q)
}
