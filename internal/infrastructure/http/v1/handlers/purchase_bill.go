package handlers

import (
	"github.com/gin-gonic/gin"

	"weavebooks/internal/domain/documents/purchase_bill"
	"weavebooks/internal/infrastructure/http/v1/dto"
)

// PurchaseBillHandler serves /purchase-bills.
type PurchaseBillHandler struct {
	*BaseHandler
	service *purchase_bill.Service
}

// NewPurchaseBillHandler creates a purchase bill handler.
func NewPurchaseBillHandler(base *BaseHandler, service *purchase_bill.Service) *PurchaseBillHandler {
	return &PurchaseBillHandler{BaseHandler: base, service: service}
}

// List handles GET /purchase-bills.
func (h *PurchaseBillHandler) List(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.PurchaseBillListQuery
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

// Overdue handles GET /purchase-bills/overdue.
func (h *PurchaseBillHandler) Overdue(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.PurchaseBillListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	res, err := h.service.ListOverdue(c.Request.Context(), scope, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// Create handles POST /purchase-bills.
func (h *PurchaseBillHandler) Create(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.CreatePurchaseBillRequest
	if !h.BindJSON(c, &req) {
		return
	}
	bill, err := h.service.Create(c.Request.Context(), scope, req.ToDraft())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, bill)
}

// Get handles GET /purchase-bills/:id.
func (h *PurchaseBillHandler) Get(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	bill, err := h.service.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, bill)
}

// Update handles PUT /purchase-bills/:id.
func (h *PurchaseBillHandler) Update(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.UpdatePurchaseBillRequest
	if !h.BindJSON(c, &req) {
		return
	}
	bill, err := h.service.Update(c.Request.Context(), scope, c.Param("id"), req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, bill)
}

// Delete handles DELETE /purchase-bills/:id.
func (h *PurchaseBillHandler) Delete(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), scope, c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Purchase bill deleted")
}
