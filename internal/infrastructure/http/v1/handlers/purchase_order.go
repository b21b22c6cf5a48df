package handlers

import (
	"github.com/gin-gonic/gin"

	"weavebooks/internal/domain/documents/purchase_order"
	"weavebooks/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler serves /purchase-orders.
type PurchaseOrderHandler struct {
	*BaseHandler
	service *purchase_order.Service
}

// NewPurchaseOrderHandler creates a purchase order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchase_order.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{BaseHandler: base, service: service}
}

// List handles GET /purchase-orders.
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.PurchaseOrderListQuery
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

// Create handles POST /purchase-orders.
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	po, err := h.service.Create(c.Request.Context(), scope, req.ToDraft())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, po)
}

// Get handles GET /purchase-orders/:id.
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	po, err := h.service.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, po)
}

// Update handles PUT /purchase-orders/:id.
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.UpdatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	po, err := h.service.Update(c.Request.Context(), scope, c.Param("id"), req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, po)
}

// SetStatus handles PUT /purchase-orders/:id/status.
func (h *PurchaseOrderHandler) SetStatus(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.SetPurchaseOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	po, err := h.service.SetStatus(c.Request.Context(), scope, c.Param("id"), purchase_order.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, po)
}

// Cancel handles DELETE /purchase-orders/:id (soft delete).
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	po, err := h.service.Cancel(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, po)
}
