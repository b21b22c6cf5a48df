package handlers

import (
	"github.com/gin-gonic/gin"

	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/infrastructure/http/v1/dto"
)

// ItemHandler serves /items.
type ItemHandler struct {
	*BaseHandler
	service *item.Service
}

// NewItemHandler creates an item handler.
func NewItemHandler(base *BaseHandler, service *item.Service) *ItemHandler {
	return &ItemHandler{BaseHandler: base, service: service}
}

// List handles GET /items.
func (h *ItemHandler) List(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.CatalogListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	res, err := h.service.List(c.Request.Context(), scope, item.ListFilter{
		ListFilter:      q.ToFilter(),
		Category:        q.Category,
		LowStockOnly:    q.LowStock,
		IncludeInactive: q.IncludeInactive,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// Create handles POST /items.
func (h *ItemHandler) Create(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entity := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), scope, entity); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entity)
}

// Get handles GET /items/:id.
func (h *ItemHandler) Get(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	entity, err := h.service.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// Update handles PUT /items/:id.
func (h *ItemHandler) Update(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entity, err := h.service.Update(c.Request.Context(), scope, c.Param("id"), req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// Delete handles DELETE /items/:id (deactivation).
func (h *ItemHandler) Delete(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), scope, c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Item deactivated")
}

// StockHistory handles GET /items/:id/stock-history.
func (h *ItemHandler) StockHistory(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.LimitQuery
	if !h.BindQuery(c, &q) {
		return
	}
	rows, err := h.service.StockHistory(c.Request.Context(), scope, c.Param("id"), q.Limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"item_id": c.Param("id"), "transactions": rows})
}
