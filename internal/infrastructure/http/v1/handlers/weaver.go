package handlers

import (
	"github.com/gin-gonic/gin"

	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/infrastructure/http/v1/dto"
)

// WeaverHandler serves /weavers.
type WeaverHandler struct {
	*BaseHandler
	service *weaver.Service
}

// NewWeaverHandler creates a weaver handler.
func NewWeaverHandler(base *BaseHandler, service *weaver.Service) *WeaverHandler {
	return &WeaverHandler{BaseHandler: base, service: service}
}

// List handles GET /weavers.
func (h *WeaverHandler) List(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.CatalogListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	res, err := h.service.List(c.Request.Context(), scope, weaver.ListFilter{
		ListFilter:      q.ToFilter(),
		IncludeInactive: q.IncludeInactive,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// Create handles POST /weavers.
func (h *WeaverHandler) Create(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.CreateWeaverRequest
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

// Get handles GET /weavers/:id.
func (h *WeaverHandler) Get(c *gin.Context) {
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

// Update handles PUT /weavers/:id.
func (h *WeaverHandler) Update(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.UpdateWeaverRequest
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

// Delete handles DELETE /weavers/:id (deactivation).
func (h *WeaverHandler) Delete(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), scope, c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Weaver deactivated")
}
