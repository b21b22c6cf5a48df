package handlers

import (
	"github.com/gin-gonic/gin"

	"weavebooks/internal/domain/catalogs/category"
	"weavebooks/internal/infrastructure/http/v1/dto"
)

// CategoryHandler serves /categories.
type CategoryHandler struct {
	*BaseHandler
	service *category.Service
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(base *BaseHandler, service *category.Service) *CategoryHandler {
	return &CategoryHandler{BaseHandler: base, service: service}
}

// List handles GET /categories.
func (h *CategoryHandler) List(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.CategoryListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	res, err := h.service.List(c.Request.Context(), scope, category.ListFilter{
		ListFilter: q.ToFilter(),
		Status:     q.Status,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.CreateCategoryRequest
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

// Get handles GET /categories/:id.
func (h *CategoryHandler) Get(c *gin.Context) {
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

// Update handles PUT /categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
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

// Delete handles DELETE /categories/:id. Categories in use are kept.
func (h *CategoryHandler) Delete(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), scope, c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Category deleted")
}
