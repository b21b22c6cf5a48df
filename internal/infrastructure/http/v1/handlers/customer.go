package handlers

import (
	"github.com/gin-gonic/gin"

	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/infrastructure/http/v1/dto"
)

// CustomerHandler serves /customers.
type CustomerHandler struct {
	*BaseHandler
	service *customer.Service
}

// NewCustomerHandler creates a customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	return &CustomerHandler{BaseHandler: base, service: service}
}

// List handles GET /customers.
func (h *CustomerHandler) List(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.CatalogListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	res, err := h.service.List(c.Request.Context(), scope, customer.ListFilter{
		ListFilter:      q.ToFilter(),
		IncludeInactive: q.IncludeInactive,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// Create handles POST /customers.
func (h *CustomerHandler) Create(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.CreateCustomerRequest
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

// Get handles GET /customers/:id.
func (h *CustomerHandler) Get(c *gin.Context) {
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

// Update handles PUT /customers/:id.
func (h *CustomerHandler) Update(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.UpdateCustomerRequest
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

// Delete handles DELETE /customers/:id (deactivation).
func (h *CustomerHandler) Delete(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), scope, c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Customer deactivated")
}
