package handlers

import (
	"github.com/gin-gonic/gin"

	"weavebooks/internal/domain/payments/vendor_payment"
	"weavebooks/internal/infrastructure/http/v1/dto"
)

// VendorPaymentHandler serves /vendor-payments.
type VendorPaymentHandler struct {
	*BaseHandler
	service *vendor_payment.Service
}

// NewVendorPaymentHandler creates a vendor payment handler.
func NewVendorPaymentHandler(base *BaseHandler, service *vendor_payment.Service) *VendorPaymentHandler {
	return &VendorPaymentHandler{BaseHandler: base, service: service}
}

// List handles GET /vendor-payments.
func (h *VendorPaymentHandler) List(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.VendorPaymentListQuery
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

// ByBill handles GET /vendor-payments/by-bill/:id.
func (h *VendorPaymentHandler) ByBill(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	res, err := h.service.ListByBill(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	if res == nil {
		res = []*vendor_payment.VendorPayment{}
	}
	h.OK(c, res)
}

// Create handles POST /vendor-payments.
func (h *VendorPaymentHandler) Create(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.CreateVendorPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), scope, p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// Get handles GET /vendor-payments/:id.
func (h *VendorPaymentHandler) Get(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Delete handles DELETE /vendor-payments/:id.
func (h *VendorPaymentHandler) Delete(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), scope, c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Vendor payment deleted")
}
