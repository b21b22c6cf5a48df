package handlers

import (
	"github.com/gin-gonic/gin"

	"weavebooks/internal/domain/reports"
	"weavebooks/internal/infrastructure/http/v1/dto"
)

// DashboardHandler serves the read-only /dashboard endpoints.
type DashboardHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(base *BaseHandler, service *reports.Service) *DashboardHandler {
	return &DashboardHandler{BaseHandler: base, service: service}
}

// Stats handles GET /dashboard/stats.
func (h *DashboardHandler) Stats(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.DashboardStatsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), scope, q.ToQuery())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stats)
}

// TopSellingItems handles GET /dashboard/top-selling-items.
func (h *DashboardHandler) TopSellingItems(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.LimitQuery
	if !h.BindQuery(c, &q) {
		return
	}
	rows, err := h.service.TopSellingItems(c.Request.Context(), scope, q.Limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// RecentInvoices handles GET /dashboard/recent-invoices.
func (h *DashboardHandler) RecentInvoices(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.LimitQuery
	if !h.BindQuery(c, &q) {
		return
	}
	rows, err := h.service.RecentInvoices(c.Request.Context(), scope, q.Limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// CalendarEvents handles GET /dashboard/calendar-events.
func (h *DashboardHandler) CalendarEvents(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.CalendarQuery
	if !h.BindQuery(c, &q) {
		return
	}
	events, err := h.service.CalendarEvents(c.Request.Context(), scope, q.Month, q.Year)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, events)
}

// Notifications handles GET /dashboard/notifications.
func (h *DashboardHandler) Notifications(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	rows, err := h.service.Notifications(c.Request.Context(), scope)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// Activity handles GET /dashboard/activity.
func (h *DashboardHandler) Activity(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	rows, err := h.service.Activity(c.Request.Context(), scope)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// Search handles GET /dashboard/search.
func (h *DashboardHandler) Search(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var q dto.SearchQuery
	if !h.BindQuery(c, &q) {
		return
	}
	hits, err := h.service.Search(c.Request.Context(), scope, q.Q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, hits)
}
