package dto

import (
	"weavebooks/internal/domain/reports"
)

// DashboardStatsQuery is the query of GET /dashboard/stats.
type DashboardStatsQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=366"`
	DateRangeQuery
}

// ToQuery converts the query to a stats query.
func (q DashboardStatsQuery) ToQuery() reports.StatsQuery {
	r := q.DateRangeQuery.ToRange()
	return reports.StatsQuery{Days: q.Days, From: r.From, To: r.To}
}

// CalendarQuery is the query of GET /dashboard/calendar-events. Zero means the current month.
type CalendarQuery struct {
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
	Year  int `form:"year" binding:"omitempty,min=2000,max=9999"`
}

// LimitQuery bounds a top-N endpoint.
type LimitQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// SearchQuery is the query of GET /dashboard/search.
type SearchQuery struct {
	Q string `form:"q" binding:"required"`
}
