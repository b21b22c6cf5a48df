// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"weavebooks/internal/domain"
)

// DateLayout is the calendar date format accepted in bodies and queries.
const DateLayout = "2006-01-02"

// Date is a timestamp decoded from either YYYY-MM-DD or RFC 3339.
type Date struct {
	time.Time
}

// ParseDate parses s as a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t.UTC()}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected %s or RFC 3339", s, DateLayout)
	}
	return Date{t.UTC()}, nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(time.RFC3339))
}

// TimePtr returns the date as an optional timestamp.
func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// --- Pagination ---

// ListQuery is the search and paging part of every list endpoint.
type ListQuery struct {
	Search string `form:"search"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query to a normalized domain filter.
func (q ListQuery) ToFilter() domain.ListFilter {
	return domain.ListFilter{Search: q.Search, Limit: q.Limit, Offset: q.Offset}.Normalize()
}

// DateRangeQuery is an optional from/to pair.
type DateRangeQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// ToRange converts the pair; To is made inclusive of the whole day.
func (q DateRangeQuery) ToRange() domain.DateRange {
	r := domain.DateRange{From: q.From}
	if q.To != nil {
		end := q.To.Add(24*time.Hour - time.Nanosecond)
		r.To = &end
	}
	return r
}

// --- Responses ---

// SuccessResponse is a generic acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorBody is the error envelope rendered by the error middleware.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse wraps ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
