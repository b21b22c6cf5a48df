// Package category provides the item category catalog.
package category

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"weavebooks/internal/core/apperror"
)

// Status values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Name and description bounds, in characters.
const (
	MinNameLength        = 3
	MaxNameLength        = 100
	MaxDescriptionLength = 500
)

// Category groups items. Items reference it by ID in their category field.
type Category struct {
	ID          string    `json:"category_id" db:"id" bson:"_id"`
	AccountID   string    `json:"account_id" db:"account_id" bson:"account_id"`
	Name        string    `json:"category_name" db:"name" bson:"name"`
	Description string    `json:"description" db:"description" bson:"description"`
	Status      string    `json:"status" db:"status" bson:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// Validate trims the name and checks lengths and status.
func (c *Category) Validate(ctx context.Context) error {
	c.Name = strings.TrimSpace(c.Name)
	if n := utf8.RuneCountInString(c.Name); n < MinNameLength || n > MaxNameLength {
		return apperror.NewValidation("category name must be 3 to 100 characters").WithDetail("field", "category_name")
	}
	if utf8.RuneCountInString(c.Description) > MaxDescriptionLength {
		return apperror.NewValidation("description must be at most 500 characters").WithDetail("field", "description")
	}
	if c.Status != StatusActive && c.Status != StatusInactive {
		return apperror.NewValidation("invalid status").WithDetail("field", "status")
	}
	return nil
}

// IsActive reports whether the category is not deactivated.
func (c *Category) IsActive() bool { return c.Status != StatusInactive }

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string
	Description *string
	Status      *string
}

func (p Patch) apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
}
