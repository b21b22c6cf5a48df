// Package plan enforces per-subscription usage limits.
package plan

import (
	"context"
	"time"

	"weavebooks/internal/core/account"
)

// Resource is a limited, countable resource.
type Resource string

const (
	ResourceInvoices   Resource = "invoices"
	ResourceQuotations Resource = "quotations"
	ResourceItems      Resource = "items"
)

// Feature is a plan-gated capability.
type Feature string

const (
	FeatureReports Feature = "reports"
)

// Unlimited marks a resource without a cap.
const Unlimited int64 = -1

// Plan is one subscription tier.
type Plan struct {
	Key      string
	Name     string
	Limits   map[Resource]int64
	Features map[Feature]bool
}

// Limit returns the cap for r. Resources a plan does not list are unlimited.
func (p Plan) Limit(r Resource) int64 {
	if v, ok := p.Limits[r]; ok {
		return v
	}
	return Unlimited
}

const (
	KeyFree       = "free"
	KeyPro        = "pro"
	KeyEnterprise = "enterprise"
)

var plans = map[string]Plan{
	KeyFree: {
		Key:  KeyFree,
		Name: "Free",
		Limits: map[Resource]int64{
			ResourceInvoices:   5,
			ResourceQuotations: 10,
			ResourceItems:      10,
		},
		Features: map[Feature]bool{FeatureReports: false},
	},
	KeyPro: {
		Key:  KeyPro,
		Name: "Pro",
		Limits: map[Resource]int64{
			ResourceInvoices:   1000,
			ResourceQuotations: 2000,
			ResourceItems:      5000,
		},
		Features: map[Feature]bool{FeatureReports: true},
	},
	KeyEnterprise: {
		Key:  KeyEnterprise,
		Name: "Enterprise",
		Limits: map[Resource]int64{
			ResourceInvoices:   Unlimited,
			ResourceQuotations: Unlimited,
			ResourceItems:      Unlimited,
		},
		Features: map[Feature]bool{FeatureReports: true},
	},
}

// Keys lists the plan keys from the smallest tier up.
func Keys() []string { return []string{KeyFree, KeyPro, KeyEnterprise} }

// Known reports whether key names a plan.
func Known(key string) bool {
	_, ok := plans[key]
	return ok
}

// Lookup returns the plan for key. Unknown keys fall back to free.
func Lookup(key string) Plan {
	if p, ok := plans[key]; ok {
		return p
	}
	return plans[KeyFree]
}

// Account is the tenancy root.
type Account struct {
	ID               string    `json:"id" db:"id" bson:"_id"`
	Name             string    `json:"name" db:"name" bson:"name"`
	SubscriptionType string    `json:"subscription_type" db:"subscription_type" bson:"subscription_type"`
	CreatedAt        time.Time `json:"created_at" db:"created_at" bson:"created_at"`
}

// AccountRepository stores accounts.
type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	Get(ctx context.Context, scope account.Scope) (*Account, error)
	// ListIDs returns every account id (background jobs iterate accounts).
	ListIDs(ctx context.Context) ([]string, error)
	// SetPlan overwrites subscription_type.
	SetPlan(ctx context.Context, scope account.Scope, key string) error
}
