// Package sequence assigns human-readable document numbers such as INV-0007.
//
// Numbers come from an atomic per-account counter. A counter that does not
// exist yet is seeded from the documents already issued, so accounts created
// before counters existed keep their numbering.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/numerator"
	"weavebooks/pkg/logger"
)

// Document kinds.
var (
	Invoice       = numerator.Kind{Key: "invoice", Prefix: "INV", Width: 4}
	PurchaseBill  = numerator.Kind{Key: "purchase_bill", Prefix: "BILL", Width: 4}
	Payment       = numerator.Kind{Key: "payment", Prefix: "PAY", Width: 4}
	VendorPayment = numerator.Kind{Key: "vendor_payment", Prefix: "VPAY", Width: 3}
	PurchaseOrder = numerator.Kind{Key: "purchase_order", Prefix: "PO", Width: 3}
	Quotation     = numerator.Kind{Key: "quotation", Prefix: "QTN", Width: 3}
	Customer      = numerator.Kind{Key: "customer", Prefix: "C", Width: 3, Compact: true}
	Weaver        = numerator.Kind{Key: "weaver", Prefix: "W", Width: 3, Compact: true}
)

// History exposes the numbers already issued for one document kind.
type History interface {
	// LatestNumber returns the number of the most recently created document, or "".
	LatestNumber(ctx context.Context, scope account.Scope) (string, error)

	// CountAll counts every document of the kind, including cancelled ones.
	CountAll(ctx context.Context, scope account.Scope) (int64, error)
}

// Generator issues document numbers.
type Generator struct {
	counter numerator.Counter
}

// NewGenerator creates a Generator backed by counter.
func NewGenerator(counter numerator.Counter) *Generator {
	return &Generator{counter: counter}
}

// Next returns the next number for kind.
//
// An uninitialized counter is seeded from history. If the counter store
// itself fails, the number is derived from history directly.
func (g *Generator) Next(ctx context.Context, scope account.Scope, kind numerator.Kind, history History) (string, error) {
	n, err := g.counter.Next(ctx, scope, kind.Key)
	if errors.Is(err, numerator.ErrNotInitialized) {
		seed, herr := FromHistory(ctx, scope, kind, history)
		if herr != nil {
			return "", herr
		}
		if ierr := g.counter.Init(ctx, scope, kind.Key, seed-1); ierr != nil {
			logger.Warn(ctx, "counter init failed, numbering from history",
				"kind", kind.Key, "error", ierr)
			return kind.Format(seed), nil
		}
		n, err = g.counter.Next(ctx, scope, kind.Key)
	}
	if err != nil {
		logger.Warn(ctx, "counter unavailable, numbering from history", "kind", kind.Key, "error", err)
		seed, herr := FromHistory(ctx, scope, kind, history)
		if herr != nil {
			return "", herr
		}
		return kind.Format(seed), nil
	}
	return kind.Format(n), nil
}

// FromHistory derives the next numeric value from issued documents:
// the latest number's suffix + 1, or count + 1 when there is no latest
// document or its suffix is malformed.
func FromHistory(ctx context.Context, scope account.Scope, kind numerator.Kind, history History) (int64, error) {
	latest, err := history.LatestNumber(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("latest %s number: %w", kind.Key, err)
	}
	if latest != "" {
		if v := kind.Parse(latest); v >= 0 {
			return v + 1, nil
		}
		logger.Debug(ctx, "malformed document number, falling back to count",
			"kind", kind.Key, "number", latest)
	}

	count, err := history.CountAll(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", kind.Key, err)
	}
	return count + 1, nil
}
