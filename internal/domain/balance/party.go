package balance

import (
	"context"
	"fmt"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/pkg/logger"
)

// Store applies an atomic increment to a party's current_balance.
type Store interface {
	AdjustBalance(ctx context.Context, scope account.Scope, id string, delta types.Money) error
}

// PartyLedger applies incremental deltas to customer (receivable) and
// weaver (payable) running balances. current_balance is a cached projection;
// reconcile.Auditor recomputes it from source documents.
type PartyLedger struct {
	customers Store
	weavers   Store
}

// NewPartyLedger creates a PartyLedger.
func NewPartyLedger(customers, weavers Store) *PartyLedger {
	return &PartyLedger{customers: customers, weavers: weavers}
}

// Receivable changes what the customer owes. Obligations are positive, receipts negative.
func (l *PartyLedger) Receivable(ctx context.Context, scope account.Scope, customerID string, delta types.Money, reason string) error {
	return l.apply(ctx, scope, l.customers, "customer", customerID, delta, reason)
}

// Payable changes what the account owes the weaver. Bills are positive, payments negative.
func (l *PartyLedger) Payable(ctx context.Context, scope account.Scope, weaverID string, delta types.Money, reason string) error {
	return l.apply(ctx, scope, l.weavers, "weaver", weaverID, delta, reason)
}

func (l *PartyLedger) apply(ctx context.Context, scope account.Scope, store Store, party, id string, delta types.Money, reason string) error {
	if delta == 0 || id == "" {
		return nil
	}
	if err := store.AdjustBalance(ctx, scope, id, delta); err != nil {
		return fmt.Errorf("adjust %s balance: %w", party, err)
	}
	logger.Debug(ctx, "party balance adjusted",
		"party", party, "id", id, "delta", delta.String(), "reason", reason)
	return nil
}
