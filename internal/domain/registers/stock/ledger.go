package stock

import (
	"context"
	"fmt"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/id"
	"weavebooks/internal/core/types"
	"weavebooks/pkg/logger"
)

// Ledger validates and applies stock movements.
type Ledger struct {
	items ItemStore
	repo  Repository
	clock clock.Clock
}

// NewLedger creates a stock ledger.
func NewLedger(items ItemStore, repo Repository, clk clock.Clock) *Ledger {
	return &Ledger{items: items, repo: repo, clock: clk}
}

// Check verifies that every requirement can be met from current stock.
// Lines for the same item are summed. Nothing is modified.
//
// It returns NOT_FOUND for the first unknown item, otherwise one
// INSUFFICIENT_STOCK error listing every short item.
func (l *Ledger) Check(ctx context.Context, scope account.Scope, reqs []Requirement) error {
	if len(reqs) == 0 {
		return nil
	}

	order := make([]string, 0, len(reqs))
	need := make(map[string]types.Quantity, len(reqs))
	names := make(map[string]string, len(reqs))
	for _, r := range reqs {
		if _, seen := need[r.ItemID]; !seen {
			order = append(order, r.ItemID)
			names[r.ItemID] = r.ItemName
		}
		need[r.ItemID] += r.Quantity
	}

	levels, err := l.items.StockLevels(ctx, scope, order)
	if err != nil {
		return fmt.Errorf("load stock levels: %w", err)
	}

	var short []apperror.StockShortage
	for _, itemID := range order {
		lvl, ok := levels[itemID]
		if !ok {
			return apperror.NewNotFound("item", itemID).WithDetail("item_name", names[itemID])
		}
		if lvl.Current < need[itemID] {
			short = append(short, apperror.StockShortage{
				ItemID:    itemID,
				ItemName:  lvl.Name,
				Requested: need[itemID].Float64(),
				Available: lvl.Current.Float64(),
			})
		}
	}
	if len(short) > 0 {
		return apperror.NewInsufficientStockLines(short)
	}
	return nil
}

// Apply performs each movement with a guarded update and records a Transaction.
//
// If any line's guard fails, the lines already applied by this call are
// reverted with "rollback:" transactions before the error is returned,
// so a batch never leaves partial stock changes behind.
func (l *Ledger) Apply(ctx context.Context, scope account.Scope, ref DocumentRef, moves []Movement) ([]*Transaction, error) {
	applied := make([]*Transaction, 0, len(moves))

	for _, m := range moves {
		if m.Delta == 0 {
			continue
		}
		t, err := l.applyOne(ctx, scope, ref, m)
		if err != nil {
			l.revert(ctx, scope, ref, applied)
			return nil, err
		}
		applied = append(applied, t)
	}

	if len(applied) > 0 {
		logger.Info(ctx, "stock movements applied",
			"document", ref.Kind, "document_id", ref.ID, "number", ref.Number, "count", len(applied))
	}
	return applied, nil
}

func (l *Ledger) applyOne(ctx context.Context, scope account.Scope, ref DocumentRef, m Movement) (*Transaction, error) {
	lvl, ok, err := l.items.AdjustStock(ctx, scope, m.ItemID, m.Delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		name := lvl.Name
		if name == "" {
			name = m.ItemName
		}
		return nil, apperror.NewInsufficientStock(m.ItemID, name, m.Delta.Abs().Float64(), lvl.Current.Float64())
	}

	dir := DirectionIn
	if m.Delta < 0 {
		dir = DirectionOut
	}
	name := m.ItemName
	if name == "" {
		name = lvl.Name
	}
	t := &Transaction{
		ID:             id.New(),
		AccountID:      scope.ID(),
		ItemID:         m.ItemID,
		ItemName:       name,
		DocumentKind:   ref.Kind,
		DocumentID:     ref.ID,
		DocumentNumber: ref.Number,
		Direction:      dir,
		Quantity:       m.Delta.Abs(),
		PreviousStock:  lvl.Current - m.Delta,
		NewStock:       lvl.Current,
		Reason:         m.Reason,
		CreatedAt:      l.clock.Now(),
	}
	if err := l.repo.Insert(ctx, scope, t); err != nil {
		// stock already moved for this line; undo it before reporting
		if _, _, rerr := l.items.AdjustStock(ctx, scope, m.ItemID, -m.Delta); rerr != nil {
			logger.Error(ctx, "undo stock adjustment failed", "item_id", m.ItemID, "error", rerr)
		}
		return nil, fmt.Errorf("record stock transaction: %w", err)
	}
	return t, nil
}

// revert undoes applied transactions newest first.
func (l *Ledger) revert(ctx context.Context, scope account.Scope, ref DocumentRef, applied []*Transaction) {
	for i := len(applied) - 1; i >= 0; i-- {
		t := applied[i]
		m := Movement{ItemID: t.ItemID, ItemName: t.ItemName, Delta: -t.Signed(), Reason: "rollback: " + t.Reason}
		if _, err := l.applyOne(ctx, scope, ref, m); err != nil {
			logger.Error(ctx, "stock rollback failed", "item_id", t.ItemID, "error", err)
		}
	}
	if len(applied) > 0 {
		logger.Warn(ctx, "stock batch rolled back", "document_id", ref.ID, "lines", len(applied))
	}
}

// History lists an item's movements newest first.
func (l *Ledger) History(ctx context.Context, scope account.Scope, itemID string, limit int) ([]*Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	return l.repo.ListByItem(ctx, scope, itemID, limit)
}

// HasMovements reports whether any stock transaction references the item.
func (l *Ledger) HasMovements(ctx context.Context, scope account.Scope, itemID string) (bool, error) {
	n, err := l.repo.CountByItem(ctx, scope, itemID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// NetMovements returns Σ signed movement quantity per item.
func (l *Ledger) NetMovements(ctx context.Context, scope account.Scope) (map[string]types.Quantity, error) {
	return l.repo.NetByItem(ctx, scope)
}

// Outbound builds negative movements for requirements (sales).
func Outbound(reqs []Requirement, reason string) []Movement {
	moves := make([]Movement, 0, len(reqs))
	for _, r := range reqs {
		moves = append(moves, Movement{ItemID: r.ItemID, ItemName: r.ItemName, Delta: -r.Quantity, Reason: reason})
	}
	return moves
}

// Inbound builds positive movements for requirements (receipts, reversals of sales).
func Inbound(reqs []Requirement, reason string) []Movement {
	moves := make([]Movement, 0, len(reqs))
	for _, r := range reqs {
		moves = append(moves, Movement{ItemID: r.ItemID, ItemName: r.ItemName, Delta: r.Quantity, Reason: reason})
	}
	return moves
}
