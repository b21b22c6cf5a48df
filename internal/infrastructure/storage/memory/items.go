package memory

import (
	"context"
	"sort"
	"strings"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/registers/stock"
)

type itemRow struct{ *item.Item }

func (r itemRow) key() string { return r.ID }
func (r itemRow) clone() itemRow {
	cp := *r.Item
	return itemRow{&cp}
}

// ItemRepo implements item.Repository and stock.ItemStore.
type ItemRepo struct{ s *Store }

// Items returns the item repository.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

func (r *ItemRepo) Create(ctx context.Context, scope account.Scope, i *item.Item) error {
	return insert(ctx, r.s, r.s.items, scope, itemRow{i})
}

func (r *ItemRepo) Get(ctx context.Context, scope account.Scope, id string) (*item.Item, error) {
	row, err := find(r.s, r.s.items, scope, id)
	if err != nil {
		return nil, err
	}
	return row.Item, nil
}

func (r *ItemRepo) Update(ctx context.Context, scope account.Scope, i *item.Item) error {
	return replace(ctx, r.s, r.s.items, scope, itemRow{i}, func(old, cur itemRow) itemRow {
		cur.CurrentStock = old.CurrentStock
		return cur
	})
}

func (r *ItemRepo) List(ctx context.Context, scope account.Scope, f item.ListFilter) ([]*item.Item, int64, error) {
	rows := selectRows(r.s, r.s.items, scope, func(i itemRow) bool {
		if !f.IncludeInactive && !i.IsActive() {
			return false
		}
		if f.Category != "" && i.Category != f.Category {
			return false
		}
		if f.LowStockOnly && !i.IsLowStock() {
			return false
		}
		return matches(f.Search, i.Name, i.SKU)
	})
	if f.Newest {
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].CreatedAt.After(rows[b].CreatedAt) })
	} else {
		sort.SliceStable(rows, func(a, b int) bool { return strings.ToLower(rows[a].Name) < strings.ToLower(rows[b].Name) })
	}
	rows, total := page(rows, f.ListFilter)
	out := make([]*item.Item, len(rows))
	for i, it := range rows {
		out[i] = it.Item
	}
	return out, total, nil
}

func (r *ItemRepo) CountActive(ctx context.Context, scope account.Scope) (int64, error) {
	return int64(len(selectRows(r.s, r.s.items, scope, func(i itemRow) bool { return i.IsActive() }))), nil
}

func (r *ItemRepo) Summary(ctx context.Context, scope account.Scope) (item.Summary, error) {
	var sum item.Summary
	for _, i := range selectRows(r.s, r.s.items, scope, func(i itemRow) bool { return i.IsActive() }) {
		sum.ActiveCount++
		if i.IsLowStock() {
			sum.LowStockCount++
		}
		sum.StockValue += i.StockValue()
	}
	return sum, nil
}

func (r *ItemRepo) ExistsByName(ctx context.Context, scope account.Scope, name, excludeID string) (bool, error) {
	rows := selectRows(r.s, r.s.items, scope, func(i itemRow) bool {
		return i.IsActive() && i.ID != excludeID && strings.EqualFold(strings.TrimSpace(i.Name), strings.TrimSpace(name))
	})
	return len(rows) > 0, nil
}

func (r *ItemRepo) SetStock(ctx context.Context, scope account.Scope, id string, value types.Quantity) error {
	return modify(ctx, r.s, r.s.items, scope, id, func(i itemRow) error {
		i.CurrentStock = value
		return nil
	})
}

func (r *ItemRepo) StockLevels(ctx context.Context, scope account.Scope, itemIDs []string) (map[string]stock.Level, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]stock.Level, len(itemIDs))
	for _, id := range itemIDs {
		if i, ok := r.s.items.get(scope.ID(), id); ok {
			out[id] = stock.Level{ItemID: id, Name: i.Name, Current: i.CurrentStock}
		}
	}
	return out, nil
}

// AdjustStock applies delta under the store lock, so check and write are one step.
func (r *ItemRepo) AdjustStock(ctx context.Context, scope account.Scope, itemID string, delta types.Quantity) (stock.Level, bool, error) {
	r.s.mu.Lock()
	i, ok := r.s.items.get(scope.ID(), itemID)
	if !ok {
		r.s.mu.Unlock()
		return stock.Level{}, false, r.s.items.notFound(itemID)
	}
	lvl := stock.Level{ItemID: itemID, Name: i.Name, Current: i.CurrentStock}
	if i.CurrentStock+delta < 0 {
		r.s.mu.Unlock()
		return lvl, false, nil
	}
	i.CurrentStock += delta
	lvl.Current = i.CurrentStock
	r.s.mu.Unlock()

	tx.OnRollback(ctx, "revert stock "+itemID, func(ctx context.Context) error {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		if i, ok := r.s.items.get(scope.ID(), itemID); ok {
			i.CurrentStock -= delta
		}
		return nil
	})
	return lvl, true, nil
}

type stockRow struct{ *stock.Transaction }

func (r stockRow) key() string { return r.ID }
func (r stockRow) clone() stockRow {
	cp := *r.Transaction
	return stockRow{&cp}
}

// StockRepo implements stock.Repository.
type StockRepo struct{ s *Store }

// Stock returns the stock transaction repository.
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

func (r *StockRepo) Insert(ctx context.Context, scope account.Scope, t *stock.Transaction) error {
	return insert(ctx, r.s, r.s.stockTxns, scope, stockRow{t})
}

func (r *StockRepo) ListByItem(ctx context.Context, scope account.Scope, itemID string, limit int) ([]*stock.Transaction, error) {
	rows := selectRows(r.s, r.s.stockTxns, scope, func(t stockRow) bool { return t.ItemID == itemID })
	out := make([]*stock.Transaction, 0, len(rows))
	for i := len(rows) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, rows[i].Transaction)
	}
	return out, nil
}

func (r *StockRepo) CountByItem(ctx context.Context, scope account.Scope, itemID string) (int64, error) {
	return int64(len(selectRows(r.s, r.s.stockTxns, scope, func(t stockRow) bool { return t.ItemID == itemID }))), nil
}

func (r *StockRepo) NetByItem(ctx context.Context, scope account.Scope) (map[string]types.Quantity, error) {
	out := make(map[string]types.Quantity)
	for _, t := range selectRows(r.s, r.s.stockTxns, scope, nil) {
		out[t.ItemID] += t.Signed()
	}
	return out, nil
}

var (
	_ item.Repository  = (*ItemRepo)(nil)
	_ stock.Repository = (*StockRepo)(nil)
)
