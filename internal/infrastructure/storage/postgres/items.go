package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/registers/stock"
)

// ItemRepo implements item.Repository and the stock ledger's item store.
type ItemRepo struct {
	t table[item.Item]
}

// NewItemRepo creates an item repository.
func NewItemRepo(txm *TxManager) *ItemRepo {
	return &ItemRepo{t: newTable[item.Item](txm, "items", "item")}
}

var activeItem = squirrel.NotEq{"status": item.StatusInactive}

func (r *ItemRepo) Create(ctx context.Context, scope account.Scope, i *item.Item) error {
	return r.t.insert(ctx, scope, i)
}

func (r *ItemRepo) Get(ctx context.Context, scope account.Scope, id string) (*item.Item, error) {
	return r.t.get(ctx, scope, id)
}

func (r *ItemRepo) Update(ctx context.Context, scope account.Scope, i *item.Item) error {
	return r.t.update(ctx, scope, i.ID, i, "current_stock", "created_at")
}

func (r *ItemRepo) List(ctx context.Context, scope account.Scope, f item.ListFilter) ([]*item.Item, int64, error) {
	var where conds
	if !f.IncludeInactive {
		where.add(activeItem)
	}
	where.eqIf("category", f.Category)
	if f.LowStockOnly {
		where.add(squirrel.Expr("current_stock <= reorder_level"))
	}
	where.add(search(f.Search, "name", "sku"))

	order := []string{"lower(name)", "created_at"}
	if f.Newest {
		order = []string{"created_at DESC"}
	}
	return r.t.list(ctx, scope, where, order, f.ListFilter)
}

func (r *ItemRepo) CountActive(ctx context.Context, scope account.Scope) (int64, error) {
	return r.t.count(ctx, scope, activeItem)
}

// Summary values stock in Go so rounding matches Quantity.Times.
func (r *ItemRepo) Summary(ctx context.Context, scope account.Scope) (item.Summary, error) {
	items, err := r.t.all(ctx, scope, []squirrel.Sqlizer{activeItem})
	if err != nil {
		return item.Summary{}, err
	}
	var sum item.Summary
	for _, i := range items {
		sum.ActiveCount++
		if i.IsLowStock() {
			sum.LowStockCount++
		}
		sum.StockValue += i.StockValue()
	}
	return sum, nil
}

func (r *ItemRepo) ExistsByName(ctx context.Context, scope account.Scope, name, excludeID string) (bool, error) {
	where := []squirrel.Sqlizer{
		activeItem,
		squirrel.Expr("lower(btrim(name)) = lower(btrim(?))", name),
	}
	if excludeID != "" {
		where = append(where, squirrel.NotEq{"id": excludeID})
	}
	n, err := r.t.count(ctx, scope, where...)
	return n > 0, err
}

func (r *ItemRepo) SetStock(ctx context.Context, scope account.Scope, id string, value types.Quantity) error {
	return r.t.set(ctx, scope, id, map[string]any{"current_stock": value})
}

type levelRow struct {
	ItemID  string         `db:"id"`
	Name    string         `db:"name"`
	Current types.Quantity `db:"current_stock"`
}

func (r *ItemRepo) StockLevels(ctx context.Context, scope account.Scope, itemIDs []string) (map[string]stock.Level, error) {
	out := make(map[string]stock.Level, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	sql, args, err := Builder().Select("id", "name", "current_stock").
		From(r.t.name).
		Where(r.t.scoped(scope)).
		Where(squirrel.Eq{"id": itemIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []levelRow
	if err := pgxscan.Select(ctx, r.t.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("stock levels: %w", err)
	}
	for _, row := range rows {
		out[row.ItemID] = stock.Level{ItemID: row.ItemID, Name: row.Name, Current: row.Current}
	}
	return out, nil
}

// AdjustStock is a single guarded UPDATE. When the guard rejects the change
// the current level is read back so the caller can report the shortage.
func (r *ItemRepo) AdjustStock(ctx context.Context, scope account.Scope, itemID string, delta types.Quantity) (stock.Level, bool, error) {
	sql, args, err := Builder().Update(r.t.name).
		Set("current_stock", squirrel.Expr("current_stock + ?", delta)).
		Where(r.t.scoped(scope)).
		Where(squirrel.Eq{"id": itemID}).
		Where(squirrel.Expr("current_stock + ? >= 0", delta)).
		Suffix("RETURNING id, name, current_stock").
		ToSql()
	if err != nil {
		return stock.Level{}, false, fmt.Errorf("build update: %w", err)
	}

	var rows []levelRow
	if err := pgxscan.Select(ctx, r.t.querier(ctx), &rows, sql, args...); err != nil {
		return stock.Level{}, false, r.t.translate(err, "adjust stock")
	}
	if len(rows) == 1 {
		return stock.Level{ItemID: rows[0].ItemID, Name: rows[0].Name, Current: rows[0].Current}, true, nil
	}

	levels, err := r.StockLevels(ctx, scope, []string{itemID})
	if err != nil {
		return stock.Level{}, false, err
	}
	lvl, ok := levels[itemID]
	if !ok {
		return stock.Level{}, false, r.t.notFound(itemID)
	}
	return lvl, false, nil
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	t table[stock.Transaction]
}

// NewStockRepo creates the stock transaction repository.
func NewStockRepo(txm *TxManager) *StockRepo {
	return &StockRepo{t: newTable[stock.Transaction](txm, "stock_transactions", "stock_transaction")}
}

func (r *StockRepo) Insert(ctx context.Context, scope account.Scope, t *stock.Transaction) error {
	return r.t.insert(ctx, scope, t)
}

func (r *StockRepo) ListByItem(ctx context.Context, scope account.Scope, itemID string, limit int) ([]*stock.Transaction, error) {
	q := r.t.selectScoped(scope).
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []*stock.Transaction
	if err := pgxscan.Select(ctx, r.t.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	return rows, nil
}

func (r *StockRepo) CountByItem(ctx context.Context, scope account.Scope, itemID string) (int64, error) {
	return r.t.count(ctx, scope, squirrel.Eq{"item_id": itemID})
}

type quantityByKey struct {
	Key   string         `db:"key"`
	Total types.Quantity `db:"total"`
}

func (r *StockRepo) NetByItem(ctx context.Context, scope account.Scope) (map[string]types.Quantity, error) {
	sql, args, err := Builder().
		Select("item_id AS key").
		Column(squirrel.Expr("SUM(CASE WHEN direction = ? THEN -quantity ELSE quantity END)::bigint AS total", stock.DirectionOut)).
		From(r.t.name).
		Where(r.t.scoped(scope)).
		GroupBy("item_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build aggregate: %w", err)
	}
	var rows []quantityByKey
	if err := pgxscan.Select(ctx, r.t.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("net stock: %w", err)
	}
	out := make(map[string]types.Quantity, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Total
	}
	return out, nil
}

var (
	_ item.Repository  = (*ItemRepo)(nil)
	_ stock.Repository = (*StockRepo)(nil)
)
