// Package memory is an in-process implementation of every repository.
//
// It backs tests and local development. The store has no transactions;
// each write registers its inverse with tx.OnRollback so that
// tx.CompensatingManager can undo a failed unit of work.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"weavebooks/internal/app"
	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/domain"
)

// Store holds all tables of all accounts.
type Store struct {
	mu sync.RWMutex

	accounts       map[string]*accountRow
	counters       map[string]int64
	customers      *table[customerRow]
	categories     *table[categoryRow]
	weavers        *table[weaverRow]
	items          *table[itemRow]
	stockTxns      *table[stockRow]
	invoices       *table[invoiceRow]
	quotations     *table[quotationRow]
	purchaseOrders *table[purchaseOrderRow]
	purchaseBills  *table[purchaseBillRow]
	payments       *table[paymentRow]
	vendorPayments *table[vendorPaymentRow]
}

// New creates an empty store.
func New() *Store {
	return &Store{
		accounts:       make(map[string]*accountRow),
		counters:       make(map[string]int64),
		customers:      newTable[customerRow]("customer"),
		categories:     newTable[categoryRow]("category"),
		weavers:        newTable[weaverRow]("weaver"),
		items:          newTable[itemRow]("item"),
		stockTxns:      newTable[stockRow]("stock_transaction"),
		invoices:       newTable[invoiceRow]("invoice"),
		quotations:     newTable[quotationRow]("quotation"),
		purchaseOrders: newTable[purchaseOrderRow]("purchase_order"),
		purchaseBills:  newTable[purchaseBillRow]("purchase_bill"),
		payments:       newTable[paymentRow]("payment"),
		vendorPayments: newTable[vendorPaymentRow]("vendor_payment"),
	}
}

// TxManager returns the transaction manager matching this store.
func (s *Store) TxManager() *tx.CompensatingManager {
	return tx.NewCompensatingManager()
}

// row is a stored record. clone returns a deep copy so callers never alias stored state.
type row[T any] interface {
	key() string
	clone() T
}

// table is one account-partitioned collection. seq keeps insertion order for stable sorting.
type table[T row[T]] struct {
	entity string
	rows   map[string]map[string]T
	seq    map[string]int64
	next   int64
}

func newTable[T row[T]](entity string) *table[T] {
	return &table[T]{entity: entity, rows: make(map[string]map[string]T), seq: make(map[string]int64)}
}

func (t *table[T]) get(acct, id string) (T, bool) {
	v, ok := t.rows[acct][id]
	return v, ok
}

func (t *table[T]) put(acct string, v T) {
	m, ok := t.rows[acct]
	if !ok {
		m = make(map[string]T)
		t.rows[acct] = m
	}
	if _, exists := t.seq[acct+"/"+v.key()]; !exists {
		t.next++
		t.seq[acct+"/"+v.key()] = t.next
	}
	m[v.key()] = v
}

func (t *table[T]) del(acct, id string) {
	delete(t.rows[acct], id)
}

// scan returns the rows of acct in insertion order.
func (t *table[T]) scan(acct string) []T {
	out := make([]T, 0, len(t.rows[acct]))
	for _, v := range t.rows[acct] {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return t.seq[acct+"/"+out[i].key()] < t.seq[acct+"/"+out[j].key()]
	})
	return out
}

func (t *table[T]) notFound(id string) error {
	return apperror.NewNotFound(t.entity, id)
}

// insert stores a new row and registers its removal.
func insert[T row[T]](ctx context.Context, s *Store, t *table[T], scope account.Scope, v T) error {
	s.mu.Lock()
	if _, exists := t.get(scope.ID(), v.key()); exists {
		s.mu.Unlock()
		return apperror.NewConflict(t.entity + " already exists").WithDetail("id", v.key())
	}
	t.put(scope.ID(), v.clone())
	s.mu.Unlock()

	id := v.key()
	tx.OnRollback(ctx, "delete "+t.entity, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		t.del(scope.ID(), id)
		return nil
	})
	return nil
}

// replace overwrites an existing row and registers the restore of the previous version.
// keep copies fields that only move through increments from the stored row, both on
// write and on restore.
func replace[T row[T]](ctx context.Context, s *Store, t *table[T], scope account.Scope, v T, keep func(old, cur T) T) error {
	s.mu.Lock()
	old, ok := t.get(scope.ID(), v.key())
	if !ok {
		s.mu.Unlock()
		return t.notFound(v.key())
	}
	cur := v.clone()
	if keep != nil {
		cur = keep(old, cur)
	}
	t.put(scope.ID(), cur)
	s.mu.Unlock()

	if keep == nil {
		restoreRow(ctx, s, t, scope, old)
		return nil
	}
	tx.OnRollback(ctx, "restore "+t.entity, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		back := old.clone()
		if now, ok := t.get(scope.ID(), back.key()); ok {
			back = keep(now, back)
		}
		t.put(scope.ID(), back)
		return nil
	})
	return nil
}

// modify applies fn to the stored row in place and registers the restore.
func modify[T row[T]](ctx context.Context, s *Store, t *table[T], scope account.Scope, id string, fn func(v T) error) error {
	s.mu.Lock()
	old, ok := t.get(scope.ID(), id)
	if !ok {
		s.mu.Unlock()
		return t.notFound(id)
	}
	cur := old.clone()
	if err := fn(cur); err != nil {
		s.mu.Unlock()
		return err
	}
	t.put(scope.ID(), cur)
	s.mu.Unlock()

	restoreRow(ctx, s, t, scope, old)
	return nil
}

// increment applies fn in place and registers undo, which runs against the
// row as it is at rollback time. Used for counters shared with concurrent units.
func increment[T row[T]](ctx context.Context, s *Store, t *table[T], scope account.Scope, id string, fn, undo func(v T)) error {
	s.mu.Lock()
	cur, ok := t.get(scope.ID(), id)
	if !ok {
		s.mu.Unlock()
		return t.notFound(id)
	}
	fn(cur)
	s.mu.Unlock()

	tx.OnRollback(ctx, "undo "+t.entity+" increment", func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if v, ok := t.get(scope.ID(), id); ok {
			undo(v)
		}
		return nil
	})
	return nil
}

// remove deletes a row and registers its re-insertion.
func remove[T row[T]](ctx context.Context, s *Store, t *table[T], scope account.Scope, id string) error {
	s.mu.Lock()
	old, ok := t.get(scope.ID(), id)
	if !ok {
		s.mu.Unlock()
		return t.notFound(id)
	}
	t.del(scope.ID(), id)
	s.mu.Unlock()

	restoreRow(ctx, s, t, scope, old)
	return nil
}

func restoreRow[T row[T]](ctx context.Context, s *Store, t *table[T], scope account.Scope, old T) {
	tx.OnRollback(ctx, "restore "+t.entity, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		t.put(scope.ID(), old)
		return nil
	})
}

// find returns a copy of one row.
func find[T row[T]](s *Store, t *table[T], scope account.Scope, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := t.get(scope.ID(), id)
	if !ok {
		var zero T
		return zero, t.notFound(id)
	}
	return v.clone(), nil
}

// selectRows returns copies of the rows matching keep, in insertion order.
func selectRows[T row[T]](s *Store, t *table[T], scope account.Scope, keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []T
	for _, v := range t.scan(scope.ID()) {
		if keep == nil || keep(v) {
			out = append(out, v.clone())
		}
	}
	return out
}

// page applies limit/offset after sorting.
func page[T any](rows []T, f domain.ListFilter) ([]T, int64) {
	f = f.Normalize()
	total := int64(len(rows))
	if f.Offset >= len(rows) {
		return []T{}, total
	}
	end := f.Offset + f.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[f.Offset:end], total
}

// matches reports whether any field contains search, case-insensitively.
func matches(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// Repositories returns every repository of the store.
func (s *Store) Repositories() app.Repositories {
	return app.Repositories{
		TxManager:      s.TxManager(),
		Accounts:       s.Accounts(),
		Counter:        s.Counter(),
		Customers:      s.Customers(),
		Categories:     s.Categories(),
		Weavers:        s.Weavers(),
		Items:          s.Items(),
		Stock:          s.Stock(),
		Invoices:       s.Invoices(),
		Quotations:     s.Quotations(),
		PurchaseOrders: s.PurchaseOrders(),
		PurchaseBills:  s.PurchaseBills(),
		Payments:       s.Payments(),
		VendorPayments: s.VendorPayments(),
	}
}
