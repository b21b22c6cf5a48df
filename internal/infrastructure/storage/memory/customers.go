package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/weaver"
)

type customerRow struct{ *customer.Customer }

func (r customerRow) key() string { return r.ID }
func (r customerRow) clone() customerRow {
	cp := *r.Customer
	return customerRow{&cp}
}

// CustomerRepo implements customer.Repository.
type CustomerRepo struct{ s *Store }

// Customers returns the customer repository.
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{s: s} }

func (r *CustomerRepo) Create(ctx context.Context, scope account.Scope, c *customer.Customer) error {
	return insert(ctx, r.s, r.s.customers, scope, customerRow{c})
}

func (r *CustomerRepo) Get(ctx context.Context, scope account.Scope, id string) (*customer.Customer, error) {
	row, err := find(r.s, r.s.customers, scope, id)
	if err != nil {
		return nil, err
	}
	return row.Customer, nil
}

func (r *CustomerRepo) Update(ctx context.Context, scope account.Scope, c *customer.Customer) error {
	return replace(ctx, r.s, r.s.customers, scope, customerRow{c}, func(old, cur customerRow) customerRow {
		cur.CurrentBalance = old.CurrentBalance
		return cur
	})
}

func (r *CustomerRepo) List(ctx context.Context, scope account.Scope, f customer.ListFilter) ([]*customer.Customer, int64, error) {
	rows := selectRows(r.s, r.s.customers, scope, func(c customerRow) bool {
		if !f.IncludeInactive && !c.IsActive() {
			return false
		}
		return matches(f.Search, c.Name, c.Code, c.MobileNumber, c.ContactNumber)
	})
	sort.SliceStable(rows, func(i, j int) bool { return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name) })
	rows, total := page(rows, f.ListFilter)
	out := make([]*customer.Customer, len(rows))
	for i, c := range rows {
		out[i] = c.Customer
	}
	return out, total, nil
}

func (r *CustomerRepo) AdjustBalance(ctx context.Context, scope account.Scope, id string, delta types.Money) error {
	return increment(ctx, r.s, r.s.customers, scope, id,
		func(c customerRow) { c.CurrentBalance += delta },
		func(c customerRow) { c.CurrentBalance -= delta })
}

func (r *CustomerRepo) SetBalance(ctx context.Context, scope account.Scope, id string, value types.Money) error {
	return modify(ctx, r.s, r.s.customers, scope, id, func(c customerRow) error {
		c.CurrentBalance = value
		return nil
	})
}

func (r *CustomerRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return latest(r.s, r.s.customers, scope, func(c customerRow) (string, time.Time) { return c.Code, c.CreatedAt }), nil
}

func (r *CustomerRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return int64(len(selectRows(r.s, r.s.customers, scope, nil))), nil
}

type weaverRow struct{ *weaver.Weaver }

func (r weaverRow) key() string { return r.ID }
func (r weaverRow) clone() weaverRow {
	cp := *r.Weaver
	return weaverRow{&cp}
}

// WeaverRepo implements weaver.Repository.
type WeaverRepo struct{ s *Store }

// Weavers returns the weaver repository.
func (s *Store) Weavers() *WeaverRepo { return &WeaverRepo{s: s} }

func (r *WeaverRepo) Create(ctx context.Context, scope account.Scope, w *weaver.Weaver) error {
	return insert(ctx, r.s, r.s.weavers, scope, weaverRow{w})
}

func (r *WeaverRepo) Get(ctx context.Context, scope account.Scope, id string) (*weaver.Weaver, error) {
	row, err := find(r.s, r.s.weavers, scope, id)
	if err != nil {
		return nil, err
	}
	return row.Weaver, nil
}

func (r *WeaverRepo) Update(ctx context.Context, scope account.Scope, w *weaver.Weaver) error {
	return replace(ctx, r.s, r.s.weavers, scope, weaverRow{w}, func(old, cur weaverRow) weaverRow {
		cur.CurrentBalance = old.CurrentBalance
		return cur
	})
}

func (r *WeaverRepo) List(ctx context.Context, scope account.Scope, f weaver.ListFilter) ([]*weaver.Weaver, int64, error) {
	rows := selectRows(r.s, r.s.weavers, scope, func(w weaverRow) bool {
		if !f.IncludeInactive && !w.IsActive() {
			return false
		}
		return matches(f.Search, w.Name, w.Code, w.ContactNumber)
	})
	if f.Newest {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	} else {
		sort.SliceStable(rows, func(i, j int) bool { return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name) })
	}
	rows, total := page(rows, f.ListFilter)
	out := make([]*weaver.Weaver, len(rows))
	for i, w := range rows {
		out[i] = w.Weaver
	}
	return out, total, nil
}

func (r *WeaverRepo) AdjustBalance(ctx context.Context, scope account.Scope, id string, delta types.Money) error {
	return increment(ctx, r.s, r.s.weavers, scope, id,
		func(w weaverRow) { w.CurrentBalance += delta },
		func(w weaverRow) { w.CurrentBalance -= delta })
}

func (r *WeaverRepo) SetBalance(ctx context.Context, scope account.Scope, id string, value types.Money) error {
	return modify(ctx, r.s, r.s.weavers, scope, id, func(w weaverRow) error {
		w.CurrentBalance = value
		return nil
	})
}

func (r *WeaverRepo) TotalActiveBalance(ctx context.Context, scope account.Scope) (types.Money, error) {
	var total types.Money
	for _, w := range selectRows(r.s, r.s.weavers, scope, func(w weaverRow) bool { return w.IsActive() }) {
		total += w.CurrentBalance
	}
	return total, nil
}

func (r *WeaverRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return latest(r.s, r.s.weavers, scope, func(w weaverRow) (string, time.Time) { return w.Code, w.CreatedAt }), nil
}

func (r *WeaverRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return int64(len(selectRows(r.s, r.s.weavers, scope, nil))), nil
}

// latest returns the number of the most recently created row. Ties go to the later insert.
func latest[T row[T]](s *Store, t *table[T], scope account.Scope, number func(T) (string, time.Time)) string {
	var (
		best   string
		bestAt time.Time
	)
	for _, v := range selectRows(s, t, scope, nil) {
		n, at := number(v)
		if best == "" || !at.Before(bestAt) {
			best, bestAt = n, at
		}
	}
	return best
}

var (
	_ customer.Repository = (*CustomerRepo)(nil)
	_ weaver.Repository   = (*WeaverRepo)(nil)
)
