package reports

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"weavebooks/internal/core/account"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/catalogs/category"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/documents/purchase_bill"
)

// SearchPerType caps the hits returned for each kind of record.
const SearchPerType = 3

// Search hit types, in result order.
const (
	HitCustomer = "customer"
	HitItem     = "item"
	HitInvoice  = "invoice"
	HitWeaver   = "weaver"
	HitCategory = "category"
	HitBill     = "purchase_bill"
)

// SearchHit is one match of the global search.
type SearchHit struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Search looks q up across customers, items, invoices, weavers, categories
// and purchase bills. Inactive customers, items and weavers are skipped.
// An empty query returns no hits.
func (s *Service) Search(ctx context.Context, scope account.Scope, q string) ([]SearchHit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []SearchHit{}, nil
	}
	page := domain.ListFilter{Search: q, Limit: SearchPerType}

	// One slot per source keeps the output order stable.
	hits := make([][]SearchHit, 6)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, _, err := s.customers.List(gctx, scope, customer.ListFilter{ListFilter: page})
		for _, c := range rows {
			hits[0] = append(hits[0], SearchHit{Type: HitCustomer, ID: c.ID, Name: c.Name})
		}
		return err
	})
	g.Go(func() error {
		rows, _, err := s.items.List(gctx, scope, item.ListFilter{ListFilter: page})
		for _, it := range rows {
			hits[1] = append(hits[1], SearchHit{Type: HitItem, ID: it.ID, Name: it.Name})
		}
		return err
	})
	g.Go(func() error {
		rows, _, err := s.invoices.List(gctx, scope, invoice.ListFilter{ListFilter: page, Status: invoice.StatusAll})
		for _, inv := range rows {
			hits[2] = append(hits[2], SearchHit{Type: HitInvoice, ID: inv.ID, Name: inv.InvoiceNumber})
		}
		return err
	})
	g.Go(func() error {
		rows, _, err := s.weavers.List(gctx, scope, weaver.ListFilter{ListFilter: page})
		for _, w := range rows {
			hits[3] = append(hits[3], SearchHit{Type: HitWeaver, ID: w.ID, Name: w.Name})
		}
		return err
	})
	g.Go(func() error {
		rows, _, err := s.categories.List(gctx, scope, category.ListFilter{ListFilter: page})
		for _, c := range rows {
			hits[4] = append(hits[4], SearchHit{Type: HitCategory, ID: c.ID, Name: c.Name})
		}
		return err
	})
	g.Go(func() error {
		rows, _, err := s.bills.List(gctx, scope, purchase_bill.ListFilter{ListFilter: page})
		for _, b := range rows {
			hits[5] = append(hits[5], SearchHit{Type: HitBill, ID: b.ID, Name: b.BillNumber})
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := []SearchHit{}
	for _, h := range hits {
		out = append(out, h...)
	}
	return out, nil
}
