package postgres

import (
	"weavebooks/internal/app"
	pkgnum "weavebooks/pkg/numerator"
)

// Store wires every repository to one pool.
type Store struct {
	pool    *Pool
	txm     *TxManager
	counter *pkgnum.Options
}

// NewStore creates a store on pool. counter tunes document numbering; nil is strict.
func NewStore(pool *Pool, counter *pkgnum.Options) *Store {
	return &Store{pool: pool, txm: NewTxManager(pool), counter: counter}
}

// TxManager returns the transaction manager shared by the repositories.
func (s *Store) TxManager() *TxManager { return s.txm }

// Repositories returns every repository of the store.
func (s *Store) Repositories() app.Repositories {
	return app.Repositories{
		TxManager:      s.txm,
		Accounts:       NewAccountRepo(s.txm),
		Counter:        NewCounter(s.pool, s.counter),
		Customers:      NewCustomerRepo(s.txm),
		Categories:     NewCategoryRepo(s.txm),
		Weavers:        NewWeaverRepo(s.txm),
		Items:          NewItemRepo(s.txm),
		Stock:          NewStockRepo(s.txm),
		Invoices:       NewInvoiceRepo(s.txm),
		Quotations:     NewQuotationRepo(s.txm),
		PurchaseOrders: NewPurchaseOrderRepo(s.txm),
		PurchaseBills:  NewPurchaseBillRepo(s.txm),
		Payments:       NewPaymentRepo(s.txm),
		VendorPayments: NewVendorPaymentRepo(s.txm),
	}
}
