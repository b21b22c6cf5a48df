// Package mongo implements the repositories on MongoDB.
//
// Documents embed their lines. Units of work run on the compensating
// manager: every write registers its inverse, replayed in reverse when
// the unit fails.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"weavebooks/internal/app"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/domain/catalogs/category"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/documents/purchase_bill"
	"weavebooks/internal/domain/documents/purchase_order"
	"weavebooks/internal/domain/documents/quotation"
	"weavebooks/internal/domain/payments/payment"
	"weavebooks/internal/domain/payments/vendor_payment"
	"weavebooks/internal/domain/registers/stock"
	"weavebooks/pkg/logger"
)

const (
	collAccounts       = "accounts"
	collCounters       = "sys_counters"
	collCustomers      = "customers"
	collCategories     = "categories"
	collWeavers        = "weavers"
	collItems          = "items"
	collStock          = "stock_transactions"
	collInvoices       = "invoices"
	collQuotations     = "quotations"
	collPurchaseOrders = "purchase_orders"
	collBills          = "purchase_bills"
	collPayments       = "payments"
	collVendorPayments = "vendor_payments"
)

// Store wires every repository to one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	txm    *tx.CompensatingManager
}

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetAppName("weavebooks").
		SetServerSelectionTimeout(10 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info(ctx, "mongo connected", "database", database)
	return New(client, database), nil
}

// New creates a store on an existing client.
func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database), txm: tx.NewCompensatingManager()}
}

// Migrate creates the indexes of every collection.
func (s *Store) Migrate(ctx context.Context) error {
	for coll, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("migrate %s indexes: %w", coll, err)
		}
	}
	logger.Info(ctx, "mongo indexes ensured")
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Repositories returns every repository of the store.
func (s *Store) Repositories() app.Repositories {
	db := s.db
	return app.Repositories{
		TxManager:      s.txm,
		Accounts:       &AccountRepo{c: db.Collection(collAccounts)},
		Counter:        &Counter{c: db.Collection(collCounters)},
		Customers:      &CustomerRepo{c: newCollection[customer.Customer](db, collCustomers, "customer")},
		Categories:     &CategoryRepo{c: newCollection[category.Category](db, collCategories, "category")},
		Weavers:        &WeaverRepo{c: newCollection[weaver.Weaver](db, collWeavers, "weaver")},
		Items:          &ItemRepo{c: newCollection[item.Item](db, collItems, "item")},
		Stock:          &StockRepo{c: newCollection[stock.Transaction](db, collStock, "stock_transaction")},
		Invoices:       &InvoiceRepo{c: newCollection[invoice.Invoice](db, collInvoices, "invoice")},
		Quotations:     &QuotationRepo{c: newCollection[quotation.Quotation](db, collQuotations, "quotation")},
		PurchaseOrders: &PurchaseOrderRepo{c: newCollection[purchase_order.PurchaseOrder](db, collPurchaseOrders, "purchase_order")},
		PurchaseBills:  &PurchaseBillRepo{c: newCollection[purchase_bill.PurchaseBill](db, collBills, "purchase_bill")},
		Payments:       &PaymentRepo{c: newCollection[payment.Payment](db, collPayments, "payment")},
		VendorPayments: &VendorPaymentRepo{c: newCollection[vendor_payment.VendorPayment](db, collVendorPayments, "vendor_payment")},
	}
}

func numbered(field string) []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
}

func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		collCounters: {
			{
				Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "key", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		collCustomers: numbered("code"),
		collWeavers:   numbered("code"),
		collCategories: {
			{
				Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetCollation(caseInsensitive),
			},
		},
		collItems: {
			{
				Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetCollation(caseInsensitive),
			},
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "category", Value: 1}}},
		},
		collStock: {
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "item_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collInvoices: append(numbered("invoice_number"),
			mongo.IndexModel{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "customer_id", Value: 1}}}),
		collQuotations:     numbered("quotation_number"),
		collPurchaseOrders: numbered("po_number"),
		collBills: append(numbered("bill_number"),
			mongo.IndexModel{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "due_date", Value: 1}}}),
		collPayments: append(numbered("payment_number"),
			mongo.IndexModel{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "invoice_id", Value: 1}}}),
		collVendorPayments: append(numbered("payment_number"),
			mongo.IndexModel{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "bill_id", Value: 1}}}),
	}
}
