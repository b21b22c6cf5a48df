// Package main provides a CLI tool for seeding a demo account with sample data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"weavebooks/internal/app"
	"weavebooks/internal/bootstrap"
	"weavebooks/internal/config"
	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/balance"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/domain/documents/invoice"
	"weavebooks/internal/domain/documents/purchase_bill"
	"weavebooks/internal/domain/documents/purchase_order"
	"weavebooks/internal/domain/documents/quotation"
	"weavebooks/internal/domain/payments/payment"
	"weavebooks/internal/domain/payments/vendor_payment"
	"weavebooks/internal/domain/plan"
	"weavebooks/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()

	backend, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open store", "error", err)
	}
	defer backend.Close(ctx)

	services, closeLocker, err := bootstrap.Services(ctx, cfg, backend)
	if err != nil {
		log.Fatalw("failed to wire services", "error", err)
	}
	defer func() { _ = closeLocker() }()

	accountID := os.Getenv("SEED_ACCOUNT_ID")
	if accountID == "" {
		accountID = "demo"
	}
	scope, err := account.NewScope(accountID)
	if err != nil {
		log.Fatalw("invalid SEED_ACCOUNT_ID", "error", err)
	}

	created, err := seedAccount(ctx, backend.Repos, scope)
	if err != nil {
		log.Fatalw("failed to seed account", "error", err)
	}
	if !created {
		existing, err := services.Customers.List(ctx, scope, customer.ListFilter{ListFilter: domain.ListFilter{Limit: 1}})
		if err != nil {
			log.Fatalw("failed to inspect account", "error", err)
		}
		if existing.TotalCount > 0 {
			log.Infow("account already has data, skipping", "account_id", accountID)
			return
		}
	}

	if err := seedDemoData(ctx, services, scope, log); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Infow("seeding completed successfully", "account_id", accountID)
}

// seedAccount creates the account on the enterprise plan unless it exists.
func seedAccount(ctx context.Context, repos app.Repositories, scope account.Scope) (bool, error) {
	_, err := repos.Accounts.Get(ctx, scope)
	if err == nil {
		return false, nil
	}
	if !apperror.IsNotFound(err) {
		return false, err
	}
	return true, repos.Accounts.Create(ctx, &plan.Account{
		ID:               scope.ID(),
		Name:             "Demo Handlooms",
		SubscriptionType: plan.KeyEnterprise,
		CreatedAt:        time.Now().UTC(),
	})
}

func seedDemoData(ctx context.Context, svc *app.Services, scope account.Scope, log *logger.Logger) error {
	// --- Catalogs ---
	customers := []*customer.Customer{
		{Name: "Anand Textiles", CompanyName: "Anand Textiles Pvt Ltd", CustomerType: "business", BillingCity: "Surat", PaymentTerms: "Net 30"},
		{Name: "Meera Boutique", CustomerType: "business", BillingCity: "Jaipur", OpeningBalance: types.MustMoney("2500")},
		{Name: "Ravi Kumar", CustomerType: "individual", BillingCity: "Chennai"},
	}
	for _, c := range customers {
		if err := svc.Customers.Create(ctx, scope, c); err != nil {
			return fmt.Errorf("create customer %s: %w", c.Name, err)
		}
	}

	weavers := []*weaver.Weaver{
		{Name: "Kanchi Looms", VendorType: "weaver", CreditPeriodDays: 30, PreferredPaymentMode: "bank_transfer"},
		{Name: "Pochampally Weavers Co-op", VendorType: "cooperative", CreditPeriodDays: 15, OpeningBalance: types.MustMoney("12000")},
	}
	for _, w := range weavers {
		if err := svc.Weavers.Create(ctx, scope, w); err != nil {
			return fmt.Errorf("create weaver %s: %w", w.Name, err)
		}
	}

	items := []*item.Item{
		{Name: "Kanjivaram Silk Saree", Category: "sarees", HSNCode: "5007", Unit: "pcs", TaxRate: types.NewPercent(5),
			PurchasePrice: types.MustMoney("6500"), SellingPrice: types.MustMoney("9800"), OpeningStock: types.NewQuantityFromInt(12), ReorderLevel: types.NewQuantityFromInt(4)},
		{Name: "Ikat Cotton Dupatta", Category: "dupattas", HSNCode: "6214", Unit: "pcs", TaxRate: types.NewPercent(5),
			PurchasePrice: types.MustMoney("450"), SellingPrice: types.MustMoney("799"), OpeningStock: types.NewQuantityFromInt(40), ReorderLevel: types.NewQuantityFromInt(10)},
		{Name: "Handloom Cotton Fabric", Category: "fabric", HSNCode: "5208", Unit: "m", TaxRate: types.NewPercent(5),
			PurchasePrice: types.MustMoney("180"), SellingPrice: types.MustMoney("290"), OpeningStock: types.NewQuantityFromInt(200), ReorderLevel: types.NewQuantityFromInt(50)},
		{Name: "Tussar Silk Stole", Category: "stoles", HSNCode: "6214", Unit: "pcs", TaxRate: types.NewPercent(12),
			PurchasePrice: types.MustMoney("900"), SellingPrice: types.MustMoney("1450"), OpeningStock: types.NewQuantityFromInt(3), ReorderLevel: types.NewQuantityFromInt(5)},
	}
	for _, it := range items {
		if err := svc.Items.Create(ctx, scope, it); err != nil {
			return fmt.Errorf("create item %s: %w", it.Name, err)
		}
	}
	log.Infow("catalogs seeded", "customers", len(customers), "weavers", len(weavers), "items", len(items))

	now := time.Now().UTC()

	// --- Purchasing ---
	po, err := svc.PurchaseOrders.Create(ctx, scope, purchase_order.Draft{
		WeaverID: weavers[0].ID,
		PODate:   now.AddDate(0, 0, -20),
		Items: []purchase_order.Line{
			{ItemID: items[0].ID, Quantity: types.NewQuantityFromInt(6), Rate: items[0].PurchasePrice, TaxRate: items[0].TaxRate},
		},
		Notes: "Wedding season stock",
	})
	if err != nil {
		return fmt.Errorf("create purchase order: %w", err)
	}

	bill, err := svc.PurchaseBills.Create(ctx, scope, purchase_bill.Draft{
		WeaverID:         weavers[0].ID,
		POID:             po.ID,
		BillDate:         now.AddDate(0, 0, -15),
		DueDate:          now.AddDate(0, 0, 15),
		VendorBillNumber: "KL/2231",
		Items:            po.Items,
	})
	if err != nil {
		return fmt.Errorf("create purchase bill: %w", err)
	}

	if err := svc.VendorPayments.Create(ctx, scope, &vendor_payment.VendorPayment{
		BillID:      bill.ID,
		Amount:      types.MustMoney("15000"),
		PaymentDate: now.AddDate(0, 0, -10),
		PaymentMode: "bank_transfer",
	}); err != nil {
		return fmt.Errorf("create vendor payment: %w", err)
	}

	// --- Sales ---
	validUntil := now.AddDate(0, 0, 14)
	q, err := svc.Quotations.Create(ctx, scope, quotation.Draft{
		CustomerID: customers[1].ID,
		QuoteDate:  now.AddDate(0, 0, -3),
		ValidUntil: &validUntil,
		Items: []quotation.Line{
			{ItemID: items[1].ID, Quantity: types.NewQuantityFromInt(10), Rate: items[1].SellingPrice, TaxPercent: items[1].TaxRate},
		},
	})
	if err != nil {
		return fmt.Errorf("create quotation: %w", err)
	}

	dueDate := now.AddDate(0, 0, 30)
	if _, err := svc.Invoices.Create(ctx, scope, invoice.Draft{
		CustomerID:     customers[0].ID,
		InvoiceDate:    now.AddDate(0, 0, -5),
		DueDate:        &dueDate,
		Items:          []invoice.Line{{ItemID: items[0].ID, Quantity: types.NewQuantityFromInt(2), Rate: items[0].SellingPrice, TaxPercent: items[0].TaxRate}},
		PaymentStatus:  balance.StatusPartial,
		AmountReceived: types.MustMoney("5000"),
		PaymentMode:    "upi",
	}); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}

	if _, err := svc.Invoices.Create(ctx, scope, invoice.Draft{
		CustomerID:  customers[1].ID,
		InvoiceDate: now,
		QuotationID: q.ID,
		Items:       []invoice.Line{{ItemID: items[1].ID, Quantity: types.NewQuantityFromInt(10), Rate: items[1].SellingPrice, TaxPercent: items[1].TaxRate}},
	}); err != nil {
		return fmt.Errorf("convert quotation: %w", err)
	}

	if err := svc.Payments.Create(ctx, scope, &payment.Payment{
		PaymentType: payment.TypeReceive,
		PartyID:     customers[1].ID,
		Amount:      types.MustMoney("1000"),
		PaymentDate: now,
		PaymentMode: "cash",
		Notes:       "Advance against opening balance",
	}); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	log.Infow("documents seeded", "purchase_order", po.PONumber, "purchase_bill", bill.BillNumber, "quotation", q.QuotationNumber)
	return nil
}
