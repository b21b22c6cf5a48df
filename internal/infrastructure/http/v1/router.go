// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"weavebooks/internal/app"
	"weavebooks/internal/infrastructure/http/v1/handlers"
	"weavebooks/internal/infrastructure/http/v1/middleware"
	"weavebooks/internal/infrastructure/metrics"
	"weavebooks/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Services are the domain services behind every endpoint.
	Services *app.Services

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Metrics exposes /metrics and instruments requests when set.
	Metrics *metrics.Metrics

	// CORSOrigins are the browser origins allowed in production.
	CORSOrigins []string

	// Production tightens CORS and enables HSTS.
	Production bool

	// Ping checks the store for /healthz.
	Ping handlers.PingFunc
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SecureHeaders(cfg.Production))
	router.Use(middleware.CORS(cfg.CORSOrigins, cfg.Production))

	health := handlers.NewHealthHandler(cfg.Ping)
	router.GET("/healthz", health.Check)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))

	base := handlers.NewBaseHandler()
	registerCatalogRoutes(v1, base, cfg.Services)
	registerSalesRoutes(v1, base, cfg.Services)
	registerPurchaseRoutes(v1, base, cfg.Services)
	registerPaymentRoutes(v1, base, cfg.Services)
	registerReportRoutes(v1, base, cfg.Services)

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	customers := handlers.NewCustomerHandler(base, svc.Customers)
	g := rg.Group("/customers")
	{
		g.GET("", customers.List)
		g.POST("", customers.Create)
		g.GET("/:id", customers.Get)
		g.PUT("/:id", customers.Update)
		g.DELETE("/:id", customers.Delete)
	}

	weavers := handlers.NewWeaverHandler(base, svc.Weavers)
	g = rg.Group("/weavers")
	{
		g.GET("", weavers.List)
		g.POST("", weavers.Create)
		g.GET("/:id", weavers.Get)
		g.PUT("/:id", weavers.Update)
		g.DELETE("/:id", weavers.Delete)
	}

	items := handlers.NewItemHandler(base, svc.Items)
	g = rg.Group("/items")
	{
		g.GET("", items.List)
		g.POST("", items.Create)
		g.GET("/:id", items.Get)
		g.PUT("/:id", items.Update)
		g.DELETE("/:id", items.Delete)
		g.GET("/:id/stock-history", items.StockHistory)
	}

	categories := handlers.NewCategoryHandler(base, svc.Categories)
	g = rg.Group("/categories")
	{
		g.GET("", categories.List)
		g.POST("", categories.Create)
		g.GET("/:id", categories.Get)
		g.PUT("/:id", categories.Update)
		g.DELETE("/:id", categories.Delete)
	}
}

func registerSalesRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	quotations := handlers.NewQuotationHandler(base, svc.Quotations)
	g := rg.Group("/quotations")
	{
		g.GET("", quotations.List)
		g.POST("", quotations.Create)
		g.GET("/:id", quotations.Get)
		g.PUT("/:id", quotations.Update)
		g.DELETE("/:id", quotations.Delete)
		g.POST("/:id/duplicate", quotations.Duplicate)
	}

	invoices := handlers.NewInvoiceHandler(base, svc.Invoices)
	g = rg.Group("/invoices")
	{
		g.GET("", invoices.List)
		g.POST("", invoices.Create)
		g.GET("/stats", invoices.Stats)
		g.GET("/number/:number", invoices.GetByNumber)
		g.GET("/:id", invoices.Get)
		g.PUT("/:id", invoices.Update)
		g.DELETE("/:id", invoices.Cancel)
		g.POST("/:id/cancel", invoices.Cancel)
		g.POST("/:id/payments", invoices.AddPayment)
		g.POST("/:id/duplicate", invoices.Duplicate)
		g.POST("/:id/finalize", invoices.Finalize)
	}
}

func registerPurchaseRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	orders := handlers.NewPurchaseOrderHandler(base, svc.PurchaseOrders)
	g := rg.Group("/purchase-orders")
	{
		g.GET("", orders.List)
		g.POST("", orders.Create)
		g.GET("/:id", orders.Get)
		g.PUT("/:id", orders.Update)
		g.PUT("/:id/status", orders.SetStatus)
		g.DELETE("/:id", orders.Cancel)
	}

	bills := handlers.NewPurchaseBillHandler(base, svc.PurchaseBills)
	g = rg.Group("/purchase-bills")
	{
		g.GET("", bills.List)
		g.POST("", bills.Create)
		g.GET("/overdue", bills.Overdue)
		g.GET("/:id", bills.Get)
		g.PUT("/:id", bills.Update)
		g.DELETE("/:id", bills.Delete)
	}
}

func registerPaymentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	payments := handlers.NewPaymentHandler(base, svc.Payments)
	g := rg.Group("/payments")
	{
		g.GET("", payments.List)
		g.POST("", payments.Create)
		g.GET("/:id", payments.Get)
		g.DELETE("/:id", payments.Delete)
	}

	vendor := handlers.NewVendorPaymentHandler(base, svc.VendorPayments)
	g = rg.Group("/vendor-payments")
	{
		g.GET("", vendor.List)
		g.POST("", vendor.Create)
		g.GET("/by-bill/:id", vendor.ByBill)
		g.GET("/:id", vendor.Get)
		g.DELETE("/:id", vendor.Delete)
	}
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	dashboard := handlers.NewDashboardHandler(base, svc.Reports)
	g := rg.Group("/dashboard")
	{
		g.GET("/stats", dashboard.Stats)
		g.GET("/top-selling-items", dashboard.TopSellingItems)
		g.GET("/recent-invoices", dashboard.RecentInvoices)
		g.GET("/calendar-events", dashboard.CalendarEvents)
		g.GET("/notifications", dashboard.Notifications)
		g.GET("/activity", dashboard.Activity)
		g.GET("/search", dashboard.Search)
	}

	acct := handlers.NewAccountHandler(base, svc.Guard, svc.Auditor)
	g = rg.Group("/account")
	{
		g.GET("/usage", acct.Usage)
		g.GET("/plans", acct.Plans)
		g.PUT("/plan", acct.ChangePlan)
		g.GET("/reconciliation", acct.Reconciliation)
	}
}
