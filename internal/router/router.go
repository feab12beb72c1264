package router

import (
	"time"

	"kecdesk/internal/config"
	"kecdesk/internal/handler"
	"kecdesk/internal/middleware"
	"kecdesk/internal/model"
	"kecdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the services and infrastructure the HTTP layer needs. The
// composition root in cmd/server builds them.
type Deps struct {
	DB   *gorm.DB
	RDB  *redis.Client
	Mail handler.BreakerReporter

	Companies      service.CompanyService
	Contacts       service.ContactService
	PurchaseOrders service.PurchaseOrderService
	Invoices       service.InvoiceService
	Inquiries      service.InquiryService
	Notifications  service.NotificationService
	Calendar       service.Calendar

	// Limiters are owned by the caller so it can run their purge loops.
	APILimiter  *middleware.RateLimiter
	CronLimiter *middleware.RateLimiter
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	apiLimiter := d.APILimiter
	if apiLimiter == nil {
		apiLimiter = middleware.NewRateLimiter(1000, time.Minute)
	}
	r.Use(apiLimiter.Middleware())

	coH := handler.NewCompaniesHandler(d.Companies)
	ctH := handler.NewContactsHandler(d.Contacts)
	poH := handler.NewPurchaseOrdersHandler(d.PurchaseOrders)
	invH := handler.NewInvoicesHandler(d.Invoices)
	inqH := handler.NewInquiriesHandler(d.Inquiries)
	autoH := handler.NewAutomationHandler(d.Notifications, d.Calendar, !cfg.IsProduction())

	// ── Public ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(d.DB, d.RDB, d.Mail))
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	cronLimiter := d.CronLimiter
	if cronLimiter == nil {
		cronLimiter = middleware.NewRateLimiter(10, time.Minute)
	}
	r.GET("/automation/send-emails",
		cronLimiter.Middleware(),
		middleware.CronSecret(cfg.CronSecretKey),
		autoH.SendEmails,
	)

	// ── Protected ────────────────────────────────────────────────────────────
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	anyStaff := middleware.RequireRole(model.RoleSales, model.RoleProjectManager, model.RoleManager, model.RoleAdmin)
	managers := middleware.RequireRole(model.RoleManager, model.RoleAdmin)

	co := v1.Group("/companies", anyStaff)
	{
		co.POST("", coH.Create)
		co.GET("", coH.List)
		co.GET("/:id", coH.Get)
		co.PUT("/:id", coH.Update)
		co.DELETE("/:id", managers, coH.Delete)
	}

	ct := v1.Group("/contacts", anyStaff)
	{
		ct.POST("", ctH.Create)
		ct.GET("", ctH.List)
		ct.GET("/:id", ctH.Get)
		ct.PUT("/:id", ctH.Update)
		ct.DELETE("/:id", managers, ctH.Delete)
	}

	po := v1.Group("/purchase-orders", anyStaff)
	{
		po.POST("", poH.Create)
		po.GET("", poH.List)
		po.GET("/:id", poH.Get)
		po.PUT("/:id", poH.Update)
		po.PATCH("/:id/status", poH.UpdateStatus)
		po.DELETE("/:id", managers, poH.Delete)
	}

	inv := v1.Group("/invoices", anyStaff)
	{
		inv.POST("", invH.Create)
		inv.GET("", invH.List)
		inv.POST("/numbers", invH.ReserveNumber)
		inv.GET("/:id", invH.Get)
		inv.PUT("/:id", invH.Update)
		inv.POST("/:id/paid", invH.MarkPaid)
		inv.DELETE("/:id", managers, invH.Delete)
	}

	inq := v1.Group("/inquiries", anyStaff)
	{
		inq.POST("", inqH.Create)
		inq.GET("", inqH.List)
		inq.POST("/ids", inqH.ReserveID)
		inq.GET("/:id", inqH.Get)
		inq.PATCH("/:id/status", inqH.UpdateStatus)
		inq.PATCH("/:id/remarks", inqH.UpdateRemarks)
		inq.GET("/:id/items", inqH.Items)
		inq.PUT("/:id/items", inqH.ReplaceItems)
		inq.DELETE("/:id", managers, inqH.Delete)
	}

	v1.POST("/automation/notifications/run", middleware.RequireRole(model.RoleAdmin), autoH.SendEmails)
	v1.GET("/automation/dead-letters", middleware.RequireRole(model.RoleAdmin), handler.DeadLetters(d.RDB))

	return r
}
