package router

import (
	"time"

	"jewelshop/internal/config"
	"jewelshop/internal/handler"
	"jewelshop/internal/infra"
	"jewelshop/internal/middleware"
	"jewelshop/internal/model"
	"jewelshop/internal/repository"
	"jewelshop/internal/service"
	"jewelshop/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil: the stats cache and low-stock alerts are then disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	statsCache := service.NewStatsCache(rdb, cfg.StatsCacheTTL())
	dispatcher := worker.NewDispatcher(rdb)

	authSvc := service.NewAuthService(userRepo, cfg)
	saleSvc := service.NewSaleService(saleRepo, productRepo, stockRepo, movementRepo, statsCache, dispatcher, service.SaleOptions{
		EditWindow:        cfg.SaleEditWindow(),
		LowStockThreshold: cfg.LowStockThreshold,
	})
	productSvc := service.NewProductService(productRepo, stockRepo, movementRepo, statsCache)
	stockSvc := service.NewStockService(stockRepo, movementRepo)
	expenseSvc := service.NewExpenseService(expenseRepo, statsCache)
	statsSvc := service.NewStatsService(saleRepo, expenseRepo, statsCache)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	productsH := handler.NewProductsHandler(productSvc)
	stockH := handler.NewStockHandler(stockSvc)
	expensesH := handler.NewExpensesHandler(expenseSvc, statsSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailer))
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleUser)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	api := r.Group("", middleware.JWTAuth(cfg.JWTSecret))

	sales := api.Group("/sales", anyRole)
	{
		sales.POST("", salesH.Create)
		sales.GET("/all", salesH.List)
		sales.GET("/:id", salesH.Get)
		sales.GET("/:id/receipt", salesH.Receipt)
		// ownership and edit window are enforced by the service
		sales.PUT("/:id", salesH.Update)
		sales.DELETE("/:id", salesH.Delete)
	}

	products := api.Group("/products")
	{
		products.GET("", anyRole, productsH.Search)
		products.GET("/all", anyRole, productsH.List)
		products.GET("/all/stock", anyRole, productsH.ListWithStock)
		products.GET("/template", adminOnly, productsH.Template)
		products.POST("/import", adminOnly, productsH.Import)
		products.GET("/:id", anyRole, productsH.Get)
		products.POST("", adminOnly, productsH.Create)
		products.PUT("/:id", adminOnly, productsH.Update)
		products.DELETE("/:id", adminOnly, productsH.Delete)
	}

	stock := api.Group("/stock")
	{
		stock.GET("/all", anyRole, stockH.List)
		stock.GET("/:id", anyRole, stockH.Get)
		stock.PUT("/:id", adminOnly, stockH.Update)
		stock.DELETE("/:id", adminOnly, stockH.Reset)
		stock.GET("/:id/movements", adminOnly, stockH.Movements)
	}

	expenses := api.Group("/expenses", adminOnly)
	{
		expenses.POST("", expensesH.Create)
		expenses.GET("/all", expensesH.List)
		expenses.GET("/stats", expensesH.Stats)
		expenses.GET("/:id", expensesH.Get)
		expenses.PUT("/:id", expensesH.Update)
		expenses.DELETE("/:id", expensesH.Delete)
	}

	// Swagger UI: only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
