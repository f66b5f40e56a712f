package router

import (
	"landedcost/internal/config"
	"landedcost/internal/handler"
	"landedcost/internal/infra"
	"landedcost/internal/middleware"
	"landedcost/internal/repository"
	"landedcost/internal/service"
	"landedcost/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, extractorCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	// ── Repositories ─────────────────────────────────────────────────────────
	supplierRepo := repository.NewSupplierRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	pricingSvc := service.NewPricingService(db, productRepo, historyRepo, cfg.EmptyBucketPolicy)
	ingestSvc := service.NewIngestService(supplierRepo, productRepo, invoiceRepo, pricingSvc, cfg)

	// Worker dispatcher — injected into handlers that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ingestH := handler.NewIngestHandler(ingestSvc)
	allocationH := handler.NewAllocationHandler(pricingSvc)
	invoicesH := handler.NewInvoiceHandler(invoiceRepo)
	productsH := handler.NewProductHandler(productRepo, historyRepo, pricingSvc)
	suppliersH := handler.NewSupplierHandler(supplierRepo)
	documentsH := handler.NewDocumentHandler(documentRepo, dispatcher, cfg.DocumentStoragePath)
	healthH := handler.NewHealthHandler(db, rdb, extractorCB)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", healthH.Check)

	v1 := r.Group("/v1")
	{
		v1.POST("/invoices/ingest", ingestH.Ingest)
		v1.GET("/invoices", invoicesH.List)
		v1.GET("/invoices/:id", invoicesH.Get)

		v1.POST("/allocation/preview", allocationH.Preview)

		v1.GET("/products", productsH.List)
		v1.GET("/products/:id", productsH.Get)
		v1.GET("/products/:id/price-history", productsH.PriceHistory)
		v1.PATCH("/products/:id/cost", productsH.AdjustCost)

		v1.POST("/suppliers", suppliersH.Create)
		v1.GET("/suppliers", suppliersH.List)
		v1.GET("/suppliers/:id", suppliersH.Get)

		v1.POST("/documents", documentsH.Upload)
		v1.GET("/documents/:id", documentsH.Get)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
