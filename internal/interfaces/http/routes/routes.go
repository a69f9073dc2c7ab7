// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/distribution-backend/internal/config"
	"github.com/your-org/distribution-backend/internal/domain/catalog"
	"github.com/your-org/distribution-backend/internal/domain/distributor"
	"github.com/your-org/distribution-backend/internal/domain/identity"
	"github.com/your-org/distribution-backend/internal/domain/order"
	"github.com/your-org/distribution-backend/internal/domain/scheme"
	"github.com/your-org/distribution-backend/internal/domain/stock"
	"github.com/your-org/distribution-backend/internal/domain/wallet"
	"github.com/your-org/distribution-backend/internal/interfaces/http/handlers"
	"github.com/your-org/distribution-backend/internal/interfaces/http/middleware"
	"github.com/your-org/distribution-backend/internal/pkg/clock"
	"github.com/your-org/distribution-backend/internal/pkg/locker"
	"github.com/your-org/distribution-backend/internal/pkg/notification"
)

// SetupRoutes wires every service and registers all API routes. Services
// share one keyed locker and one notifier so engine operations serialize
// correctly across endpoints.
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	clk := clock.System{}
	keyedLocker := locker.New()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	notifyClient := redisClient
	if !cfg.Notification.Enabled {
		notifyClient = nil
	}
	notifier := notification.NewService(notifyClient, cfg.Notification.Channel, logger, clk)

	// Domain services
	identityService := identity.NewService(db, cfg, clk)
	catalogService := catalog.NewService(db)
	distributorService := distributor.NewService(db, notifier)
	schemeService := scheme.NewService(db, notifier, clk)
	stockService := stock.NewService(db, keyedLocker, clk)
	walletService := wallet.NewService(db, keyedLocker, notifier, clk)
	orderService := order.NewService(db, catalogService, schemeService, stockService, walletService, distributorService, keyedLocker, notifier, clk)
	returnEngine := order.NewReturnEngine(db, orderService, stockService, walletService, keyedLocker, clk)
	transferEngine := stock.NewTransferEngine(db, stockService, catalogService, distributorService, keyedLocker, clk)

	// Handlers
	authHandler := handlers.NewAuthHandler(identityService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	distributorHandler := handlers.NewDistributorHandler(distributorService)
	schemeHandler := handlers.NewSchemeHandler(schemeService)
	stockHandler := handlers.NewStockHandler(stockService)
	walletHandler := handlers.NewWalletHandler(walletService)
	orderHandler := handlers.NewOrderHandler(orderService)
	returnHandler := handlers.NewReturnHandler(returnEngine)
	transferHandler := handlers.NewTransferHandler(transferEngine)

	authRequired := middleware.AuthMiddleware(cfg)
	adminOnly := middleware.AdminMiddleware()

	// Authentication
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.GET("/profile", authRequired, authHandler.Profile)
	}

	// Catalog: reads for every exec, writes admin only
	catalogGroup := rg.Group("/catalog", authRequired)
	{
		catalogGroup.GET("/skus", catalogHandler.GetSKUs)
		catalogGroup.GET("/skus/:id", catalogHandler.GetSKU)
		catalogGroup.GET("/tiers/:id", catalogHandler.GetTier)

		catalogGroup.POST("/skus", adminOnly, catalogHandler.CreateSKU)
		catalogGroup.PUT("/skus/:id", adminOnly, catalogHandler.UpdateSKU)
		catalogGroup.POST("/tiers", adminOnly, catalogHandler.CreateTier)
		catalogGroup.PUT("/tiers/:id/prices", adminOnly, catalogHandler.SetTierPrice)
	}

	// Distributors and stores
	distributors := rg.Group("/distributors", authRequired)
	{
		distributors.POST("", adminOnly, distributorHandler.Onboard)
		distributors.GET("", distributorHandler.List)
		distributors.GET("/:id", distributorHandler.Get)
	}

	stores := rg.Group("/stores", authRequired)
	{
		stores.POST("", adminOnly, distributorHandler.CreateStore)
		stores.GET("/:id", distributorHandler.GetStore)
	}

	// Promotional schemes: admin manages, all execs read
	schemes := rg.Group("/schemes", authRequired)
	{
		schemes.GET("", schemeHandler.List)
		schemes.GET("/:id", schemeHandler.Get)

		schemes.POST("", adminOnly, schemeHandler.Create)
		schemes.POST("/:id/stop", adminOnly, schemeHandler.Stop)
		schemes.POST("/:id/reactivate", adminOnly, schemeHandler.Reactivate)
	}

	// Orders
	orders := rg.Group("/orders", authRequired)
	{
		orders.POST("", orderHandler.Place)
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.Get)
		orders.PUT("/:id/items", orderHandler.UpdateItems)
		orders.POST("/:id/deliver", orderHandler.Deliver)
		orders.DELETE("/:id", adminOnly, orderHandler.Delete)
	}

	// Returns
	returns := rg.Group("/returns", authRequired)
	{
		returns.POST("", returnHandler.Initiate)
		returns.GET("", returnHandler.List)
		returns.GET("/:id", returnHandler.Get)
		returns.POST("/:id/confirm", adminOnly, returnHandler.Confirm)
	}

	// Stock ledger and inbound receipts
	stockGroup := rg.Group("/stock", authRequired)
	{
		stockGroup.POST("/restock", adminOnly, stockHandler.Restock)
		stockGroup.GET("/locations/:location_id/skus/:sku_id/ledger", stockHandler.Ledger)
		stockGroup.GET("/locations/:location_id/skus/:sku_id/replay", stockHandler.Replay)
	}

	// Plant-to-store transfers
	transfers := rg.Group("/transfers", authRequired)
	{
		transfers.POST("", adminOnly, transferHandler.Create)
		transfers.GET("", transferHandler.List)
		transfers.GET("/:id", transferHandler.Get)
		transfers.POST("/:id/deliver", adminOnly, transferHandler.Deliver)
	}

	// Wallets
	wallets := rg.Group("/wallets", authRequired)
	{
		wallets.POST("/recharge", adminOnly, walletHandler.Recharge)
		wallets.GET("/:account_type/:account_id/balance", walletHandler.Balance)
		wallets.GET("/:account_type/:account_id/statement", walletHandler.Statement)
		wallets.GET("/:account_type/:account_id/replay", walletHandler.Replay)
	}
}
