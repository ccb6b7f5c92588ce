package wallet_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fleetdesk-driver-wallet/internal/wallet_api/handler"
	"github.com/fleetdesk-driver-wallet/internal/wallet_api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	walletHandler *handler.WalletHandler,
	requestHandler *handler.RequestHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Per-driver wallet operations
		wallets := v1.Group("/wallets/:driverId")
		{
			wallets.POST("/requests", requestHandler.Create)
			wallets.POST("/adjustments", walletHandler.Adjust)
			wallets.GET("/balance", walletHandler.GetBalance)
			wallets.GET("/transactions", walletHandler.ListTransactions)
			wallets.GET("/audit", walletHandler.Audit)
		}

		// Admin request queue operations
		requests := v1.Group("/wallet-requests")
		{
			requests.GET("/pending", requestHandler.ListPending)
			requests.GET("/:id", requestHandler.GetByID)
			requests.POST("/:id/decision", requestHandler.Decide)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
