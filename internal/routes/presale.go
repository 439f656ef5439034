package routes

import (
	"github.com/gin-gonic/gin"

	"presalecontrol/internal/handlers"
	"presalecontrol/internal/middleware"
)

// SetupPresaleRoutes sets up all routes related to the presale lifecycle
func SetupPresaleRoutes(r *gin.Engine) {
	presale := r.Group("/presale")
	{
		presale.GET("", handlers.GetPresale)
		presale.GET("/investors", handlers.ListInvestors)
		presale.GET("/investors/:address", handlers.GetInvestor)
		presale.GET("/transfers", handlers.ListTransfers)
		presale.GET("/reconcile", handlers.ReconcilePresale)
		presale.GET("/live", handlers.PresaleLive)
	}

	// Mutating calls carry a signed body; the verified signer is the caller
	signed := r.Group("/presale", middleware.RequireIdentity())
	{
		signed.POST("/configure", handlers.ConfigurePresale)
		signed.POST("/stop", handlers.StopPresale)
		signed.POST("/token", handlers.SetPresaleToken)
		signed.POST("/contribute", handlers.Contribute)
		signed.POST("/claim", handlers.ClaimTokens)
		signed.POST("/withdraw", handlers.WithdrawFunds)
	}
}

// SetupLedgerRoutes sets up the internal ledger routes
func SetupLedgerRoutes(r *gin.Engine) {
	ledger := r.Group("/ledger")
	{
		ledger.GET("/accounts/:address", handlers.GetLedgerAccount)
	}

	signed := r.Group("/ledger", middleware.RequireIdentity())
	{
		signed.POST("/deposit", handlers.DepositNative)
		signed.POST("/token-deposit", handlers.DepositToken)
	}
}

// SetupTokenConfigRoutes sets up the mint registry routes
func SetupTokenConfigRoutes(r *gin.Engine) {
	token := r.Group("/token-config")
	{
		token.GET("", handlers.ListTokenConfigs)
		token.GET("/:mint", handlers.GetTokenConfig)
	}

	signed := r.Group("/token-config", middleware.RequireIdentity())
	{
		signed.POST("", handlers.RegisterTokenConfig)
	}
}
