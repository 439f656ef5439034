package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/middleware"
	dbconfig "presalecontrol/pkg/config"
)

// DepositRequest credits a ledger account with native currency
type DepositRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  uint64 `json:"amount" binding:"required"`
}

// TokenDepositRequest credits the custody token account with sale tokens
type TokenDepositRequest struct {
	Amount uint64 `json:"amount" binding:"required"`
}

// DepositNative credits an investor ledger account. Authority only; mirrors
// an observed on-chain deposit
func DepositNative(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := business.DepositNative(dbconfig.DB, req.Address, req.Amount, middleware.CallerIdentity(c))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": req.Address, "amount": req.Amount})
}

// DepositToken credits the presale custody with sale tokens. Authority only
func DepositToken(c *gin.Context) {
	var req TokenDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := business.DepositToken(dbconfig.DB, req.Amount, middleware.CallerIdentity(c))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": req.Amount})
}

// GetLedgerAccount returns the native balance of one ledger account
func GetLedgerAccount(c *gin.Context) {
	address := c.Param("address")

	account, err := business.GetLedgerAccount(dbconfig.DB, address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if account == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, account)
}
