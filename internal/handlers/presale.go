package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/middleware"
	dbconfig "presalecontrol/pkg/config"
)

// CustodyAddress is the presale custody account's public key, resolved from
// the keystore at startup.
var CustodyAddress string

// ConfigurePresaleRequest is the request body for presale configuration
type ConfigurePresaleRequest struct {
	Goal          uint64 `json:"goal" binding:"required"`
	StartTime     uint64 `json:"start_time" binding:"required"`
	EndTime       uint64 `json:"end_time" binding:"required"`
	PricePerToken uint64 `json:"price_per_token" binding:"required"`
}

// SetTokenRequest is the request body for pointing the presale at a mint
type SetTokenRequest struct {
	Mint string `json:"mint" binding:"required"`
}

// ContributeRequest is the request body for contributions
type ContributeRequest struct {
	Amount uint64 `json:"amount" binding:"required"`
}

// errorStatus maps the controller's closed error set to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, business.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, business.ErrPresaleNotConfigured):
		return http.StatusNotFound
	case errors.Is(err, business.ErrAlreadyConfigured),
		errors.Is(err, business.ErrPresaleAlreadyStopped),
		errors.Is(err, business.ErrTokenLocked),
		errors.Is(err, business.ErrPresaleStillLive):
		return http.StatusConflict
	case errors.Is(err, business.ErrPresaleNotLive),
		errors.Is(err, business.ErrPresaleNotStarted),
		errors.Is(err, business.ErrPresaleEnded),
		errors.Is(err, business.ErrPresaleNotEnded),
		errors.Is(err, business.ErrInsufficientFunds),
		errors.Is(err, business.ErrNothingToClaim),
		errors.Is(err, business.ErrInvalidAmount),
		errors.Is(err, business.ErrTokenNotSet),
		errors.Is(err, business.ErrTokenNotInitialized):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// publishSettlement enqueues the on-chain leg of a claim or withdrawal. The
// queue is optional in development; the ledger rows remain the source of
// truth either way.
func publishSettlement(recordID uint, kind string) {
	if dbconfig.RabbitMQ == nil {
		return
	}
	pub, err := dbconfig.NewPublisher()
	if err != nil {
		log.Errorf("settlement publisher unavailable: %v", err)
		return
	}
	defer pub.Close()

	msg := business.SettlementMessage{RecordID: recordID, Kind: kind}
	if err := pub.Publish(business.SettlementQueue, msg); err != nil {
		log.Errorf("failed to publish settlement for record %d: %v", recordID, err)
	}
}

// ConfigurePresale creates (or re-creates, before any contribution) the
// presale record with the caller as authority
func ConfigurePresale(c *gin.Context) {
	var req ConfigurePresaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := business.ConfigureParams{
		Goal:           req.Goal,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		PricePerToken:  req.PricePerToken,
		CustodyAddress: CustodyAddress,
	}
	presale, err := business.Configure(dbconfig.DB, params, middleware.CallerIdentity(c))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, presale)
}

// StopPresale halts a live presale. Authority only
func StopPresale(c *gin.Context) {
	if err := business.Stop(dbconfig.DB, middleware.CallerIdentity(c)); err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// SetPresaleToken points the presale at the registered mint being sold
func SetPresaleToken(c *gin.Context) {
	var req SetTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := business.SetToken(dbconfig.DB, req.Mint, middleware.CallerIdentity(c)); err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mint": req.Mint})
}

// Contribute records the caller's contribution and moves the funds into
// custody
func Contribute(c *gin.Context) {
	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := business.Contribute(dbconfig.DB, middleware.CallerIdentity(c), req.Amount)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

// ClaimTokens releases the caller's owed tokens after the sale window
func ClaimTokens(c *gin.Context) {
	result, err := business.Claim(dbconfig.DB, middleware.CallerIdentity(c))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	publishSettlement(result.RecordID, "claim")
	c.JSON(http.StatusOK, gin.H{"tokens": result.Tokens, "record_id": result.RecordID})
}

// WithdrawFunds moves the full custody balance to the authority
func WithdrawFunds(c *gin.Context) {
	result, err := business.Withdraw(dbconfig.DB, middleware.CallerIdentity(c))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	publishSettlement(result.RecordID, "withdrawal")
	c.JSON(http.StatusOK, gin.H{"amount": result.Amount, "record_id": result.RecordID})
}
