package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"presalecontrol/internal/models"
	dbconfig "presalecontrol/pkg/config"
	pcsolana "presalecontrol/pkg/solana"
)

// TokenConfigRequest registers a mint with the service
type TokenConfigRequest struct {
	Mint   string `json:"mint" binding:"required"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// RegisterTokenConfig registers a mint, reading decimals and the initialized
// flag from chain when an RPC endpoint is configured. Without RPC the mint
// is registered as initialized, for closed test environments.
func RegisterTokenConfig(c *gin.Context) {
	var req TokenConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := models.TokenConfig{
		Mint:        req.Mint,
		Symbol:      req.Symbol,
		Name:        req.Name,
		Initialized: true,
	}

	if endpoint := os.Getenv("DEFAULT_SOLANA_RPC"); endpoint != "" {
		info, err := pcsolana.FetchMintInfo(rpc.New(endpoint), req.Mint)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		token.Decimals = int(info.Decimals)
		token.Initialized = info.Initialized
	}

	var existing models.TokenConfig
	err := dbconfig.DB.Where("mint = ?", req.Mint).First(&existing).Error
	if err == nil {
		existing.Symbol = token.Symbol
		existing.Name = token.Name
		existing.Decimals = token.Decimals
		existing.Initialized = token.Initialized
		if err := dbconfig.DB.Save(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, existing)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := dbconfig.DB.Create(&token).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, token)
}

// ListTokenConfigs returns all registered mints
func ListTokenConfigs(c *gin.Context) {
	var tokens []models.TokenConfig
	if err := dbconfig.DB.Find(&tokens).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// GetTokenConfig returns one registered mint
func GetTokenConfig(c *gin.Context) {
	var token models.TokenConfig
	err := dbconfig.DB.Where("mint = ?", c.Param("mint")).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, token)
}
