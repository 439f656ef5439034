package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/models"
	dbconfig "presalecontrol/pkg/config"
)

// GetPresale returns the presale record with derived totals
func GetPresale(c *gin.Context) {
	stats, err := business.CalculatePresaleStats(dbconfig.DB)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListInvestors returns a page of investor records
func ListInvestors(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	pageSizeStr := c.DefaultQuery("page_size", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var total int64
	if err := dbconfig.DB.Model(&models.InvestorRecord{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var investors []models.InvestorRecord
	if err := dbconfig.DB.Order("amount desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&investors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      investors,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetInvestor returns one investor record by address
func GetInvestor(c *gin.Context) {
	address := c.Param("address")

	var investor models.InvestorRecord
	err := dbconfig.DB.Where("address = ?", address).First(&investor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "investor not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, investor)
}

// ListTransfers returns fund transfer records, optionally filtered by kind
func ListTransfers(c *gin.Context) {
	query := dbconfig.DB.Model(&models.FundTransferRecord{})
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var transfers []models.FundTransferRecord
	if err := query.Order("id desc").Limit(200).Find(&transfers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, transfers)
}

// ReconcilePresale verifies amount_raised against the investor records and
// the contribution audit trail
func ReconcilePresale(c *gin.Context) {
	report, err := business.Reconcile(dbconfig.DB)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
