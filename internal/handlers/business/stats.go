package business

import (
	"gorm.io/gorm"

	"presalecontrol/internal/models"
)

// PresaleStats is the aggregate view used by the status endpoint, the
// websocket feed and the snapshot job.
type PresaleStats struct {
	Goal            uint64 `json:"goal"`
	AmountRaised    uint64 `json:"amount_raised"`
	InvestorCount   int64  `json:"investor_count"`
	TokensOwed      uint64 `json:"tokens_owed"`
	TokensClaimed   uint64 `json:"tokens_claimed"`
	CustodyLamports uint64 `json:"custody_lamports"`
	IsLive          bool   `json:"is_live"`
	Phase           string `json:"phase"`
}

// ReconcileReport cross-checks the presale running total against the
// investor records and the contribution audit rows.
type ReconcileReport struct {
	AmountRaised    uint64 `json:"amount_raised"`
	InvestorSum     uint64 `json:"investor_sum"`
	ContributionSum uint64 `json:"contribution_sum"`
	Consistent      bool   `json:"consistent"`
}

// phase derives the human-readable lifecycle phase from the record and the
// clock.
func phase(presale *models.PresaleConfig, now uint64) string {
	switch {
	case !presale.IsLive:
		return "stopped"
	case now <= presale.StartTime:
		return "pending"
	case now < presale.EndTime:
		return "open"
	default:
		return "claiming"
	}
}

// CalculatePresaleStats aggregates the current presale totals.
func CalculatePresaleStats(db *gorm.DB) (*PresaleStats, error) {
	presale, err := loadPresale(db)
	if err != nil {
		return nil, err
	}

	var investorCount int64
	if err := db.Model(&models.InvestorRecord{}).Count(&investorCount).Error; err != nil {
		return nil, err
	}

	type sums struct {
		Owed    uint64
		Claimed uint64
	}
	var s sums
	if err := db.Model(&models.InvestorRecord{}).
		Select("COALESCE(SUM(number_of_tokens),0) AS owed, COALESCE(SUM(claimed_tokens),0) AS claimed").
		Scan(&s).Error; err != nil {
		return nil, err
	}

	var custodyLamports uint64
	custody, err := GetLedgerAccount(db, presale.CustodyAddress)
	if err != nil {
		return nil, err
	}
	if custody != nil {
		custodyLamports = custody.Lamports
	}

	return &PresaleStats{
		Goal:            presale.Goal,
		AmountRaised:    presale.AmountRaised,
		InvestorCount:   investorCount,
		TokensOwed:      s.Owed,
		TokensClaimed:   s.Claimed,
		CustodyLamports: custodyLamports,
		IsLive:          presale.IsLive,
		Phase:           phase(presale, Now()),
	}, nil
}

// Reconcile verifies that amount_raised equals both the sum over investor
// records and the sum over contribution audit rows.
func Reconcile(db *gorm.DB) (*ReconcileReport, error) {
	presale, err := loadPresale(db)
	if err != nil {
		return nil, err
	}

	var investorSum uint64
	if err := db.Model(&models.InvestorRecord{}).
		Select("COALESCE(SUM(amount),0)").
		Scan(&investorSum).Error; err != nil {
		return nil, err
	}

	var contributionSum uint64
	if err := db.Model(&models.FundTransferRecord{}).
		Where("kind = ?", models.TransferKindContribution).
		Select("COALESCE(SUM(amount),0)").
		Scan(&contributionSum).Error; err != nil {
		return nil, err
	}

	return &ReconcileReport{
		AmountRaised:    presale.AmountRaised,
		InvestorSum:     investorSum,
		ContributionSum: contributionSum,
		Consistent:      presale.AmountRaised == investorSum && presale.AmountRaised == contributionSum,
	}, nil
}
