package business

import (
	"errors"
	"os"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"presalecontrol/internal/models"
)

// ConfigureParams carries the presale parameters for Configure.
type ConfigureParams struct {
	Goal           uint64
	StartTime      uint64
	EndTime        uint64
	PricePerToken  uint64
	CustodyAddress string
}

// ClaimResult reports a successful claim: the token amount released and the
// transfer record queued for on-chain settlement.
type ClaimResult struct {
	Tokens   uint64
	RecordID uint
}

// WithdrawResult reports a successful withdrawal of the full custody balance.
type WithdrawResult struct {
	Amount   uint64
	RecordID uint
}

// loadPresale returns the singleton presale row.
func loadPresale(tx *gorm.DB) (*models.PresaleConfig, error) {
	var presale models.PresaleConfig
	err := tx.First(&presale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPresaleNotConfigured
	}
	if err != nil {
		return nil, err
	}
	return &presale, nil
}

// Configure creates the presale record, making the caller its authority.
// When PRESALE_OWNER is set in the environment, only that identity may
// configure. An existing presale can be reconfigured by its authority, but
// only while no contribution has been recorded.
func Configure(db *gorm.DB, params ConfigureParams, caller string) (*models.PresaleConfig, error) {
	if params.PricePerToken == 0 {
		return nil, ErrInvalidAmount
	}
	if owner := os.Getenv("PRESALE_OWNER"); owner != "" && caller != owner {
		return nil, ErrUnauthorized
	}

	var presale *models.PresaleConfig
	err := db.Transaction(func(tx *gorm.DB) error {
		existing, err := loadPresale(tx)
		if err != nil && !errors.Is(err, ErrPresaleNotConfigured) {
			return err
		}
		if existing != nil {
			if caller != existing.Authority {
				return ErrUnauthorized
			}
			if existing.AmountRaised > 0 {
				return ErrAlreadyConfigured
			}
			existing.Goal = params.Goal
			existing.StartTime = params.StartTime
			existing.EndTime = params.EndTime
			existing.PricePerToken = params.PricePerToken
			existing.CustodyAddress = params.CustodyAddress
			existing.IsLive = true
			existing.AmountRaised = 0
			if _, err := ensureLedgerAccount(tx, params.CustodyAddress); err != nil {
				return err
			}
			presale = existing
			return tx.Save(existing).Error
		}

		presale = &models.PresaleConfig{
			Goal:           params.Goal,
			StartTime:      params.StartTime,
			EndTime:        params.EndTime,
			PricePerToken:  params.PricePerToken,
			CustodyAddress: params.CustodyAddress,
			IsLive:         true,
			AmountRaised:   0,
			Authority:      caller,
		}
		if _, err := ensureLedgerAccount(tx, params.CustodyAddress); err != nil {
			return err
		}
		return tx.Create(presale).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"authority": presale.Authority,
		"goal":      presale.Goal,
		"start":     presale.StartTime,
		"end":       presale.EndTime,
		"price":     presale.PricePerToken,
	}).Info("presale configured")
	return presale, nil
}

// Stop ends the presale. Authority only, and only while the presale is
// still live; stopping is a one-way transition.
func Stop(db *gorm.DB, caller string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		presale, err := loadPresale(tx)
		if err != nil {
			return err
		}
		if caller != presale.Authority {
			return ErrUnauthorized
		}
		if !presale.IsLive {
			return ErrPresaleAlreadyStopped
		}
		return tx.Model(presale).Update("is_live", false).Error
	})
}

// SetToken points the presale at the mint being sold. The mint must be
// registered and initialized, and cannot be repointed once a claim has
// settled against the current mint.
func SetToken(db *gorm.DB, mint string, caller string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		presale, err := loadPresale(tx)
		if err != nil {
			return err
		}
		if caller != presale.Authority {
			return ErrUnauthorized
		}

		var token models.TokenConfig
		err = tx.Where("mint = ?", mint).First(&token).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotInitialized
		}
		if err != nil {
			return err
		}
		if !token.Initialized {
			return ErrTokenNotInitialized
		}

		var claims int64
		if err := tx.Model(&models.FundTransferRecord{}).
			Where("kind = ?", models.TransferKindClaim).
			Count(&claims).Error; err != nil {
			return err
		}
		if claims > 0 {
			return ErrTokenLocked
		}

		return tx.Model(presale).Update("token_mint", mint).Error
	})
}

// Contribute records an investment. Guards run in order: the presale must be
// live, the clock strictly inside the (start, end) window, the amount
// non-zero. Tokens owed are priced per contribution with truncating
// division; the remainder is not carried forward. The native transfer from
// the investor to custody is the last step, inside the same transaction, so
// a failed transfer rolls back every balance written here.
func Contribute(db *gorm.DB, investor string, amount uint64) (*models.InvestorRecord, error) {
	var record models.InvestorRecord
	err := db.Transaction(func(tx *gorm.DB) error {
		presale, err := loadPresale(tx)
		if err != nil {
			return err
		}
		if !presale.IsLive {
			return ErrPresaleNotLive
		}
		now := Now()
		if now <= presale.StartTime {
			return ErrPresaleNotStarted
		}
		if now >= presale.EndTime {
			return ErrPresaleEnded
		}
		if amount == 0 {
			return ErrInvalidAmount
		}

		if err := tx.Where(models.InvestorRecord{Address: investor}).
			FirstOrCreate(&record).Error; err != nil {
			return err
		}

		tokens := amount / presale.PricePerToken
		record.Amount += amount
		record.NumberOfTokens += tokens
		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		if err := tx.Model(presale).
			Update("amount_raised", gorm.Expr("amount_raised + ?", amount)).Error; err != nil {
			return err
		}

		transfer := models.FundTransferRecord{
			Kind:        models.TransferKindContribution,
			Mint:        NativeMint,
			FromAddress: investor,
			ToAddress:   presale.CustodyAddress,
			Amount:      amount,
			Settled:     true,
		}
		if err := tx.Create(&transfer).Error; err != nil {
			return err
		}

		return transferNative(tx, investor, presale.CustodyAddress, amount)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"investor": investor,
		"amount":   amount,
		"tokens":   record.NumberOfTokens,
	}).Info("contribution recorded")
	return &record, nil
}

// Claim releases an investor's owed tokens after the window closes. The owed
// balance is zeroed before the token transfer so that a duplicated or
// replayed settlement attempt can never release tokens twice.
func Claim(db *gorm.DB, investor string) (*ClaimResult, error) {
	var result ClaimResult
	err := db.Transaction(func(tx *gorm.DB) error {
		presale, err := loadPresale(tx)
		if err != nil {
			return err
		}
		if !presale.IsLive {
			return ErrPresaleNotLive
		}
		if Now() <= presale.EndTime {
			return ErrPresaleNotEnded
		}
		if presale.TokenMint == "" {
			return ErrTokenNotSet
		}

		var record models.InvestorRecord
		err = tx.Where("address = ?", investor).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNothingToClaim
		}
		if err != nil {
			return err
		}
		if record.NumberOfTokens == 0 {
			return ErrNothingToClaim
		}

		tokens := record.NumberOfTokens
		record.NumberOfTokens = 0
		record.ClaimedTokens += tokens
		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		transfer := models.FundTransferRecord{
			Kind:        models.TransferKindClaim,
			Mint:        presale.TokenMint,
			FromAddress: presale.CustodyAddress,
			ToAddress:   investor,
			Amount:      tokens,
		}
		if err := tx.Create(&transfer).Error; err != nil {
			return err
		}

		auth := Custodian(presale.CustodyAddress)
		if err := transferToken(tx, presale.TokenMint, presale.CustodyAddress, investor, auth, tokens); err != nil {
			return err
		}

		result = ClaimResult{Tokens: tokens, RecordID: transfer.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"investor": investor,
		"tokens":   result.Tokens,
	}).Info("claim recorded")
	return &result, nil
}

// Withdraw moves the entire custody balance to the authority. No partial
// withdrawal; requires the presale to be stopped or past its end time.
func Withdraw(db *gorm.DB, caller string) (*WithdrawResult, error) {
	var result WithdrawResult
	err := db.Transaction(func(tx *gorm.DB) error {
		presale, err := loadPresale(tx)
		if err != nil {
			return err
		}
		if caller != presale.Authority {
			return ErrUnauthorized
		}
		if presale.IsLive && Now() <= presale.EndTime {
			return ErrPresaleStillLive
		}

		custody, err := ensureLedgerAccount(tx, presale.CustodyAddress)
		if err != nil {
			return err
		}
		if custody.Lamports == 0 {
			return ErrInsufficientFunds
		}
		balance := custody.Lamports

		transfer := models.FundTransferRecord{
			Kind:        models.TransferKindWithdrawal,
			Mint:        NativeMint,
			FromAddress: presale.CustodyAddress,
			ToAddress:   presale.Authority,
			Amount:      balance,
		}
		if err := tx.Create(&transfer).Error; err != nil {
			return err
		}

		if err := transferNative(tx, presale.CustodyAddress, presale.Authority, balance); err != nil {
			return err
		}

		result = WithdrawResult{Amount: balance, RecordID: transfer.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"authority": caller,
		"amount":    result.Amount,
	}).Info("withdrawal recorded")
	return &result, nil
}
