package business

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"presalecontrol/internal/models"
	dbconfig "presalecontrol/pkg/config"
)

const (
	testAuthority = "AuthorityPubkey11111111111111111111111111111"
	testInvestorA = "InvestorAPubkey11111111111111111111111111111"
	testInvestorB = "InvestorBPubkey11111111111111111111111111111"
	testCustody   = "CustodyPubkey1111111111111111111111111111111"
	testMint      = "MintPubkey111111111111111111111111111111111"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dbconfig.MigrateModels(db))
	return db
}

func setClock(t *testing.T, now uint64) {
	t.Helper()
	old := Now
	Now = func() uint64 { return now }
	t.Cleanup(func() { Now = old })
}

// configureTestPresale sets up the scenario presale: goal 1000, window
// (100, 200), price 10.
func configureTestPresale(t *testing.T, db *gorm.DB) *models.PresaleConfig {
	t.Helper()
	t.Setenv("PRESALE_OWNER", "")
	presale, err := Configure(db, ConfigureParams{
		Goal:           1000,
		StartTime:      100,
		EndTime:        200,
		PricePerToken:  10,
		CustodyAddress: testCustody,
	}, testAuthority)
	require.NoError(t, err)
	return presale
}

func fundInvestor(t *testing.T, db *gorm.DB, address string, amount uint64) {
	t.Helper()
	require.NoError(t, DepositNative(db, address, amount, testAuthority))
}

func registerTestMint(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.TokenConfig{
		Mint:        testMint,
		Symbol:      "TST",
		Name:        "Test Token",
		Decimals:    9,
		Initialized: true,
	}).Error)
}

func TestConfigure(t *testing.T) {
	t.Run("first caller becomes authority", func(t *testing.T) {
		db := setupTestDB(t)
		presale := configureTestPresale(t, db)

		assert.Equal(t, testAuthority, presale.Authority)
		assert.True(t, presale.IsLive)
		assert.Equal(t, uint64(0), presale.AmountRaised)
		assert.Equal(t, testCustody, presale.CustodyAddress)
	})

	t.Run("pinned owner rejects other callers", func(t *testing.T) {
		db := setupTestDB(t)
		t.Setenv("PRESALE_OWNER", testAuthority)

		_, err := Configure(db, ConfigureParams{
			Goal: 1000, StartTime: 100, EndTime: 200, PricePerToken: 10,
			CustodyAddress: testCustody,
		}, testInvestorA)
		assert.ErrorIs(t, err, ErrUnauthorized)

		_, err = Configure(db, ConfigureParams{
			Goal: 1000, StartTime: 100, EndTime: 200, PricePerToken: 10,
			CustodyAddress: testCustody,
		}, testAuthority)
		assert.NoError(t, err)
	})

	t.Run("reconfigure requires the existing authority", func(t *testing.T) {
		db := setupTestDB(t)
		configureTestPresale(t, db)

		_, err := Configure(db, ConfigureParams{
			Goal: 2000, StartTime: 100, EndTime: 200, PricePerToken: 10,
			CustodyAddress: testCustody,
		}, testInvestorA)
		assert.ErrorIs(t, err, ErrUnauthorized)

		presale, err := Configure(db, ConfigureParams{
			Goal: 2000, StartTime: 100, EndTime: 300, PricePerToken: 10,
			CustodyAddress: testCustody,
		}, testAuthority)
		require.NoError(t, err)
		assert.Equal(t, uint64(2000), presale.Goal)
		assert.Equal(t, uint64(300), presale.EndTime)
	})

	t.Run("reconfigure refused after contributions", func(t *testing.T) {
		db := setupTestDB(t)
		configureTestPresale(t, db)
		setClock(t, 150)
		fundInvestor(t, db, testInvestorA, 100)
		_, err := Contribute(db, testInvestorA, 50)
		require.NoError(t, err)

		_, err = Configure(db, ConfigureParams{
			Goal: 2000, StartTime: 100, EndTime: 200, PricePerToken: 10,
			CustodyAddress: testCustody,
		}, testAuthority)
		assert.ErrorIs(t, err, ErrAlreadyConfigured)
	})

	t.Run("zero price rejected", func(t *testing.T) {
		db := setupTestDB(t)
		t.Setenv("PRESALE_OWNER", "")
		_, err := Configure(db, ConfigureParams{
			Goal: 1000, StartTime: 100, EndTime: 200, PricePerToken: 0,
			CustodyAddress: testCustody,
		}, testAuthority)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestContributeWindowGuards(t *testing.T) {
	cases := []struct {
		name    string
		now     uint64
		wantErr error
	}{
		{"before start", 50, ErrPresaleNotStarted},
		{"exactly at start", 100, ErrPresaleNotStarted},
		{"inside window", 150, nil},
		{"exactly at end", 200, ErrPresaleEnded},
		{"after end", 250, ErrPresaleEnded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			configureTestPresale(t, db)
			fundInvestor(t, db, testInvestorA, 100)
			setClock(t, tc.now)

			_, err := Contribute(db, testInvestorA, 50)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestContributeAccounting(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)
	setClock(t, 150)
	fundInvestor(t, db, testInvestorA, 1000)
	fundInvestor(t, db, testInvestorB, 1000)

	recA, err := Contribute(db, testInvestorA, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), recA.Amount)
	assert.Equal(t, uint64(5), recA.NumberOfTokens)

	// Remainders truncate per contribution, not on the aggregate
	recA, err = Contribute(db, testInvestorA, 25)
	require.NoError(t, err)
	assert.Equal(t, uint64(75), recA.Amount)
	assert.Equal(t, uint64(7), recA.NumberOfTokens)

	recB, err := Contribute(db, testInvestorB, 25)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), recB.NumberOfTokens)

	presale, err := loadPresale(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), presale.AmountRaised)

	var investorSum uint64
	require.NoError(t, db.Model(&models.InvestorRecord{}).
		Select("COALESCE(SUM(amount),0)").Scan(&investorSum).Error)
	assert.Equal(t, presale.AmountRaised, investorSum)

	// Custody holds the contributed funds, investors were debited
	custody, err := GetLedgerAccount(db, testCustody)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), custody.Lamports)

	accountA, err := GetLedgerAccount(db, testInvestorA)
	require.NoError(t, err)
	assert.Equal(t, uint64(925), accountA.Lamports)
}

func TestContributeRollsBackOnFailedTransfer(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)
	setClock(t, 150)
	// InvestorA has no ledger balance at all

	_, err := Contribute(db, testInvestorA, 50)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// Nothing may persist from the failed call
	var investors int64
	require.NoError(t, db.Model(&models.InvestorRecord{}).Count(&investors).Error)
	assert.Equal(t, int64(0), investors)

	presale, err := loadPresale(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), presale.AmountRaised)

	var transfers int64
	require.NoError(t, db.Model(&models.FundTransferRecord{}).
		Where("kind = ?", models.TransferKindContribution).Count(&transfers).Error)
	assert.Equal(t, int64(0), transfers)
}

func TestContributeRejectsZeroAmount(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)
	setClock(t, 150)
	fundInvestor(t, db, testInvestorA, 100)

	_, err := Contribute(db, testInvestorA, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestStop(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)

	assert.ErrorIs(t, Stop(db, testInvestorA), ErrUnauthorized)

	require.NoError(t, Stop(db, testAuthority))
	presale, err := loadPresale(db)
	require.NoError(t, err)
	assert.False(t, presale.IsLive)

	// One-way transition
	assert.ErrorIs(t, Stop(db, testAuthority), ErrPresaleAlreadyStopped)

	setClock(t, 150)
	fundInvestor(t, db, testInvestorA, 100)
	_, err = Contribute(db, testInvestorA, 50)
	assert.ErrorIs(t, err, ErrPresaleNotLive)
}

func TestSetToken(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)

	assert.ErrorIs(t, SetToken(db, testMint, testInvestorA), ErrUnauthorized)
	assert.ErrorIs(t, SetToken(db, testMint, testAuthority), ErrTokenNotInitialized)

	require.NoError(t, db.Create(&models.TokenConfig{
		Mint: "OtherMint1111111111111111111111111111111111", Symbol: "OTH",
		Name: "Other", Decimals: 6, Initialized: false,
	}).Error)
	assert.ErrorIs(t, SetToken(db, "OtherMint1111111111111111111111111111111111", testAuthority), ErrTokenNotInitialized)

	registerTestMint(t, db)
	require.NoError(t, SetToken(db, testMint, testAuthority))

	presale, err := loadPresale(db)
	require.NoError(t, err)
	assert.Equal(t, testMint, presale.TokenMint)
}

func TestSetTokenLockedAfterClaim(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)
	registerTestMint(t, db)
	require.NoError(t, SetToken(db, testMint, testAuthority))

	setClock(t, 150)
	fundInvestor(t, db, testInvestorA, 100)
	_, err := Contribute(db, testInvestorA, 50)
	require.NoError(t, err)
	require.NoError(t, DepositToken(db, 100, testAuthority))

	setClock(t, 250)
	_, err = Claim(db, testInvestorA)
	require.NoError(t, err)

	assert.ErrorIs(t, SetToken(db, testMint, testAuthority), ErrTokenLocked)
}

func TestClaimLifecycle(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)
	registerTestMint(t, db)
	require.NoError(t, SetToken(db, testMint, testAuthority))

	setClock(t, 150)
	fundInvestor(t, db, testInvestorA, 100)
	_, err := Contribute(db, testInvestorA, 50)
	require.NoError(t, err)
	require.NoError(t, DepositToken(db, 1000, testAuthority))

	// Claims only open strictly after end_time
	_, err = Claim(db, testInvestorA)
	assert.ErrorIs(t, err, ErrPresaleNotEnded)

	setClock(t, 200)
	_, err = Claim(db, testInvestorA)
	assert.ErrorIs(t, err, ErrPresaleNotEnded)

	setClock(t, 250)
	result, err := Claim(db, testInvestorA)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), result.Tokens)

	var record models.InvestorRecord
	require.NoError(t, db.Where("address = ?", testInvestorA).First(&record).Error)
	assert.Equal(t, uint64(0), record.NumberOfTokens)
	assert.Equal(t, uint64(5), record.ClaimedTokens)

	var tokenAccount models.TokenAccount
	require.NoError(t, db.Where("address = ? AND mint = ?", testInvestorA, testMint).
		First(&tokenAccount).Error)
	assert.Equal(t, uint64(5), tokenAccount.Balance)

	// Second claim releases nothing
	_, err = Claim(db, testInvestorA)
	assert.ErrorIs(t, err, ErrNothingToClaim)

	// Investor with no record cannot claim
	_, err = Claim(db, testInvestorB)
	assert.ErrorIs(t, err, ErrNothingToClaim)
}

func TestClaimWithoutTokenMint(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)
	setClock(t, 150)
	fundInvestor(t, db, testInvestorA, 100)
	_, err := Contribute(db, testInvestorA, 50)
	require.NoError(t, err)

	setClock(t, 250)
	_, err = Claim(db, testInvestorA)
	assert.ErrorIs(t, err, ErrTokenNotSet)
}

func TestClaimRollsBackWhenCustodyUnfunded(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)
	registerTestMint(t, db)
	require.NoError(t, SetToken(db, testMint, testAuthority))

	setClock(t, 150)
	fundInvestor(t, db, testInvestorA, 100)
	_, err := Contribute(db, testInvestorA, 50)
	require.NoError(t, err)
	// Custody token account never funded

	setClock(t, 250)
	_, err = Claim(db, testInvestorA)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// Zeroing must not survive the failed transfer
	var record models.InvestorRecord
	require.NoError(t, db.Where("address = ?", testInvestorA).First(&record).Error)
	assert.Equal(t, uint64(5), record.NumberOfTokens)
	assert.Equal(t, uint64(0), record.ClaimedTokens)
}

func TestWithdraw(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)
	setClock(t, 150)
	fundInvestor(t, db, testInvestorA, 100)
	_, err := Contribute(db, testInvestorA, 50)
	require.NoError(t, err)

	// Mid-sale withdrawal is refused
	_, err = Withdraw(db, testAuthority)
	assert.ErrorIs(t, err, ErrPresaleStillLive)

	_, err = Withdraw(db, testInvestorA)
	assert.ErrorIs(t, err, ErrUnauthorized)

	setClock(t, 250)
	result, err := Withdraw(db, testAuthority)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), result.Amount)

	custody, err := GetLedgerAccount(db, testCustody)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), custody.Lamports)

	authority, err := GetLedgerAccount(db, testAuthority)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), authority.Lamports)

	// Custody is empty now
	_, err = Withdraw(db, testAuthority)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestWithdrawAfterStop(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)
	setClock(t, 150)
	fundInvestor(t, db, testInvestorA, 100)
	_, err := Contribute(db, testInvestorA, 50)
	require.NoError(t, err)

	require.NoError(t, Stop(db, testAuthority))

	// Still time 150, but the presale is stopped
	result, err := Withdraw(db, testAuthority)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), result.Amount)
}

func TestReconcile(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)
	setClock(t, 150)
	fundInvestor(t, db, testInvestorA, 100)
	fundInvestor(t, db, testInvestorB, 100)

	_, err := Contribute(db, testInvestorA, 40)
	require.NoError(t, err)
	_, err = Contribute(db, testInvestorB, 30)
	require.NoError(t, err)

	report, err := Reconcile(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), report.AmountRaised)
	assert.Equal(t, uint64(70), report.InvestorSum)
	assert.Equal(t, uint64(70), report.ContributionSum)
	assert.True(t, report.Consistent)
}

// TestPresaleScenario walks the documented end-to-end flow: configure,
// contribute 50 at t=150, claim 5 tokens at t=250, withdraw 50.
func TestPresaleScenario(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)
	registerTestMint(t, db)
	require.NoError(t, SetToken(db, testMint, testAuthority))
	fundInvestor(t, db, testInvestorA, 50)
	require.NoError(t, DepositToken(db, 100, testAuthority))

	setClock(t, 150)
	record, err := Contribute(db, testInvestorA, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), record.Amount)
	assert.Equal(t, uint64(5), record.NumberOfTokens)

	presale, err := loadPresale(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), presale.AmountRaised)

	setClock(t, 250)
	claim, err := Claim(db, testInvestorA)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), claim.Tokens)

	withdraw, err := Withdraw(db, testAuthority)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), withdraw.Amount)

	custody, err := GetLedgerAccount(db, testCustody)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), custody.Lamports)
}

func TestCalculatePresaleStats(t *testing.T) {
	db := setupTestDB(t)
	configureTestPresale(t, db)
	setClock(t, 150)
	fundInvestor(t, db, testInvestorA, 100)
	_, err := Contribute(db, testInvestorA, 50)
	require.NoError(t, err)

	stats, err := CalculatePresaleStats(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), stats.AmountRaised)
	assert.Equal(t, int64(1), stats.InvestorCount)
	assert.Equal(t, uint64(5), stats.TokensOwed)
	assert.Equal(t, uint64(50), stats.CustodyLamports)
	assert.Equal(t, "open", stats.Phase)

	setClock(t, 250)
	stats, err = CalculatePresaleStats(db)
	require.NoError(t, err)
	assert.Equal(t, "claiming", stats.Phase)
}
