package business

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"presalecontrol/internal/models"
)

// NativeMint is the mint string recorded for native-currency movements.
const NativeMint = "sol"

// Now returns the current unix time used by every window guard. Tests swap
// it for a fixed clock.
var Now = func() uint64 {
	return uint64(time.Now().Unix())
}

// CustodialAuthority is the capability presented to token transfers made on
// behalf of the presale custody account. It is built from the presale record
// itself, never from a private key.
type CustodialAuthority struct {
	custody string
}

// Custodian returns the authority capability for the given custody address.
func Custodian(custody string) CustodialAuthority {
	return CustodialAuthority{custody: custody}
}

// CanSignFor reports whether the capability covers the given source address.
func (a CustodialAuthority) CanSignFor(address string) bool {
	return a.custody != "" && a.custody == address
}

// ensureLedgerAccount returns the native account for address, creating it
// with a zero balance if absent.
func ensureLedgerAccount(tx *gorm.DB, address string) (*models.LedgerAccount, error) {
	var account models.LedgerAccount
	err := tx.Where(models.LedgerAccount{Address: address}).
		FirstOrCreate(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ensureTokenAccount returns the token account for (address, mint), creating
// it with a zero balance if absent.
func ensureTokenAccount(tx *gorm.DB, address, mint string) (*models.TokenAccount, error) {
	var account models.TokenAccount
	err := tx.Where(models.TokenAccount{Address: address, Mint: mint}).
		FirstOrCreate(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// transferNative moves lamports between two ledger accounts. The debit is a
// guarded single-statement update so the balance check and the decrement
// cannot be split by a concurrent call.
func transferNative(tx *gorm.DB, from, to string, amount uint64) error {
	if _, err := ensureLedgerAccount(tx, to); err != nil {
		return err
	}
	res := tx.Model(&models.LedgerAccount{}).
		Where("address = ? AND lamports >= ?", from, amount).
		Update("lamports", gorm.Expr("lamports - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	return tx.Model(&models.LedgerAccount{}).
		Where("address = ?", to).
		Update("lamports", gorm.Expr("lamports + ?", amount)).Error
}

// transferToken moves token units between two token accounts. Moving out of
// the custody account requires the custodial authority capability.
func transferToken(tx *gorm.DB, mint, from, to string, auth CustodialAuthority, amount uint64) error {
	if !auth.CanSignFor(from) {
		return ErrUnauthorized
	}
	if _, err := ensureTokenAccount(tx, to, mint); err != nil {
		return err
	}
	res := tx.Model(&models.TokenAccount{}).
		Where("address = ? AND mint = ? AND balance >= ?", from, mint, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	return tx.Model(&models.TokenAccount{}).
		Where("address = ? AND mint = ?", to, mint).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}

// GetLedgerAccount returns the native account for address, or nil when the
// address has never touched the ledger.
func GetLedgerAccount(db *gorm.DB, address string) (*models.LedgerAccount, error) {
	var account models.LedgerAccount
	err := db.Where("address = ?", address).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// DepositNative credits an investor's ledger account. Only the presale
// authority may credit deposits; the credit mirrors an observed on-chain
// deposit into custody.
func DepositNative(db *gorm.DB, address string, amount uint64, caller string) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	return db.Transaction(func(tx *gorm.DB) error {
		presale, err := loadPresale(tx)
		if err != nil {
			return err
		}
		if caller != presale.Authority {
			return ErrUnauthorized
		}
		account, err := ensureLedgerAccount(tx, address)
		if err != nil {
			return err
		}
		if err := tx.Model(account).
			Update("lamports", gorm.Expr("lamports + ?", amount)).Error; err != nil {
			return err
		}
		record := models.FundTransferRecord{
			Kind:        models.TransferKindDeposit,
			Mint:        NativeMint,
			FromAddress: address,
			ToAddress:   address,
			Amount:      amount,
			Settled:     true,
		}
		return tx.Create(&record).Error
	})
}

// DepositToken credits the presale custody with sale tokens. Authority only;
// the presale token mint must already be set.
func DepositToken(db *gorm.DB, amount uint64, caller string) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	return db.Transaction(func(tx *gorm.DB) error {
		presale, err := loadPresale(tx)
		if err != nil {
			return err
		}
		if caller != presale.Authority {
			return ErrUnauthorized
		}
		if presale.TokenMint == "" {
			return ErrTokenNotSet
		}
		account, err := ensureTokenAccount(tx, presale.CustodyAddress, presale.TokenMint)
		if err != nil {
			return err
		}
		if err := tx.Model(account).
			Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err
		}
		record := models.FundTransferRecord{
			Kind:        models.TransferKindTokenDeposit,
			Mint:        presale.TokenMint,
			FromAddress: caller,
			ToAddress:   presale.CustodyAddress,
			Amount:      amount,
			Settled:     true,
		}
		return tx.Create(&record).Error
	})
}
