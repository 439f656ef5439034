package models

import "time"

// Transfer kinds recorded on FundTransferRecord.
const (
	TransferKindDeposit      = "deposit"
	TransferKindTokenDeposit = "token_deposit"
	TransferKindContribution = "contribution"
	TransferKindClaim        = "claim"
	TransferKindWithdrawal   = "withdrawal"
)

// FundTransferRecord is the audit row for every ledger movement. Mint is the
// token mint for token transfers and "sol" for native transfers. Claims and
// withdrawals are additionally settled on chain by the worker, which fills
// Signature and flips Settled.
type FundTransferRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Kind        string    `gorm:"size:32;not null" json:"kind"`
	Mint        string    `gorm:"size:100;not null;default:'sol'" json:"mint"`
	FromAddress string    `gorm:"size:100;not null" json:"from_address"`
	ToAddress   string    `gorm:"size:100;not null" json:"to_address"`
	Amount      uint64    `gorm:"not null" json:"amount"`
	Settled     bool      `gorm:"not null;default:false" json:"settled"`
	Signature   string    `gorm:"size:128;default:''" json:"signature"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (FundTransferRecord) TableName() string {
	return "fund_transfer_record"
}
