package models

import "time"

// LedgerAccount holds the native-currency balance of one address in the
// service's internal ledger. The presale custody account is just another row
// here, addressed by the custodial keypair's public key.
type LedgerAccount struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Address   string    `gorm:"size:100;uniqueIndex;not null" json:"address"`
	Lamports  uint64    `gorm:"not null;default:0" json:"lamports"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (LedgerAccount) TableName() string {
	return "ledger_account"
}

// TokenAccount holds one address's balance of one mint.
type TokenAccount struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Address   string    `gorm:"size:100;not null;uniqueIndex:idx_token_account_address_mint" json:"address"`
	Mint      string    `gorm:"size:100;not null;uniqueIndex:idx_token_account_address_mint" json:"mint"`
	Balance   uint64    `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (TokenAccount) TableName() string {
	return "token_account"
}
