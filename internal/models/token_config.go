package models

import "time"

// TokenConfig describes a mint known to the service. The presale token must
// be registered (and initialized on chain) before set-token accepts it.
type TokenConfig struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Mint        string    `gorm:"size:100;uniqueIndex;not null" json:"mint"`
	Symbol      string    `gorm:"size:16;not null" json:"symbol"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	Decimals    int       `gorm:"not null" json:"decimals"`
	Initialized bool      `gorm:"not null;default:false" json:"initialized"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (TokenConfig) TableName() string {
	return "token_config"
}
