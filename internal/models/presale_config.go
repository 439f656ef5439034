package models

import "time"

// PresaleConfig is the single presale row. One deployment runs exactly one
// presale; every operation reads and mutates this record.
type PresaleConfig struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Goal           uint64    `gorm:"not null" json:"goal"`
	TokenMint      string    `gorm:"size:100;default:''" json:"token_mint"`
	AmountRaised   uint64    `gorm:"not null;default:0" json:"amount_raised"`
	StartTime      uint64    `gorm:"not null" json:"start_time"`
	EndTime        uint64    `gorm:"not null" json:"end_time"`
	PricePerToken  uint64    `gorm:"not null" json:"price_per_token"`
	IsLive         bool      `gorm:"not null;default:false" json:"is_live"`
	Authority      string    `gorm:"size:100;not null" json:"authority"`
	CustodyAddress string    `gorm:"size:100;not null" json:"custody_address"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PresaleConfig) TableName() string {
	return "presale_config"
}
