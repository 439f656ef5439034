package models

import "time"

// PresaleSnapshot is a periodic capture of the presale running totals,
// written by the schedule job.
type PresaleSnapshot struct {
	ID                 uint      `gorm:"primarykey" json:"id"`
	AmountRaised       uint64    `gorm:"not null" json:"amount_raised"`
	InvestorCount      int64     `gorm:"not null" json:"investor_count"`
	TokensOwed         uint64    `gorm:"not null" json:"tokens_owed"`
	TokensClaimed      uint64    `gorm:"not null" json:"tokens_claimed"`
	CustodyLamports    uint64    `gorm:"not null" json:"custody_lamports"`
	IsLive             bool      `gorm:"not null" json:"is_live"`
	CreatedAtByZeroSec time.Time `json:"created_at_by_zero_sec"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (PresaleSnapshot) TableName() string {
	return "presale_snapshot"
}
