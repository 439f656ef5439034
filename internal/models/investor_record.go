package models

import "time"

// InvestorRecord tracks one participant's cumulative contribution and the
// tokens still owed to them. Created lazily on first contribution.
// NumberOfTokens is zeroed when the investor claims; ClaimedTokens keeps the
// lifetime total for reporting.
type InvestorRecord struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Address        string    `gorm:"size:100;uniqueIndex;not null" json:"address"`
	Amount         uint64    `gorm:"not null;default:0" json:"amount"`
	NumberOfTokens uint64    `gorm:"not null;default:0" json:"number_of_tokens"`
	ClaimedTokens  uint64    `gorm:"not null;default:0" json:"claimed_tokens"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (InvestorRecord) TableName() string {
	return "investor_record"
}
