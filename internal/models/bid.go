package models

import "time"

// Bid 出价记录（只追加）
type Bid struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ListingID uint      `gorm:"index;not null;uniqueIndex:idx_bids_one_winner,where:is_winning = true" json:"listing_id"`
	BidderID  uint      `gorm:"index;not null" json:"bidder_id"`
	Amount    int64     `gorm:"not null" json:"amount"`
	IsWinning bool      `gorm:"index;not null;default:false" json:"is_winning"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (Bid) TableName() string {
	return "bids"
}
