package models

import (
	"time"

	"gorm.io/gorm"
)

// Listing 商品（定价或拍卖）
type Listing struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                // 主键
	SellerID       uint           `gorm:"index;not null" json:"seller_id"`                     // 卖家
	Title          string         `gorm:"type:varchar(200);not null" json:"title"`             // 标题
	Description    string         `gorm:"type:text" json:"description"`                        // 描述
	Category       string         `gorm:"type:varchar(80);index;default:''" json:"category"`   // 分类
	Town           string         `gorm:"type:varchar(120);index;default:''" json:"town"`      // 所在城镇
	ListingType    string         `gorm:"type:varchar(20);index;not null" json:"listing_type"` // 类型 auction/fixed
	Price          int64          `gorm:"not null" json:"price"`                               // 定价或起拍价（KES）
	CurrentBid     *int64         `json:"current_bid"`                                         // 当前最高出价
	BidCount       int            `gorm:"not null;default:0" json:"bid_count"`                 // 出价次数
	AuctionEndTime *time.Time     `gorm:"index" json:"auction_end_time"`                       // 拍卖截止时间
	Status         string         `gorm:"type:varchar(32);index;not null" json:"status"`       // 状态
	IsApproved     bool           `gorm:"not null;default:false" json:"is_approved"`           // 是否通过审核
	WinnerID       *uint          `gorm:"index" json:"winner_id,omitempty"`                    // 成交买家
	ClosedAt       *time.Time     `json:"closed_at,omitempty"`                                 // 结拍时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                             // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (Listing) TableName() string {
	return "listings"
}

// EffectiveBid 当前出价基准（无出价时为起拍价）
func (l *Listing) EffectiveBid() int64 {
	if l == nil {
		return 0
	}
	if l.CurrentBid != nil {
		return *l.CurrentBid
	}
	return l.Price
}
