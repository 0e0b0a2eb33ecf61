package models

import "time"

// OrderItem 订单项快照
type OrderItem struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                           // 主键
	OrderID          uint      `gorm:"index;not null" json:"order_id"`                                 // 订单ID
	ListingID        uint      `gorm:"index;not null" json:"listing_id"`                               // 商品ID
	SellerID         uint      `gorm:"index;not null" json:"seller_id"`                                // 卖家ID
	Title            string    `gorm:"type:varchar(200);not null" json:"title"`                        // 标题快照
	UnitPrice        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`        // 单价
	Quantity         int       `gorm:"not null" json:"quantity"`                                       // 数量
	LineTotal        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"line_total"`        // 小计
	CommissionAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"` // 佣金分摊
	SellerNet        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"seller_net"`        // 卖家净额
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                                        // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
