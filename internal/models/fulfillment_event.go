package models

import "time"

// FulfillmentEvent 履约审计日志
// 说明：记录每一次状态推进、取消、指派与现金确认，按订单检索。
type FulfillmentEvent struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	OrderID    uint      `gorm:"index;not null" json:"order_id"`
	ActorID    uint      `gorm:"index;not null" json:"actor_id"`
	ActorRole  string    `gorm:"type:varchar(32);not null;default:''" json:"actor_role"`
	Action     string    `gorm:"type:varchar(32);index;not null" json:"action"`
	FromStatus string    `gorm:"type:varchar(20);not null;default:''" json:"from_status"`
	ToStatus   string    `gorm:"type:varchar(20);not null;default:''" json:"to_status"`
	Note       string    `gorm:"type:varchar(500);not null;default:''" json:"note"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (FulfillmentEvent) TableName() string {
	return "fulfillment_events"
}
