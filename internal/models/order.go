package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID               uint            `gorm:"primarykey" json:"id"`                                           // 主键
	OrderNo          string          `gorm:"uniqueIndex;not null" json:"order_no"`                           // 订单编号
	BuyerID          uint            `gorm:"index;not null" json:"buyer_id"`                                 // 买家
	Status           string          `gorm:"type:varchar(20);index;not null" json:"status"`                  // 履约状态
	PaymentStatus    string          `gorm:"type:varchar(32);index;not null" json:"payment_status"`          // 支付状态
	PaymentMethod    string          `gorm:"type:varchar(20);index;not null" json:"payment_method"`          // 支付方式
	Currency         string          `gorm:"type:varchar(8);not null;default:'KES'" json:"currency"`         // 币种
	Subtotal         Money           `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`          // 商品小计
	DeliveryFee      Money           `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_fee"`      // 配送费
	Total            Money           `gorm:"type:decimal(20,2);not null;default:0" json:"total"`             // 应付总额
	CommissionRate   decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"commission_rate"`    // 平台佣金比例快照
	CommissionAmount Money           `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"` // 平台佣金快照
	SellerNet        Money           `gorm:"type:decimal(20,2);not null;default:0" json:"seller_net"`        // 卖家净收入快照
	TrackingCode     *string         `gorm:"type:varchar(32);uniqueIndex" json:"tracking_code"`              // 追踪码（历史订单可能为空）
	AssignedAgentID  *uint           `gorm:"index" json:"assigned_agent_id"`                                 // 指派配送员
	Town             string          `gorm:"type:varchar(120);index;not null;default:''" json:"town"`        // 配送城镇
	DeliveryAddress  string          `gorm:"type:varchar(500);default:''" json:"delivery_address"`           // 配送地址
	AgentNotes       string          `gorm:"type:text" json:"agent_notes"`                                   // 配送员备注
	PickedUpAt       *time.Time      `json:"picked_up_at"`                                                   // 揽收时间
	InTransitAt      *time.Time      `json:"in_transit_at"`                                                  // 运输时间
	DeliveredAt      *time.Time      `json:"delivered_at"`                                                   // 送达时间
	CashConfirmedAt  *time.Time      `json:"cash_confirmed_at"`                                              // 货到付款确认时间
	CancelledAt      *time.Time      `json:"cancelled_at"`                                                   // 取消时间
	PaidAt           *time.Time      `gorm:"index" json:"paid_at"`                                           // 支付时间
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt        time.Time       `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`                                                 // 软删除时间

	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项快照
	CashPending bool        `gorm:"-" json:"cash_pending"`                     // 货到付款待确认（派生）
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// TrackingCodeValue 返回追踪码（为空时返回空串）
func (o *Order) TrackingCodeValue() string {
	if o == nil || o.TrackingCode == nil {
		return ""
	}
	return *o.TrackingCode
}
