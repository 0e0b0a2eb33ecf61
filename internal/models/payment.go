package models

import "time"

// Payment 支付记录（STK 推送）
type Payment struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                              // 主键
	OrderID           uint       `gorm:"index;not null" json:"order_id"`                                    // 订单ID
	Provider          string     `gorm:"type:varchar(20);not null" json:"provider"`                         // 提供方
	MerchantRequestID string     `gorm:"type:varchar(100);index" json:"merchant_request_id"`                // 商户请求号
	CheckoutRequestID string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"checkout_request_id"` // 关联回调的请求号
	Phone             string     `gorm:"type:varchar(32);not null" json:"phone"`                            // 付款手机号
	Amount            Money      `gorm:"type:decimal(20,2);not null" json:"amount"`                         // 金额
	Status            string     `gorm:"type:varchar(20);index;not null" json:"status"`                     // 状态
	ResultCode        *int       `json:"result_code"`                                                       // 回调结果码
	ResultDesc        string     `gorm:"type:varchar(255);default:''" json:"result_desc"`                   // 回调描述
	ReceiptNo         string     `gorm:"type:varchar(64);index;default:''" json:"receipt_no"`               // 收据号
	RawCallback       JSON       `gorm:"type:json" json:"-"`                                                // 原始回调
	CallbackAt        *time.Time `json:"callback_at"`                                                       // 回调时间
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt         time.Time  `gorm:"index" json:"updated_at"`                                           // 更新时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
