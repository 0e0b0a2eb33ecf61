package repository

import (
	"time"

	"github.com/sokomart/internal/models"
)

// ListingListFilter 查询商品列表的过滤条件
type ListingListFilter struct {
	Page        int
	PageSize    int
	SellerID    uint
	ListingType string
	Status      string
	Category    string
	Town        string
	Search      string
	OnlyPublic  bool // 仅已审核且在售/已结束的商品
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page            int
	PageSize        int
	BuyerID         uint
	Status          string
	PaymentStatus   string
	Town            string // 为空表示不限城镇
	AssignedAgentID uint
	UnassignedOrMe  uint // 非 0 时仅返回未指派或指派给该配送员的订单
	OrderNo         string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// SellerRevenue 卖家收入汇总（来自已支付订单的订单项快照）
type SellerRevenue struct {
	SellerID         uint         `json:"seller_id"`
	OrderCount       int64        `json:"order_count"`
	ItemCount        int64        `json:"item_count"`
	GrossSales       models.Money `json:"gross_sales"`
	CommissionAmount models.Money `json:"commission_amount"`
	NetRevenue       models.Money `json:"net_revenue"`
}
