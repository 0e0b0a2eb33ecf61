package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDForUpdate(id uint) (*models.Order, error)
	GetByIDAndBuyer(id uint, buyerID uint) (*models.Order, error)
	GetByTrackingCode(code string) (*models.Order, error)
	ListByOrderNoPrefix(prefix string, limit int) ([]models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateGuarded(id uint, fromStatus string, updates map[string]interface{}) (bool, error)
	ListMissingTrackingCode(limit int) ([]models.Order, error)
	SetTrackingCode(id uint, code string) (bool, error)
	SumSellerRevenue(sellerID uint) (*SellerRevenue, error)
	HasActiveOrderForListing(listingID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit("Items").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

func (r *GormOrderRepository) first(query *gorm.DB) (*models.Order, error) {
	var order models.Order
	if err := query.Preload("Items").First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("id = ?", id))
}

// GetByIDForUpdate 加行锁读取订单（需在事务中调用）
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndBuyer 获取买家自己的订单
func (r *GormOrderRepository) GetByIDAndBuyer(id uint, buyerID uint) (*models.Order, error) {
	if id == 0 || buyerID == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("id = ? AND buyer_id = ?", id, buyerID))
}

// GetByTrackingCode 按追踪码精确查询（调用方负责规范化）
func (r *GormOrderRepository) GetByTrackingCode(code string) (*models.Order, error) {
	if code == "" {
		return nil, nil
	}
	return r.first(r.db.Where("tracking_code = ?", code))
}

// ListByOrderNoPrefix 按订单号前缀查询，最多返回 limit 条
func (r *GormOrderRepository) ListByOrderNoPrefix(prefix string, limit int) ([]models.Order, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []models.Order{}, nil
	}
	if limit <= 0 {
		limit = 2
	}
	var orders []models.Order
	if err := r.db.Where("UPPER(order_no) LIKE ? ESCAPE '\\'", strings.ToUpper(escapeLike(prefix))+"%").
		Order("id asc").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// List 订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.BuyerID != 0 {
		query = query.Where("buyer_id = ?", filter.BuyerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if town := models.NormalizeTown(filter.Town); town != "" {
		query = query.Where("LOWER(TRIM(town)) = ?", town)
	}
	if filter.AssignedAgentID != 0 {
		query = query.Where("assigned_agent_id = ?", filter.AssignedAgentID)
	}
	if filter.UnassignedOrMe != 0 {
		query = query.Where("(assigned_agent_id IS NULL OR assigned_agent_id = ?)", filter.UnassignedOrMe)
	}
	if orderNo := strings.TrimSpace(filter.OrderNo); orderNo != "" {
		query = query.Where("order_no = ?", orderNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	if err := applyPagination(query.Preload("Items").Order("created_at desc").Order("id desc"), filter.Page, filter.PageSize).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateGuarded 以观察到的状态为条件更新订单，返回是否命中
func (r *GormOrderRepository) UpdateGuarded(id uint, fromStatus string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListMissingTrackingCode 列出缺少追踪码的历史订单
func (r *GormOrderRepository) ListMissingTrackingCode(limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 200
	}
	var orders []models.Order
	if err := r.db.Where("tracking_code IS NULL OR tracking_code = ''").
		Order("id asc").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// SetTrackingCode 为历史订单补写追踪码（已有追踪码时不覆盖）
func (r *GormOrderRepository) SetTrackingCode(id uint, code string) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND (tracking_code IS NULL OR tracking_code = '')", id).
		Update("tracking_code", code)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SumSellerRevenue 汇总卖家在已支付订单中的快照收入
func (r *GormOrderRepository) SumSellerRevenue(sellerID uint) (*SellerRevenue, error) {
	var row struct {
		OrderCount       int64
		ItemCount        int64
		GrossSales       decimal.Decimal
		CommissionAmount decimal.Decimal
		NetRevenue       decimal.Decimal
	}
	if err := r.db.Table("order_items").
		Select(`COUNT(DISTINCT order_items.order_id) AS order_count,
			COALESCE(SUM(order_items.quantity), 0) AS item_count,
			COALESCE(SUM(order_items.line_total), 0) AS gross_sales,
			COALESCE(SUM(order_items.commission_amount), 0) AS commission_amount,
			COALESCE(SUM(order_items.seller_net), 0) AS net_revenue`).
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL").
		Where("order_items.seller_id = ? AND orders.payment_status = ? AND orders.status <> ?",
			sellerID, constants.OrderPaymentPaid, constants.OrderStatusCancelled).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return &SellerRevenue{
		SellerID:         sellerID,
		OrderCount:       row.OrderCount,
		ItemCount:        row.ItemCount,
		GrossSales:       models.NewMoneyFromDecimal(row.GrossSales),
		CommissionAmount: models.NewMoneyFromDecimal(row.CommissionAmount),
		NetRevenue:       models.NewMoneyFromDecimal(row.NetRevenue),
	}, nil
}

// HasActiveOrderForListing 商品是否已存在未取消的订单
func (r *GormOrderRepository) HasActiveOrderForListing(listingID uint) (bool, error) {
	var count int64
	if err := r.db.Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL").
		Where("order_items.listing_id = ? AND orders.status <> ?", listingID, constants.OrderStatusCancelled).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
