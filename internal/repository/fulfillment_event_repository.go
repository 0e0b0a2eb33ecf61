package repository

import (
	"github.com/sokomart/internal/models"

	"gorm.io/gorm"
)

// FulfillmentEventRepository 履约审计日志数据访问接口
type FulfillmentEventRepository interface {
	Create(event *models.FulfillmentEvent) error
	ListByOrder(orderID uint) ([]models.FulfillmentEvent, error)
	WithTx(tx *gorm.DB) *GormFulfillmentEventRepository
}

// GormFulfillmentEventRepository GORM 实现
type GormFulfillmentEventRepository struct {
	db *gorm.DB
}

// NewFulfillmentEventRepository 创建履约审计日志仓库
func NewFulfillmentEventRepository(db *gorm.DB) *GormFulfillmentEventRepository {
	return &GormFulfillmentEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormFulfillmentEventRepository) WithTx(tx *gorm.DB) *GormFulfillmentEventRepository {
	if tx == nil {
		return r
	}
	return &GormFulfillmentEventRepository{db: tx}
}

// Create 写入审计日志
func (r *GormFulfillmentEventRepository) Create(event *models.FulfillmentEvent) error {
	return r.db.Create(event).Error
}

// ListByOrder 按时间顺序列出订单审计日志
func (r *GormFulfillmentEventRepository) ListByOrder(orderID uint) ([]models.FulfillmentEvent, error) {
	var events []models.FulfillmentEvent
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
