package repository

import (
	"errors"
	"strings"

	"github.com/sokomart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository 支付记录数据访问接口
type PaymentRepository interface {
	Create(payment *models.Payment) error
	Update(payment *models.Payment) error
	GetByCheckoutRequestID(checkoutRequestID string) (*models.Payment, error)
	GetByCheckoutRequestIDForUpdate(checkoutRequestID string) (*models.Payment, error)
	ListByOrder(orderID uint) ([]models.Payment, error)
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付记录
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// Update 更新支付记录
func (r *GormPaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// GetByCheckoutRequestID 根据 CheckoutRequestID 获取支付记录
func (r *GormPaymentRepository) GetByCheckoutRequestID(checkoutRequestID string) (*models.Payment, error) {
	return r.getByCheckoutRequestID(r.db, checkoutRequestID)
}

// GetByCheckoutRequestIDForUpdate 加行锁获取支付记录
func (r *GormPaymentRepository) GetByCheckoutRequestIDForUpdate(checkoutRequestID string) (*models.Payment, error) {
	return r.getByCheckoutRequestID(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), checkoutRequestID)
}

func (r *GormPaymentRepository) getByCheckoutRequestID(query *gorm.DB, checkoutRequestID string) (*models.Payment, error) {
	checkoutRequestID = strings.TrimSpace(checkoutRequestID)
	if checkoutRequestID == "" {
		return nil, nil
	}
	var payment models.Payment
	if err := query.Where("checkout_request_id = ?", checkoutRequestID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// ListByOrder 列出订单的支付记录
func (r *GormPaymentRepository) ListByOrder(orderID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.Where("order_id = ?", orderID).Order("id desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
