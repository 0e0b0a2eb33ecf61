package repository

import (
	"errors"

	"github.com/sokomart/internal/models"

	"gorm.io/gorm"
)

// BidRepository 出价流水数据访问接口
type BidRepository interface {
	Create(bid *models.Bid) error
	GetWinning(listingID uint) (*models.Bid, error)
	ClearWinning(listingID uint) (int64, error)
	ListByListing(listingID uint, page, pageSize int) ([]models.Bid, int64, error)
	CountWinning(listingID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormBidRepository
}

// GormBidRepository GORM 实现
type GormBidRepository struct {
	db *gorm.DB
}

// NewBidRepository 创建出价仓库
func NewBidRepository(db *gorm.DB) *GormBidRepository {
	return &GormBidRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBidRepository) WithTx(tx *gorm.DB) *GormBidRepository {
	if tx == nil {
		return r
	}
	return &GormBidRepository{db: tx}
}

// Create 写入出价
func (r *GormBidRepository) Create(bid *models.Bid) error {
	return r.db.Create(bid).Error
}

// GetWinning 获取当前领先出价
func (r *GormBidRepository) GetWinning(listingID uint) (*models.Bid, error) {
	var bid models.Bid
	if err := r.db.Where("listing_id = ? AND is_winning = ?", listingID, true).
		Order("id desc").
		First(&bid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bid, nil
}

// ClearWinning 取消商品当前领先标记（true -> false，仅一次）
func (r *GormBidRepository) ClearWinning(listingID uint) (int64, error) {
	result := r.db.Model(&models.Bid{}).
		Where("listing_id = ? AND is_winning = ?", listingID, true).
		Update("is_winning", false)
	return result.RowsAffected, result.Error
}

// ListByListing 按时间倒序列出出价
func (r *GormBidRepository) ListByListing(listingID uint, page, pageSize int) ([]models.Bid, int64, error) {
	query := r.db.Model(&models.Bid{}).Where("listing_id = ?", listingID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bids []models.Bid
	if err := applyPagination(query.Order("created_at desc").Order("id desc"), page, pageSize).
		Find(&bids).Error; err != nil {
		return nil, 0, err
	}
	return bids, total, nil
}

// CountWinning 统计领先出价数量（正常情况下为 0 或 1）
func (r *GormBidRepository) CountWinning(listingID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Bid{}).Where("listing_id = ? AND is_winning = ?", listingID, true).Count(&count).Error
	return count, err
}
