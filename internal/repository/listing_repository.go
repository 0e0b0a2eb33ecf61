package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingRepository 商品数据访问接口
type ListingRepository interface {
	Create(listing *models.Listing) error
	GetByID(id uint) (*models.Listing, error)
	GetByIDForUpdate(id uint) (*models.Listing, error)
	List(filter ListingListFilter) ([]models.Listing, int64, error)
	ApplyBid(id uint, observedBidCount int, amount int64) (bool, error)
	UpdateStatus(id uint, fromStatus string, updates map[string]interface{}) (bool, error)
	ListExpiredAuctions(now time.Time, limit int) ([]models.Listing, error)
	WithTx(tx *gorm.DB) *GormListingRepository
}

// GormListingRepository GORM 实现
type GormListingRepository struct {
	db *gorm.DB
}

// NewListingRepository 创建商品仓库
func NewListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormListingRepository) WithTx(tx *gorm.DB) *GormListingRepository {
	if tx == nil {
		return r
	}
	return &GormListingRepository{db: tx}
}

// Create 创建商品
func (r *GormListingRepository) Create(listing *models.Listing) error {
	return r.db.Create(listing).Error
}

// GetByID 根据 ID 获取商品
func (r *GormListingRepository) GetByID(id uint) (*models.Listing, error) {
	if id == 0 {
		return nil, nil
	}
	var listing models.Listing
	if err := r.db.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// GetByIDForUpdate 加行锁读取商品（需在事务中调用）
func (r *GormListingRepository) GetByIDForUpdate(id uint) (*models.Listing, error) {
	if id == 0 {
		return nil, nil
	}
	var listing models.Listing
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// List 商品列表
func (r *GormListingRepository) List(filter ListingListFilter) ([]models.Listing, int64, error) {
	query := r.db.Model(&models.Listing{})
	if filter.OnlyPublic {
		query = query.Where("is_approved = ? AND status IN ?", true, []string{
			constants.ListingStatusActive,
			constants.ListingStatusEnded,
			constants.ListingStatusSold,
		})
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.ListingType != "" {
		query = query.Where("listing_type = ?", filter.ListingType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if town := models.NormalizeTown(filter.Town); town != "" {
		query = query.Where("LOWER(town) = ?", town)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, count := buildLikeCondition(r.db, []string{"title", "description"})
		query = query.Where(condition, repeatLikeArgs(containsPattern(search), count)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.Listing
	if err := applyPagination(query.Order("created_at desc").Order("id desc"), filter.Page, filter.PageSize).
		Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// ApplyBid 乐观更新最高出价：仅当 bid_count 未被并发修改时生效
func (r *GormListingRepository) ApplyBid(id uint, observedBidCount int, amount int64) (bool, error) {
	result := r.db.Model(&models.Listing{}).
		Where("id = ? AND bid_count = ?", id, observedBidCount).
		Updates(map[string]interface{}{
			"current_bid": amount,
			"bid_count":   gorm.Expr("bid_count + 1"),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateStatus 条件更新商品状态（from 为空表示不校验原状态）
func (r *GormListingRepository) UpdateStatus(id uint, fromStatus string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now()
	query := r.db.Model(&models.Listing{}).Where("id = ?", id)
	if fromStatus != "" {
		query = query.Where("status = ?", fromStatus)
	}
	result := query.Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListExpiredAuctions 列出已到期但仍在拍的拍卖
func (r *GormListingRepository) ListExpiredAuctions(now time.Time, limit int) ([]models.Listing, error) {
	if limit <= 0 {
		limit = 100
	}
	var listings []models.Listing
	if err := r.db.Where("listing_type = ? AND status = ? AND auction_end_time IS NOT NULL AND auction_end_time <= ?",
		constants.ListingTypeAuction, constants.ListingStatusActive, now).
		Order("auction_end_time asc").
		Limit(limit).
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}
