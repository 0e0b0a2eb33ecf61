package repository

import (
	"errors"
	"strings"

	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository 用户档案数据访问接口
type ProfileRepository interface {
	GetByID(id uint) (*models.Profile, error)
	GetByPhone(phone string) (*models.Profile, error)
	ListByIDs(ids []uint) ([]models.Profile, error)
	ListAgentsByTown(town string) ([]models.Profile, error)
	Create(profile *models.Profile) error
	Update(profile *models.Profile) error
}

// GormProfileRepository GORM 实现
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建用户档案仓库
func NewProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProfileRepository) WithTx(tx *gorm.DB) *GormProfileRepository {
	if tx == nil {
		return r
	}
	return &GormProfileRepository{db: tx}
}

// GetByID 根据 ID 获取档案
func (r *GormProfileRepository) GetByID(id uint) (*models.Profile, error) {
	if id == 0 {
		return nil, nil
	}
	var profile models.Profile
	if err := r.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByPhone 根据手机号获取档案
func (r *GormProfileRepository) GetByPhone(phone string) (*models.Profile, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}
	var profile models.Profile
	if err := r.db.Where("phone = ?", phone).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// ListByIDs 批量获取档案
func (r *GormProfileRepository) ListByIDs(ids []uint) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	var profiles []models.Profile
	if err := r.db.Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// ListAgentsByTown 列出城镇内启用的配送员
func (r *GormProfileRepository) ListAgentsByTown(town string) ([]models.Profile, error) {
	normalized := models.NormalizeTown(town)
	if normalized == "" {
		return []models.Profile{}, nil
	}
	var profiles []models.Profile
	if err := r.db.Where("role = ? AND status = ? AND LOWER(TRIM(town)) = ?",
		constants.RoleAgent, constants.ProfileStatusActive, normalized).
		Order("id asc").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Create 创建档案
func (r *GormProfileRepository) Create(profile *models.Profile) error {
	return r.db.Create(profile).Error
}

// Update 更新档案
func (r *GormProfileRepository) Update(profile *models.Profile) error {
	return r.db.Save(profile).Error
}
