package models

import (
	"strings"

	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/logger"
)

// EnsureBootstrapCEO 初始化首个 CEO 档案
// 已存在任意 ceo/admin 档案时跳过。
func EnsureBootstrapCEO(phone, displayName string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		logger.Warnw("bootstrap_ceo_skipped", "reason", "phone_empty")
		return nil
	}
	var count int64
	if err := DB.Model(&Profile{}).
		Where("role IN ?", []string{constants.RoleCEO, constants.RoleAdmin}).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var existing Profile
	err := DB.Where("phone = ?", phone).Limit(1).Find(&existing).Error
	if err != nil {
		return err
	}
	if existing.ID != 0 {
		if err := DB.Model(&existing).Update("role", constants.RoleCEO).Error; err != nil {
			return err
		}
		logger.Warnw("bootstrap_ceo_promoted", "profile_id", existing.ID)
		return nil
	}

	if strings.TrimSpace(displayName) == "" {
		displayName = "CEO"
	}
	profile := Profile{
		Phone:       phone,
		DisplayName: displayName,
		Role:        constants.RoleCEO,
		Status:      constants.ProfileStatusActive,
	}
	if err := DB.Create(&profile).Error; err != nil {
		return err
	}
	logger.Warnw("bootstrap_ceo_created", "profile_id", profile.ID)
	return nil
}
