package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Profile 用户档案（身份由外部认证服务签发）
type Profile struct {
	ID           uint           `gorm:"primarykey" json:"id"`                               // 主键
	Phone        string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"phone"` // 手机号（短信接收）
	DisplayName  string         `gorm:"type:varchar(120);default:''" json:"display_name"`   // 昵称
	Role         string         `gorm:"type:varchar(32);index;not null" json:"role"`        // 角色
	Town         string         `gorm:"type:varchar(120);index;default:''" json:"town"`     // 所属城镇（配送员）
	Status       string         `gorm:"type:varchar(20);default:'active'" json:"status"`    // 账号状态
	TokenVersion uint64         `gorm:"not null;default:0" json:"-"`                        // Token 版本
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
}

// TableName 指定表名
func (Profile) TableName() string {
	return "profiles"
}

// NormalizedTown 返回用于比较的城镇名
func (p *Profile) NormalizedTown() string {
	if p == nil {
		return ""
	}
	return NormalizeTown(p.Town)
}

// NormalizeTown 统一城镇名（去空白、小写）
func NormalizeTown(town string) string {
	return strings.ToLower(strings.TrimSpace(town))
}
