package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/sokomart/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// ProfileAuthState 用户鉴权快照
// 中间件每次请求都要确认角色与令牌版本，缓存避免重复查库
type ProfileAuthState struct {
	ProfileID    uint   `json:"profile_id"`
	Role         string `json:"role"`
	Town         string `json:"town"`
	Status       string `json:"status"`
	TokenVersion uint64 `json:"token_version"`
	UpdatedAt    int64  `json:"updated_at"`
}

func profileAuthStateKey(profileID uint) string {
	return fmt.Sprintf("auth:profile:%d", profileID)
}

// BuildProfileAuthState 从用户模型构建鉴权快照
func BuildProfileAuthState(profile *models.Profile) *ProfileAuthState {
	if profile == nil {
		return nil
	}
	return &ProfileAuthState{
		ProfileID:    profile.ID,
		Role:         profile.Role,
		Town:         profile.Town,
		Status:       profile.Status,
		TokenVersion: profile.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
}

// GetProfileAuthState 获取用户鉴权快照
func GetProfileAuthState(ctx context.Context, profileID uint) (*ProfileAuthState, bool, error) {
	if profileID == 0 {
		return nil, false, nil
	}
	var state ProfileAuthState
	hit, err := GetJSON(ctx, profileAuthStateKey(profileID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetProfileAuthState 写入用户鉴权快照
func SetProfileAuthState(ctx context.Context, state *ProfileAuthState) error {
	if state == nil || state.ProfileID == 0 {
		return nil
	}
	return SetJSON(ctx, profileAuthStateKey(state.ProfileID), state, authStateCacheTTL)
}

// DelProfileAuthState 删除用户鉴权快照（角色或城镇变更后调用）
func DelProfileAuthState(ctx context.Context, profileID uint) error {
	if profileID == 0 {
		return nil
	}
	return Del(ctx, profileAuthStateKey(profileID))
}
