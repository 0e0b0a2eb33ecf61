package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sokomart/internal/cache"
	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/models"
	"github.com/sokomart/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid 令牌无效
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenRevoked 令牌已失效（版本不匹配）
	ErrTokenRevoked = errors.New("token revoked")
)

// ProfileJWTClaims 身份令牌声明（由外部认证服务签发，本服务仅校验）
type ProfileJWTClaims struct {
	ProfileID    uint   `json:"profile_id"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// Actor 请求操作者
type Actor struct {
	ProfileID uint   `json:"profile_id"`
	Role      string `json:"role"`
	Town      string `json:"town"`
}

// NormalizedTown 返回用于比较的城镇名
func (a Actor) NormalizedTown() string {
	return models.NormalizeTown(a.Town)
}

// IdentityService 身份校验服务
type IdentityService struct {
	cfg         config.JWTConfig
	profileRepo repository.ProfileRepository
}

// NewIdentityService 创建身份校验服务
func NewIdentityService(cfg config.JWTConfig, profileRepo repository.ProfileRepository) *IdentityService {
	return &IdentityService{cfg: cfg, profileRepo: profileRepo}
}

// IssueToken 签发令牌（仅供开发环境 seed 使用）
func (s *IdentityService) IssueToken(profile *models.Profile, ttl time.Duration) (string, time.Time, error) {
	if profile == nil || profile.ID == 0 {
		return "", time.Time{}, ErrProfileNotFound
	}
	if ttl <= 0 {
		ttl = time.Duration(maxInt(s.cfg.ExpireHours, 1)) * time.Hour
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := ProfileJWTClaims{
		ProfileID:    profile.ID,
		TokenVersion: profile.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken 校验并解析令牌
func (s *IdentityService) ParseToken(tokenString string) (*ProfileJWTClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer := strings.TrimSpace(s.cfg.Issuer); issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(options...)
	claims := &ProfileJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil || !token.Valid || claims.ProfileID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ResolveActor 根据令牌声明解析操作者，优先读取缓存快照
func (s *IdentityService) ResolveActor(ctx context.Context, claims *ProfileJWTClaims) (*Actor, error) {
	if claims == nil || claims.ProfileID == 0 {
		return nil, ErrTokenInvalid
	}
	if cached, hit, err := cache.GetProfileAuthState(ctx, claims.ProfileID); err == nil && hit && cached != nil {
		return actorFromState(claims, cached)
	}

	profile, err := s.profileRepo.GetByID(claims.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrTokenInvalid
	}
	state := cache.BuildProfileAuthState(profile)
	_ = cache.SetProfileAuthState(ctx, state)
	return actorFromState(claims, state)
}

func actorFromState(claims *ProfileJWTClaims, state *cache.ProfileAuthState) (*Actor, error) {
	if state.Status != "" && state.Status != constants.ProfileStatusActive {
		return nil, ErrProfileDisabled
	}
	if claims.TokenVersion != state.TokenVersion {
		return nil, ErrTokenRevoked
	}
	return &Actor{ProfileID: state.ProfileID, Role: state.Role, Town: state.Town}, nil
}

// GetProfile 获取档案
func (s *IdentityService) GetProfile(profileID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
