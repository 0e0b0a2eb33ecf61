package router

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sokomart/internal/authz"
	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/http/handlers/shared"
	"github.com/sokomart/internal/http/response"
	"github.com/sokomart/internal/i18n"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-CSRF-Token",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// ProfileAuthMiddleware 校验外部认证服务签发的身份令牌并写入操作者
func ProfileAuthMiddleware(identity *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "error.auth_header_missing")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			abortUnauthorized(c, "error.auth_header_invalid")
			return
		}

		claims, err := identity.ParseToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		actor, err := identity.ResolveActor(c.Request.Context(), claims)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenRevoked):
				abortUnauthorized(c, "error.token_revoked")
			case errors.Is(err, service.ErrProfileDisabled):
				abortUnauthorized(c, "error.profile_disabled")
			case errors.Is(err, service.ErrTokenInvalid):
				abortUnauthorized(c, "error.token_invalid")
			default:
				logger.Errorw("profile_auth_resolve_failed", "profile_id", claims.ProfileID, "error", err)
				abortUnauthorized(c, "error.token_invalid")
			}
			return
		}

		c.Set(shared.ContextKeyProfileID, actor.ProfileID)
		c.Set(shared.ContextKeyActor, *actor)
		c.Next()
	}
}

// RequireCapability 按角色能力拦截请求（casbin）
func RequireCapability(authzService *authz.Service, object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("capability_service_unavailable", "object", object, "action", action)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		value, exists := c.Get(shared.ContextKeyActor)
		actor, ok := value.(service.Actor)
		if !exists || !ok || actor.ProfileID == 0 {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		allowed, err := authzService.Can(actor.Role, object, action)
		if err != nil {
			logger.Errorw("capability_enforce_failed",
				"profile_id", actor.ProfileID,
				"role", actor.Role,
				"object", object,
				"action", action,
				"error", err,
			)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("capability_denied",
				"profile_id", actor.ProfileID,
				"role", actor.Role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"object", authz.NormalizeObject(object),
			)
			msg := i18n.T(i18n.ResolveLocale(c), "error.forbidden")
			response.ErrorWithKind(c, response.CodeForbidden, service.KindForbidden, msg)
			c.Abort()
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, key string) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	response.Unauthorized(c, msg)
	c.Abort()
}
