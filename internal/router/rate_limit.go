package router

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sokomart/internal/http/handlers/shared"
	"github.com/sokomart/internal/http/response"
	"github.com/sokomart/internal/i18n"
	"github.com/sokomart/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

// enabled 窗口或阈值未配置时不限流
func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware Redis 固定窗口限流；Redis 异常时放行并记录日志
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}
		if keyFunc == nil {
			keyFunc = KeyByProfile
		}
		key := strings.TrimSpace(keyFunc(c))
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = rule.Prefix + ":" + key
		}

		count, ttlSeconds, err := hitWindow(c, client, key, rule.WindowSeconds)
		if err != nil {
			logger.Warnw("rate_limit_unavailable", "key", key, "error", err)
			c.Next()
			return
		}
		if count <= int64(rule.MaxRequests) {
			c.Next()
			return
		}

		waitSeconds := retryAfterSeconds(ttlSeconds, rule.WindowSeconds)
		msgKey := strings.TrimSpace(rule.MessageKey)
		if msgKey == "" {
			msgKey = "error.rate_limited"
		}
		logger.Infow("rate_limited", "key", key, "count", count, "retry_after", waitSeconds)
		c.Header("Retry-After", strconv.Itoa(waitSeconds))
		msg := i18n.Sprintf(i18n.ResolveLocale(c), msgKey, waitSeconds)
		response.Error(c, response.CodeTooManyRequests, msg)
		c.Abort()
	}
}

func hitWindow(c *gin.Context, client *redis.Client, key string, windowSeconds int) (int64, int64, error) {
	result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, windowSeconds).Result()
	if err != nil {
		return 0, 0, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit reply: %v", result)
	}
	count, ok := toInt64(values[0])
	if !ok {
		return 0, 0, fmt.Errorf("unexpected rate limit counter: %v", values[0])
	}
	ttlSeconds, _ := toInt64(values[1])
	return count, ttlSeconds, nil
}

// retryAfterSeconds TTL 异常（-1/-2）时退回整个窗口
func retryAfterSeconds(ttlSeconds int64, windowSeconds int) int {
	wait := int(ttlSeconds)
	if wait < 1 {
		wait = windowSeconds
	}
	if wait < 1 {
		wait = 1
	}
	return wait
}

// KeyByProfile 使用已鉴权的档案 ID 作为限流 key，未鉴权时退回 IP
func KeyByProfile(c *gin.Context) string {
	if value, ok := c.Get(shared.ContextKeyProfileID); ok {
		if id, ok := value.(uint); ok && id > 0 {
			return fmt.Sprintf("p%d", id)
		}
	}
	return c.ClientIP()
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
