package shared

import (
	"strconv"
	"strings"

	"github.com/sokomart/internal/http/response"
	"github.com/sokomart/internal/service"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextKeyProfileID = "profile_id"
	ContextKeyActor     = "actor"
)

// GetActor 读取鉴权中间件写入的操作者。
func GetActor(c *gin.Context) (service.Actor, bool) {
	value, exists := c.Get(ContextKeyActor)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return service.Actor{}, false
	}
	actor, ok := value.(service.Actor)
	if !ok || actor.ProfileID == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return service.Actor{}, false
	}
	return actor, true
}

// ParseIDParam 解析路径中的正整数 ID，失败时返回 400。
func ParseIDParam(c *gin.Context, name, invalidKey string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondErrorWithKind(c, response.CodeBadRequest, service.KindInvalidInput, invalidKey, nil)
		return 0, false
	}
	return uint(id), true
}
