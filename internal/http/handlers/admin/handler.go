package admin

import "github.com/sokomart/internal/provider"

// Handler 员工后台接口处理器入口
// 说明：该处理器仅用于配送员、经理及以上角色的 API。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
