package public

import (
	"github.com/sokomart/internal/feed"
	"github.com/sokomart/internal/provider"

	"github.com/gorilla/websocket"
)

// Handler 前台/公开接口处理器入口
// 说明：该处理器用于公开浏览、买家/卖家侧 API 与支付回调。
type Handler struct {
	*provider.Container
	upgrader *websocket.Upgrader
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{
		Container: c,
		upgrader:  feed.NewUpgrader(c.Config.Feed.AllowedOrigins),
	}
}
