package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sokomart/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// NewUpgrader 创建 websocket 升级器，allowedOrigins 为空时允许任意来源
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin != "" && origin != "*" {
			allowed[origin] = struct{}{}
		}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			_, ok := allowed[r.Header.Get("Origin")]
			return ok
		},
	}
}

// ServeWS 升级连接并订阅主题，阻塞直到连接关闭
func ServeWS(ctx context.Context, hub *Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, topic string, bufferSize int) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}
	sub := &Subscriber{
		ID:    uuid.NewString(),
		Topic: topic,
		Send:  make(chan []byte, bufferSize),
	}
	if !hub.Register(ctx, sub) {
		_ = conn.Close()
		return ctx.Err()
	}

	hello, _ := json.Marshal(map[string]string{"type": "connected", "topic": topic, "client_id": sub.ID})
	go writePump(conn, sub, hello)
	readPump(conn)
	hub.Unregister(context.Background(), sub)
	return nil
}

// writePump 负责写消息与心跳；Send 被 Hub 关闭时退出
func writePump(conn *websocket.Conn, sub *Subscriber, hello []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		return
	}
	for {
		select {
		case message, ok := <-sub.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 只处理心跳与关闭，客户端消息被忽略
func readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debugw("feed_ws_read_error", "error", err)
			}
			return
		}
	}
}
