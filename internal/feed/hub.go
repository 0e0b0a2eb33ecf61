package feed

import (
	"context"
	"sync"

	"github.com/sokomart/internal/logger"
)

// Subscriber 推送订阅者（websocket 客户端或测试桩）
type Subscriber struct {
	ID    string
	Topic string
	Send  chan []byte
}

type broadcastMessage struct {
	topic   string
	payload []byte
}

// Hub 按主题向订阅者扇出消息
// 所有订阅关系只在 Run 循环内修改。
type Hub struct {
	register   chan *Subscriber
	unregister chan *Subscriber
	broadcast  chan broadcastMessage

	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		broadcast:  make(chan broadcastMessage, 256),
		topics:     make(map[string]map[*Subscriber]struct{}),
	}
}

// Run 运行主循环，ctx 结束时关闭所有订阅者
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case sub := <-h.register:
			h.add(sub)
		case sub := <-h.unregister:
			h.remove(sub)
		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// Register 注册订阅者
func (h *Hub) Register(ctx context.Context, sub *Subscriber) bool {
	select {
	case h.register <- sub:
		return true
	case <-ctx.Done():
		return false
	}
}

// Unregister 注销订阅者
func (h *Hub) Unregister(ctx context.Context, sub *Subscriber) {
	select {
	case h.unregister <- sub:
	case <-ctx.Done():
	}
}

// Broadcast 投递消息；缓冲区满时丢弃并记录
func (h *Hub) Broadcast(topic string, payload []byte) {
	select {
	case h.broadcast <- broadcastMessage{topic: topic, payload: payload}:
	default:
		logger.Warnw("feed_hub_broadcast_dropped", "topic", topic)
	}
}

// SubscriberCount 主题订阅数
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) add(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.topics[sub.Topic]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.topics[sub.Topic] = set
	}
	set[sub] = struct{}{}
}

func (h *Hub) remove(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *Subscriber) {
	set, ok := h.topics[sub.Topic]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.Send)
	if len(set) == 0 {
		delete(h.topics, sub.Topic)
	}
}

// fanOut 慢订阅者（发送缓冲已满）直接断开，不阻塞其他订阅者
func (h *Hub) fanOut(msg broadcastMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.topics[msg.topic] {
		select {
		case sub.Send <- msg.payload:
		default:
			logger.Warnw("feed_subscriber_slow_disconnected", "topic", msg.topic, "subscriber_id", sub.ID)
			h.removeLocked(sub)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.topics {
		for sub := range set {
			h.removeLocked(sub)
		}
	}
}
