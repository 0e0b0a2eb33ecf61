package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/sokomart/internal/logger"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// Source 把已发布的事件泵入 Hub（支持多实例部署）
type Source interface {
	Run(ctx context.Context, hub *Hub) error
}

// RedisSource 基于 PSUBSCRIBE 的事件源
type RedisSource struct {
	client *redis.Client
	prefix string
}

// NewRedisSource 创建 Redis 事件源
func NewRedisSource(client *redis.Client, keyPrefix string) *RedisSource {
	return &RedisSource{client: client, prefix: redisChannelPrefix(keyPrefix)}
}

// Run 订阅 <prefix>:feed:* 直到 ctx 结束
func (s *RedisSource) Run(ctx context.Context, hub *Hub) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("redis feed source unavailable")
	}
	pubsub := s.client.PSubscribe(ctx, s.prefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			topic := strings.TrimPrefix(msg.Channel, s.prefix)
			if topic == "" {
				continue
			}
			hub.Broadcast(topic, []byte(msg.Payload))
		}
	}
}

// NATSSource 基于 NATS 订阅的事件源
type NATSSource struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewNATSSource 创建 NATS 事件源
func NewNATSSource(conn *nats.Conn, subjectPrefix string) *NATSSource {
	return &NATSSource{conn: conn, subjectPrefix: normalizeSubjectPrefix(subjectPrefix)}
}

// Run 订阅 <subject_prefix>.> 直到 ctx 结束
func (s *NATSSource) Run(ctx context.Context, hub *Hub) error {
	if s == nil || s.conn == nil {
		return fmt.Errorf("nats feed source unavailable")
	}
	sub, err := s.conn.Subscribe(s.subjectPrefix+".>", func(msg *nats.Msg) {
		topic := SubjectToTopic(s.subjectPrefix, msg.Subject)
		if topic == "" {
			return
		}
		hub.Broadcast(topic, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe nats feed failed: %w", err)
	}
	logger.Infow("feed_nats_subscribed", "subject", s.subjectPrefix+".>")
	<-ctx.Done()
	return sub.Unsubscribe()
}

// NopSource 不产生事件
type NopSource struct{}

// Run 阻塞直到 ctx 结束
func (NopSource) Run(ctx context.Context, _ *Hub) error {
	<-ctx.Done()
	return nil
}
