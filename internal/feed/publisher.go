package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// Publisher 变更推送发布端
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher 关闭推送时使用
type NopPublisher struct{}

// Publish 丢弃事件
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close 无操作
func (NopPublisher) Close() error { return nil }

// RedisPublisher 基于 Redis PUBLISH 的发布端
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher 创建 Redis 发布端
func NewRedisPublisher(client *redis.Client, keyPrefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: redisChannelPrefix(keyPrefix)}
}

// Publish 发布事件到 <prefix>:feed:<topic>
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if p == nil || p.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.prefix+event.Topic, payload).Err()
}

// Close Redis 客户端由 cache 包管理，这里不关闭
func (p *RedisPublisher) Close() error { return nil }

// NATSPublisher 基于 NATS 的发布端
type NATSPublisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewNATSPublisher 创建 NATS 发布端
func NewNATSPublisher(conn *nats.Conn, subjectPrefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subjectPrefix: normalizeSubjectPrefix(subjectPrefix)}
}

// Publish 发布事件到 <subject_prefix>.<topic>
func (p *NATSPublisher) Publish(_ context.Context, event Event) error {
	if p == nil || p.conn == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(TopicToSubject(p.subjectPrefix, event.Topic), payload)
}

// Close 刷新并关闭连接
func (p *NATSPublisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

func redisChannelPrefix(keyPrefix string) string {
	keyPrefix = strings.TrimSpace(keyPrefix)
	if keyPrefix == "" {
		keyPrefix = "sk"
	}
	return keyPrefix + ":feed:"
}

func normalizeSubjectPrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return "feed"
	}
	return prefix
}

// TopicToSubject listing:7 -> feed.listing.7
func TopicToSubject(subjectPrefix, topic string) string {
	return fmt.Sprintf("%s.%s", normalizeSubjectPrefix(subjectPrefix), strings.ReplaceAll(topic, ":", "."))
}

// SubjectToTopic feed.listing.7 -> listing:7
func SubjectToTopic(subjectPrefix, subject string) string {
	trimmed := strings.TrimPrefix(subject, normalizeSubjectPrefix(subjectPrefix)+".")
	return strings.ReplaceAll(trimmed, ".", ":")
}
