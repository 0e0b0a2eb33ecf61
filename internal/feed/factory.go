package feed

import (
	"fmt"
	"strings"

	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/logger"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// Transport 发布端与事件源的组合
type Transport struct {
	Driver    string
	Publisher Publisher
	Source    Source
}

// NewTransport 按配置构建推送传输层；redis 未启用时退化为 none
func NewTransport(cfg config.FeedConfig, redisClient *redis.Client, redisPrefix string) (*Transport, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case constants.FeedDriverRedis, "":
		if redisClient == nil {
			logger.Warnw("feed_redis_unavailable", "fallback", constants.FeedDriverNone)
			return NewNopTransport(), nil
		}
		return &Transport{
			Driver:    constants.FeedDriverRedis,
			Publisher: NewRedisPublisher(redisClient, redisPrefix),
			Source:    NewRedisSource(redisClient, redisPrefix),
		}, nil
	case constants.FeedDriverNATS:
		conn, err := nats.Connect(cfg.NATSURL, nats.Name("sokomart-feed"), nats.MaxReconnects(-1))
		if err != nil {
			return nil, fmt.Errorf("connect nats failed: %w", err)
		}
		return &Transport{
			Driver:    constants.FeedDriverNATS,
			Publisher: NewNATSPublisher(conn, cfg.SubjectPrefix),
			Source:    NewNATSSource(conn, cfg.SubjectPrefix),
		}, nil
	case constants.FeedDriverNone:
		return NewNopTransport(), nil
	default:
		return nil, fmt.Errorf("unsupported feed driver: %s", cfg.Driver)
	}
}

// NewNopTransport 不推送的传输层
func NewNopTransport() *Transport {
	return &Transport{
		Driver:    constants.FeedDriverNone,
		Publisher: NopPublisher{},
		Source:    NopSource{},
	}
}
