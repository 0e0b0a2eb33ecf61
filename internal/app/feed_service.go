package app

import (
	"context"
	"errors"
	"sync"

	"github.com/sokomart/internal/feed"
	"github.com/sokomart/internal/logger"
)

// FeedService 运行推送 Hub 并把事件源接入 Hub
type FeedService struct {
	hub       *feed.Hub
	transport *feed.Transport
	wg        sync.WaitGroup
}

// NewFeedService 创建推送服务
func NewFeedService(hub *feed.Hub, transport *feed.Transport) *FeedService {
	return &FeedService{hub: hub, transport: transport}
}

// Name 服务名称
func (s *FeedService) Name() string {
	return "feed"
}

// Start 阻塞直到 ctx 结束；事件源异常退出时仅记录日志，本地 Hub 继续服务
func (s *FeedService) Start(ctx context.Context) error {
	if s == nil || s.hub == nil {
		return errors.New("feed hub not initialized")
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.hub.Run(ctx)
	}()

	if s.transport != nil && s.transport.Source != nil {
		if err := s.transport.Source.Run(ctx, s.hub); err != nil {
			logger.Warnw("feed_source_stopped", "driver", s.transport.Driver, "error", err)
		}
	}
	<-ctx.Done()
	return nil
}

// Stop 等待 Hub 关闭所有订阅者
func (s *FeedService) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
