package worker

import (
	"context"
	"errors"
	"time"

	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/queue"
	"github.com/sokomart/internal/service"

	"github.com/hibiken/asynq"
)

const (
	defaultSweepInterval = time.Minute
	sweepBatchSize       = 100
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// auctionCloser 到期拍卖结拍
type auctionCloser interface {
	CloseExpiredAuctions(ctx context.Context, limit int) (int, error)
}

var _ auctionCloser = (*service.ListingService)(nil)

// SweepService 定时兜底结拍，覆盖延迟任务丢失的情况
type SweepService struct {
	closer   auctionCloser
	interval time.Duration
}

// NewSweepService 创建结拍巡检服务
func NewSweepService(cfg config.AuctionConfig, closer auctionCloser) *SweepService {
	interval := time.Duration(cfg.CloseSweepSeconds) * time.Second
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &SweepService{closer: closer, interval: interval}
}

// Name 服务名称
func (s *SweepService) Name() string {
	return "auction-sweeper"
}

// Start 按间隔巡检直到 ctx 结束
func (s *SweepService) Start(ctx context.Context) error {
	if s == nil || s.closer == nil {
		return errors.New("auction sweeper not initialized")
	}
	s.sweepOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// Stop 随 ctx 退出，无需额外处理
func (s *SweepService) Stop(context.Context) error {
	return nil
}

func (s *SweepService) sweepOnce(ctx context.Context) {
	closed, err := s.closer.CloseExpiredAuctions(ctx, sweepBatchSize)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warnw("worker_auction_sweep_failed", "error", err)
		return
	}
	if closed > 0 {
		logger.Infow("worker_auction_sweep_closed", "count", closed)
	}
}
