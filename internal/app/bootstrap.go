package app

import (
	"context"
	"errors"

	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/provider"
	"github.com/sokomart/internal/router"
	"github.com/sokomart/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	if cfg.Fulfillment.BackfillOnStart {
		filled, err := container.ScanService.BackfillTrackingCodes(context.Background())
		if err != nil {
			logger.Warnw("app_tracking_code_backfill_failed", "filled", filled, "error", err)
		} else if filled > 0 {
			logger.Infow("app_tracking_code_backfill", "filled", filled)
		}
	}

	var services []Service

	// 初始化 HTTP 服务与实时推送
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services,
			NewHTTPService(addr, engine, container),
			NewFeedService(container.FeedHub, container.FeedTransport),
		)
	}

	// 初始化 Worker 服务与结拍巡检
	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		switch {
		case err == nil:
			services = append(services, workerService)
		case mode == ModeWorker:
			return nil, err
		default:
			logger.Warnw("app_worker_skipped", "error", err)
		}
		services = append(services, worker.NewSweepService(cfg.Auction, container.ListingService))
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	mode, err := ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	opts.Mode = mode

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
