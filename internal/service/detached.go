package service

import (
	"context"
	"sync"
	"time"

	"github.com/sokomart/internal/feed"
	"github.com/sokomart/internal/logger"
)

const detachedTaskTimeout = 5 * time.Second

// detachedRunner 提交后执行的尽力而为任务，不回滚也不阻塞调用方
type detachedRunner struct {
	wg sync.WaitGroup
}

// Go 在独立上下文中执行任务，失败与 panic 仅记录日志
func (r *detachedRunner) Go(event string, fn func(ctx context.Context) error) {
	r.GoWithin(event, detachedTaskTimeout, fn)
}

// GoWithin 同 Go，上下文期限为 timeout
func (r *detachedRunner) GoWithin(event string, timeout time.Duration, fn func(ctx context.Context) error) {
	if timeout <= 0 {
		timeout = detachedTaskTimeout
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				logger.Errorw("detached_task_panic", "event", event, "panic", rec)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.Warnw("detached_task_failed", "event", event, "error", err)
		}
	}()
}

// Wait 等待全部任务结束
func (r *detachedRunner) Wait() {
	r.wg.Wait()
}

// publishFeedEvent 构建并发布变更事件
func publishFeedEvent(ctx context.Context, publisher feed.Publisher, eventType, topic string, data interface{}) error {
	if publisher == nil {
		return nil
	}
	event, err := feed.NewEvent(eventType, topic, data)
	if err != nil {
		return err
	}
	return publisher.Publish(ctx, event)
}
