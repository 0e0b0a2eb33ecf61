package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/provider"
	"github.com/sokomart/internal/queue"
	"github.com/sokomart/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	for _, taskType := range queue.SMSTaskTypes {
		mux.HandleFunc(taskType, c.handleSMS)
	}
	mux.HandleFunc(queue.TaskAuctionClose, c.handleAuctionClose)
}

func (c *Consumer) handleSMS(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_sms_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.SMSPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_sms_unmarshal_failed", "task_type", task.Type(), "error", err)
		return fmt.Errorf("decode sms payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Phone == "" || payload.Message == "" {
		logger.Debugw("worker_sms_skip_invalid_payload", "task_type", task.Type(), "reference", payload.Reference)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_sms_skip_notification_service_nil", "task_type", task.Type())
		return nil
	}
	if err := c.NotificationService.Deliver(ctx, payload); err != nil {
		logger.Warnw("worker_sms_send_failed",
			"task_type", task.Type(),
			"reference", payload.Reference,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleAuctionClose(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_auction_close_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.AuctionClosePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_auction_close_unmarshal_failed", "error", err)
		return fmt.Errorf("decode auction close payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.ListingID == 0 {
		logger.Debugw("worker_auction_close_skip_invalid_payload", "listing_id", payload.ListingID)
		return nil
	}
	if c.ListingService == nil {
		logger.Warnw("worker_auction_close_skip_listing_service_nil", "listing_id", payload.ListingID)
		return nil
	}
	listing, err := c.ListingService.CloseAuction(ctx, payload.ListingID)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			logger.Debugw("worker_auction_close_skip_listing_not_found", "listing_id", payload.ListingID)
			return nil
		}
		logger.Warnw("worker_auction_close_failed", "listing_id", payload.ListingID, "error", err)
		return err
	}
	if listing == nil {
		logger.Debugw("worker_auction_close_skip_not_due", "listing_id", payload.ListingID)
	}
	return nil
}
