package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/notify"
	"github.com/sokomart/internal/provider"
	"github.com/sokomart/internal/queue"
	"github.com/sokomart/internal/service"

	"github.com/golang/mock/gomock"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func newSMSConsumer(sender notify.Sender) *Consumer {
	return NewConsumer(&provider.Container{
		NotificationService: service.NewNotificationService(nil, sender, nil, "https://soko.test"),
	})
}

func TestHandleSMSDeliversPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := notify.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), "+254700000001", "You have been outbid").Return(nil)

	body, err := json.Marshal(queue.SMSPayload{Phone: "+254700000001", Message: "You have been outbid", Reference: "listing:7"})
	require.NoError(t, err)
	task := asynq.NewTask(queue.TaskOutbidSMS, body)

	require.NoError(t, newSMSConsumer(sender).handleSMS(context.Background(), task))
}

func TestHandleSMSPropagatesSendError(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := notify.NewMockSender(ctrl)
	sendErr := errors.New("gateway down")
	sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(sendErr)

	body, err := json.Marshal(queue.SMSPayload{Phone: "+254700000001", Message: "Paid"})
	require.NoError(t, err)

	err = newSMSConsumer(sender).handleSMS(context.Background(), asynq.NewTask(queue.TaskPaymentSMS, body))
	require.ErrorIs(t, err, sendErr)
}

func TestHandleSMSSkipsBadPayloads(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := notify.NewMockSender(ctrl)
	consumer := newSMSConsumer(sender)

	err := consumer.handleSMS(context.Background(), asynq.NewTask(queue.TaskOutbidSMS, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	body, err := json.Marshal(queue.SMSPayload{Phone: "", Message: "x"})
	require.NoError(t, err)
	require.NoError(t, consumer.handleSMS(context.Background(), asynq.NewTask(queue.TaskOutbidSMS, body)))
}

func TestHandleAuctionCloseSkipsEmptyListing(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	body, err := json.Marshal(queue.AuctionClosePayload{})
	require.NoError(t, err)
	require.NoError(t, consumer.handleAuctionClose(context.Background(), asynq.NewTask(queue.TaskAuctionClose, body)))

	err = consumer.handleAuctionClose(context.Background(), asynq.NewTask(queue.TaskAuctionClose, []byte("nope")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

type countingCloser struct {
	calls atomic.Int32
}

func (c *countingCloser) CloseExpiredAuctions(ctx context.Context, limit int) (int, error) {
	c.calls.Add(1)
	return 1, nil
}

func TestSweepServiceRunsUntilCancelled(t *testing.T) {
	closer := &countingCloser{}
	sweeper := NewSweepService(config.AuctionConfig{CloseSweepSeconds: 1}, closer)
	require.Equal(t, time.Second, sweeper.interval)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Start(ctx) }()

	require.Eventually(t, func() bool { return closer.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestNewSweepServiceDefaultInterval(t *testing.T) {
	sweeper := NewSweepService(config.AuctionConfig{}, &countingCloser{})
	require.Equal(t, defaultSweepInterval, sweeper.interval)
}
