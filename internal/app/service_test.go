package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sokomart/internal/feed"

	"github.com/stretchr/testify/require"
)

type fakeService struct {
	name     string
	startErr error
	stopLog  *[]string
	mu       *sync.Mutex
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.stopLog = append(*s.stopLog, s.name)
	return nil
}

func newFakeServices(names ...string) ([]Service, *[]string) {
	var (
		stopped []string
		mu      sync.Mutex
	)
	services := make([]Service, 0, len(names))
	for _, name := range names {
		services = append(services, &fakeService{name: name, stopLog: &stopped, mu: &mu})
	}
	return services, &stopped
}

func TestRunnerStopsInReverseOrderOnCancel(t *testing.T) {
	services, stopped := newFakeServices("http", "feed", "worker")
	runner := NewRunner(services...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, time.Second, nil) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	require.Equal(t, []string{"worker", "feed", "http"}, *stopped)
}

func TestRunnerReturnsFirstServiceError(t *testing.T) {
	services, stopped := newFakeServices("http", "feed")
	boom := errors.New("listen failed")
	services[0].(*fakeService).startErr = boom

	err := NewRunner(services...).Run(context.Background(), time.Second, nil)
	require.ErrorIs(t, err, boom)
	require.Len(t, *stopped, 2)
}

func TestRunnerRejectsEmptyAndNil(t *testing.T) {
	require.Error(t, NewRunner().Run(context.Background(), time.Second, nil))
	require.Error(t, NewRunner(nil).Run(context.Background(), time.Second, nil))
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode(" API ")
	require.NoError(t, err)
	require.Equal(t, ModeAPI, mode)

	mode, err = ParseMode("")
	require.NoError(t, err)
	require.Equal(t, ModeAll, mode)

	_, err = ParseMode("cron")
	require.Error(t, err)
}

func TestFeedServiceRunsHubUntilCancelled(t *testing.T) {
	svc := NewFeedService(feed.NewHub(), feed.NewNopTransport())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, svc.Stop(stopCtx))
}
