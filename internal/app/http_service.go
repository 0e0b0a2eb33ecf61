package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// drainer 停机时等待提交后任务并释放连接
type drainer interface {
	Wait()
	Close()
}

// HTTPService HTTP 服务封装
type HTTPService struct {
	name    string
	server  *http.Server
	drainer drainer
}

// NewHTTPService 创建 HTTP 服务
func NewHTTPService(addr string, handler http.Handler, d drainer) *HTTPService {
	return &HTTPService{
		name: "http",
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		drainer: d,
	}
}

// Name 服务名称
func (s *HTTPService) Name() string {
	if s == nil || s.name == "" {
		return "http"
	}
	return s.name
}

// Start 启动服务
func (s *HTTPService) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 停止服务，等待在途的推送与短信任务后关闭外部连接
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	if s.drainer != nil {
		s.drainer.Wait()
		s.drainer.Close()
	}
	return err
}
