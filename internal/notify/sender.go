package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/logger"
)

//go:generate mockgen -source=sender.go -destination=mock_sender.go -package=notify

// 短信驱动
const (
	DriverLog  = "log"
	DriverNone = "none"
)

// ErrRecipientInvalid 接收号码为空
var ErrRecipientInvalid = errors.New("sms recipient invalid")

// Sender 短信发送端
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// LogSender 只记录日志的发送端（开发与沙箱环境）
type LogSender struct{}

// Send 记录短信内容
func (LogSender) Send(_ context.Context, phone, message string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrRecipientInvalid
	}
	logger.Named("sms").Infow("sms_dispatched", "phone", maskPhone(phone), "message", message)
	return nil
}

// NopSender 丢弃短信
type NopSender struct{}

// Send 无操作
func (NopSender) Send(context.Context, string, string) error { return nil }

// NewSender 按配置创建发送端
func NewSender(cfg config.NotifyConfig) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverLog, "":
		return LogSender{}, nil
	case DriverNone:
		return NopSender{}, nil
	default:
		return nil, fmt.Errorf("unsupported notify driver: %s", cfg.Driver)
	}
}

// maskPhone 日志中只保留号码后四位
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
