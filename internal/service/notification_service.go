package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/i18n"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/models"
	"github.com/sokomart/internal/notify"
	"github.com/sokomart/internal/queue"
	"github.com/sokomart/internal/repository"
)

// smsDispatchTimeout 覆盖收件人查询、入队与直发短信
const smsDispatchTimeout = 10 * time.Second

// NotificationService 短信通知分发
// 所有方法都不阻塞调用方，失败只记录日志。
type NotificationService struct {
	queueClient *queue.Client
	sender      notify.Sender
	profileRepo repository.ProfileRepository
	baseURL     string

	bg detachedRunner
}

// NewNotificationService 创建通知服务
func NewNotificationService(queueClient *queue.Client, sender notify.Sender, profileRepo repository.ProfileRepository, baseURL string) *NotificationService {
	if sender == nil {
		sender = notify.NopSender{}
	}
	return &NotificationService{
		queueClient: queueClient,
		sender:      sender,
		profileRepo: profileRepo,
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// NotifyOutbid 通知被超越的出价人
func (s *NotificationService) NotifyOutbid(profileID uint, listing *models.Listing, amount int64) {
	if s == nil || listing == nil {
		return
	}
	title, listingID, baseURL := listing.Title, listing.ID, s.baseURL
	s.dispatchAsync(queue.TaskOutbidSMS, profileID, fmt.Sprintf("listing:%d", listingID), func(locale string) string {
		return i18n.Sprintf(locale, "sms.outbid", title, amount, baseURL, listingID)
	})
}

// NotifyAuctionWon 通知拍卖得主
func (s *NotificationService) NotifyAuctionWon(profileID uint, listing *models.Listing, amount int64) {
	if s == nil || listing == nil {
		return
	}
	title, listingID, baseURL := listing.Title, listing.ID, s.baseURL
	s.dispatchAsync(queue.TaskAuctionWonSMS, profileID, fmt.Sprintf("listing:%d", listingID), func(locale string) string {
		return i18n.Sprintf(locale, "sms.auction_won", title, amount, baseURL, listingID)
	})
}

// NotifyOrderPlaced 下单确认
func (s *NotificationService) NotifyOrderPlaced(order *models.Order) {
	if s == nil || order == nil {
		return
	}
	orderNo, total, code := order.OrderNo, order.Total.String(), order.TrackingCodeValue()
	s.dispatchAsync(queue.TaskOrderPlacedSMS, order.BuyerID, "order:"+orderNo, func(locale string) string {
		return i18n.Sprintf(locale, "sms.order_placed", orderNo, total, code)
	})
}

// NotifyPaymentResult 支付结果通知
func (s *NotificationService) NotifyPaymentResult(order *models.Order, payment *models.Payment) {
	if s == nil || order == nil || payment == nil {
		return
	}
	orderNo := order.OrderNo
	success := payment.Status == constants.PaymentStatusSuccess
	amount, receipt, desc := payment.Amount.String(), payment.ReceiptNo, payment.ResultDesc
	s.dispatchAsync(queue.TaskPaymentSMS, order.BuyerID, "payment:"+payment.CheckoutRequestID, func(locale string) string {
		if success {
			return i18n.Sprintf(locale, "sms.payment_success", amount, orderNo, receipt)
		}
		return i18n.Sprintf(locale, "sms.payment_failed", orderNo, desc)
	})
}

// Deliver 发送短信（队列消费者调用）
func (s *NotificationService) Deliver(ctx context.Context, payload queue.SMSPayload) error {
	if s == nil {
		return nil
	}
	return s.sender.Send(ctx, payload.Phone, payload.Message)
}

// Wait 等待未完成的分发协程（测试与停机时使用）
func (s *NotificationService) Wait() {
	if s == nil {
		return
	}
	s.bg.Wait()
}

func (s *NotificationService) dispatchAsync(taskType string, profileID uint, reference string, render func(locale string) string) {
	if profileID == 0 {
		return
	}
	s.bg.GoWithin(taskType, smsDispatchTimeout, func(ctx context.Context) error {
		return s.dispatch(ctx, taskType, profileID, reference, render)
	})
}

func (s *NotificationService) dispatch(ctx context.Context, taskType string, profileID uint, reference string, render func(locale string) string) error {
	if s.profileRepo == nil {
		return nil
	}
	profile, err := s.profileRepo.GetByID(profileID)
	if err != nil {
		return fmt.Errorf("lookup sms recipient %d: %w", profileID, err)
	}
	if profile == nil || strings.TrimSpace(profile.Phone) == "" {
		logger.Warnw("sms_recipient_missing", "task_type", taskType, "profile_id", profileID)
		return nil
	}
	payload := queue.SMSPayload{
		Phone:     profile.Phone,
		Message:   render(i18n.DefaultLocale()),
		Reference: reference,
	}

	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueSMS(taskType, payload)
		if err == nil {
			return nil
		}
		logger.Warnw("sms_enqueue_failed", "task_type", taskType, "reference", reference, "error", err)
	}

	return s.sender.Send(ctx, payload.Phone, payload.Message)
}
