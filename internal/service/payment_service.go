package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/feed"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/models"
	"github.com/sokomart/internal/payment/mpesa"
	"github.com/sokomart/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PaymentService M-Pesa 支付服务
type PaymentService struct {
	orderRepo         repository.OrderRepository
	paymentRepo       repository.PaymentRepository
	gateway           mpesa.Gateway
	publisher         feed.Publisher
	notifier          *NotificationService
	callbackURL       string
	callbackTokenHash string
	now               func() time.Time

	bg detachedRunner
}

// CallbackOutcome 回调处理结果
type CallbackOutcome struct {
	Payment   *models.Payment
	Order     *models.Order
	Duplicate bool
	OrderPaid bool
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	cfg config.MpesaConfig,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	gateway mpesa.Gateway,
	publisher feed.Publisher,
	notifier *NotificationService,
) *PaymentService {
	if publisher == nil {
		publisher = feed.NopPublisher{}
	}
	callbackURL := strings.TrimRight(strings.TrimSpace(cfg.CallbackBaseURL), "/")
	if callbackURL != "" {
		callbackURL += "/api/v1/payments/mpesa/callback"
	}
	return &PaymentService{
		orderRepo:         orderRepo,
		paymentRepo:       paymentRepo,
		gateway:           gateway,
		publisher:         publisher,
		notifier:          notifier,
		callbackURL:       callbackURL,
		callbackTokenHash: strings.TrimSpace(cfg.CallbackTokenHash),
		now:               time.Now,
	}
}

// InitiateMpesa 发起 STK 推送并记录待回调的支付
func (s *PaymentService) InitiateMpesa(ctx context.Context, orderID uint, phone string, actor Actor) (*models.Payment, error) {
	order, err := s.orderRepo.GetByIDAndBuyer(orderID, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.PaymentMethod != constants.PaymentMethodMpesa ||
		order.PaymentStatus == constants.OrderPaymentPaid ||
		order.Status == constants.OrderStatusCancelled {
		return nil, ErrPaymentNotRequired
	}
	normalizedPhone := mpesa.NormalizePhone(phone)
	if normalizedPhone == "" {
		return nil, ErrPaymentInvalid
	}
	if s.gateway == nil {
		return nil, ErrPaymentGatewayFailed
	}

	result, err := s.gateway.InitiatePush(ctx, mpesa.PushRequest{
		Phone:       normalizedPhone,
		Amount:      decimal.NewFromInt(order.Total.Shillings()),
		OrderRef:    order.OrderNo,
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		logger.Warnw("mpesa_push_failed", "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayFailed, err)
	}

	payment := &models.Payment{
		OrderID:           order.ID,
		Provider:          constants.PaymentProviderMpesa,
		MerchantRequestID: result.MerchantRequestID,
		CheckoutRequestID: result.CheckoutRequestID,
		Phone:             normalizedPhone,
		Amount:            order.Total,
		Status:            constants.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}
	if order.PaymentStatus != constants.OrderPaymentAwaitingPayment {
		if _, err := s.orderRepo.UpdateGuarded(order.ID, order.Status, map[string]interface{}{
			"payment_status": constants.OrderPaymentAwaitingPayment,
		}); err != nil {
			logger.Warnw("order_payment_status_reset_failed", "order_id", order.ID, "error", err)
		}
	}
	logger.Infow("mpesa_push_initiated", "order_id", order.ID, "checkout_request_id", payment.CheckoutRequestID)
	return payment, nil
}

// VerifyCallbackToken 校验回调共享令牌；未配置哈希时视为通过
func (s *PaymentService) VerifyCallbackToken(token string) bool {
	if s.callbackTokenHash == "" {
		return true
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.callbackTokenHash), []byte(token)) == nil
}

// HandleCallback 按 CheckoutRequestID 关联回调，重复回调不产生副作用
func (s *PaymentService) HandleCallback(ctx context.Context, body []byte) (*CallbackOutcome, error) {
	data, err := mpesa.ParseCallback(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentInvalid, err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	outcome := &CallbackOutcome{}
	err = models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		payment, err := paymentRepo.GetByCheckoutRequestIDForUpdate(data.CheckoutRequestID)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		outcome.Payment = payment
		if payment.Status != constants.PaymentStatusPending {
			outcome.Duplicate = true
			return nil
		}

		now := s.now()
		resultCode := data.ResultCode
		payment.ResultCode = &resultCode
		payment.ResultDesc = data.ResultDesc
		payment.ReceiptNo = data.ReceiptNumber
		payment.RawCallback = models.JSON(data.Raw)
		payment.CallbackAt = &now
		if data.Success() {
			payment.Status = constants.PaymentStatusSuccess
		} else {
			payment.Status = constants.PaymentStatusFailed
		}
		if err := paymentRepo.Update(payment); err != nil {
			return err
		}

		order, err := orderRepo.GetByIDForUpdate(payment.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		outcome.Order = order
		if order.PaymentStatus == constants.OrderPaymentPaid {
			return nil
		}

		updates := map[string]interface{}{}
		if data.Success() {
			paid := models.NewMoneyFromDecimal(data.Amount)
			if paid.IsZero() {
				paid = payment.Amount
			}
			if !paid.Covers(order.Total) {
				logger.Warnw("mpesa_callback_amount_short", "order_id", order.ID, "paid", paid.String(), "total", order.Total.String())
				return nil
			}
			updates["payment_status"] = constants.OrderPaymentPaid
			updates["paid_at"] = now
			order.PaymentStatus = constants.OrderPaymentPaid
			order.PaidAt = &now
			outcome.OrderPaid = true
		} else {
			updates["payment_status"] = constants.OrderPaymentFailed
			order.PaymentStatus = constants.OrderPaymentFailed
		}
		ok, err := orderRepo.UpdateGuarded(order.ID, order.Status, updates)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: order %d changed concurrently", ErrConflict, order.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome.Duplicate || outcome.Order == nil {
		logger.Infow("mpesa_callback_duplicate", "checkout_request_id", data.CheckoutRequestID)
		return outcome, nil
	}

	order := *outcome.Order
	payment := *outcome.Payment
	s.bg.Go(constants.FeedEventPaymentStatus, func(ctx context.Context) error {
		return publishFeedEvent(ctx, s.publisher, constants.FeedEventPaymentStatus, feed.OrderTopic(order.ID), map[string]interface{}{
			"order_id":       order.ID,
			"payment_status": order.PaymentStatus,
			"payment_id":     payment.ID,
		})
	})
	s.notifier.NotifyPaymentResult(&order, &payment)
	logger.Infow("mpesa_callback_processed",
		"checkout_request_id", payment.CheckoutRequestID,
		"payment_status", payment.Status,
		"order_id", order.ID,
		"order_paid", outcome.OrderPaid,
	)
	return outcome, nil
}

// ListPayments 订单支付记录
func (s *PaymentService) ListPayments(orderID uint, actor Actor) ([]models.Payment, error) {
	order, err := s.orderRepo.GetByIDAndBuyer(orderID, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.paymentRepo.ListByOrder(orderID)
}

// Wait 等待提交后任务完成
func (s *PaymentService) Wait() {
	s.bg.Wait()
	s.notifier.Wait()
}
