package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/payment/mpesa"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func (f *marketplaceFixture) paymentService(t *testing.T, tokenHash string) *PaymentService {
	t.Helper()
	gateway, err := mpesa.NewSandboxGateway(mpesa.Config{ShortCode: "174379", CallbackBaseURL: "https://soko.test"})
	require.NoError(t, err)
	cfg := config.MpesaConfig{ShortCode: "174379", CallbackBaseURL: "https://soko.test/", CallbackTokenHash: tokenHash}
	return NewPaymentService(cfg, f.orderRepo, f.paymentRepo, gateway, f.publisher, f.notification)
}

func mpesaCallbackBody(t *testing.T, checkoutID string, resultCode int, amount interface{}) []byte {
	t.Helper()
	callback := map[string]interface{}{
		"MerchantRequestID": "29115-34620561-1",
		"CheckoutRequestID": checkoutID,
		"ResultCode":        resultCode,
		"ResultDesc":        "The service request is processed successfully.",
	}
	if resultCode != mpesa.ResultCodeSuccess {
		callback["ResultDesc"] = "Request cancelled by user"
	}
	if amount != nil {
		callback["CallbackMetadata"] = map[string]interface{}{
			"Item": []map[string]interface{}{
				{"Name": mpesa.MetaAmount, "Value": amount},
				{"Name": mpesa.MetaReceiptNumber, "Value": "NLJ7RT61SV"},
				{"Name": mpesa.MetaTransactionDate, "Value": 20260101120000},
				{"Name": mpesa.MetaPhoneNumber, "Value": 254708374149},
			},
		}
	}
	body, err := json.Marshal(map[string]interface{}{"Body": map[string]interface{}{"stkCallback": callback}})
	require.NoError(t, err)
	return body
}

func TestInitiateMpesa(t *testing.T) {
	f := setupMarketplaceFixture(t, nil)
	buyer := f.createProfile(t, constants.RoleBuyer, "")
	stranger := f.createProfile(t, constants.RoleBuyer, "")
	order := f.createOrder(t, buyer.ID, "Nakuru", constants.OrderStatusPending, constants.PaymentMethodMpesa, "SKPAY0000001")
	codOrder := f.createOrder(t, buyer.ID, "Nakuru", constants.OrderStatusPending, constants.PaymentMethodCOD, "SKPAY0000002")
	svc := f.paymentService(t, "")
	ctx := context.Background()

	require.Equal(t, "https://soko.test/api/v1/payments/mpesa/callback", svc.callbackURL)

	_, err := svc.InitiateMpesa(ctx, order.ID, "0708374149", actorOf(stranger))
	require.ErrorIs(t, err, ErrOrderNotFound)
	_, err = svc.InitiateMpesa(ctx, codOrder.ID, "0708374149", actorOf(buyer))
	require.ErrorIs(t, err, ErrPaymentNotRequired)
	_, err = svc.InitiateMpesa(ctx, order.ID, "12", actorOf(buyer))
	require.ErrorIs(t, err, ErrPaymentInvalid)

	payment, err := svc.InitiateMpesa(ctx, order.ID, "0708374149", actorOf(buyer))
	require.NoError(t, err)
	require.Equal(t, constants.PaymentStatusPending, payment.Status)
	require.Equal(t, "254708374149", payment.Phone)
	require.True(t, strings.HasPrefix(payment.CheckoutRequestID, "ws_CO_"))
	require.True(t, payment.Amount.Equal(order.Total.Decimal))

	stored, err := f.orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderPaymentAwaitingPayment, stored.PaymentStatus)

	payments, err := svc.ListPayments(order.ID, actorOf(buyer))
	require.NoError(t, err)
	require.Len(t, payments, 1)
}

func TestHandleCallbackSuccessIsIdempotent(t *testing.T) {
	sender := newRecordingSender()
	f := setupMarketplaceFixture(t, sender)
	buyer := f.createProfile(t, constants.RoleBuyer, "")
	order := f.createOrder(t, buyer.ID, "Nakuru", constants.OrderStatusPending, constants.PaymentMethodMpesa, "SKPAY0000003")
	svc := f.paymentService(t, "")
	ctx := context.Background()

	payment, err := svc.InitiateMpesa(ctx, order.ID, "+254 708 374 149", actorOf(buyer))
	require.NoError(t, err)

	outcome, err := svc.HandleCallback(ctx, mpesaCallbackBody(t, payment.CheckoutRequestID, 0, 1200))
	require.NoError(t, err)
	require.False(t, outcome.Duplicate)
	require.True(t, outcome.OrderPaid)
	require.Equal(t, constants.PaymentStatusSuccess, outcome.Payment.Status)
	require.Equal(t, "NLJ7RT61SV", outcome.Payment.ReceiptNo)

	stored, err := f.orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderPaymentPaid, stored.PaymentStatus)
	require.NotNil(t, stored.PaidAt)
	require.Equal(t, constants.OrderStatusPending, stored.Status)

	again, err := svc.HandleCallback(ctx, mpesaCallbackBody(t, payment.CheckoutRequestID, 1032, nil))
	require.NoError(t, err)
	require.True(t, again.Duplicate)

	svc.Wait()
	stored, err = f.orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderPaymentPaid, stored.PaymentStatus)

	messages := sender.sentTo(buyer.Phone)
	require.Len(t, messages, 1)
	require.Contains(t, messages[0], order.OrderNo)
	require.Contains(t, messages[0], "NLJ7RT61SV")
	require.Len(t, f.publisher.eventsOfType(constants.FeedEventPaymentStatus), 1)
}

func TestHandleCallbackFailureAndShortPayment(t *testing.T) {
	f := setupMarketplaceFixture(t, nil)
	buyer := f.createProfile(t, constants.RoleBuyer, "")
	failedOrder := f.createOrder(t, buyer.ID, "Nakuru", constants.OrderStatusPending, constants.PaymentMethodMpesa, "SKPAY0000004")
	shortOrder := f.createOrder(t, buyer.ID, "Nakuru", constants.OrderStatusPending, constants.PaymentMethodMpesa, "SKPAY0000005")
	svc := f.paymentService(t, "")
	ctx := context.Background()

	failedPayment, err := svc.InitiateMpesa(ctx, failedOrder.ID, "0708374149", actorOf(buyer))
	require.NoError(t, err)
	outcome, err := svc.HandleCallback(ctx, mpesaCallbackBody(t, failedPayment.CheckoutRequestID, 1032, nil))
	require.NoError(t, err)
	require.False(t, outcome.OrderPaid)
	require.Equal(t, constants.PaymentStatusFailed, outcome.Payment.Status)
	stored, err := f.orderRepo.GetByID(failedOrder.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderPaymentFailed, stored.PaymentStatus)

	// 失败后可重新发起
	retry, err := svc.InitiateMpesa(ctx, failedOrder.ID, "0708374149", actorOf(buyer))
	require.NoError(t, err)
	require.NotEqual(t, failedPayment.CheckoutRequestID, retry.CheckoutRequestID)
	stored, err = f.orderRepo.GetByID(failedOrder.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderPaymentAwaitingPayment, stored.PaymentStatus)

	shortPayment, err := svc.InitiateMpesa(ctx, shortOrder.ID, "0708374149", actorOf(buyer))
	require.NoError(t, err)
	outcome, err = svc.HandleCallback(ctx, mpesaCallbackBody(t, shortPayment.CheckoutRequestID, 0, 500))
	require.NoError(t, err)
	require.False(t, outcome.OrderPaid)
	require.Equal(t, constants.PaymentStatusSuccess, outcome.Payment.Status)
	stored, err = f.orderRepo.GetByID(shortOrder.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderPaymentAwaitingPayment, stored.PaymentStatus)
	svc.Wait()
}

func TestHandleCallbackRejectsUnknownAndMalformed(t *testing.T) {
	f := setupMarketplaceFixture(t, nil)
	svc := f.paymentService(t, "")
	ctx := context.Background()

	_, err := svc.HandleCallback(ctx, mpesaCallbackBody(t, "ws_CO_unknown", 0, 1200))
	require.ErrorIs(t, err, ErrPaymentNotFound)

	_, err = svc.HandleCallback(ctx, []byte(`{"Body":`))
	require.ErrorIs(t, err, ErrPaymentInvalid)
	require.Equal(t, KindInvalidInput, ErrorKind(err))
}

func TestVerifyCallbackToken(t *testing.T) {
	f := setupMarketplaceFixture(t, nil)
	open := f.paymentService(t, "")
	require.True(t, open.VerifyCallbackToken(""))

	hash, err := bcrypt.GenerateFromPassword([]byte("callback-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	guarded := f.paymentService(t, string(hash))
	require.True(t, guarded.VerifyCallbackToken(" callback-secret "))
	require.False(t, guarded.VerifyCallbackToken("wrong"))
	require.False(t, guarded.VerifyCallbackToken(""))
}
