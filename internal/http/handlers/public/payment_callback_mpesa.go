package public

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	callbackLogValueLimit = 1024
	callbackBodyLimit     = 64 << 10
)

// MpesaCallback 处理 STK 回调；无论处理结果如何都向 Safaricom 应答已受理
func (h *Handler) MpesaCallback(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, callbackBodyLimit))
	if err != nil {
		log.Warnw("mpesa_callback_read_failed", "error", err)
		acknowledgeMpesaCallback(c)
		return
	}

	token := c.Param("token")
	if token == "" {
		token = c.Query("token")
	}
	if !h.PaymentService.VerifyCallbackToken(token) {
		log.Warnw("mpesa_callback_token_mismatch",
			"client_ip", c.ClientIP(),
			"body", callbackRawBodyForLog(body),
		)
		acknowledgeMpesaCallback(c)
		return
	}

	outcome, err := h.PaymentService.HandleCallback(c.Request.Context(), body)
	switch {
	case err == nil:
		log.Infow("mpesa_callback_handled",
			"checkout_request_id", outcome.Payment.CheckoutRequestID,
			"duplicate", outcome.Duplicate,
			"order_paid", outcome.OrderPaid,
		)
	case errors.Is(err, service.ErrPaymentNotFound):
		log.Warnw("mpesa_callback_unknown_checkout", "body", callbackRawBodyForLog(body))
	case errors.Is(err, service.ErrPaymentInvalid):
		log.Warnw("mpesa_callback_invalid", "error", err, "body", callbackRawBodyForLog(body))
	default:
		log.Errorw("mpesa_callback_failed", "error", err, "body", callbackRawBodyForLog(body))
	}
	acknowledgeMpesaCallback(c)
}

func acknowledgeMpesaCallback(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ResultCode": constants.MpesaCallbackAckCode,
		"ResultDesc": constants.MpesaCallbackAckDesc,
	})
}

func truncateCallbackLogValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if len(raw) <= callbackLogValueLimit {
		return raw
	}
	return raw[:callbackLogValueLimit] + "...(truncated)"
}

func callbackRawBodyForLog(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	return truncateCallbackLogValue(string(body))
}
