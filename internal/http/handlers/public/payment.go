package public

import (
	"github.com/sokomart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// InitiateMpesaRequest 发起 M-Pesa 支付请求
type InitiateMpesaRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

// InitiateMpesaPayment 发起 STK 推送
func (h *Handler) InitiateMpesaPayment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req InitiateMpesaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c)
		return
	}
	payment, err := h.PaymentService.InitiateMpesa(c.Request.Context(), req.OrderID, req.Phone, actor)
	if err != nil {
		respondWithMappedError(c, err, paymentErrorRules, "error.payment_gateway_failed")
		return
	}
	response.Success(c, gin.H{
		"payment_id":          payment.ID,
		"checkout_request_id": payment.CheckoutRequestID,
		"status":              payment.Status,
	})
}

// ListOrderPayments 订单支付记录
func (h *Handler) ListOrderPayments(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	payments, err := h.PaymentService.ListPayments(orderID, actor)
	if err != nil {
		respondWithMappedError(c, err, paymentErrorRules, "error.order_fetch_failed")
		return
	}
	response.Success(c, payments)
}
