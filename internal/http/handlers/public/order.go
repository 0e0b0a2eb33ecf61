package public

import (
	handlershared "github.com/sokomart/internal/http/handlers/shared"
	"github.com/sokomart/internal/http/response"
	"github.com/sokomart/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Items           []service.CreateOrderItem `json:"items" binding:"required"`
	PaymentMethod   string                    `json:"payment_method"`
	Town            string                    `json:"town"`
	DeliveryAddress string                    `json:"delivery_address"`
}

// CreateOrder 结算下单
func (h *Handler) CreateOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c)
		return
	}
	order, err := h.OrderService.Create(c.Request.Context(), actor, service.CreateOrderInput{
		Items:           req.Items,
		PaymentMethod:   req.PaymentMethod,
		Town:            req.Town,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, "error.internal")
		return
	}
	response.Success(c, order)
}

// ListOrders 我的订单
func (h *Handler) ListOrders(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	orders, total, err := h.OrderService.ListForBuyer(actor, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 我的订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetForBuyer(orderID, actor)
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// GetSellerRevenue 卖家净收入（来自已支付订单的快照）
func (h *Handler) GetSellerRevenue(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	revenue, err := h.OrderService.SellerRevenue(actor)
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, "error.revenue_fetch_failed")
		return
	}
	response.Success(c, revenue)
}
