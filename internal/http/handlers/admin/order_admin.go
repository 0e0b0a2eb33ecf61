package admin

import (
	"strings"

	handlershared "github.com/sokomart/internal/http/handlers/shared"
	"github.com/sokomart/internal/http/response"
	"github.com/sokomart/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdvanceOrderRequest 推进订单状态请求
type AdvanceOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignOrderRequest 指派配送员请求
type AssignOrderRequest struct {
	AgentID uint `json:"agent_id" binding:"required"`
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// GetOrders 员工订单列表
func (h *Handler) GetOrders(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		Town:          strings.TrimSpace(c.Query("town")),
		OrderNo:       strings.TrimSpace(c.Query("order_no")),
	}
	orders, total, err := h.OrderService.ListForStaff(actor, filter)
	if err != nil {
		respondWithMappedError(c, err, "error.order_fetch_failed")
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 员工订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetForStaff(orderID, actor)
	if err != nil {
		respondWithMappedError(c, err, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// AdvanceOrder 推进订单状态
func (h *Handler) AdvanceOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req AdvanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c)
		return
	}
	order, err := h.FulfillmentService.Advance(c.Request.Context(), orderID, req.Status, actor)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, order)
}

// ConfirmCash 确认货到付款收现
func (h *Handler) ConfirmCash(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.FulfillmentService.ConfirmCash(c.Request.Context(), orderID, actor)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, order)
}

// AssignOrder 指派配送员
func (h *Handler) AssignOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req AssignOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c)
		return
	}
	order, err := h.FulfillmentService.Assign(c.Request.Context(), orderID, req.AgentID, actor)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c)
			return
		}
	}
	order, err := h.FulfillmentService.Cancel(c.Request.Context(), orderID, actor, req.Reason)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, order)
}

// GetOrderEvents 订单履约审计记录
func (h *Handler) GetOrderEvents(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	events, err := h.FulfillmentService.ListEvents(orderID, actor)
	if err != nil {
		respondWithMappedError(c, err, "error.event_fetch_failed")
		return
	}
	response.Success(c, events)
}
