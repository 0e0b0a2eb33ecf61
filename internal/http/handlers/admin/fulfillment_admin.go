package admin

import (
	"github.com/sokomart/internal/http/response"
	"github.com/sokomart/internal/service"

	"github.com/gin-gonic/gin"
)

// ScanOrderRequest 扫码推进请求
type ScanOrderRequest struct {
	Code   string `json:"code"`
	Status string `json:"status" binding:"required"`
}

// ScanOrder 扫码解析订单并推进到请求的状态
func (h *Handler) ScanOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req ScanOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailedScan(c, service.ErrInvalidInput)
		return
	}
	order, err := h.ScanService.ResolveAndApply(c.Request.Context(), req.Code, req.Status, actor)
	if err != nil {
		respondFailedScan(c, err)
		return
	}
	requestLog(c).Infow("order_scanned", "order_id", order.ID, "status", order.Status, "actor_id", actor.ProfileID)
	response.Success(c, gin.H{
		"success": true,
		"order":   order,
	})
}
