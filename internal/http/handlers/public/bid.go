package public

import (
	"github.com/sokomart/internal/http/response"
	"github.com/sokomart/internal/service"

	"github.com/gin-gonic/gin"
)

// PlaceBidRequest 出价请求
type PlaceBidRequest struct {
	ListingID uint  `json:"listing_id" binding:"required"`
	Amount    int64 `json:"amount"`
}

// PlaceBid 提交出价
func (h *Handler) PlaceBid(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailedResult(c, service.ErrInvalidInput, bidErrorRules)
		return
	}
	result, err := h.AuctionService.PlaceBid(c.Request.Context(), req.ListingID, actor.ProfileID, req.Amount)
	if err != nil {
		respondFailedResult(c, err, bidErrorRules)
		return
	}
	response.Success(c, gin.H{
		"success":         true,
		"bid":             result.Bid,
		"new_current_bid": result.NewCurrentBid,
	})
}
