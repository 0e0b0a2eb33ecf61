package admin

import (
	"github.com/sokomart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RejectListingRequest 驳回商品请求
type RejectListingRequest struct {
	Reason string `json:"reason"`
}

// ApproveListing 审核通过商品
func (h *Handler) ApproveListing(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}
	listing, err := h.ListingService.Approve(c.Request.Context(), listingID, actor)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, listing)
}

// RejectListing 驳回商品
func (h *Handler) RejectListing(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}
	var req RejectListingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c)
			return
		}
	}
	listing, err := h.ListingService.Reject(c.Request.Context(), listingID, actor, req.Reason)
	if err != nil {
		respondWithMappedError(c, err, "error.internal")
		return
	}
	response.Success(c, listing)
}
