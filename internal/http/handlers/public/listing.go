package public

import (
	"github.com/sokomart/internal/http/response"
	"github.com/sokomart/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateListingRequest 发布商品请求
type CreateListingRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Town          string `json:"town"`
	ListingType   string `json:"listing_type" binding:"required"`
	Price         int64  `json:"price"`
	DurationHours int    `json:"duration_hours"`
}

// CreateListing 卖家发布商品（待审核）
func (h *Handler) CreateListing(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c)
		return
	}
	listing, err := h.ListingService.Create(c.Request.Context(), actor, service.CreateListingInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Town:          req.Town,
		ListingType:   req.ListingType,
		Price:         req.Price,
		DurationHours: req.DurationHours,
	})
	if err != nil {
		respondWithMappedError(c, err, listingErrorRules, "error.internal")
		return
	}
	response.Success(c, listing)
}
