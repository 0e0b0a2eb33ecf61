package public

import (
	"strings"
	"time"

	"github.com/sokomart/internal/cache"
	"github.com/sokomart/internal/constants"
	handlershared "github.com/sokomart/internal/http/handlers/shared"
	"github.com/sokomart/internal/http/response"
	"github.com/sokomart/internal/i18n"
	"github.com/sokomart/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig 获取市场公开配置
func (h *Handler) GetConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data := map[string]interface{}{
		"languages":              []string{i18n.LocaleEnglish, i18n.LocaleSwahili},
		"currency":               h.Config.Order.Currency,
		"delivery_fee":           h.Config.Order.DeliveryFee,
		"min_bid_increment":      h.AuctionService.MinIncrement(),
		"auction_min_hours":      constants.AuctionMinDurationHour,
		"auction_max_hours":      constants.AuctionMaxDurationHour,
		"payment_methods":        []string{constants.PaymentMethodMpesa, constants.PaymentMethodCOD},
		"urgency_critical_below": constants.UrgencyCriticalSeconds,
		"urgency_urgent_below":   constants.UrgencyUrgentSeconds,
	}
	if err := cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL); err != nil {
		requestLog(c).Warnw("public_config_cache_set_failed", "error", err)
	}
	response.Success(c, data)
}

// ListListings 公开商品列表
func (h *Handler) ListListings(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.ListingListFilter{
		Page:        page,
		PageSize:    pageSize,
		ListingType: strings.TrimSpace(c.Query("type")),
		Status:      strings.TrimSpace(c.Query("status")),
		Category:    strings.TrimSpace(c.Query("category")),
		Town:        strings.TrimSpace(c.Query("town")),
		Search:      strings.TrimSpace(c.Query("search")),
	}
	listings, total, err := h.ListingService.ListPublic(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.listing_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, listings, response.BuildPagination(page, pageSize, total))
}

// GetListing 公开商品详情（含服务端计时）
func (h *Handler) GetListing(c *gin.Context) {
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}
	detail, err := h.ListingService.GetPublic(listingID)
	if err != nil {
		respondWithMappedError(c, err, listingErrorRules, "error.listing_fetch_failed")
		return
	}
	response.Success(c, detail)
}

// ListListingBids 商品出价记录（新到旧）
func (h *Handler) ListListingBids(c *gin.Context) {
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}
	if _, err := h.ListingService.GetPublic(listingID); err != nil {
		respondWithMappedError(c, err, listingErrorRules, "error.listing_fetch_failed")
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	bids, total, err := h.AuctionService.ListBids(listingID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.bid_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, bids, response.BuildPagination(page, pageSize, total))
}
