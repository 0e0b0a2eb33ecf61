package public

import (
	"github.com/sokomart/internal/feed"

	"github.com/gin-gonic/gin"
)

// ListingLive 商品实时推送（websocket）
func (h *Handler) ListingLive(c *gin.Context) {
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}
	if _, err := h.ListingService.GetPublic(listingID); err != nil {
		respondWithMappedError(c, err, listingErrorRules, "error.listing_fetch_failed")
		return
	}
	topic := feed.ListingTopic(listingID)
	if err := feed.ServeWS(c.Request.Context(), h.FeedHub, h.upgrader, c.Writer, c.Request, topic, h.Config.Feed.ClientBuffer); err != nil {
		requestLog(c).Warnw("listing_live_upgrade_failed", "listing_id", listingID, "error", err)
	}
}
