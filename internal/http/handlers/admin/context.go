package admin

import (
	handlershared "github.com/sokomart/internal/http/handlers/shared"
	"github.com/sokomart/internal/service"

	"github.com/gin-gonic/gin"
)

func getActor(c *gin.Context) (service.Actor, bool) {
	return handlershared.GetActor(c)
}

func parseOrderID(c *gin.Context) (uint, bool) {
	return handlershared.ParseIDParam(c, "id", "error.order_id_invalid")
}

func parseListingID(c *gin.Context) (uint, bool) {
	return handlershared.ParseIDParam(c, "id", "error.listing_id_invalid")
}
