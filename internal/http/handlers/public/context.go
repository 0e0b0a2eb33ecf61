package public

import (
	handlershared "github.com/sokomart/internal/http/handlers/shared"
	"github.com/sokomart/internal/http/response"
	"github.com/sokomart/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func getActor(c *gin.Context) (service.Actor, bool) {
	return handlershared.GetActor(c)
}

func parseListingID(c *gin.Context) (uint, bool) {
	return handlershared.ParseIDParam(c, "id", "error.listing_id_invalid")
}

func parseOrderID(c *gin.Context) (uint, bool) {
	return handlershared.ParseIDParam(c, "id", "error.order_id_invalid")
}

func respondBadRequest(c *gin.Context) {
	handlershared.RespondErrorWithKind(c, response.CodeBadRequest, service.KindInvalidInput, "error.bad_request", nil)
}
