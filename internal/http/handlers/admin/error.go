package admin

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

func respondBadRequest(c *gin.Context) {
	handlershared.RespondErrorWithKind(c, response.CodeBadRequest, service.KindInvalidInput, "error.bad_request", nil)
}

func respondWithMappedError(c *gin.Context, err error, fallbackKey string) {
	handlershared.RespondMappedError(c, err, staffErrorRules, fallbackKey)
}

// respondFailedScan 扫码失败时 data 带 success=false
func respondFailedScan(c *gin.Context, err error) {
	handlershared.RespondMappedErrorWithFields(c, err, staffErrorRules, "error.internal", gin.H{"success": false})
}

var staffErrorRules = []handlershared.MappedError{
	{Target: service.ErrOrderNotFound, Key: "error.order_not_found"},
	{Target: service.ErrTargetStatusInvalid, Key: "error.target_status_invalid"},
	{Target: service.ErrCashAlreadyConfirmed, Key: "error.cash_already_confirmed"},
	{Target: service.ErrCashNotCollectable, Key: "error.cash_not_collectable"},
	{Target: service.ErrAgentInvalid, Key: "error.agent_invalid"},
	{Target: service.ErrActorTownMismatch, Key: "error.actor_town_mismatch"},
	{Target: service.ErrOrderAssignedElsewhere, Key: "error.order_assigned_elsewhere"},
	{Target: service.ErrActorForbidden, Key: "error.forbidden"},
	{Target: service.ErrScanCodeRequired, Key: "error.scan_code_required"},
	{Target: service.ErrListingNotFound, Key: "error.listing_not_found"},
	{Target: service.ErrListingStatusInvalid, Key: "error.listing_status_invalid"},
}
