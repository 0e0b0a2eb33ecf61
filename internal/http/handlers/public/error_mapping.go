package public

import (
	handlershared "github.com/sokomart/internal/http/handlers/shared"
	"github.com/sokomart/internal/http/response"
	"github.com/sokomart/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError = handlershared.MappedError

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, fallbackKey)
}

// respondFailedResult 出价类接口失败时 data 带 success=false
func respondFailedResult(c *gin.Context, err error, rules []mappedHandlerError) {
	handlershared.RespondMappedErrorWithFields(c, err, rules, "error.internal", gin.H{"success": false})
}

var bidErrorRules = []mappedHandlerError{
	{Target: service.ErrBidAmountInvalid, Key: "error.bid_amount_invalid"},
	{Target: service.ErrListingNotFound, Key: "error.listing_not_found"},
	{Target: service.ErrSelfBidForbidden, Key: "error.self_bid_forbidden"},
	{Target: service.ErrBidConflict, Key: "error.bid_conflict"},
	{Target: service.ErrAuctionClosed, Key: "error.auction_closed"},
	{Target: service.ErrActorForbidden, Key: "error.forbidden"},
}

var listingErrorRules = []mappedHandlerError{
	{Target: service.ErrListingNotFound, Key: "error.listing_not_found"},
	{Target: service.ErrListingInvalid, Key: "error.listing_invalid"},
	{Target: service.ErrAuctionDurationInvalid, Key: "error.auction_duration_invalid"},
	{Target: service.ErrListingStatusInvalid, Key: "error.listing_status_invalid"},
	{Target: service.ErrActorForbidden, Key: "error.forbidden"},
}

var orderErrorRules = []mappedHandlerError{
	{Target: service.ErrOrderNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderItemInvalid, Key: "error.order_item_invalid"},
	{Target: service.ErrListingNotFound, Key: "error.listing_not_found"},
	{Target: service.ErrListingNotPurchasable, Key: "error.listing_not_purchasable"},
	{Target: service.ErrListingAlreadyOrdered, Key: "error.listing_already_ordered"},
	{Target: service.ErrDeliveryTownRequired, Key: "error.delivery_town_required"},
	{Target: service.ErrPaymentMethodInvalid, Key: "error.payment_method_invalid"},
	{Target: service.ErrActorForbidden, Key: "error.forbidden"},
}

var paymentErrorRules = handlershared.ConcatMappedErrors([]mappedHandlerError{
	{Target: service.ErrPaymentInvalid, Key: "error.payment_invalid"},
	{Target: service.ErrPaymentNotRequired, Key: "error.payment_not_required"},
	{Target: service.ErrPaymentGatewayFailed, Code: response.CodeInternal, Key: "error.payment_gateway_failed"},
}, orderErrorRules)
