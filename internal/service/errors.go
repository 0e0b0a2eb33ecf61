package service

import (
	"context"
	"errors"
	"fmt"
)

// 错误分类，响应体 data.error_kind 使用
const (
	KindInvalidInput      = "InvalidInput"
	KindNotFound          = "NotFound"
	KindForbidden         = "Forbidden"
	KindAuctionClosed     = "AuctionClosed"
	KindIllegalTransition = "IllegalTransition"
	KindBidTooLow         = "BidTooLow"
	KindConflict          = "Conflict"
	KindTimeout           = "Timeout"
)

// 错误分类根
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrAuctionClosed     = errors.New("auction closed")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrBidTooLow         = errors.New("bid too low")
	ErrConflict          = errors.New("conflict")
	ErrTimeout           = errors.New("timeout")
)

// kindError 携带分类的业务错误
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}

// 出价
var (
	ErrBidAmountInvalid = newKindError(ErrInvalidInput, "bid amount must be a positive integer")
	ErrListingNotFound  = newKindError(ErrNotFound, "listing not found")
	ErrSelfBidForbidden = newKindError(ErrForbidden, "cannot bid on own listing")
	ErrBidConflict      = newKindError(ErrConflict, "bid conflict, refresh and retry")
)

// 商品
var (
	ErrListingInvalid         = newKindError(ErrInvalidInput, "listing invalid")
	ErrAuctionDurationInvalid = newKindError(ErrInvalidInput, "auction duration must be between 6 and 24 hours")
	ErrListingStatusInvalid   = newKindError(ErrIllegalTransition, "listing status does not allow this change")
	ErrListingNotPurchasable  = newKindError(ErrForbidden, "listing cannot be purchased")
)

// 订单与履约
var (
	ErrOrderNotFound          = newKindError(ErrNotFound, "order not found")
	ErrOrderItemInvalid       = newKindError(ErrInvalidInput, "order items invalid")
	ErrTargetStatusInvalid    = newKindError(ErrInvalidInput, "target status invalid")
	ErrCashAlreadyConfirmed   = newKindError(ErrIllegalTransition, "cash already confirmed")
	ErrCashNotCollectable     = newKindError(ErrIllegalTransition, "order is not awaiting cash collection")
	ErrAgentInvalid           = newKindError(ErrInvalidInput, "agent is not valid for this order")
	ErrActorForbidden         = newKindError(ErrForbidden, "actor is not allowed to perform this action")
	ErrActorTownMismatch      = newKindError(ErrForbidden, "order is outside the actor's town")
	ErrOrderAssignedElsewhere = newKindError(ErrForbidden, "order is assigned to another agent")
	ErrScanCodeRequired       = newKindError(ErrInvalidInput, "tracking code is required")
	ErrDeliveryTownRequired   = newKindError(ErrInvalidInput, "delivery town is required")
	ErrPaymentMethodInvalid   = newKindError(ErrInvalidInput, "payment method invalid")
	ErrListingAlreadyOrdered  = newKindError(ErrConflict, "listing already has an active order")
)

// 支付
var (
	ErrPaymentInvalid       = newKindError(ErrInvalidInput, "payment request invalid")
	ErrPaymentNotRequired   = newKindError(ErrIllegalTransition, "order does not need payment")
	ErrPaymentGatewayFailed = errors.New("payment gateway request failed")
	ErrPaymentNotFound      = newKindError(ErrNotFound, "payment not found")
)

// 身份
var (
	ErrProfileNotFound = newKindError(ErrNotFound, "profile not found")
	ErrProfileDisabled = newKindError(ErrForbidden, "profile disabled")
)

// BidTooLowError 出价低于最低要求，携带最低可出价
type BidTooLowError struct {
	Minimum int64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("Minimum bid is KES %d", e.Minimum)
}

// Is 支持 errors.Is(err, ErrBidTooLow)
func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}

// ErrorKind 将错误归类；无法归类返回空串
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrBidTooLow):
		return KindBidTooLow
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrAuctionClosed):
		return KindAuctionClosed
	case errors.Is(err, ErrIllegalTransition):
		return KindIllegalTransition
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return ""
	}
}

// normalizeTimeout 把上下文超时统一为 ErrTimeout
func normalizeTimeout(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || (ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
