package service

import (
	"strings"
	"time"

	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/models"
)

// fulfillmentTransitions 合法的履约推进（不含取消）
var fulfillmentTransitions = map[string]string{
	constants.OrderStatusPending:    constants.OrderStatusConfirmed,
	constants.OrderStatusConfirmed:  constants.OrderStatusProcessing,
	constants.OrderStatusProcessing: constants.OrderStatusShipped,
	constants.OrderStatusShipped:    constants.OrderStatusDelivered,
}

// knownOrderStatuses 可作为推进目标的状态
var knownOrderStatuses = map[string]struct{}{
	constants.OrderStatusPending:    {},
	constants.OrderStatusConfirmed:  {},
	constants.OrderStatusProcessing: {},
	constants.OrderStatusShipped:    {},
	constants.OrderStatusDelivered:  {},
	constants.OrderStatusCancelled:  {},
}

// normalizeOrderStatus 统一状态写法，未知状态返回空串
func normalizeOrderStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "canceled" {
		status = constants.OrderStatusCancelled
	}
	if _, ok := knownOrderStatuses[status]; !ok {
		return ""
	}
	return status
}

// isLegalTransition 判断 from -> to 是否是合法推进
func isLegalTransition(from, to string) bool {
	next, ok := fulfillmentTransitions[from]
	return ok && next == to
}

// isTerminalOrderStatus 已送达或已取消
func isTerminalOrderStatus(status string) bool {
	return status == constants.OrderStatusDelivered || status == constants.OrderStatusCancelled
}

// transitionTimestampColumn 推进到目标状态时写入的时间列
func transitionTimestampColumn(to string) string {
	switch to {
	case constants.OrderStatusProcessing:
		return "picked_up_at"
	case constants.OrderStatusShipped:
		return "in_transit_at"
	case constants.OrderStatusDelivered:
		return "delivered_at"
	default:
		return ""
	}
}

// applyTransitionTimestamp 同步内存中的时间字段
func applyTransitionTimestamp(order *models.Order, to string, now time.Time) {
	switch to {
	case constants.OrderStatusProcessing:
		order.PickedUpAt = &now
	case constants.OrderStatusShipped:
		order.InTransitAt = &now
	case constants.OrderStatusDelivered:
		order.DeliveredAt = &now
	case constants.OrderStatusCancelled:
		order.CancelledAt = &now
	}
}

// IsCashCollectionPending 货到付款已送达但现金未确认
func IsCashCollectionPending(order *models.Order) bool {
	if order == nil {
		return false
	}
	return order.Status == constants.OrderStatusDelivered &&
		order.PaymentMethod == constants.PaymentMethodCOD &&
		order.CashConfirmedAt == nil
}

// decorateOrder 填充派生字段
func decorateOrder(order *models.Order) *models.Order {
	if order != nil {
		order.CashPending = IsCashCollectionPending(order)
	}
	return order
}
