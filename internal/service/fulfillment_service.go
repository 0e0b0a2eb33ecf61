package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/feed"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/models"
	"github.com/sokomart/internal/repository"

	"gorm.io/gorm"
)

// FulfillmentService 履约状态机服务
type FulfillmentService struct {
	orderRepo    repository.OrderRepository
	eventRepo    repository.FulfillmentEventRepository
	profileRepo  repository.ProfileRepository
	capabilities CapabilityChecker
	publisher    feed.Publisher
	now          func() time.Time

	bg detachedRunner
}

// NewFulfillmentService 创建履约服务
func NewFulfillmentService(
	orderRepo repository.OrderRepository,
	eventRepo repository.FulfillmentEventRepository,
	profileRepo repository.ProfileRepository,
	capabilities CapabilityChecker,
	publisher feed.Publisher,
) *FulfillmentService {
	if publisher == nil {
		publisher = feed.NopPublisher{}
	}
	return &FulfillmentService{
		orderRepo:    orderRepo,
		eventRepo:    eventRepo,
		profileRepo:  profileRepo,
		capabilities: capabilities,
		publisher:    publisher,
		now:          time.Now,
	}
}

// authorizeOrderScope 无跨城能力时：城镇一致且订单未指派或指派给自己
func authorizeOrderScope(checker CapabilityChecker, actor Actor, order *models.Order) error {
	if hasCapability(checker, actor, constants.CapObjectFulfillmentAny, constants.CapActionAdvance) {
		return nil
	}
	town := actor.NormalizedTown()
	if town == "" || town != models.NormalizeTown(order.Town) {
		return ErrActorTownMismatch
	}
	if order.AssignedAgentID != nil && *order.AssignedAgentID != actor.ProfileID {
		return ErrOrderAssignedElsewhere
	}
	return nil
}

// stateCheck 校验锁定订单的当前状态是否允许本次操作
type stateCheck func(order *models.Order) error

// mutateFn 在锁定的订单上执行变更，返回写入字段与审计记录
type mutateFn func(order *models.Order, now time.Time) (map[string]interface{}, *models.FulfillmentEvent, error)

// mutate 锁定订单，先校验状态合法性再复核权限，最后以观察到的状态为条件写入
func (s *FulfillmentService) mutate(ctx context.Context, orderID uint, actor Actor, check stateCheck, fn mutateFn) (*models.Order, *models.FulfillmentEvent, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		result *models.Order
		event  *models.FulfillmentEvent
	)
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if check != nil {
			if err := check(order); err != nil {
				return err
			}
		}
		if err := authorizeOrderScope(s.capabilities, actor, order); err != nil {
			return err
		}
		now := s.now()
		observed := order.Status
		updates, audit, err := fn(order, now)
		if err != nil {
			return err
		}
		ok, err := orderRepo.UpdateGuarded(order.ID, observed, updates)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: order %d changed concurrently", ErrIllegalTransition, order.ID)
		}
		audit.OrderID = order.ID
		audit.ActorID = actor.ProfileID
		audit.ActorRole = actor.Role
		audit.FromStatus = observed
		if audit.ToStatus == "" {
			audit.ToStatus = order.Status
		}
		audit.CreatedAt = now
		if err := s.eventRepo.WithTx(tx).Create(audit); err != nil {
			return err
		}
		result = order
		event = audit
		return nil
	})
	if err != nil {
		return nil, nil, normalizeTimeout(ctx, err)
	}
	s.publishOrderStatus(result)
	return decorateOrder(result), event, nil
}

// Advance 按合法路径推进订单状态
func (s *FulfillmentService) Advance(ctx context.Context, orderID uint, target string, actor Actor) (*models.Order, error) {
	to := normalizeOrderStatus(target)
	if to == "" {
		return nil, ErrTargetStatusInvalid
	}
	if err := requireCapability(s.capabilities, actor, constants.CapObjectFulfillment, constants.CapActionAdvance); err != nil {
		return nil, err
	}
	legal := func(order *models.Order) error {
		if !isLegalTransition(order.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, order.Status, to)
		}
		return nil
	}
	order, _, err := s.mutate(ctx, orderID, actor, legal, func(order *models.Order, now time.Time) (map[string]interface{}, *models.FulfillmentEvent, error) {
		updates := map[string]interface{}{"status": to}
		if column := transitionTimestampColumn(to); column != "" {
			updates[column] = now
		}
		if to == constants.OrderStatusProcessing && order.AssignedAgentID == nil && actor.Role == constants.RoleAgent {
			agentID := actor.ProfileID
			updates["assigned_agent_id"] = agentID
			order.AssignedAgentID = &agentID
		}
		order.Status = to
		applyTransitionTimestamp(order, to, now)
		return updates, &models.FulfillmentEvent{Action: constants.FulfillmentActionAdvance, ToStatus: to}, nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("order_advanced", "order_id", order.ID, "status", order.Status, "actor_id", actor.ProfileID)
	return order, nil
}

// Cancel 管理员取消未终结的订单
func (s *FulfillmentService) Cancel(ctx context.Context, orderID uint, actor Actor, reason string) (*models.Order, error) {
	if err := requireCapability(s.capabilities, actor, constants.CapObjectFulfillment, constants.CapActionCancel); err != nil {
		return nil, err
	}
	cancellable := func(order *models.Order) error {
		if isTerminalOrderStatus(order.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, order.Status, constants.OrderStatusCancelled)
		}
		return nil
	}
	order, _, err := s.mutate(ctx, orderID, actor, cancellable, func(order *models.Order, now time.Time) (map[string]interface{}, *models.FulfillmentEvent, error) {
		order.Status = constants.OrderStatusCancelled
		applyTransitionTimestamp(order, constants.OrderStatusCancelled, now)
		return map[string]interface{}{
				"status":       constants.OrderStatusCancelled,
				"cancelled_at": now,
			}, &models.FulfillmentEvent{
				Action:   constants.FulfillmentActionCancel,
				ToStatus: constants.OrderStatusCancelled,
				Note:     truncateNote(reason),
			}, nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("order_cancelled", "order_id", order.ID, "actor_id", actor.ProfileID)
	return order, nil
}

// ConfirmCash 确认货到付款已收现金
func (s *FulfillmentService) ConfirmCash(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	if err := requireCapability(s.capabilities, actor, constants.CapObjectCODOrders, constants.CapActionConfirmCash); err != nil {
		return nil, err
	}
	collectable := func(order *models.Order) error {
		if order.CashConfirmedAt != nil {
			return ErrCashAlreadyConfirmed
		}
		if !IsCashCollectionPending(order) {
			return ErrCashNotCollectable
		}
		return nil
	}
	order, _, err := s.mutate(ctx, orderID, actor, collectable, func(order *models.Order, now time.Time) (map[string]interface{}, *models.FulfillmentEvent, error) {
		order.CashConfirmedAt = &now
		order.PaymentStatus = constants.OrderPaymentPaid
		order.PaidAt = &now
		return map[string]interface{}{
			"cash_confirmed_at": now,
			"payment_status":    constants.OrderPaymentPaid,
			"paid_at":           now,
		}, &models.FulfillmentEvent{Action: constants.FulfillmentActionCashConfirm}, nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("order_cash_confirmed", "order_id", order.ID, "actor_id", actor.ProfileID)
	return order, nil
}

// Assign 指派同城镇的配送员
func (s *FulfillmentService) Assign(ctx context.Context, orderID, agentID uint, actor Actor) (*models.Order, error) {
	if err := requireCapability(s.capabilities, actor, constants.CapObjectFulfillment, constants.CapActionAssign); err != nil {
		return nil, err
	}
	agent, err := s.profileRepo.GetByID(agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil || agent.Role != constants.RoleAgent || agent.Status != constants.ProfileStatusActive {
		return nil, ErrAgentInvalid
	}
	assignable := func(order *models.Order) error {
		if isTerminalOrderStatus(order.Status) {
			return fmt.Errorf("%w: order is %s", ErrIllegalTransition, order.Status)
		}
		return nil
	}
	order, _, err := s.mutate(ctx, orderID, actor, assignable, func(order *models.Order, now time.Time) (map[string]interface{}, *models.FulfillmentEvent, error) {
		if agent.NormalizedTown() == "" || agent.NormalizedTown() != models.NormalizeTown(order.Town) {
			return nil, nil, ErrAgentInvalid
		}
		id := agent.ID
		order.AssignedAgentID = &id
		return map[string]interface{}{"assigned_agent_id": id}, &models.FulfillmentEvent{
			Action: constants.FulfillmentActionAssign,
			Note:   fmt.Sprintf("agent:%d", id),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("order_assigned", "order_id", order.ID, "agent_id", agentID, "actor_id", actor.ProfileID)
	return order, nil
}

// ListEvents 订单履约审计记录
func (s *FulfillmentService) ListEvents(orderID uint, actor Actor) ([]models.FulfillmentEvent, error) {
	if err := requireCapability(s.capabilities, actor, constants.CapObjectFulfillmentEvents, constants.CapActionRead); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if err := authorizeOrderScope(s.capabilities, actor, order); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByOrder(orderID)
}

func (s *FulfillmentService) publishOrderStatus(order *models.Order) {
	if order == nil {
		return
	}
	data := map[string]interface{}{
		"order_id":          order.ID,
		"status":            order.Status,
		"payment_status":    order.PaymentStatus,
		"assigned_agent_id": order.AssignedAgentID,
	}
	topic := feed.OrderTopic(order.ID)
	s.bg.Go(constants.FeedEventOrderStatus, func(ctx context.Context) error {
		return publishFeedEvent(ctx, s.publisher, constants.FeedEventOrderStatus, topic, data)
	})
}

// Wait 等待提交后任务完成
func (s *FulfillmentService) Wait() {
	s.bg.Wait()
}

func truncateNote(note string) string {
	note = strings.TrimSpace(note)
	if len(note) > 500 {
		return note[:500]
	}
	return note
}
