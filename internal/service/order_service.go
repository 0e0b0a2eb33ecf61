package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/feed"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/models"
	"github.com/sokomart/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 结算与订单查询服务
type OrderService struct {
	orderRepo      repository.OrderRepository
	listingRepo    repository.ListingRepository
	capabilities   CapabilityChecker
	publisher      feed.Publisher
	notifier       *NotificationService
	currency       string
	deliveryFee    decimal.Decimal
	commissionRate decimal.Decimal
	orderNoPrefix  string
	now            func() time.Time

	bg detachedRunner
}

// CreateOrderItem 下单项
type CreateOrderItem struct {
	ListingID uint `json:"listing_id"`
	Quantity  int  `json:"quantity"`
}

// CreateOrderInput 下单参数
type CreateOrderInput struct {
	Items           []CreateOrderItem
	PaymentMethod   string
	Town            string
	DeliveryAddress string
}

// NewOrderService 创建订单服务
func NewOrderService(
	cfg config.OrderConfig,
	orderRepo repository.OrderRepository,
	listingRepo repository.ListingRepository,
	capabilities CapabilityChecker,
	publisher feed.Publisher,
	notifier *NotificationService,
) *OrderService {
	if publisher == nil {
		publisher = feed.NopPublisher{}
	}
	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "KES"
	}
	return &OrderService{
		orderRepo:      orderRepo,
		listingRepo:    listingRepo,
		capabilities:   capabilities,
		publisher:      publisher,
		notifier:       notifier,
		currency:       currency,
		deliveryFee:    parseDecimalSetting("order.delivery_fee", cfg.DeliveryFee, decimal.NewFromInt(200)),
		commissionRate: parseDecimalSetting("order.commission_rate", cfg.CommissionRate, decimal.NewFromFloat(0.05)),
		orderNoPrefix:  cfg.OrderNoPrefix,
		now:            time.Now,
	}
}

func parseDecimalSetting(name, raw string, fallback decimal.Decimal) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		logger.Warnw("order_setting_invalid", "setting", name, "value", raw, "fallback", fallback.String())
		return fallback
	}
	return value
}

// mergeCreateOrderItems 合并重复商品的下单项
func mergeCreateOrderItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	if len(items) == 0 {
		return nil, ErrOrderItemInvalid
	}
	merged := make([]CreateOrderItem, 0, len(items))
	indexMap := make(map[uint]int)
	for _, item := range items {
		if item.ListingID == 0 || item.Quantity <= 0 {
			return nil, ErrOrderItemInvalid
		}
		if idx, ok := indexMap[item.ListingID]; ok {
			merged[idx].Quantity += item.Quantity
			continue
		}
		indexMap[item.ListingID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func normalizePaymentMethod(method string) (string, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	switch method {
	case "":
		return constants.PaymentMethodMpesa, nil
	case constants.PaymentMethodMpesa, constants.PaymentMethodCard, constants.PaymentMethodCOD:
		return method, nil
	default:
		return "", ErrPaymentMethodInvalid
	}
}

// splitCommission 按比例拆分佣金与卖家净额
func splitCommission(lineTotal, rate decimal.Decimal) (commission, net decimal.Decimal) {
	commission = lineTotal.Mul(rate).Round(2)
	return commission, lineTotal.Sub(commission)
}

// resolveUnitPrice 校验商品可售并返回成交单价
func resolveUnitPrice(listing *models.Listing, buyerID uint, quantity int) (int64, error) {
	if listing == nil || !listing.IsApproved {
		return 0, ErrListingNotFound
	}
	if listing.SellerID == buyerID {
		return 0, ErrListingNotPurchasable
	}
	switch listing.ListingType {
	case constants.ListingTypeFixed:
		if listing.Status != constants.ListingStatusActive {
			return 0, ErrListingNotPurchasable
		}
		return listing.Price, nil
	case constants.ListingTypeAuction:
		if listing.Status != constants.ListingStatusSold || listing.WinnerID == nil || *listing.WinnerID != buyerID {
			return 0, ErrListingNotPurchasable
		}
		if quantity != 1 || listing.CurrentBid == nil {
			return 0, ErrOrderItemInvalid
		}
		return *listing.CurrentBid, nil
	default:
		return 0, ErrListingNotPurchasable
	}
}

// Create 下单：快照价格、配送费与佣金，并分配追踪码
func (s *OrderService) Create(ctx context.Context, actor Actor, input CreateOrderInput) (*models.Order, error) {
	if err := requireCapability(s.capabilities, actor, constants.CapObjectOrders, constants.CapActionCreate); err != nil {
		return nil, err
	}
	items, err := mergeCreateOrderItems(input.Items)
	if err != nil {
		return nil, err
	}
	paymentMethod, err := normalizePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}
	town := strings.TrimSpace(input.Town)
	if town == "" {
		return nil, ErrDeliveryTownRequired
	}
	trackingCode, err := generateTrackingCode()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := s.now()
	var order *models.Order
	err = models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listingRepo := s.listingRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		subtotal := decimal.Zero
		commissionTotal := decimal.Zero
		netTotal := decimal.Zero
		rows := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			listing, err := listingRepo.GetByIDForUpdate(item.ListingID)
			if err != nil {
				return err
			}
			unitPrice, err := resolveUnitPrice(listing, actor.ProfileID, item.Quantity)
			if err != nil {
				return err
			}
			if listing.ListingType == constants.ListingTypeAuction {
				ordered, err := orderRepo.HasActiveOrderForListing(listing.ID)
				if err != nil {
					return err
				}
				if ordered {
					return ErrListingAlreadyOrdered
				}
			}
			lineTotal := decimal.NewFromInt(unitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
			commission, net := splitCommission(lineTotal, s.commissionRate)
			subtotal = subtotal.Add(lineTotal)
			commissionTotal = commissionTotal.Add(commission)
			netTotal = netTotal.Add(net)
			rows = append(rows, models.OrderItem{
				ListingID:        listing.ID,
				SellerID:         listing.SellerID,
				Title:            listing.Title,
				UnitPrice:        models.NewMoneyFromInt(unitPrice),
				Quantity:         item.Quantity,
				LineTotal:        models.NewMoneyFromDecimal(lineTotal),
				CommissionAmount: models.NewMoneyFromDecimal(commission),
				SellerNet:        models.NewMoneyFromDecimal(net),
				CreatedAt:        now,
			})
		}

		paymentStatus := constants.OrderPaymentAwaitingPayment
		if paymentMethod == constants.PaymentMethodCOD {
			paymentStatus = constants.OrderPaymentPending
		}
		code := trackingCode
		order = &models.Order{
			OrderNo:          generateOrderNo(s.orderNoPrefix, now),
			BuyerID:          actor.ProfileID,
			Status:           constants.OrderStatusPending,
			PaymentStatus:    paymentStatus,
			PaymentMethod:    paymentMethod,
			Currency:         s.currency,
			Subtotal:         models.NewMoneyFromDecimal(subtotal),
			DeliveryFee:      models.NewMoneyFromDecimal(s.deliveryFee),
			Total:            models.NewMoneyFromDecimal(subtotal.Add(s.deliveryFee)),
			CommissionRate:   s.commissionRate,
			CommissionAmount: models.NewMoneyFromDecimal(commissionTotal),
			SellerNet:        models.NewMoneyFromDecimal(netTotal),
			TrackingCode:     &code,
			Town:             town,
			DeliveryAddress:  strings.TrimSpace(input.DeliveryAddress),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := orderRepo.Create(order, rows); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, normalizeTimeout(ctx, err)
	}

	snapshot := *order
	s.bg.Go(constants.FeedEventOrderStatus, func(ctx context.Context) error {
		return publishFeedEvent(ctx, s.publisher, constants.FeedEventOrderStatus, feed.OrderTopic(snapshot.ID), map[string]interface{}{
			"order_id": snapshot.ID,
			"status":   snapshot.Status,
		})
	})
	s.notifier.NotifyOrderPlaced(&snapshot)
	logger.Infow("order_created", "order_id", order.ID, "order_no", order.OrderNo, "buyer_id", order.BuyerID, "total", order.Total.String())
	return decorateOrder(order), nil
}

// GetForBuyer 买家查看自己的订单
func (s *OrderService) GetForBuyer(orderID uint, actor Actor) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndBuyer(orderID, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return decorateOrder(order), nil
}

// ListForBuyer 买家订单列表
func (s *OrderService) ListForBuyer(actor Actor, page, pageSize int) ([]models.Order, int64, error) {
	orders, total, err := s.orderRepo.List(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		BuyerID:  actor.ProfileID,
	})
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		decorateOrder(&orders[i])
	}
	return orders, total, nil
}

// SellerRevenue 卖家净收入（来自已支付订单的快照）
func (s *OrderService) SellerRevenue(actor Actor) (*repository.SellerRevenue, error) {
	if err := requireCapability(s.capabilities, actor, constants.CapObjectListings, constants.CapActionCreate); err != nil {
		return nil, err
	}
	return s.orderRepo.SumSellerRevenue(actor.ProfileID)
}

// ListForStaff 员工订单列表，无跨城能力时限定本城镇且未指派或指派给自己
func (s *OrderService) ListForStaff(actor Actor, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if err := requireCapability(s.capabilities, actor, constants.CapObjectStaff, constants.CapActionAccess); err != nil {
		return nil, 0, err
	}
	if !hasCapability(s.capabilities, actor, constants.CapObjectFulfillmentAny, constants.CapActionAdvance) {
		town := actor.NormalizedTown()
		if town == "" {
			return nil, 0, ErrActorTownMismatch
		}
		filter.Town = town
		filter.UnassignedOrMe = actor.ProfileID
	}
	orders, total, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		decorateOrder(&orders[i])
	}
	return orders, total, nil
}

// GetForStaff 员工查看订单
func (s *OrderService) GetForStaff(orderID uint, actor Actor) (*models.Order, error) {
	if err := requireCapability(s.capabilities, actor, constants.CapObjectStaff, constants.CapActionAccess); err != nil {
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
	return decorateOrder(order), nil
}

// Wait 等待提交后任务完成
func (s *OrderService) Wait() {
	s.bg.Wait()
	s.notifier.Wait()
}
