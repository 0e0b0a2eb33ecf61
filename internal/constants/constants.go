package constants

// 商品类型常量
const (
	ListingTypeAuction = "auction"
	ListingTypeFixed   = "fixed"
)

// 商品状态常量
const (
	ListingStatusDraft           = "draft"
	ListingStatusPendingApproval = "pending_approval"
	ListingStatusActive          = "active"
	ListingStatusEnded           = "ended"
	ListingStatusSold            = "sold"
	ListingStatusRejected        = "rejected"
)

// 拍卖规则常量
const (
	AuctionMinIncrement    int64 = 100
	AuctionMinDurationHour       = 6
	AuctionMaxDurationHour       = 24
)

// 拍卖紧迫度常量
const (
	UrgencyNormal   = "normal"
	UrgencyUrgent   = "urgent"
	UrgencyCritical = "critical"
	UrgencyEnded    = "ended"

	UrgencyCriticalSeconds int64 = 1800
	UrgencyUrgentSeconds   int64 = 7200
)

// 订单履约状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// 订单支付状态常量
const (
	OrderPaymentPending         = "pending"
	OrderPaymentAwaitingPayment = "awaiting_payment"
	OrderPaymentPaid            = "paid"
	OrderPaymentFailed          = "failed"
	OrderPaymentRefunded        = "refunded"
)

// 支付方式常量
const (
	PaymentMethodMpesa = "mpesa"
	PaymentMethodCard  = "card"
	PaymentMethodCOD   = "cod"
)

// 支付记录状态常量
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// 支付提供方常量
const (
	PaymentProviderMpesa = "mpesa"
)

// M-Pesa 回调应答
const (
	MpesaCallbackAckCode = 0
	MpesaCallbackAckDesc = "Accepted"
)

// 履约审计动作常量
const (
	FulfillmentActionAdvance     = "advance"
	FulfillmentActionCancel      = "cancel"
	FulfillmentActionAssign      = "assign"
	FulfillmentActionCashConfirm = "cash_confirm"
)

// 角色常量
const (
	RoleBuyer   = "buyer"
	RoleSeller  = "seller"
	RoleAgent   = "agent"
	RoleManager = "manager"
	RoleCEO     = "ceo"
	RoleAdmin   = "admin"
)

// 用户状态常量
const (
	ProfileStatusActive   = "active"
	ProfileStatusDisabled = "disabled"
)

// 能力对象与动作
const (
	CapObjectBids              = "/bids"
	CapObjectListings          = "/listings"
	CapObjectListingModeration = "/listings/moderation"
	CapObjectOrders            = "/orders"
	CapObjectCODOrders         = "/orders/cod"
	CapObjectFulfillment       = "/fulfillment/orders"
	CapObjectFulfillmentAny    = "/fulfillment/orders/any-town"
	CapObjectFulfillmentEvents = "/fulfillment/events"
	CapObjectStaff             = "/staff"

	CapActionPlace       = "PLACE"
	CapActionCreate      = "CREATE"
	CapActionApprove     = "APPROVE"
	CapActionAdvance     = "ADVANCE"
	CapActionCancel      = "CANCEL"
	CapActionAssign      = "ASSIGN"
	CapActionConfirmCash = "CONFIRM_CASH"
	CapActionRead        = "READ"
	CapActionAccess      = "ACCESS"
)

// 变更推送事件类型
const (
	FeedEventBidPlaced       = "bid_placed"
	FeedEventAuctionClosed   = "auction_closed"
	FeedEventListingApproved = "listing_approved"
	FeedEventOrderStatus     = "order_status"
	FeedEventPaymentStatus   = "payment_status"
)

// 变更推送驱动
const (
	FeedDriverRedis = "redis"
	FeedDriverNATS  = "nats"
	FeedDriverNone  = "none"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskOutbidSMS      = "sms:outbid"
	TaskAuctionWonSMS  = "sms:auction_won"
	TaskOrderPlacedSMS = "sms:order_placed"
	TaskPaymentSMS     = "sms:payment_status"
	TaskAuctionClose   = "auction:close"
)
