package provider

import (
	"github.com/sokomart/internal/authz"
	"github.com/sokomart/internal/cache"
	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/feed"
	"github.com/sokomart/internal/i18n"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/models"
	"github.com/sokomart/internal/notify"
	"github.com/sokomart/internal/payment/mpesa"
	"github.com/sokomart/internal/queue"
	"github.com/sokomart/internal/repository"
	"github.com/sokomart/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// 变更推送
	FeedHub       *feed.Hub
	FeedTransport *feed.Transport

	// 外部通道
	SMSSender    notify.Sender
	MpesaGateway mpesa.Gateway

	// Repositories
	ProfileRepo          repository.ProfileRepository
	ListingRepo          repository.ListingRepository
	BidRepo              repository.BidRepository
	OrderRepo            repository.OrderRepository
	PaymentRepo          repository.PaymentRepository
	FulfillmentEventRepo repository.FulfillmentEventRepository

	// Services
	AuthzService        *authz.Service
	IdentityService     *service.IdentityService
	NotificationService *service.NotificationService
	AuctionService      *service.AuctionService
	ListingService      *service.ListingService
	OrderService        *service.OrderService
	FulfillmentService  *service.FulfillmentService
	ScanService         *service.ScanService
	PaymentService      *service.PaymentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	i18n.SetDefaultLocale(cfg.Server.DefaultLocale)

	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端（未启用时为空实现）
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		FeedHub:     feed.NewHub(),
	}

	// 1. 初始化外部通道
	c.initChannels()

	// 2. 初始化 Repositories
	c.initRepositories()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initChannels() {
	transport, err := feed.NewTransport(c.Config.Feed, cache.Client(), cache.Prefix())
	if err != nil {
		logger.Warnw("provider_init_feed_failed", "driver", c.Config.Feed.Driver, "error", err)
		transport = feed.NewNopTransport()
	}
	c.FeedTransport = transport

	sender, err := notify.NewSender(c.Config.Notify)
	if err != nil {
		logger.Warnw("provider_init_sms_sender_failed", "driver", c.Config.Notify.Driver, "error", err)
		sender = notify.NopSender{}
	}
	c.SMSSender = sender

	gateway, err := mpesa.NewSandboxGateway(mpesa.Config{
		ShortCode:       c.Config.Payment.Mpesa.ShortCode,
		CallbackBaseURL: c.Config.Payment.Mpesa.CallbackBaseURL,
	})
	if err != nil {
		logger.Warnw("provider_init_mpesa_gateway_failed", "error", err)
	} else {
		c.MpesaGateway = gateway
	}
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ProfileRepo = repository.NewProfileRepository(db)
	c.ListingRepo = repository.NewListingRepository(db)
	c.BidRepo = repository.NewBidRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.FulfillmentEventRepo = repository.NewFulfillmentEventRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	publisher := c.FeedTransport.Publisher
	c.IdentityService = service.NewIdentityService(c.Config.AuthJWT, c.ProfileRepo)
	c.NotificationService = service.NewNotificationService(c.QueueClient, c.SMSSender, c.ProfileRepo, c.Config.Notify.BaseURL)
	c.AuctionService = service.NewAuctionService(c.Config.Auction, c.ListingRepo, c.BidRepo, publisher, c.NotificationService)
	c.ListingService = service.NewListingService(c.ListingRepo, c.BidRepo, c.AuthzService, c.QueueClient, publisher, c.NotificationService, c.AuctionService.MinIncrement())
	c.OrderService = service.NewOrderService(c.Config.Order, c.OrderRepo, c.ListingRepo, c.AuthzService, publisher, c.NotificationService)
	c.FulfillmentService = service.NewFulfillmentService(c.OrderRepo, c.FulfillmentEventRepo, c.ProfileRepo, c.AuthzService, publisher)
	c.ScanService = service.NewScanService(c.Config.Fulfillment, c.OrderRepo, c.FulfillmentService)
	c.PaymentService = service.NewPaymentService(c.Config.Payment.Mpesa, c.OrderRepo, c.PaymentRepo, c.MpesaGateway, publisher, c.NotificationService)
}

// Wait 等待各服务的提交后任务完成（停机时调用）
func (c *Container) Wait() {
	if c == nil {
		return
	}
	for _, waiter := range []interface{ Wait() }{
		c.AuctionService,
		c.ListingService,
		c.OrderService,
		c.FulfillmentService,
		c.PaymentService,
		c.NotificationService,
	} {
		waiter.Wait()
	}
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.FeedTransport != nil && c.FeedTransport.Publisher != nil {
		if err := c.FeedTransport.Publisher.Close(); err != nil {
			logger.Warnw("provider_close_feed_failed", "error", err)
		}
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
