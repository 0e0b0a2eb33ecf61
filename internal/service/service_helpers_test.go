package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sokomart/internal/authz"
	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/feed"
	"github.com/sokomart/internal/models"
	"github.com/sokomart/internal/notify"
	"github.com/sokomart/internal/queue"
	"github.com/sokomart/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// marketplaceFixture 服务层测试依赖
type marketplaceFixture struct {
	db           *gorm.DB
	authz        *authz.Service
	profileRepo  *repository.GormProfileRepository
	listingRepo  *repository.GormListingRepository
	bidRepo      *repository.GormBidRepository
	orderRepo    *repository.GormOrderRepository
	paymentRepo  *repository.GormPaymentRepository
	eventRepo    *repository.GormFulfillmentEventRepository
	publisher    *recordingPublisher
	queueClient  *queue.Client
	notification *NotificationService
}

func setupMarketplaceFixture(t *testing.T, sender notify.Sender) *marketplaceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:service_marketplace_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), models.NewGormConfig(gormlogger.Silent))
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	t.Cleanup(func() { _ = sqlDB.Close() })

	authzSvc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzSvc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	queueClient, _ := queue.NewClient(&config.QueueConfig{Enabled: false})
	if sender == nil {
		sender = notify.NopSender{}
	}
	profileRepo := repository.NewProfileRepository(db)
	return &marketplaceFixture{
		db:           db,
		authz:        authzSvc,
		profileRepo:  profileRepo,
		listingRepo:  repository.NewListingRepository(db),
		bidRepo:      repository.NewBidRepository(db),
		orderRepo:    repository.NewOrderRepository(db),
		paymentRepo:  repository.NewPaymentRepository(db),
		eventRepo:    repository.NewFulfillmentEventRepository(db),
		publisher:    &recordingPublisher{},
		queueClient:  queueClient,
		notification: NewNotificationService(queueClient, sender, profileRepo, "https://soko.test"),
	}
}

func (f *marketplaceFixture) auctionService() *AuctionService {
	return NewAuctionService(config.AuctionConfig{MinIncrement: 100, BidTimeoutMS: 5000}, f.listingRepo, f.bidRepo, f.publisher, f.notification)
}

func (f *marketplaceFixture) listingService() *ListingService {
	return NewListingService(f.listingRepo, f.bidRepo, f.authz, f.queueClient, f.publisher, f.notification, 100)
}

func (f *marketplaceFixture) orderService() *OrderService {
	return NewOrderService(config.OrderConfig{Currency: "KES", DeliveryFee: "200", CommissionRate: "0.05", OrderNoPrefix: "SK"},
		f.orderRepo, f.listingRepo, f.authz, f.publisher, f.notification)
}

func (f *marketplaceFixture) fulfillmentService() *FulfillmentService {
	return NewFulfillmentService(f.orderRepo, f.eventRepo, f.profileRepo, f.authz, f.publisher)
}

func (f *marketplaceFixture) createProfile(t *testing.T, role, town string) *models.Profile {
	t.Helper()
	var count int64
	f.db.Model(&models.Profile{}).Count(&count)
	profile := &models.Profile{
		Phone:       fmt.Sprintf("+2547000%05d", count+1),
		DisplayName: role,
		Role:        role,
		Town:        town,
		Status:      constants.ProfileStatusActive,
	}
	if err := f.profileRepo.Create(profile); err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	return profile
}

func (f *marketplaceFixture) createAuction(t *testing.T, sellerID uint, price int64, end time.Time) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		SellerID:       sellerID,
		Title:          "Vintage radio",
		Town:           "Nakuru",
		ListingType:    constants.ListingTypeAuction,
		Price:          price,
		AuctionEndTime: &end,
		Status:         constants.ListingStatusActive,
		IsApproved:     true,
	}
	if err := f.listingRepo.Create(listing); err != nil {
		t.Fatalf("create auction failed: %v", err)
	}
	return listing
}

func (f *marketplaceFixture) createFixedListing(t *testing.T, sellerID uint, price int64) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		SellerID:    sellerID,
		Title:       "Maize flour 2kg",
		Town:        "Nakuru",
		ListingType: constants.ListingTypeFixed,
		Price:       price,
		Status:      constants.ListingStatusActive,
		IsApproved:  true,
	}
	if err := f.listingRepo.Create(listing); err != nil {
		t.Fatalf("create listing failed: %v", err)
	}
	return listing
}

// createOrder 直接写入订单（绕过结算），用于履约与扫码测试
func (f *marketplaceFixture) createOrder(t *testing.T, buyerID uint, town, status, paymentMethod string, trackingCode string) *models.Order {
	t.Helper()
	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	order := &models.Order{
		OrderNo:       fmt.Sprintf("SK20260101%06d", count+1),
		BuyerID:       buyerID,
		Status:        status,
		PaymentStatus: constants.OrderPaymentPending,
		PaymentMethod: paymentMethod,
		Currency:      "KES",
		Subtotal:      models.NewMoneyFromInt(1000),
		DeliveryFee:   models.NewMoneyFromInt(200),
		Total:         models.NewMoneyFromInt(1200),
		Town:          town,
	}
	if trackingCode != "" {
		code := trackingCode
		order.TrackingCode = &code
	}
	if err := f.orderRepo.Create(order, nil); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func actorOf(profile *models.Profile) Actor {
	return Actor{ProfileID: profile.ID, Role: profile.Role, Town: profile.Town}
}

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []feed.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event feed.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) eventsOfType(eventType string) []feed.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var result []feed.Event
	for _, event := range p.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

// recordingSender 记录发送的短信
type recordingSender struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newRecordingSender() *recordingSender {
	return &recordingSender{messages: map[string][]string{}}
}

func (s *recordingSender) Send(_ context.Context, phone, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[phone] = append(s.messages[phone], message)
	return nil
}

func (s *recordingSender) sentTo(phone string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages[phone]...)
}

func errorsIs(err, target error) bool {
	return errors.Is(err, target)
}
