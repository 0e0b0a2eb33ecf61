package service

import (
	"context"
	"strings"
	"time"

	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/feed"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/models"
	"github.com/sokomart/internal/queue"
	"github.com/sokomart/internal/repository"

	"gorm.io/gorm"
)

// ListingService 商品与拍卖生命周期服务
type ListingService struct {
	listingRepo  repository.ListingRepository
	bidRepo      repository.BidRepository
	capabilities CapabilityChecker
	queueClient  *queue.Client
	publisher    feed.Publisher
	notifier     *NotificationService
	minIncrement int64
	now          func() time.Time

	bg detachedRunner
}

// CreateListingInput 创建商品参数
type CreateListingInput struct {
	Title         string
	Description   string
	Category      string
	Town          string
	ListingType   string
	Price         int64
	DurationHours int
}

// ListingDetail 商品详情（含服务端计时）
type ListingDetail struct {
	*models.Listing
	MinNextBid *int64        `json:"min_next_bid,omitempty"`
	Timer      *AuctionTimer `json:"timer,omitempty"`
}

// NewListingService 创建商品服务
func NewListingService(
	listingRepo repository.ListingRepository,
	bidRepo repository.BidRepository,
	capabilities CapabilityChecker,
	queueClient *queue.Client,
	publisher feed.Publisher,
	notifier *NotificationService,
	minIncrement int64,
) *ListingService {
	if publisher == nil {
		publisher = feed.NopPublisher{}
	}
	if minIncrement <= 0 {
		minIncrement = constants.AuctionMinIncrement
	}
	return &ListingService{
		listingRepo:  listingRepo,
		bidRepo:      bidRepo,
		capabilities: capabilities,
		queueClient:  queueClient,
		publisher:    publisher,
		notifier:     notifier,
		minIncrement: minIncrement,
		now:          time.Now,
	}
}

// Create 卖家创建商品，进入待审核
func (s *ListingService) Create(ctx context.Context, actor Actor, input CreateListingInput) (*models.Listing, error) {
	if err := requireCapability(s.capabilities, actor, constants.CapObjectListings, constants.CapActionCreate); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	listingType := strings.ToLower(strings.TrimSpace(input.ListingType))
	if title == "" || input.Price <= 0 {
		return nil, ErrListingInvalid
	}

	now := s.now()
	listing := &models.Listing{
		SellerID:    actor.ProfileID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Town:        strings.TrimSpace(input.Town),
		ListingType: listingType,
		Price:       input.Price,
		Status:      constants.ListingStatusPendingApproval,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch listingType {
	case constants.ListingTypeAuction:
		if input.DurationHours < constants.AuctionMinDurationHour || input.DurationHours > constants.AuctionMaxDurationHour {
			return nil, ErrAuctionDurationInvalid
		}
		end := now.Add(time.Duration(input.DurationHours) * time.Hour)
		listing.AuctionEndTime = &end
	case constants.ListingTypeFixed:
	default:
		return nil, ErrListingInvalid
	}

	if err := s.listingRepo.Create(listing); err != nil {
		return nil, err
	}
	logger.Infow("listing_created", "listing_id", listing.ID, "seller_id", listing.SellerID, "listing_type", listing.ListingType)
	return listing, nil
}

// Approve 审核通过并上架，拍卖同时安排结拍任务
func (s *ListingService) Approve(ctx context.Context, listingID uint, actor Actor) (*models.Listing, error) {
	if err := requireCapability(s.capabilities, actor, constants.CapObjectListingModeration, constants.CapActionApprove); err != nil {
		return nil, err
	}
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.Status != constants.ListingStatusPendingApproval {
		return nil, ErrListingStatusInvalid
	}
	if listing.AuctionEndTime != nil && !s.now().Before(*listing.AuctionEndTime) {
		return nil, ErrAuctionClosed
	}
	ok, err := s.listingRepo.UpdateStatus(listing.ID, constants.ListingStatusPendingApproval, map[string]interface{}{
		"status":      constants.ListingStatusActive,
		"is_approved": true,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrListingStatusInvalid
	}
	listing.Status = constants.ListingStatusActive
	listing.IsApproved = true

	if listing.ListingType == constants.ListingTypeAuction && listing.AuctionEndTime != nil {
		if err := s.queueClient.EnqueueAuctionClose(queue.AuctionClosePayload{ListingID: listing.ID}, *listing.AuctionEndTime); err != nil {
			logger.Warnw("auction_close_enqueue_failed", "listing_id", listing.ID, "error", err)
		}
	}
	snapshot := *listing
	s.bg.Go(constants.FeedEventListingApproved, func(ctx context.Context) error {
		return publishFeedEvent(ctx, s.publisher, constants.FeedEventListingApproved, feed.ListingTopic(snapshot.ID), map[string]interface{}{
			"listing_id": snapshot.ID,
			"status":     snapshot.Status,
		})
	})
	logger.Infow("listing_approved", "listing_id", listing.ID, "actor_id", actor.ProfileID)
	return listing, nil
}

// Reject 审核驳回
func (s *ListingService) Reject(ctx context.Context, listingID uint, actor Actor, reason string) (*models.Listing, error) {
	if err := requireCapability(s.capabilities, actor, constants.CapObjectListingModeration, constants.CapActionApprove); err != nil {
		return nil, err
	}
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	ok, err := s.listingRepo.UpdateStatus(listing.ID, constants.ListingStatusPendingApproval, map[string]interface{}{
		"status":      constants.ListingStatusRejected,
		"is_approved": false,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrListingStatusInvalid
	}
	listing.Status = constants.ListingStatusRejected
	listing.IsApproved = false
	logger.Infow("listing_rejected", "listing_id", listing.ID, "actor_id", actor.ProfileID, "reason", strings.TrimSpace(reason))
	return listing, nil
}

// GetPublic 公开详情，未审核的商品视为不存在
func (s *ListingService) GetPublic(listingID uint) (*ListingDetail, error) {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil || !listing.IsApproved {
		return nil, ErrListingNotFound
	}
	return s.buildDetail(listing), nil
}

// ListPublic 公开列表
func (s *ListingService) ListPublic(filter repository.ListingListFilter) ([]ListingDetail, int64, error) {
	filter.OnlyPublic = true
	listings, total, err := s.listingRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]ListingDetail, 0, len(listings))
	for i := range listings {
		result = append(result, *s.buildDetail(&listings[i]))
	}
	return result, total, nil
}

func (s *ListingService) buildDetail(listing *models.Listing) *ListingDetail {
	detail := &ListingDetail{Listing: listing}
	if listing.ListingType != constants.ListingTypeAuction {
		return detail
	}
	detail.Timer = BuildAuctionTimer(s.now(), listing.AuctionEndTime)
	if listing.Status == constants.ListingStatusActive {
		minimum := MinimumNextBid(listing, s.minIncrement)
		detail.MinNextBid = &minimum
	}
	return detail
}

// CloseAuction 结拍：有领先出价则成交，否则流拍；重复调用无副作用
func (s *ListingService) CloseAuction(ctx context.Context, listingID uint) (*models.Listing, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		closed  *models.Listing
		winning *models.Bid
	)
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listingRepo := s.listingRepo.WithTx(tx)
		listing, err := listingRepo.GetByIDForUpdate(listingID)
		if err != nil {
			return err
		}
		if listing == nil {
			return ErrListingNotFound
		}
		now := s.now()
		if listing.ListingType != constants.ListingTypeAuction ||
			listing.Status != constants.ListingStatusActive ||
			listing.AuctionEndTime == nil ||
			now.Before(*listing.AuctionEndTime) {
			return nil
		}

		winning, err = s.bidRepo.WithTx(tx).GetWinning(listing.ID)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"status":    constants.ListingStatusEnded,
			"closed_at": now,
		}
		if winning != nil {
			updates["status"] = constants.ListingStatusSold
			updates["winner_id"] = winning.BidderID
		}
		ok, err := listingRepo.UpdateStatus(listing.ID, constants.ListingStatusActive, updates)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		listing.Status = updates["status"].(string)
		listing.ClosedAt = &now
		if winning != nil {
			winner := winning.BidderID
			listing.WinnerID = &winner
		}
		closed = listing
		return nil
	})
	if err != nil {
		return nil, err
	}
	if closed == nil {
		return nil, nil
	}

	snapshot := *closed
	data := map[string]interface{}{
		"listing_id": snapshot.ID,
		"status":     snapshot.Status,
		"winner_id":  snapshot.WinnerID,
		"final_bid":  snapshot.CurrentBid,
	}
	s.bg.Go(constants.FeedEventAuctionClosed, func(ctx context.Context) error {
		return publishFeedEvent(ctx, s.publisher, constants.FeedEventAuctionClosed, feed.ListingTopic(snapshot.ID), data)
	})
	if winning != nil {
		s.notifier.NotifyAuctionWon(winning.BidderID, &snapshot, winning.Amount)
	}
	logger.Infow("auction_closed", "listing_id", snapshot.ID, "status", snapshot.Status, "winner_id", snapshot.WinnerID)
	return closed, nil
}

// CloseExpiredAuctions 批量结拍已到期拍卖，返回成功结拍数量
func (s *ListingService) CloseExpiredAuctions(ctx context.Context, limit int) (int, error) {
	expired, err := s.listingRepo.ListExpiredAuctions(s.now(), limit)
	if err != nil {
		return 0, err
	}
	closed := 0
	for _, listing := range expired {
		if ctx.Err() != nil {
			return closed, ctx.Err()
		}
		result, err := s.CloseAuction(ctx, listing.ID)
		if err != nil {
			logger.Warnw("auction_close_failed", "listing_id", listing.ID, "error", err)
			continue
		}
		if result != nil {
			closed++
		}
	}
	return closed, nil
}

// Wait 等待提交后任务完成
func (s *ListingService) Wait() {
	s.bg.Wait()
	s.notifier.Wait()
}
