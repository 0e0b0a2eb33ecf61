package service

import (
	"context"
	"errors"
	"time"

	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/feed"
	"github.com/sokomart/internal/models"
	"github.com/sokomart/internal/repository"

	"gorm.io/gorm"
)

// AuctionService 拍卖出价服务
type AuctionService struct {
	listingRepo  repository.ListingRepository
	bidRepo      repository.BidRepository
	publisher    feed.Publisher
	notifier     *NotificationService
	minIncrement int64
	timeout      time.Duration
	now          func() time.Time

	bg detachedRunner
}

// PlaceBidResult 出价结果
type PlaceBidResult struct {
	Bid           *models.Bid `json:"bid"`
	NewCurrentBid int64       `json:"new_current_bid"`
}

// NewAuctionService 创建拍卖服务
func NewAuctionService(cfg config.AuctionConfig, listingRepo repository.ListingRepository, bidRepo repository.BidRepository, publisher feed.Publisher, notifier *NotificationService) *AuctionService {
	minIncrement := cfg.MinIncrement
	if minIncrement <= 0 {
		minIncrement = constants.AuctionMinIncrement
	}
	if publisher == nil {
		publisher = feed.NopPublisher{}
	}
	return &AuctionService{
		listingRepo:  listingRepo,
		bidRepo:      bidRepo,
		publisher:    publisher,
		notifier:     notifier,
		minIncrement: minIncrement,
		timeout:      cfg.BidTimeout(),
		now:          time.Now,
	}
}

// MinIncrement 最小加价幅度
func (s *AuctionService) MinIncrement() int64 {
	return s.minIncrement
}

// MinimumNextBid 下一口最低出价
func MinimumNextBid(listing *models.Listing, minIncrement int64) int64 {
	return listing.EffectiveBid() + minIncrement
}

// checkBidAdmission 按固定顺序校验出价前置条件
func checkBidAdmission(listing *models.Listing, bidderID uint, amount int64, now time.Time, minIncrement int64) error {
	if amount <= 0 {
		return ErrBidAmountInvalid
	}
	if listing == nil ||
		listing.ListingType != constants.ListingTypeAuction ||
		listing.Status != constants.ListingStatusActive ||
		!listing.IsApproved {
		return ErrListingNotFound
	}
	if listing.AuctionEndTime != nil && !now.Before(*listing.AuctionEndTime) {
		return ErrAuctionClosed
	}
	if bidderID == listing.SellerID {
		return ErrSelfBidForbidden
	}
	if minimum := MinimumNextBid(listing, minIncrement); amount < minimum {
		return &BidTooLowError{Minimum: minimum}
	}
	return nil
}

// PlaceBid 出价：锁定商品行、翻转领先标记、写入出价并乐观更新商品
func (s *AuctionService) PlaceBid(ctx context.Context, listingID, bidderID uint, amount int64) (*PlaceBidResult, error) {
	if amount <= 0 {
		return nil, ErrBidAmountInvalid
	}
	if listingID == 0 {
		return nil, ErrListingNotFound
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		bid            *models.Bid
		listing        *models.Listing
		previousWinner uint
	)
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listingRepo := s.listingRepo.WithTx(tx)
		bidRepo := s.bidRepo.WithTx(tx)

		locked, err := listingRepo.GetByIDForUpdate(listingID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := checkBidAdmission(locked, bidderID, amount, now, s.minIncrement); err != nil {
			return err
		}

		previous, err := bidRepo.GetWinning(listingID)
		if err != nil {
			return err
		}
		if previous != nil {
			previousWinner = previous.BidderID
		}
		if _, err := bidRepo.ClearWinning(listingID); err != nil {
			return err
		}

		row := &models.Bid{
			ListingID: listingID,
			BidderID:  bidderID,
			Amount:    amount,
			IsWinning: true,
			CreatedAt: now,
		}
		if err := bidRepo.Create(row); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrBidConflict
			}
			return err
		}

		applied, err := listingRepo.ApplyBid(listingID, locked.BidCount, amount)
		if err != nil {
			return err
		}
		if !applied {
			return ErrBidConflict
		}

		bid = row
		current := amount
		locked.CurrentBid = &current
		locked.BidCount++
		listing = locked
		return nil
	})
	if err != nil {
		return nil, normalizeTimeout(ctx, err)
	}

	s.afterBid(listing, bid, previousWinner)
	return &PlaceBidResult{Bid: bid, NewCurrentBid: amount}, nil
}

// afterBid 推送变更并通知被超越者
func (s *AuctionService) afterBid(listing *models.Listing, bid *models.Bid, previousWinner uint) {
	snapshot := *listing
	data := map[string]interface{}{
		"listing_id":   snapshot.ID,
		"bid_id":       bid.ID,
		"amount":       bid.Amount,
		"current_bid":  bid.Amount,
		"bid_count":    snapshot.BidCount,
		"min_next_bid": MinimumNextBid(&snapshot, s.minIncrement),
		"placed_at":    bid.CreatedAt,
	}
	s.bg.Go(constants.FeedEventBidPlaced, func(ctx context.Context) error {
		return publishFeedEvent(ctx, s.publisher, constants.FeedEventBidPlaced, feed.ListingTopic(snapshot.ID), data)
	})
	if previousWinner != 0 && previousWinner != bid.BidderID {
		s.notifier.NotifyOutbid(previousWinner, &snapshot, bid.Amount)
	}
}

// ListBids 出价历史（新到旧）
func (s *AuctionService) ListBids(listingID uint, page, pageSize int) ([]models.Bid, int64, error) {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		return nil, 0, err
	}
	if listing == nil {
		return nil, 0, ErrListingNotFound
	}
	return s.bidRepo.ListByListing(listingID, page, pageSize)
}

// GetWinningBid 当前领先出价，无出价时返回 nil
func (s *AuctionService) GetWinningBid(listingID uint) (*models.Bid, error) {
	return s.bidRepo.GetWinning(listingID)
}

// Wait 等待提交后任务完成
func (s *AuctionService) Wait() {
	s.bg.Wait()
	s.notifier.Wait()
}
