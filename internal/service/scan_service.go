package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/models"
	"github.com/sokomart/internal/repository"

	"gorm.io/gorm"
)

const (
	legacyOrderNoMinPrefix = 6
	backfillBatchSize      = 200
	backfillMaxAttempts    = 3
)

// ScanService 扫码解析与履约推进
type ScanService struct {
	orderRepo    repository.OrderRepository
	fulfillment  *FulfillmentService
	legacyLookup bool
	timeout      time.Duration
}

// NewScanService 创建扫码服务
func NewScanService(cfg config.FulfillmentConfig, orderRepo repository.OrderRepository, fulfillment *FulfillmentService) *ScanService {
	return &ScanService{
		orderRepo:    orderRepo,
		fulfillment:  fulfillment,
		legacyLookup: cfg.LegacyLookup,
		timeout:      cfg.ScanTimeout(),
	}
}

// ResolveAndApply 解析扫码并推进到请求的状态（推进时重新校验）
func (s *ScanService) ResolveAndApply(ctx context.Context, code, requestedStatus string, actor Actor) (*models.Order, error) {
	normalized := normalizeScanCode(code)
	if normalized == "" {
		return nil, ErrScanCodeRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.Resolve(normalized)
	if err != nil {
		return nil, normalizeTimeout(ctx, err)
	}
	return s.fulfillment.Advance(ctx, order.ID, requestedStatus, actor)
}

// Resolve 追踪码精确匹配，开启兼容查询时再按订单 ID 或订单号前缀查找
func (s *ScanService) Resolve(code string) (*models.Order, error) {
	code = normalizeScanCode(code)
	if code == "" {
		return nil, ErrScanCodeRequired
	}
	order, err := s.orderRepo.GetByTrackingCode(code)
	if err != nil {
		return nil, err
	}
	if order != nil {
		return order, nil
	}
	if !s.legacyLookup {
		return nil, ErrOrderNotFound
	}

	if id, parseErr := strconv.ParseUint(code, 10, 64); parseErr == nil {
		order, err = s.orderRepo.GetByID(uint(id))
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, ErrOrderNotFound
		}
		logger.Infow("scan_legacy_id_match", "order_id", order.ID)
		return order, nil
	}

	if len(code) < legacyOrderNoMinPrefix {
		return nil, ErrOrderNotFound
	}
	matches, err := s.orderRepo.ListByOrderNoPrefix(code, 2)
	if err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		if len(matches) > 1 {
			logger.Warnw("scan_legacy_prefix_ambiguous", "prefix", code)
		}
		return nil, ErrOrderNotFound
	}
	logger.Infow("scan_legacy_prefix_match", "order_id", matches[0].ID)
	return &matches[0], nil
}

// BackfillTrackingCodes 为缺少追踪码的历史订单补写追踪码，返回补写数量
func (s *ScanService) BackfillTrackingCodes(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	filled := 0
	for {
		if err := ctx.Err(); err != nil {
			return filled, err
		}
		orders, err := s.orderRepo.ListMissingTrackingCode(backfillBatchSize)
		if err != nil {
			return filled, err
		}
		if len(orders) == 0 {
			break
		}
		batchFilled := 0
		for _, order := range orders {
			ok, err := s.assignTrackingCode(order.ID)
			if err != nil {
				logger.Warnw("tracking_code_backfill_failed", "order_id", order.ID, "error", err)
				continue
			}
			if ok {
				batchFilled++
			}
		}
		filled += batchFilled
		if batchFilled == 0 {
			break
		}
	}
	if filled > 0 {
		logger.Infow("tracking_code_backfill_done", "count", filled)
	}
	return filled, nil
}

func (s *ScanService) assignTrackingCode(orderID uint) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < backfillMaxAttempts; attempt++ {
		code, err := generateTrackingCode()
		if err != nil {
			return false, err
		}
		ok, err := s.orderRepo.SetTrackingCode(orderID, code)
		if err == nil {
			return ok, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, err
		}
		lastErr = err
	}
	return false, lastErr
}
