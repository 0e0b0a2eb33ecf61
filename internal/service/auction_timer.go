package service

import (
	"time"

	"github.com/sokomart/internal/constants"
)

// RemainingTime 拍卖剩余时间
type RemainingTime struct {
	Hours        int64 `json:"hours"`
	Minutes      int64 `json:"minutes"`
	Seconds      int64 `json:"seconds"`
	TotalSeconds int64 `json:"total_seconds"`
	IsExpired    bool  `json:"is_expired"`
}

// AuctionTimer 商品详情中嵌入的计时信息（按服务端时间计算）
type AuctionTimer struct {
	EndTime   time.Time     `json:"end_time"`
	ServerNow time.Time     `json:"server_now"`
	Remaining RemainingTime `json:"remaining"`
	Urgency   string        `json:"urgency"`
}

// ComputeRemainingTime 计算剩余时间；不足一秒按一秒计，end <= now 才视为结束
func ComputeRemainingTime(now, end time.Time) RemainingTime {
	left := end.Sub(now)
	if left <= 0 {
		return RemainingTime{TotalSeconds: int64(left / time.Second), IsExpired: true}
	}
	total := int64((left + time.Second - 1) / time.Second)
	return RemainingTime{
		Hours:        total / 3600,
		Minutes:      (total % 3600) / 60,
		Seconds:      total % 60,
		TotalSeconds: total,
	}
}

// AuctionUrgency 根据剩余时间给出紧迫度
func AuctionUrgency(remaining RemainingTime) string {
	switch {
	case remaining.IsExpired:
		return constants.UrgencyEnded
	case remaining.TotalSeconds < constants.UrgencyCriticalSeconds:
		return constants.UrgencyCritical
	case remaining.TotalSeconds < constants.UrgencyUrgentSeconds:
		return constants.UrgencyUrgent
	default:
		return constants.UrgencyNormal
	}
}

// BuildAuctionTimer 构建计时信息，无截止时间时返回 nil
func BuildAuctionTimer(now time.Time, end *time.Time) *AuctionTimer {
	if end == nil {
		return nil
	}
	remaining := ComputeRemainingTime(now, *end)
	return &AuctionTimer{
		EndTime:   *end,
		ServerNow: now,
		Remaining: remaining,
		Urgency:   AuctionUrgency(remaining),
	}
}
