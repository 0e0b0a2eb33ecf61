package queue

import (
	"encoding/json"
	"fmt"

	"github.com/sokomart/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOutbidSMS 被超越出价短信
	TaskOutbidSMS = constants.TaskOutbidSMS
	// TaskAuctionWonSMS 竞拍成功短信
	TaskAuctionWonSMS = constants.TaskAuctionWonSMS
	// TaskOrderPlacedSMS 下单确认短信
	TaskOrderPlacedSMS = constants.TaskOrderPlacedSMS
	// TaskPaymentSMS 支付结果短信
	TaskPaymentSMS = constants.TaskPaymentSMS
	// TaskAuctionClose 拍卖结束
	TaskAuctionClose = constants.TaskAuctionClose
)

// SMSTaskTypes 所有短信任务类型
var SMSTaskTypes = []string{TaskOutbidSMS, TaskAuctionWonSMS, TaskOrderPlacedSMS, TaskPaymentSMS}

// SMSPayload 短信任务载荷（文案在入队时渲染）
type SMSPayload struct {
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	Reference string `json:"reference"`
}

// AuctionClosePayload 拍卖结束任务载荷
type AuctionClosePayload struct {
	ListingID uint `json:"listing_id"`
}

// NewSMSTask 创建短信任务
func NewSMSTask(taskType string, payload SMSPayload) (*asynq.Task, error) {
	if !isSMSTaskType(taskType) {
		return nil, fmt.Errorf("unknown sms task type: %s", taskType)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body), nil
}

// NewAuctionCloseTask 创建拍卖结束任务
func NewAuctionCloseTask(payload AuctionClosePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuctionClose, body), nil
}

func isSMSTaskType(taskType string) bool {
	for _, item := range SMSTaskTypes {
		if item == taskType {
			return true
		}
	}
	return false
}
