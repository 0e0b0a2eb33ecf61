package feed

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event 变更推送事件
type Event struct {
	Type       string          `json:"type"`
	Topic      string          `json:"topic"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewEvent 构建事件，data 序列化为 JSON
func NewEvent(eventType, topic string, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Type:       eventType,
		Topic:      topic,
		Data:       raw,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// ListingTopic 商品主题
func ListingTopic(listingID uint) string {
	return fmt.Sprintf("listing:%d", listingID)
}

// OrderTopic 订单主题
func OrderTopic(orderID uint) string {
	return fmt.Sprintf("order:%d", orderID)
}
