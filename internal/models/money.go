package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

const moneyScale = 2

// Money KES 金额，入库与序列化均保留两位小数
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 四舍五入到分
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(moneyScale)}
}

// NewMoneyFromInt 整数先令
func NewMoneyFromInt(shillings int64) Money {
	return Money{Decimal: decimal.NewFromInt(shillings)}
}

// Shillings 向上取整到整数先令，M-Pesa 只收整数金额
func (m Money) Shillings() int64 {
	return m.Decimal.Ceil().IntPart()
}

// Covers 实付是否不少于应付
func (m Money) Covers(due Money) bool {
	return m.Decimal.Round(moneyScale).GreaterThanOrEqual(due.Decimal.Round(moneyScale))
}

// String 两位小数
func (m Money) String() string {
	return m.Decimal.StringFixed(moneyScale)
}

// MarshalJSON 输出字符串，避免前端浮点误差
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON 接受 "1500.00" 或 1500
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	raw := b
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = []byte(s)
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return fmt.Errorf("invalid money %s: %w", string(b), err)
	}
	m.Decimal = d.Round(moneyScale)
	return nil
}

// Value 写库
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(moneyScale).Value()
}

// Scan 读库
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	m.Decimal = d.Round(moneyScale)
	return nil
}
