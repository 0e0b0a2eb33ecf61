package mpesa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid   = errors.New("mpesa config invalid")
	ErrRequestInvalid  = errors.New("mpesa request invalid")
	ErrCallbackInvalid = errors.New("mpesa callback invalid")
)

// ResultCodeSuccess STK 回调成功结果码
const ResultCodeSuccess = 0

// 回调元数据字段名
const (
	MetaAmount          = "Amount"
	MetaReceiptNumber   = "MpesaReceiptNumber"
	MetaTransactionDate = "TransactionDate"
	MetaPhoneNumber     = "PhoneNumber"
)

// PushRequest STK 推送请求
type PushRequest struct {
	Phone       string
	Amount      decimal.Decimal
	OrderRef    string
	CallbackURL string
}

// PushResult STK 推送结果
type PushResult struct {
	MerchantRequestID string
	CheckoutRequestID string
	CustomerMessage   string
}

// Gateway STK 推送网关
type Gateway interface {
	InitiatePush(ctx context.Context, req PushRequest) (*PushResult, error)
}

// Config 网关配置
type Config struct {
	ShortCode       string `json:"short_code"`
	CallbackBaseURL string `json:"callback_base_url"`
}

// ValidatePushRequest 校验推送请求
func ValidatePushRequest(req PushRequest) error {
	if NormalizePhone(req.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrRequestInvalid)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrRequestInvalid)
	}
	if strings.TrimSpace(req.OrderRef) == "" {
		return fmt.Errorf("%w: order ref is required", ErrRequestInvalid)
	}
	return nil
}

// SandboxGateway 沙箱网关，仅生成请求号，不发起外部调用
type SandboxGateway struct {
	cfg Config
}

// NewSandboxGateway 创建沙箱网关
func NewSandboxGateway(cfg Config) (*SandboxGateway, error) {
	cfg.ShortCode = strings.TrimSpace(cfg.ShortCode)
	cfg.CallbackBaseURL = strings.TrimRight(strings.TrimSpace(cfg.CallbackBaseURL), "/")
	if cfg.ShortCode == "" {
		return nil, fmt.Errorf("%w: short_code is required", ErrConfigInvalid)
	}
	return &SandboxGateway{cfg: cfg}, nil
}

// InitiatePush 生成商户请求号与结账请求号
func (g *SandboxGateway) InitiatePush(ctx context.Context, req PushRequest) (*PushResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidatePushRequest(req); err != nil {
		return nil, err
	}
	return &PushResult{
		MerchantRequestID: fmt.Sprintf("%s-%s", g.cfg.ShortCode, uuid.NewString()),
		CheckoutRequestID: "ws_CO_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		CustomerMessage:   "Success. Request accepted for processing",
	}, nil
}

// NormalizePhone 统一为 2547XXXXXXXX 格式；无法识别时返回空串
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "+")
	phone = strings.ReplaceAll(phone, " ", "")
	if phone == "" {
		return ""
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return ""
		}
	}
	switch {
	case strings.HasPrefix(phone, "254") && len(phone) == 12:
		return phone
	case strings.HasPrefix(phone, "0") && len(phone) == 10:
		return "254" + phone[1:]
	case len(phone) == 9:
		return "254" + phone
	default:
		return ""
	}
}

// CallbackEnvelope STK 回调外层结构
type CallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

// StkCallback STK 回调内容
type StkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// CallbackMetadata 成功回调携带的元数据
type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

// CallbackItem 元数据项，Value 可能是数字或字符串
type CallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

// CallbackData 解析后的回调
type CallbackData struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	Amount            decimal.Decimal
	ReceiptNumber     string
	TransactionDate   string
	PhoneNumber       string
	Raw               map[string]interface{}
}

// Success 是否支付成功
func (d *CallbackData) Success() bool {
	return d != nil && d.ResultCode == ResultCodeSuccess
}

// ParseCallback 解析 STK 回调请求体
func ParseCallback(body []byte) (*CallbackData, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrCallbackInvalid)
	}
	var envelope CallbackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCallbackInvalid, err)
	}
	cb := envelope.Body.StkCallback
	checkoutID := strings.TrimSpace(cb.CheckoutRequestID)
	if checkoutID == "" {
		return nil, fmt.Errorf("%w: missing CheckoutRequestID", ErrCallbackInvalid)
	}
	raw := map[string]interface{}{}
	_ = json.Unmarshal(body, &raw)

	data := &CallbackData{
		MerchantRequestID: strings.TrimSpace(cb.MerchantRequestID),
		CheckoutRequestID: checkoutID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        strings.TrimSpace(cb.ResultDesc),
		Raw:               raw,
	}
	if cb.CallbackMetadata == nil {
		return data, nil
	}
	for _, item := range cb.CallbackMetadata.Item {
		value := metadataString(item.Value)
		switch item.Name {
		case MetaAmount:
			if amount, err := decimal.NewFromString(value); err == nil {
				data.Amount = amount
			}
		case MetaReceiptNumber:
			data.ReceiptNumber = value
		case MetaTransactionDate:
			data.TransactionDate = value
		case MetaPhoneNumber:
			data.PhoneNumber = value
		}
	}
	return data, nil
}

func metadataString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
