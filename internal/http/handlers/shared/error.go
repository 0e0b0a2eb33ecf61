package shared

import (
	"errors"

	"github.com/sokomart/internal/http/response"
	"github.com/sokomart/internal/i18n"
	"github.com/sokomart/internal/logger"
	"github.com/sokomart/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondErrorWithKind(c, code, "", key, err)
}

// RespondErrorWithKind 返回带错误分类的国际化错误响应。
func RespondErrorWithKind(c *gin.Context, code int, kind, key string, err error, args ...interface{}) {
	respondError(c, code, kind, key, err, nil, args...)
}

func respondError(c *gin.Context, code int, kind, key string, err error, fields gin.H, args ...interface{}) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	if len(args) > 0 {
		msg = i18n.Sprintf(locale, key, args...)
	}
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"kind", kind,
			"message", msg,
			"error", err,
		)
	}
	response.ErrorWithFields(c, code, kind, msg, fields)
}

// MappedError 业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// kindResponseCodes 错误分类对应的业务状态码
var kindResponseCodes = map[string]int{
	service.KindInvalidInput:      response.CodeBadRequest,
	service.KindNotFound:          response.CodeNotFound,
	service.KindForbidden:         response.CodeForbidden,
	service.KindAuctionClosed:     response.CodeUnprocessable,
	service.KindIllegalTransition: response.CodeUnprocessable,
	service.KindBidTooLow:         response.CodeUnprocessable,
	service.KindConflict:          response.CodeConflict,
	service.KindTimeout:           response.CodeTimeout,
}

// kindFallbackKeys 没有专门文案时按分类使用的文案
var kindFallbackKeys = map[string]string{
	service.KindInvalidInput:      "error.bad_request",
	service.KindNotFound:          "error.not_found",
	service.KindForbidden:         "error.forbidden",
	service.KindAuctionClosed:     "error.auction_closed",
	service.KindIllegalTransition: "error.illegal_transition",
	service.KindConflict:          "error.conflict",
	service.KindTimeout:           "error.timeout",
}

// CodeForKind 返回错误分类对应的业务状态码
func CodeForKind(kind string) int {
	if code, ok := kindResponseCodes[kind]; ok {
		return code
	}
	return response.CodeInternal
}

// RespondMappedError 按规则表映射业务错误；未命中时按错误分类兜底，存储层错误不外露。
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackKey string) {
	RespondMappedErrorWithFields(c, err, rules, fallbackKey, nil)
}

// RespondMappedErrorWithFields 同 RespondMappedError，data 中额外附带 fields
func RespondMappedErrorWithFields(c *gin.Context, err error, rules []MappedError, fallbackKey string, fields gin.H) {
	kind := service.ErrorKind(err)

	var tooLow *service.BidTooLowError
	if errors.As(err, &tooLow) {
		respondError(c, CodeForKind(kind), kind, "error.bid_too_low", nil, fields, tooLow.Minimum)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			code := rule.Code
			if code == 0 {
				code = CodeForKind(kind)
			}
			respondError(c, code, kind, rule.Key, nil, fields)
			return
		}
	}
	if key, ok := kindFallbackKeys[kind]; ok {
		var logged error
		if kind == service.KindTimeout {
			logged = err
		}
		respondError(c, CodeForKind(kind), kind, key, logged, fields)
		return
	}
	if fallbackKey == "" {
		fallbackKey = "error.internal"
	}
	respondError(c, response.CodeInternal, "", fallbackKey, err, fields)
}

// ConcatMappedErrors 合并多组映射规则
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}
