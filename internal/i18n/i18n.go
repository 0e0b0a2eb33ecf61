package i18n

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	LocaleEnglish = "en-US"
	LocaleSwahili = "sw-KE"
)

var supportedTags = []language.Tag{
	language.MustParse(LocaleEnglish),
	language.MustParse(LocaleSwahili),
}

var (
	matcher = language.NewMatcher(supportedTags)

	defaultMu     sync.RWMutex
	defaultLocale = LocaleEnglish
)

// SetDefaultLocale 设置兜底语言
func SetDefaultLocale(locale string) {
	normalized := normalizeLocale(locale)
	if normalized == "" {
		return
	}
	defaultMu.Lock()
	defaultLocale = normalized
	defaultMu.Unlock()
}

// DefaultLocale 返回兜底语言
func DefaultLocale() string {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLocale
}

// ResolveLocale 从请求头协商语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale()
	}
	if locale := strings.TrimSpace(c.Query("lang")); locale != "" {
		if normalized := normalizeLocale(locale); normalized != "" {
			return normalized
		}
	}
	return ResolveAcceptLanguage(c.GetHeader("Accept-Language"))
}

// ResolveAcceptLanguage 解析 Accept-Language
func ResolveAcceptLanguage(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return DefaultLocale()
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale()
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale()
	}
	return supportedTags[index].String()
}

// T 翻译消息键，缺失时回退英文，再回退键本身
func T(locale, key string) string {
	if msg, ok := lookup(locale, key); ok {
		return msg
	}
	if msg, ok := lookup(LocaleEnglish, key); ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func lookup(locale, key string) (string, bool) {
	catalog, ok := catalogs[normalizeLocale(locale)]
	if !ok {
		return "", false
	}
	msg, ok := catalog[key]
	return msg, ok
}

func normalizeLocale(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return ""
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return ""
	}
	return supportedTags[index].String()
}
