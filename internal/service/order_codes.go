package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	trackingCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	trackingCodeLength   = 10
	trackingCodePrefix   = "SK"
)

func generateOrderNo(prefix string, now time.Time) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "SK"
	}
	return fmt.Sprintf("%s%s%s", prefix, now.Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

// generateTrackingCode 生成大写追踪码，如 SK7KD9M2QXAB
func generateTrackingCode() (string, error) {
	var builder strings.Builder
	builder.Grow(len(trackingCodePrefix) + trackingCodeLength)
	builder.WriteString(trackingCodePrefix)
	max := big.NewInt(int64(len(trackingCodeAlphabet)))
	for i := 0; i < trackingCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(trackingCodeAlphabet[n.Int64()])
	}
	return builder.String(), nil
}

// normalizeScanCode 扫码输入统一为去空白的大写
func normalizeScanCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
