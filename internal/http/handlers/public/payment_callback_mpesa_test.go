package public

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sokomart/internal/constants"

	"github.com/gin-gonic/gin"
)

func TestCallbackRawBodyForLogTruncates(t *testing.T) {
	if got := callbackRawBodyForLog(nil); got != "" {
		t.Fatalf("empty body should log empty, got %q", got)
	}
	if got := callbackRawBodyForLog([]byte("  {\"a\":1}  ")); got != `{"a":1}` {
		t.Fatalf("short body should be trimmed only, got %q", got)
	}
	long := strings.Repeat("x", callbackLogValueLimit+10)
	got := callbackRawBodyForLog([]byte(long))
	if !strings.HasSuffix(got, "...(truncated)") || len(got) != callbackLogValueLimit+len("...(truncated)") {
		t.Fatalf("long body should be truncated, got len %d", len(got))
	}
}

func TestAcknowledgeMpesaCallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/mpesa/callback", nil)

	acknowledgeMpesaCallback(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var ack map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode ack failed: %v", err)
	}
	if ack["ResultCode"] != float64(constants.MpesaCallbackAckCode) || ack["ResultDesc"] != constants.MpesaCallbackAckDesc {
		t.Fatalf("unexpected ack: %v", ack)
	}
}
