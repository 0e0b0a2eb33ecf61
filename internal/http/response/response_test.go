package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorWithKindCarriesKindAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	ErrorWithKind(c, CodeConflict, "Conflict", "bid conflict")

	var resp struct {
		StatusCode int                    `json:"status_code"`
		Msg        string                 `json:"msg"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if resp.StatusCode != CodeConflict {
		t.Fatalf("want code %d, got %d", CodeConflict, resp.StatusCode)
	}
	if resp.Data["error_kind"] != "Conflict" || resp.Data["request_id"] != "req-1" {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
}

func TestErrorWithFieldsMergesFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorWithFields(c, CodeUnprocessable, "BidTooLow", "Minimum bid is KES 1200", gin.H{"success": false})

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if resp.Data["success"] != false || resp.Data["error_kind"] != "BidTooLow" {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(2, 20, 41)
	if p.TotalPage != 3 {
		t.Fatalf("want 3 pages, got %d", p.TotalPage)
	}
	if BuildPagination(1, 0, 10).TotalPage != 0 {
		t.Fatalf("zero page size should yield zero pages")
	}
}
