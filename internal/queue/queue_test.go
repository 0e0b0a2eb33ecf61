package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sokomart/internal/config"
)

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueSMS(TaskOutbidSMS, SMSPayload{Phone: "+254700000001", Message: "hi"}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.EnqueueAuctionClose(AuctionClosePayload{ListingID: 1}, time.Now()); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
}

func TestNewSMSTaskRejectsUnknownType(t *testing.T) {
	if _, err := NewSMSTask("sms:unknown", SMSPayload{}); err == nil {
		t.Fatalf("expected unknown type error")
	}
	task, err := NewSMSTask(TaskOutbidSMS, SMSPayload{Phone: "+254700000001", Message: "outbid", Reference: "listing:5"})
	if err != nil {
		t.Fatalf("new sms task failed: %v", err)
	}
	var payload SMSPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if task.Type() != TaskOutbidSMS || payload.Reference != "listing:5" {
		t.Fatalf("unexpected task: %s %+v", task.Type(), payload)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[CriticalQueue] != 2 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
	if AuctionCloseTaskID(12) != "auction-close-12" {
		t.Fatalf("unexpected task id")
	}
}
