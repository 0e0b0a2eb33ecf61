package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestSetDefaultsCoversDomainSections(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	if cfg.Auction.MinIncrement != 100 {
		t.Fatalf("want min increment 100, got %d", cfg.Auction.MinIncrement)
	}
	if cfg.Auction.BidTimeout() != 5*time.Second {
		t.Fatalf("want bid timeout 5s, got %s", cfg.Auction.BidTimeout())
	}
	if !cfg.Fulfillment.LegacyLookup {
		t.Fatalf("legacy lookup should default to on")
	}
	if cfg.Feed.Driver != "redis" {
		t.Fatalf("unexpected feed driver: %s", cfg.Feed.Driver)
	}
	if cfg.Order.Currency != "KES" {
		t.Fatalf("unexpected currency: %s", cfg.Order.Currency)
	}
}

func TestTimeoutFallbacks(t *testing.T) {
	if got := (FulfillmentConfig{}).ScanTimeout(); got != 5*time.Second {
		t.Fatalf("want 5s fallback, got %s", got)
	}
	if got := (AuctionConfig{BidTimeoutMS: 250}).BidTimeout(); got != 250*time.Millisecond {
		t.Fatalf("want 250ms, got %s", got)
	}
}
