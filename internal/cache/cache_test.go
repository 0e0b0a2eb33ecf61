package cache

import (
	"context"
	"testing"

	"github.com/sokomart/internal/config"
	"github.com/sokomart/internal/models"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	if Enabled() || Client() != nil {
		t.Fatalf("disabled cache should expose no client")
	}
	ctx := context.Background()
	if err := SetProfileAuthState(ctx, BuildProfileAuthState(&models.Profile{ID: 3, Role: "agent"})); err != nil {
		t.Fatalf("set on disabled cache should be noop: %v", err)
	}
	state, hit, err := GetProfileAuthState(ctx, 3)
	if err != nil || hit || state != nil {
		t.Fatalf("disabled cache should miss, got state=%v hit=%v err=%v", state, hit, err)
	}
}

func TestKeyJoinsWithPrefix(t *testing.T) {
	redisPrefix = "sk"
	if got := Key("feed", " listing:7 "); got != "sk:feed:listing:7" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := Key(); got != "sk" {
		t.Fatalf("empty key should be prefix, got %s", got)
	}
}

func TestBuildProfileAuthState(t *testing.T) {
	state := BuildProfileAuthState(&models.Profile{ID: 9, Role: "manager", Town: "Nakuru", Status: "active", TokenVersion: 4})
	if state.ProfileID != 9 || state.Role != "manager" || state.TokenVersion != 4 || state.Town != "Nakuru" {
		t.Fatalf("unexpected state: %+v", state)
	}
	if BuildProfileAuthState(nil) != nil {
		t.Fatalf("nil profile should build nil state")
	}
}
