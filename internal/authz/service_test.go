package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sokomart/internal/constants"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func TestBuiltinRoleHierarchy(t *testing.T) {
	svc := setupAuthzServiceTest(t)

	cases := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{constants.RoleBuyer, constants.CapObjectBids, constants.CapActionPlace, true},
		{constants.RoleBuyer, constants.CapObjectListings, constants.CapActionCreate, false},
		{constants.RoleSeller, constants.CapObjectBids, constants.CapActionPlace, true},
		{constants.RoleSeller, constants.CapObjectListings, constants.CapActionCreate, true},
		{constants.RoleSeller, constants.CapObjectFulfillment, constants.CapActionAdvance, false},
		{constants.RoleAgent, constants.CapObjectFulfillment, constants.CapActionAdvance, true},
		{constants.RoleAgent, constants.CapObjectFulfillmentAny, constants.CapActionAdvance, false},
		{constants.RoleAgent, constants.CapObjectFulfillment, constants.CapActionCancel, false},
		{constants.RoleAgent, constants.CapObjectCODOrders, constants.CapActionConfirmCash, true},
		{constants.RoleManager, constants.CapObjectFulfillmentAny, constants.CapActionAdvance, true},
		{constants.RoleManager, constants.CapObjectFulfillment, constants.CapActionAssign, true},
		{constants.RoleCEO, constants.CapObjectListingModeration, constants.CapActionApprove, true},
		{constants.RoleAdmin, constants.CapObjectFulfillment, constants.CapActionCancel, true},
		{constants.RoleAdmin, constants.CapObjectStaff, constants.CapActionAccess, true},
		{"", constants.CapObjectBids, constants.CapActionPlace, false},
		{"stranger", constants.CapObjectBids, constants.CapActionPlace, false},
	}
	for _, tc := range cases {
		got, err := svc.Can(tc.role, tc.object, strings.ToLower(tc.action))
		if err != nil {
			t.Fatalf("can %s %s %s failed: %v", tc.role, tc.object, tc.action, err)
		}
		if got != tc.want {
			t.Fatalf("can %s %s %s: want %v got %v", tc.role, tc.object, tc.action, tc.want, got)
		}
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	policies, err := svc.RolePolicies(constants.RoleAgent)
	if err != nil {
		t.Fatalf("get agent policies failed: %v", err)
	}
	if len(policies) != 4 {
		t.Fatalf("agent should keep 4 direct policies, got=%v", policies)
	}
}

func TestCapabilitiesIncludesInherited(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	caps, err := svc.Capabilities(constants.RoleManager)
	if err != nil {
		t.Fatalf("capabilities failed: %v", err)
	}
	found := map[Capability]bool{}
	for _, c := range caps {
		found[c] = true
	}
	if !found[Capability{Object: constants.CapObjectBids, Action: constants.CapActionPlace}] {
		t.Fatalf("manager should inherit bid placement from buyer: %v", caps)
	}
	if found[Capability{Object: constants.CapObjectListings, Action: constants.CapActionCreate}] {
		t.Fatalf("manager is not a seller: %v", caps)
	}
}

func TestNormalizeObjectStripsAPIPrefix(t *testing.T) {
	if got := NormalizeObject("/api/v1/staff"); got != "/staff" {
		t.Fatalf("unexpected object: %s", got)
	}
	if got := NormalizeObject("bids"); got != "/bids" {
		t.Fatalf("unexpected object: %s", got)
	}
	if got := NormalizeObject("/api/v1"); got != "/" {
		t.Fatalf("unexpected object: %s", got)
	}
}

func TestNormalizeRole(t *testing.T) {
	cases := map[string]string{
		"Agent":         "role:agent",
		" role:manager": "role:manager",
		"area manager":  "role:area_manager",
	}
	for in, want := range cases {
		got, err := NormalizeRole(in)
		if err != nil {
			t.Fatalf("normalize %q failed: %v", in, err)
		}
		if got != want {
			t.Fatalf("normalize %q: want %s got %s", in, want, got)
		}
	}
	for _, in := range []string{"", "  ", "role:"} {
		if _, err := NormalizeRole(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestNilServiceIsUnavailable(t *testing.T) {
	var svc *Service
	if _, err := svc.Can(constants.RoleBuyer, constants.CapObjectBids, constants.CapActionPlace); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
