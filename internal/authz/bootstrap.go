package authz

import "github.com/sokomart/internal/constants"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
// buyer < seller；buyer < agent < manager < ceo < admin
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleBuyer,
			Policies: []Policy{
				{Object: constants.CapObjectBids, Action: constants.CapActionPlace},
				{Object: constants.CapObjectOrders, Action: constants.CapActionCreate},
			},
		},
		{
			Role:     constants.RoleSeller,
			Inherits: []string{constants.RoleBuyer},
			Policies: []Policy{
				{Object: constants.CapObjectListings, Action: constants.CapActionCreate},
			},
		},
		{
			Role:     constants.RoleAgent,
			Inherits: []string{constants.RoleBuyer},
			Policies: []Policy{
				{Object: constants.CapObjectStaff, Action: constants.CapActionAccess},
				{Object: constants.CapObjectFulfillment, Action: constants.CapActionAdvance},
				{Object: constants.CapObjectCODOrders, Action: constants.CapActionConfirmCash},
				{Object: constants.CapObjectFulfillmentEvents, Action: constants.CapActionRead},
			},
		},
		{
			Role:     constants.RoleManager,
			Inherits: []string{constants.RoleAgent},
			Policies: []Policy{
				{Object: constants.CapObjectFulfillmentAny, Action: constants.CapActionAdvance},
				{Object: constants.CapObjectFulfillment, Action: constants.CapActionCancel},
				{Object: constants.CapObjectFulfillment, Action: constants.CapActionAssign},
				{Object: constants.CapObjectListingModeration, Action: constants.CapActionApprove},
			},
		},
		{
			Role:     constants.RoleCEO,
			Inherits: []string{constants.RoleManager},
		},
		{
			Role:     constants.RoleAdmin,
			Inherits: []string{constants.RoleCEO},
		},
	}
}

func knownCapabilities() []Capability {
	seen := make(map[Capability]struct{})
	result := make([]Capability, 0, 16)
	for _, seed := range BuiltinRoleSeeds() {
		for _, policy := range seed.Policies {
			capability := Capability{Object: NormalizeObject(policy.Object), Action: NormalizeAction(policy.Action)}
			if _, ok := seen[capability]; ok {
				continue
			}
			seen[capability] = struct{}{}
			result = append(result, capability)
		}
	}
	return result
}

// BootstrapBuiltinRoles 写入预置角色矩阵，重复执行不产生重复规则
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if err := s.inherit(role, parentRole); err != nil {
				return err
			}
		}
		for _, policy := range seed.Policies {
			if err := s.allow(role, policy); err != nil {
				return err
			}
		}
	}
	return nil
}
