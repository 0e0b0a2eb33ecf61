package service

import (
	"fmt"

	"github.com/sokomart/internal/logger"
)

// CapabilityChecker 能力校验（由 authz.Service 实现）
type CapabilityChecker interface {
	Can(role, object, action string) (bool, error)
}

// hasCapability 判定角色能力，校验出错视为无权限
func hasCapability(checker CapabilityChecker, actor Actor, object, action string) bool {
	if checker == nil || actor.ProfileID == 0 {
		return false
	}
	ok, err := checker.Can(actor.Role, object, action)
	if err != nil {
		logger.Warnw("capability_check_failed", "role", actor.Role, "object", object, "action", action, "error", err)
		return false
	}
	return ok
}

// requireCapability 缺少能力时返回 ErrActorForbidden
func requireCapability(checker CapabilityChecker, actor Actor, object, action string) error {
	if hasCapability(checker, actor, object, action) {
		return nil
	}
	return fmt.Errorf("%w: %s %s", ErrActorForbidden, action, object)
}
