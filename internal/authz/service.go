package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	casbinTableName = "casbin_rule"
	rolePrefix      = "role:"
	apiV1Prefix     = "/api/v1"
)

// 角色继承用 g，能力匹配支持路径通配与 * 动作
const capabilityModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// ErrUnavailable 授权服务未初始化
var ErrUnavailable = errors.New("authz service unavailable")

// Policy 角色直连能力
type Policy struct {
	Subject string `json:"subject,omitempty"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// Capability 能力（资源 + 动作）
type Capability struct {
	Object string `json:"object"`
	Action string `json:"action"`
}

// Service 角色能力判定，策略持久化在 casbin_rule 表
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务并加载已有策略
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}
	m, err := model.NewModelFromString(capabilityModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	return nil
}

// Can 判断角色是否具备某项能力，未知或空角色一律拒绝
func (s *Service) Can(role, object, action string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return false, nil
	}
	return s.enforcer.Enforce(subject, NormalizeObject(object), NormalizeAction(action))
}

// Capabilities 列出角色（含继承）拥有的预置能力
func (s *Service) Capabilities(role string) ([]Capability, error) {
	var result []Capability
	for _, capability := range knownCapabilities() {
		allowed, err := s.Can(role, capability.Object, capability.Action)
		if err != nil {
			return nil, err
		}
		if allowed {
			result = append(result, capability)
		}
	}
	return result, nil
}

// RolePolicies 查询角色直连能力，不含继承
func (s *Service) RolePolicies(role string) ([]Policy, error) {
	subject, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{Subject: rule[0], Object: rule[1], Action: rule[2]})
	}
	return policies, nil
}

func (s *Service) inherit(child, parent string) error {
	if _, err := s.enforcer.AddNamedGroupingPolicy("g", child, parent); err != nil {
		return fmt.Errorf("link role %s -> %s failed: %w", child, parent, err)
	}
	return nil
}

func (s *Service) allow(subject string, policy Policy) error {
	action := NormalizeAction(policy.Action)
	if action == "" {
		return fmt.Errorf("policy action is required for %s", subject)
	}
	if _, err := s.enforcer.AddPolicy(subject, NormalizeObject(policy.Object), action); err != nil {
		return fmt.Errorf("add policy for %s failed: %w", subject, err)
	}
	return nil
}

// NormalizeRole 角色名转 casbin 主体（role:<name>）
func NormalizeRole(role string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(role))
	name = strings.TrimPrefix(name, rolePrefix)
	if name == "" {
		return "", fmt.Errorf("role is required")
	}
	return rolePrefix + strings.ReplaceAll(name, " ", "_"), nil
}

// NormalizeObject 能力对象统一为不带 /api/v1 前缀的路径
func NormalizeObject(object string) string {
	path := "/" + strings.TrimLeft(strings.TrimSpace(object), "/")
	switch {
	case path == apiV1Prefix:
		return "/"
	case strings.HasPrefix(path, apiV1Prefix+"/"):
		return strings.TrimPrefix(path, apiV1Prefix)
	}
	return path
}

// NormalizeAction 动作统一大写
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
