package infra

import (
	"github.com/casbin/casbin/v2"
)

// NewEnforcer loads the RBAC model and the static role policy. Policies are
// reference data edited by operators, not by the application.
func NewEnforcer(modelPath, policyPath string) (*casbin.Enforcer, error) {
	enforcer, err := casbin.NewEnforcer(modelPath, policyPath)
	if err != nil {
		return nil, err
	}
	return enforcer, nil
}
