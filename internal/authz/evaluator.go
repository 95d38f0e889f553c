// Package authz decides whether an authenticated caller may reach an
// endpoint, based on the caller's role and the roles the route requires.
package authz

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const policyPackage = "octagram.authz"

const regoPolicy = `package octagram.authz

default allow = false

allow if {
	count(input.required_roles) == 0
}

allow if {
	input.role == input.required_roles[_]
}
`

// Evaluator answers role-based access questions.
type Evaluator interface {
	Allow(ctx context.Context, role string, requiredRoles []string) (bool, error)
	HealthCheck(ctx context.Context) error
}

// OPAEvaluator evaluates access policy using the in-process OPA Rego engine.
// The policy is compiled once at construction.
type OPAEvaluator struct {
	compiler *ast.Compiler
}

// NewOPAEvaluator compiles the access policy and returns an evaluator.
func NewOPAEvaluator() (*OPAEvaluator, error) {
	compiler, err := ast.CompileModules(map[string]string{"authz.rego": regoPolicy})
	if err != nil {
		return nil, fmt.Errorf("compile authz policy: %w", err)
	}
	return &OPAEvaluator{compiler: compiler}, nil
}

// Allow reports whether a caller with the given role may access a route that
// requires one of requiredRoles. An empty requiredRoles list means any
// authenticated caller is allowed.
func (e *OPAEvaluator) Allow(ctx context.Context, role string, requiredRoles []string) (bool, error) {
	if requiredRoles == nil {
		requiredRoles = []string{}
	}
	input := map[string]interface{}{
		"role":           role,
		"required_roles": requiredRoles,
	}
	q := rego.New(
		rego.Query("data."+policyPackage+".allow"),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval authz policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("authz query returned no result")
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("authz query returned non-boolean")
	}
	return allowed, nil
}

// HealthCheck verifies that the compiled policy evaluates. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	allowed, err := e.Allow(ctx, "User", nil)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("authz policy denied the trivial query")
	}
	return nil
}
