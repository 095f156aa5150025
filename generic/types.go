/*
Package generic provides the shared kernel used by every ERP domain package.

PURPOSE:
  HR, finance, inventory and procurement all need the same handful of
  building blocks: identifiers, the caller's identity, a clock and a
  unit of work. They live here so domain packages never import each other
  just to share a type.

KEY CONCEPTS IN THIS FILE (types.go):
  - ID: surrogate key of every persisted entity
  - Role / Actor: the authenticated caller and what it may do

DESIGN PRINCIPLES:
  1. Closed sets: roles and decisions are fixed enumerations parsed at the boundary
  2. No navigation graphs: entities reference each other by ID only

SEE ALSO:
  - errors.go: error kinds
  - store.go: unit of work
  - time.go: injectable clock
*/
package generic

import (
	"context"
	"fmt"
	"strings"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ID is a database surrogate key. Zero means "not persisted yet".
type ID = int64

// =============================================================================
// ROLES
// =============================================================================

type Role string

const (
	RoleAdmin              Role = "Admin"
	RoleHRManager          Role = "HRManager"
	RoleDepartmentManager  Role = "DepartmentManager"
	RoleFinanceManager     Role = "FinanceManager"
	RoleProcurementOfficer Role = "ProcurementOfficer"
	RoleInventoryManager   Role = "InventoryManager"
	RoleEmployee           Role = "Employee"
)

var allRoles = []Role{
	RoleAdmin, RoleHRManager, RoleDepartmentManager, RoleFinanceManager,
	RoleProcurementOfficer, RoleInventoryManager, RoleEmployee,
}

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range allRoles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", Validation("role", "unknown role %q", s)
}

// =============================================================================
// ACTOR - the authenticated caller
// =============================================================================

type Actor struct {
	UserID   ID
	Username string
	Roles    []Role
}

// Has reports whether the actor holds any of the given roles.
func (a Actor) Has(roles ...Role) bool {
	for _, have := range a.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (a Actor) String() string {
	return fmt.Sprintf("%s(%d)", a.Username, a.UserID)
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the caller stored by the authentication middleware.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// =============================================================================
// DECISION - the outcome an approver may choose
// =============================================================================

type Decision string

const (
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
)

// ParseDecision accepts Approved or Rejected, case-insensitively.
func ParseDecision(s string) (Decision, error) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), string(DecisionApproved)):
		return DecisionApproved, nil
	case strings.EqualFold(strings.TrimSpace(s), string(DecisionRejected)):
		return DecisionRejected, nil
	}
	return "", Validation("decision", "decision must be Approved or Rejected, got %q", s)
}
