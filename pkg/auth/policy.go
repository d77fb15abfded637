package auth

import (
	"fmt"
	"sort"
	"strings"

	"taskhub-backend/pkg/models"
)

// Operation names one entry point of the API.
type Operation string

const (
	OpGetOrganizations   Operation = "getOrganizations"
	OpGetOrganization    Operation = "getOrganization"
	OpGetUsers           Operation = "getUsers"
	OpGetUser            Operation = "getUser"
	OpGetTasks           Operation = "getTasks"
	OpGetTask            Operation = "getTask"
	OpCreateOrganization Operation = "createOrganization"
	OpUpdateOrganization Operation = "updateOrganization"
	OpDeleteOrganization Operation = "deleteOrganization"
	OpRegister           Operation = "register"
	OpLogin              Operation = "login"
	OpUpdateUser         Operation = "updateUser"
	OpDeleteUser         Operation = "deleteUser"
	OpCreateTask         Operation = "createTask"
	OpUpdateTask         Operation = "updateTask"
	OpDeleteTask         Operation = "deleteTask"
)

// Operations lists every operation in declaration order.
var Operations = []Operation{
	OpGetOrganizations, OpGetOrganization, OpGetUsers, OpGetUser, OpGetTasks, OpGetTask,
	OpCreateOrganization, OpUpdateOrganization, OpDeleteOrganization,
	OpRegister, OpLogin, OpUpdateUser, OpDeleteUser,
	OpCreateTask, OpUpdateTask, OpDeleteTask,
}

// IsPublic reports whether op may be called without authentication.
func IsPublic(op Operation) bool {
	return op == OpRegister || op == OpLogin
}

// Policy decides which roles may call each authenticated operation and
// whether single-entity reads are confined to the caller's organization.
type Policy struct {
	rules             map[Operation][]models.Role
	TenantScopedReads bool
}

// DefaultPolicy gates user listing to admins and task creation to managers
// and admins. Every other authenticated operation is open to any role, and
// single-entity reads are not tenant scoped.
func DefaultPolicy() *Policy {
	return &Policy{
		rules: map[Operation][]models.Role{
			OpGetUsers:   {models.RoleAdmin},
			OpCreateTask: {models.RoleManager, models.RoleAdmin},
		},
	}
}

// ParsePolicy applies overrides of the form "op=Role,Role;op2=Role" on top of
// DefaultPolicy. An empty role list ("op=") opens the operation to any
// authenticated actor.
func ParsePolicy(overrides string, tenantScopedReads bool) (*Policy, error) {
	p := DefaultPolicy()
	p.TenantScopedReads = tenantScopedReads

	for _, entry := range strings.Split(overrides, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, list, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("policy entry %q: expected op=Role[,Role]", entry)
		}
		op := Operation(strings.TrimSpace(name))
		if !knownOperation(op) {
			return nil, fmt.Errorf("policy entry %q: unknown operation %q", entry, op)
		}
		if IsPublic(op) {
			return nil, fmt.Errorf("policy entry %q: %s is unauthenticated and cannot be gated", entry, op)
		}

		var roles []models.Role
		for _, r := range strings.Split(list, ",") {
			r = strings.TrimSpace(r)
			if r == "" {
				continue
			}
			role, err := models.ParseRole(r)
			if err != nil {
				return nil, fmt.Errorf("policy entry %q: %w", entry, err)
			}
			roles = append(roles, role)
		}
		p.rules[op] = roles
	}

	return p, nil
}

// Roles returns the roles allowed to call op. Nil means any authenticated actor.
func (p *Policy) Roles(op Operation) []models.Role {
	return p.rules[op]
}

// Authorize runs the guard for op.
func (p *Policy) Authorize(actor *models.Actor, op Operation) error {
	return Require(actor, p.rules[op]...)
}

// String renders the effective rules, e.g. for startup logging.
func (p *Policy) String() string {
	ops := make([]string, 0, len(p.rules))
	for op, roles := range p.rules {
		if len(roles) == 0 {
			continue
		}
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		ops = append(ops, fmt.Sprintf("%s=%s", op, strings.Join(names, ",")))
	}
	sort.Strings(ops)
	return strings.Join(ops, ";")
}

func knownOperation(op Operation) bool {
	for _, o := range Operations {
		if o == op {
			return true
		}
	}
	return false
}
