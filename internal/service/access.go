package service

import (
	"fmt"

	"backend/internal/apperr"
	"backend/internal/model"
)

// Capability codes used by the HTTP surface. Seeded at bootstrap alongside
// the built-in roles.
const (
	CapAdminWrite     = "admin-write"
	CapUsersRead      = "users.read"
	CapUsersWrite     = "users.write"
	CapUsersDelete    = "users.delete"
	CapRolesManage    = "roles.manage"
	CapWeddingsManage = "weddings.manage"
	CapWeddingsAudit  = "weddings.audit"
	CapPaymentsRead   = "payments.read"
	CapPaymentsWrite  = "payments.write"
	CapTemplatesWrite = "templates.write"
)

// Decide reports whether the principal's role set grants every required
// capability. It is pure over the already-loaded roles and capabilities:
// callers load the user fresh per request, so the decision always reflects
// live assignments. An inactive account or one with zero roles is denied.
//
// Superuser is derived, not stored: holding the role named "superuser" at
// decision time grants the universal capability set. There is no cached
// flag anywhere that could go stale after a role change.
func Decide(principal *model.User, required ...string) error {
	if principal == nil || !principal.IsActive {
		return apperr.ErrForbidden
	}
	if len(required) == 0 {
		return nil
	}
	if principal.HasRole(model.RoleSuperuser) {
		return nil
	}

	granted := make(map[string]bool)
	for _, role := range principal.Roles {
		for _, cap := range role.Capabilities {
			granted[cap.Code] = true
		}
	}
	for _, code := range required {
		if !granted[code] {
			return fmt.Errorf("%w: missing capability %q", apperr.ErrForbidden, code)
		}
	}
	return nil
}
