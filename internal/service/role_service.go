package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type RoleResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Capabilities []string  `json:"capabilities"`
}

type ReplaceRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

// --- Interface ---

// RoleService is the role registry. It owns the user ↔ role link set and the
// superuser invariants:
//
//   - the role named "superuser" must never drop to zero holders
//   - a superuser cannot strip their own superuser role, even when other
//     superusers exist
type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	EnsureRole(ctx context.Context, name, description string) (*RoleResponse, error)
	UserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error
	RemoveRole(ctx context.Context, actorID, userID uuid.UUID, roleName string) error
	ReplaceRoles(ctx context.Context, actorID, userID uuid.UUID, roleNames []string) ([]string, error)
}

type roleService struct {
	roles repository.RoleRepository
	users repository.UserRepository
	tx    repository.TransactionManager
}

func NewRoleService(roles repository.RoleRepository, users repository.UserRepository, tx repository.TransactionManager) RoleService {
	return &roleService{roles: roles, users: users, tx: tx}
}

// --- Implementation ---

func toRoleResponse(role model.Role) RoleResponse {
	caps := make([]string, 0, len(role.Capabilities))
	for _, c := range role.Capabilities {
		caps = append(caps, c.Code)
	}
	return RoleResponse{
		ID:           role.ID,
		Name:         role.Name,
		Description:  role.Description,
		Capabilities: caps,
	}
}

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}
	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) EnsureRole(ctx context.Context, name, description string) (*RoleResponse, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", apperr.ErrValidation)
	}
	role, err := s.roles.EnsureRole(ctx, name, description)
	if err != nil {
		return nil, err
	}
	res := toRoleResponse(*role)
	return &res, nil
}

func (s *roleService) UserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	roles, err := s.roles.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names, nil
}

// AssignRole creates the link row if absent. Assigning an already-held role
// is a no-op.
func (s *roleService) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.users.GetByID(txCtx, userID); err != nil {
			return err
		}
		role, err := s.roles.FindByName(txCtx, roleName)
		if err != nil {
			return err
		}
		exists, err := s.roles.LinkExists(txCtx, userID, role.ID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		return s.roles.CreateLink(txCtx, userID, role.ID)
	})
}

// RemoveRole deletes the link row. Two guards apply when the role is
// "superuser": the actor may not remove it from themselves, and the removal
// may not leave the role with zero holders. The holder count and the delete
// share one transaction so concurrent removals serialize on the link rows.
func (s *roleService) RemoveRole(ctx context.Context, actorID, userID uuid.UUID, roleName string) error {
	if roleName == model.RoleSuperuser && actorID == userID {
		return fmt.Errorf("%w: superusers cannot remove their own superuser role", apperr.ErrForbidden)
	}
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.users.GetByID(txCtx, userID); err != nil {
			return err
		}
		role, err := s.roles.FindByName(txCtx, roleName)
		if err != nil {
			return err
		}
		held, err := s.roles.LinkExists(txCtx, userID, role.ID)
		if err != nil {
			return err
		}
		if !held {
			return nil
		}
		if roleName == model.RoleSuperuser {
			holders, err := s.roles.CountHolders(txCtx, model.RoleSuperuser)
			if err != nil {
				return err
			}
			if holders <= 1 {
				return fmt.Errorf("%w: cannot remove the last superuser", apperr.ErrInvariantViolation)
			}
		}
		return s.roles.DeleteLink(txCtx, userID, role.ID)
	})
}

// ReplaceRoles atomically swaps the account's full role set. Every requested
// name is resolved before any write; unresolvable names abort the whole
// operation and are all reported. The superuser guards apply to what the
// swap would remove.
func (s *roleService) ReplaceRoles(ctx context.Context, actorID, userID uuid.UUID, roleNames []string) ([]string, error) {
	var assigned []string
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.users.GetByID(txCtx, userID); err != nil {
			return err
		}
		resolved, missing, err := s.roles.ResolveNames(txCtx, roleNames)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return &apperr.RoleNotFoundError{Missing: missing}
		}

		keep := make(map[string]bool, len(resolved))
		for _, role := range resolved {
			keep[role.Name] = true
		}
		current, err := s.roles.RolesForUser(txCtx, userID)
		if err != nil {
			return err
		}
		for _, role := range current {
			if role.Name != model.RoleSuperuser || keep[model.RoleSuperuser] {
				continue
			}
			if actorID == userID {
				return fmt.Errorf("%w: superusers cannot remove their own superuser role", apperr.ErrForbidden)
			}
			holders, err := s.roles.CountHolders(txCtx, model.RoleSuperuser)
			if err != nil {
				return err
			}
			if holders <= 1 {
				return fmt.Errorf("%w: cannot remove the last superuser", apperr.ErrInvariantViolation)
			}
		}

		if err := s.roles.DeleteLinksForUser(txCtx, userID); err != nil {
			return err
		}
		assigned = assigned[:0]
		for _, role := range resolved {
			if err := s.roles.CreateLink(txCtx, userID, role.ID); err != nil {
				return err
			}
			assigned = append(assigned, role.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if assigned == nil {
		assigned = []string{}
	}
	return assigned, nil
}

// IsRoleNotFound unwraps the replace-all missing-names detail for handlers.
func IsRoleNotFound(err error) (*apperr.RoleNotFoundError, bool) {
	var rnf *apperr.RoleNotFoundError
	if errors.As(err, &rnf) {
		return rnf, true
	}
	return nil, false
}
