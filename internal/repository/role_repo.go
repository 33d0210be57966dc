package repository

import (
	"context"
	"errors"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleRepository owns roles and the user_roles link rows. Link rows are only
// ever touched here, as a side effect of assignment and removal.
type RoleRepository interface {
	EnsureRole(ctx context.Context, name, description string) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	ResolveNames(ctx context.Context, names []string) ([]model.Role, []string, error)
	ListAll(ctx context.Context) ([]model.Role, error)
	RolesForUser(ctx context.Context, userID uuid.UUID) ([]model.Role, error)
	LinkExists(ctx context.Context, userID, roleID uuid.UUID) (bool, error)
	CreateLink(ctx context.Context, userID, roleID uuid.UUID) error
	DeleteLink(ctx context.Context, userID, roleID uuid.UUID) error
	DeleteLinksForUser(ctx context.Context, userID uuid.UUID) error
	CountHolders(ctx context.Context, roleName string) (int64, error)
	FindOrCreateCapability(ctx context.Context, cap *model.Capability) error
	ReplaceCapabilities(ctx context.Context, roleID uuid.UUID, caps []model.Capability) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) EnsureRole(ctx context.Context, name, description string) (*model.Role, error) {
	role := model.Role{Name: name, Description: description}
	err := GetDB(ctx, r.db).
		Where("name = ?", name).
		FirstOrCreate(&role).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Preload("Capabilities").Where("name = ?", name).First(&role).Error; err != nil {
		return nil, translateErr(err)
	}
	return &role, nil
}

// ResolveNames looks every name up and reports the unresolvable ones. Callers
// treat a non-empty missing slice as all-or-nothing failure.
func (r *roleRepository) ResolveNames(ctx context.Context, names []string) ([]model.Role, []string, error) {
	var roles []model.Role
	if err := GetDB(ctx, r.db).Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, nil, translateErr(err)
	}
	found := make(map[string]bool, len(roles))
	for _, role := range roles {
		found[role.Name] = true
	}
	var missing []string
	for _, name := range names {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	return roles, missing, nil
}

func (r *roleRepository) ListAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := GetDB(ctx, r.db).Preload("Capabilities").Order("name asc").Find(&roles).Error; err != nil {
		return nil, translateErr(err)
	}
	return roles, nil
}

func (r *roleRepository) RolesForUser(ctx context.Context, userID uuid.UUID) ([]model.Role, error) {
	var roles []model.Role
	err := GetDB(ctx, r.db).
		Preload("Capabilities").
		Joins("JOIN user_roles ur ON ur.role_id = roles.id").
		Where("ur.user_id = ?", userID).
		Order("roles.name asc").
		Find(&roles).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return roles, nil
}

func (r *roleRepository) LinkExists(ctx context.Context, userID, roleID uuid.UUID) (bool, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&n).Error
	return n > 0, translateErr(err)
}

func (r *roleRepository) CreateLink(ctx context.Context, userID, roleID uuid.UUID) error {
	err := GetDB(ctx, r.db).Create(&model.UserRole{UserID: userID, RoleID: roleID}).Error
	// Concurrent assignment of the same role is fine: the link already exists.
	if err != nil && errors.Is(translateErr(err), apperr.ErrConflict) {
		return nil
	}
	return translateErr(err)
}

func (r *roleRepository) DeleteLink(ctx context.Context, userID, roleID uuid.UUID) error {
	return translateErr(GetDB(ctx, r.db).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&model.UserRole{}).Error)
}

func (r *roleRepository) DeleteLinksForUser(ctx context.Context, userID uuid.UUID) error {
	return translateErr(GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Delete(&model.UserRole{}).Error)
}

// CountHolders counts live link rows for a role name system-wide. Runs inside
// the caller's transaction so the last-superuser check and the removal see
// the same state.
func (r *roleRepository) CountHolders(ctx context.Context, roleName string) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", roleName).
		Count(&n).Error
	return n, translateErr(err)
}

func (r *roleRepository) FindOrCreateCapability(ctx context.Context, cap *model.Capability) error {
	return translateErr(GetDB(ctx, r.db).
		Where("code = ?", cap.Code).
		FirstOrCreate(cap).Error)
}

func (r *roleRepository) ReplaceCapabilities(ctx context.Context, roleID uuid.UUID, caps []model.Capability) error {
	db := GetDB(ctx, r.db)
	var role model.Role
	if err := db.First(&role, "id = ?", roleID).Error; err != nil {
		return translateErr(err)
	}
	return translateErr(db.Model(&role).Association("Capabilities").Replace(caps))
}
