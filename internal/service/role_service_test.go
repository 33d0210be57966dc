package service

import (
	"context"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type serviceTestEnv struct {
	db    *gorm.DB
	users repository.UserRepository
	roles repository.RoleRepository
	tx    repository.TransactionManager
	svc   RoleService
}

func newServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.UserRole{},
		&model.User{},
		&model.Role{},
		&model.Capability{},
	))

	env := &serviceTestEnv{
		db:    db,
		users: repository.NewUserRepository(db),
		roles: repository.NewRoleRepository(db),
		tx:    repository.NewTransactionManager(db),
	}
	env.svc = NewRoleService(env.roles, env.users, env.tx)

	for _, name := range []string{model.RoleSuperuser, model.RoleCustomer, model.RoleEmployee} {
		_, err := env.roles.EnsureRole(context.Background(), name, "")
		require.NoError(t, err)
	}
	return env
}

func (e *serviceTestEnv) createUser(t *testing.T, roleNames ...string) *model.User {
	t.Helper()
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"
	user := &model.User{Email: &email, FullName: "Test", Password: "x", IsActive: true}
	require.NoError(t, e.users.Create(ctx, user))
	for _, name := range roleNames {
		require.NoError(t, e.svc.AssignRole(ctx, user.ID, name))
	}
	return user
}

func TestAssignRoleIsIdempotent(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t)

	require.NoError(t, env.svc.AssignRole(ctx, user.ID, model.RoleCustomer))
	require.NoError(t, env.svc.AssignRole(ctx, user.ID, model.RoleCustomer))

	names, err := env.svc.UserRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleCustomer}, names)
}

func TestAssignRoleUnknownUserOrRole(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t)

	assert.ErrorIs(t, env.svc.AssignRole(ctx, uuid.New(), model.RoleCustomer), apperr.ErrNotFound)
	assert.ErrorIs(t, env.svc.AssignRole(ctx, user.ID, "nonexistent"), apperr.ErrNotFound)
}

func TestRemoveRoleNotHeldIsNoOp(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, model.RoleSuperuser)
	user := env.createUser(t)

	assert.NoError(t, env.svc.RemoveRole(ctx, admin.ID, user.ID, model.RoleEmployee))
}

func TestRemoveLastSuperuserIsRejected(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	only := env.createUser(t, model.RoleSuperuser)
	actor := env.createUser(t, model.RoleEmployee)

	// Even a different actor cannot empty the superuser role.
	err := env.svc.RemoveRole(ctx, actor.ID, only.ID, model.RoleSuperuser)
	assert.ErrorIs(t, err, apperr.ErrInvariantViolation)

	names, lerr := env.svc.UserRoles(ctx, only.ID)
	require.NoError(t, lerr)
	assert.Contains(t, names, model.RoleSuperuser)
}

func TestSuperuserCannotRemoveOwnSuperuserRole(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	first := env.createUser(t, model.RoleSuperuser)
	env.createUser(t, model.RoleSuperuser) // a second holder exists

	// Self-demotion is forbidden regardless of how many holders remain.
	err := env.svc.RemoveRole(ctx, first.ID, first.ID, model.RoleSuperuser)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestRemoveSuperuserWithOtherHoldersSucceeds(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	first := env.createUser(t, model.RoleSuperuser)
	second := env.createUser(t, model.RoleSuperuser)

	require.NoError(t, env.svc.RemoveRole(ctx, first.ID, second.ID, model.RoleSuperuser))

	names, err := env.svc.UserRoles(ctx, second.ID)
	require.NoError(t, err)
	assert.NotContains(t, names, model.RoleSuperuser)
}

func TestReplaceRolesSwapsFullSet(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, model.RoleSuperuser)
	user := env.createUser(t, model.RoleCustomer)

	assigned, err := env.svc.ReplaceRoles(ctx, admin.ID, user.ID, []string{model.RoleEmployee})
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleEmployee}, assigned)

	names, err := env.svc.UserRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleEmployee}, names)
}

func TestReplaceRolesReportsAllMissingNames(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, model.RoleSuperuser)
	user := env.createUser(t, model.RoleCustomer)

	_, err := env.svc.ReplaceRoles(ctx, admin.ID, user.ID, []string{model.RoleEmployee, "ghost", "phantom"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	rnf, ok := IsRoleNotFound(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"ghost", "phantom"}, rnf.Missing)

	// All-or-nothing: the existing set is untouched.
	names, lerr := env.svc.UserRoles(ctx, user.ID)
	require.NoError(t, lerr)
	assert.Equal(t, []string{model.RoleCustomer}, names)
}

func TestReplaceRolesGuardsLastSuperuser(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	only := env.createUser(t, model.RoleSuperuser)
	actor := env.createUser(t, model.RoleEmployee)

	_, err := env.svc.ReplaceRoles(ctx, actor.ID, only.ID, []string{model.RoleCustomer})
	assert.ErrorIs(t, err, apperr.ErrInvariantViolation)

	names, lerr := env.svc.UserRoles(ctx, only.ID)
	require.NoError(t, lerr)
	assert.Contains(t, names, model.RoleSuperuser)
}

func TestReplaceRolesGuardsSelfDemotion(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	first := env.createUser(t, model.RoleSuperuser)
	env.createUser(t, model.RoleSuperuser)

	_, err := env.svc.ReplaceRoles(ctx, first.ID, first.ID, []string{model.RoleCustomer})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestReplaceRolesKeepingSuperuserSucceeds(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	only := env.createUser(t, model.RoleSuperuser)

	assigned, err := env.svc.ReplaceRoles(ctx, only.ID, only.ID, []string{model.RoleSuperuser, model.RoleEmployee})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{model.RoleSuperuser, model.RoleEmployee}, assigned)
}

func TestReplaceRolesToEmptySet(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, model.RoleSuperuser)
	user := env.createUser(t, model.RoleCustomer, model.RoleEmployee)

	assigned, err := env.svc.ReplaceRoles(ctx, admin.ID, user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, assigned)

	names, lerr := env.svc.UserRoles(ctx, user.ID)
	require.NoError(t, lerr)
	assert.Empty(t, names)
}

func TestEnsureRoleCreatesOnceAndValidatesName(t *testing.T) {
	env := newServiceTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.EnsureRole(ctx, "planner", "wedding planners")
	require.NoError(t, err)

	again, err := env.svc.EnsureRole(ctx, "planner", "wedding planners")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	_, err = env.svc.EnsureRole(ctx, "", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
