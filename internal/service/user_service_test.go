package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type accountTestEnv struct {
	db    *gorm.DB
	users repository.UserRepository
	svc   UserService
}

func newAccountTestEnv(t *testing.T) *accountTestEnv {
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
		&model.RefreshToken{},
	))

	users := repository.NewUserRepository(db)
	roles := repository.NewRoleRepository(db)
	tokens := repository.NewRefreshTokenRepository(db)
	tx := repository.NewTransactionManager(db)
	roleSvc := NewRoleService(roles, users, tx)

	ctx := context.Background()
	for _, name := range []string{model.RoleSuperuser, model.RoleCustomer, model.RoleEmployee} {
		_, err := roles.EnsureRole(ctx, name, "")
		require.NoError(t, err)
	}

	return &accountTestEnv{
		db:    db,
		users: users,
		svc:   NewUserService(users, roleSvc, tokens, tx),
	}
}

func TestRegisterCreatesCustomerAccount(t *testing.T) {
	env := newAccountTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Register(ctx, RegisterRequest{
		Email:    "mai@example.com",
		FullName: "Mai",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Email)
	assert.Equal(t, "mai@example.com", *res.Email)
	assert.True(t, res.IsActive)
	assert.Equal(t, []string{model.RoleCustomer}, res.Roles)
}

func TestRegisterRequiresEmailOrPhone(t *testing.T) {
	env := newAccountTestEnv(t)

	_, err := env.svc.Register(context.Background(), RegisterRequest{Password: "password123"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	env := newAccountTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, RegisterRequest{Email: "dup@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = env.svc.Register(ctx, RegisterRequest{Email: "dup@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateUserWithUnknownRoleLeavesNoAccountBehind(t *testing.T) {
	env := newAccountTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateUser(ctx, CreateUserRequest{
		Email:    "staff@example.com",
		Password: "password123",
		Roles:    []string{model.RoleEmployee, "ghost"},
	})
	require.Error(t, err)

	rnf, ok := IsRoleNotFound(err)
	require.True(t, ok)
	assert.Equal(t, []string{"ghost"}, rnf.Missing)

	// Account creation and role assignment share one transaction.
	var n int64
	require.NoError(t, env.db.Model(&model.User{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestLoginWithEmailAndPassword(t *testing.T) {
	env := newAccountTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, RegisterRequest{Email: "login@example.com", Password: "password123"})
	require.NoError(t, err)

	pair, err := env.svc.Login(ctx, LoginRequest{Email: "login@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, err = env.svc.Login(ctx, LoginRequest{Email: "login@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = env.svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestInactiveAccountCannotLogin(t *testing.T) {
	env := newAccountTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Register(ctx, RegisterRequest{Email: "off@example.com", Password: "password123"})
	require.NoError(t, err)

	inactive := false
	_, err = env.svc.UpdateUser(ctx, created.ID, UpdateUserRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = env.svc.Login(ctx, LoginRequest{Email: "off@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newAccountTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, RegisterRequest{Email: "rotate@example.com", Password: "password123"})
	require.NoError(t, err)
	pair, err := env.svc.Login(ctx, LoginRequest{Email: "rotate@example.com", Password: "password123"})
	require.NoError(t, err)

	next, err := env.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The consumed token no longer works.
	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	env := newAccountTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, RegisterRequest{Email: "out@example.com", Password: "password123"})
	require.NoError(t, err)
	pair, err := env.svc.Login(ctx, LoginRequest{Email: "out@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, pair.RefreshToken))

	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

// The periodic cleanup drops only sessions past their expiry.
func TestPurgeExpiredSessionsKeepsLiveTokens(t *testing.T) {
	env := newAccountTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Register(ctx, RegisterRequest{Email: "purge@example.com", Password: "password123"})
	require.NoError(t, err)
	pair, err := env.svc.Login(ctx, LoginRequest{Email: "purge@example.com", Password: "password123"})
	require.NoError(t, err)

	stale := model.RefreshToken{
		UserID:    created.ID,
		Token:     "stale-session-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, env.db.Create(&stale).Error)

	require.NoError(t, env.svc.PurgeExpiredSessions(ctx))

	var remaining []model.RefreshToken
	require.NoError(t, env.db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, pair.RefreshToken, remaining[0].Token)
}

func TestUpdateUserAppliesOnlyProvidedFields(t *testing.T) {
	env := newAccountTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Register(ctx, RegisterRequest{
		Email:    "partial@example.com",
		FullName: "Before",
		Password: "password123",
	})
	require.NoError(t, err)

	name := "After"
	updated, err := env.svc.UpdateUser(ctx, created.ID, UpdateUserRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.FullName)
	require.NotNil(t, updated.Email)
	assert.Equal(t, "partial@example.com", *updated.Email)
	assert.True(t, updated.IsActive)

	empty := ""
	_, err = env.svc.UpdateUser(ctx, created.ID, UpdateUserRequest{Email: &empty})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

// Issued access tokens must verify against the same key every consumer
// (middleware, websocket handshake) reads through JWTSecret.
func TestAccessTokenVerifiesWithSharedSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")
	env := newAccountTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Register(ctx, RegisterRequest{Email: "jwt@example.com", Password: "password123"})
	require.NoError(t, err)
	pair, err := env.svc.Login(ctx, LoginRequest{Email: "jwt@example.com", Password: "password123"})
	require.NoError(t, err)

	token, err := jwt.Parse(pair.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return JWTSecret(), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, created.ID.String(), claims["sub"])
}

func TestDeleteUserRemovesAccountLinksAndSessions(t *testing.T) {
	env := newAccountTestEnv(t)
	ctx := context.Background()

	admin, err := env.svc.CreateUser(ctx, CreateUserRequest{
		Email:    "admin@example.com",
		Password: "password123",
		Roles:    []string{model.RoleSuperuser},
	})
	require.NoError(t, err)
	target, err := env.svc.Register(ctx, RegisterRequest{Email: "gone@example.com", Password: "password123"})
	require.NoError(t, err)
	_, err = env.svc.Login(ctx, LoginRequest{Email: "gone@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteUser(ctx, admin.ID, target.ID))

	_, err = env.svc.GetUser(ctx, target.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var links, sessions int64
	require.NoError(t, env.db.Model(&model.UserRole{}).Where("user_id = ?", target.ID).Count(&links).Error)
	require.NoError(t, env.db.Model(&model.RefreshToken{}).Where("user_id = ?", target.ID).Count(&sessions).Error)
	assert.Zero(t, links)
	assert.Zero(t, sessions)
}

func TestDeleteUserGuardsSuperusers(t *testing.T) {
	env := newAccountTestEnv(t)
	ctx := context.Background()

	only, err := env.svc.CreateUser(ctx, CreateUserRequest{
		Email:    "root@example.com",
		Password: "password123",
		Roles:    []string{model.RoleSuperuser},
	})
	require.NoError(t, err)
	other, err := env.svc.Register(ctx, RegisterRequest{Email: "other@example.com", Password: "password123"})
	require.NoError(t, err)

	// Deleting the last superuser would empty the role.
	err = env.svc.DeleteUser(ctx, other.ID, only.ID)
	assert.ErrorIs(t, err, apperr.ErrInvariantViolation)

	// A second holder unblocks deletion by someone else, but never by the
	// superuser on themselves.
	second, err := env.svc.CreateUser(ctx, CreateUserRequest{
		Email:    "root2@example.com",
		Password: "password123",
		Roles:    []string{model.RoleSuperuser},
	})
	require.NoError(t, err)

	err = env.svc.DeleteUser(ctx, second.ID, second.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, env.svc.DeleteUser(ctx, only.ID, second.ID))
}
