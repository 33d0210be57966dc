package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/projection"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for request validation

type RegisterRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"required,min=8"`
}

type CreateUserRequest struct {
	Email    string   `json:"email" binding:"omitempty,email"`
	Phone    string   `json:"phone"`
	FullName string   `json:"full_name"`
	Password string   `json:"password" binding:"required,min=8"`
	Roles    []string `json:"roles"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is the API-facing account shape. Roles flatten to names via a
// registered transform; everything else copies field-by-field.
type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           *string   `json:"email"`
	Phone           *string   `json:"phone"`
	FullName        string    `json:"full_name"`
	IsActive        bool      `json:"is_active"`
	IsEmailVerified bool      `json:"is_email_verified"`
	IsPhoneVerified bool      `json:"is_phone_verified"`
	Roles           []string  `json:"roles"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// userProjector flattens the role relation from the raw record, not from the
// copied scalars.
var userProjector = projection.New[model.User, UserResponse]().
	Transform("Roles", func(u *model.User) any {
		names := make([]string, 0, len(u.Roles))
		for _, r := range u.Roles {
			names = append(names, r.Name)
		}
		return names
	})

// UserService defines the business logic around accounts and sessions.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPairResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	PurgeExpiredSessions(ctx context.Context) error
	GetUser(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	ListUsers(ctx context.Context, offset, limit int) (projection.Page[UserResponse], error)
	UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actorID, id uuid.UUID) error
}

type userService struct {
	users    repository.UserRepository
	roles    RoleService
	tx       repository.TransactionManager
	sessions repository.RefreshTokenRepository
}

func NewUserService(users repository.UserRepository, roles RoleService, tokens repository.RefreshTokenRepository, tx repository.TransactionManager) UserService {
	return &userService{users: users, roles: roles, tx: tx, sessions: tokens}
}

// JWTSecret is the single source of the signing key: token issuance, the
// auth middleware, and the websocket handshake all verify against it.
func JWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

func signAccessToken(userID uuid.UUID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	return token.SignedString(JWTSecret())
}

func newRefreshTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Register creates a self-service account carrying the customer role.
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	return s.createAccount(ctx, req.Email, req.Phone, req.FullName, req.Password, []string{model.RoleCustomer})
}

// CreateUser is the admin-provisioning path; requested roles are applied
// atomically and unknown ones abort the whole creation.
func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{model.RoleCustomer}
	}
	return s.createAccount(ctx, req.Email, req.Phone, req.FullName, req.Password, roles)
}

func (s *userService) createAccount(ctx context.Context, email, phone, fullName, password string, roleNames []string) (*UserResponse, error) {
	if email == "" && phone == "" {
		return nil, fmt.Errorf("%w: email or phone is required", apperr.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		FullName: fullName,
		Password: string(hashed),
		IsActive: true,
	}
	if email != "" {
		user.Email = &email
	}
	if phone != "" {
		user.Phone = &phone
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			return err
		}
		_, err := s.roles.ReplaceRoles(txCtx, user.ID, user.ID, roleNames)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.GetUser(ctx, user.ID)
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error) {
	var user *model.User
	var err error
	switch {
	case req.Email != "":
		user, err = s.users.GetByEmail(ctx, req.Email)
	case req.Phone != "":
		user, err = s.users.GetByPhone(ctx, req.Phone)
	default:
		return nil, fmt.Errorf("%w: email or phone is required", apperr.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrForbidden)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is inactive", apperr.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrForbidden)
	}
	return s.issueTokens(ctx, user.ID)
}

func (s *userService) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPairResponse, error) {
	access, err := signAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	value, err := newRefreshTokenValue()
	if err != nil {
		return nil, err
	}
	refresh := &model.RefreshToken{
		UserID:    userID,
		Token:     value,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	if err := s.sessions.Create(ctx, refresh); err != nil {
		return nil, err
	}
	return &TokenPairResponse{AccessToken: access, RefreshToken: value}, nil
}

// Refresh rotates the refresh token: the presented one is consumed and a new
// pair is issued.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPairResponse, error) {
	var pair *TokenPairResponse
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		stored, err := s.sessions.FindByToken(txCtx, refreshToken)
		if err != nil {
			return fmt.Errorf("%w: invalid refresh token", apperr.ErrForbidden)
		}
		if time.Now().After(stored.ExpiresAt) {
			_ = s.sessions.Delete(txCtx, stored.Token)
			return fmt.Errorf("%w: refresh token expired", apperr.ErrForbidden)
		}
		if err := s.sessions.Delete(txCtx, stored.Token); err != nil {
			return err
		}
		pair, err = s.issueTokens(txCtx, stored.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.Delete(ctx, refreshToken)
}

// PurgeExpiredSessions drops refresh tokens past their expiry. Run
// periodically; rows are also consumed lazily when presented.
func (s *userService) PurgeExpiredSessions(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := userProjector.One(user)
	return &res, nil
}

func (s *userService) ListUsers(ctx context.Context, offset, limit int) (projection.Page[UserResponse], error) {
	users, total, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return projection.Page[UserResponse]{}, err
	}
	return userProjector.PageOf(users, offset, limit, &total), nil
}

// UpdateUser applies only the fields present in the payload.
func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if req.Email != nil {
		if *req.Email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", apperr.ErrValidation)
		}
		changes["email"] = *req.Email
	}
	if req.Phone != nil {
		changes["phone"] = *req.Phone
	}
	if req.FullName != nil {
		changes["full_name"] = *req.FullName
	}
	if req.IsActive != nil {
		changes["is_active"] = *req.IsActive
	}

	if err := s.users.Update(ctx, user, changes); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, user.ID)
}

// DeleteUser offboards an account: role links, sessions, and the row go in
// one transaction. Emptying the role set first runs the registry's superuser
// guards, so the last superuser cannot be deleted and a superuser cannot
// delete themselves.
func (s *userService) DeleteUser(ctx context.Context, actorID, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.roles.ReplaceRoles(txCtx, actorID, id, nil); err != nil {
			return err
		}
		if err := s.sessions.DeleteForUser(txCtx, id); err != nil {
			return err
		}
		return s.users.Delete(txCtx, id)
	})
}
