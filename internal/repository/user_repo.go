package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines data access for User entities.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User, changes map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	base *Repo[model.User]
	db   *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{base: NewRepo[model.User](db), db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.base.Create(ctx, user)
}

// GetByID loads the user with its live role set and capabilities. Every
// access decision starts here; nothing is cached between requests.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := GetDB(ctx, r.db).
		Preload("Roles.Capabilities").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := GetDB(ctx, r.db).
		Preload("Roles.Capabilities").
		First(&user, "email = ?", email).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	var user model.User
	err := GetDB(ctx, r.db).
		Preload("Roles.Capabilities").
		First(&user, "phone = ?", phone).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	total, err := r.base.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	var users []model.User
	q := GetDB(ctx, r.db).Preload("Roles").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, translateErr(err)
	}
	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User, changes map[string]any) error {
	return r.base.Update(ctx, user, changes)
}

// Delete hard-deletes the account row. Role links and sessions are cleaned up
// by the caller in the same transaction.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.base.Remove(ctx, id)
}
