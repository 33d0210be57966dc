package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshTokenRepository stores long-lived session tokens. Rotation deletes
// the presented row and inserts a fresh one.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	return translateErr(GetDB(ctx, r.db).Create(token).Error)
}

func (r *refreshTokenRepository) FindByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var stored model.RefreshToken
	if err := GetDB(ctx, r.db).First(&stored, "token = ?", token).Error; err != nil {
		return nil, translateErr(err)
	}
	return &stored, nil
}

func (r *refreshTokenRepository) Delete(ctx context.Context, token string) error {
	return translateErr(GetDB(ctx, r.db).
		Where("token = ?", token).
		Delete(&model.RefreshToken{}).Error)
}

// DeleteForUser revokes every session of one account (offboarding).
func (r *refreshTokenRepository) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	return translateErr(GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Delete(&model.RefreshToken{}).Error)
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context) error {
	return translateErr(GetDB(ctx, r.db).
		Where("expires_at < ?", time.Now()).
		Delete(&model.RefreshToken{}).Error)
}
