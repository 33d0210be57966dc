package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WeddingRepository adds owner- and slug-scoped reads on top of the generic
// CRUD base. All reads honor the soft-delete visibility scope.
type WeddingRepository interface {
	Get(ctx context.Context, id uuid.UUID, opts ...ReadOption) (*model.Wedding, error)
	List(ctx context.Context, offset, limit int, opts ...ReadOption) ([]model.Wedding, error)
	Count(ctx context.Context, opts ...ReadOption) (int64, error)
	ListByOwner(ctx context.Context, userID uuid.UUID, offset, limit int, opts ...ReadOption) ([]model.Wedding, int64, error)
	FindBySlug(ctx context.Context, slug string, opts ...ReadOption) (*model.Wedding, error)
	Create(ctx context.Context, wedding *model.Wedding) error
	Update(ctx context.Context, wedding *model.Wedding, changes map[string]any) error
	Remove(ctx context.Context, id uuid.UUID) error
}

type weddingRepository struct {
	*Repo[model.Wedding]
	db *gorm.DB
}

func NewWeddingRepository(db *gorm.DB) WeddingRepository {
	return &weddingRepository{Repo: NewRepo[model.Wedding](db), db: db}
}

func (r *weddingRepository) ListByOwner(ctx context.Context, userID uuid.UUID, offset, limit int, opts ...ReadOption) ([]model.Wedding, int64, error) {
	cfg := applyReadOptions(opts)
	var zero model.Wedding

	var total int64
	if err := visible(GetDB(ctx, r.db).Model(&zero), &zero, cfg).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, translateErr(err)
	}

	var weddings []model.Wedding
	q := visible(GetDB(ctx, r.db), &zero, cfg).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&weddings).Error; err != nil {
		return nil, 0, translateErr(err)
	}
	return weddings, total, nil
}

func (r *weddingRepository) FindBySlug(ctx context.Context, slug string, opts ...ReadOption) (*model.Wedding, error) {
	cfg := applyReadOptions(opts)
	var wedding model.Wedding
	err := visible(GetDB(ctx, r.db), &wedding, cfg).
		First(&wedding, "slug = ?", slug).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &wedding, nil
}
