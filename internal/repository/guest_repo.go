package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuestRepository scopes guest reads to a wedding. Reads pass through the
// soft-delete visibility scope like every other read here.
type GuestRepository interface {
	Get(ctx context.Context, id uuid.UUID, opts ...ReadOption) (*model.Guest, error)
	ListByWedding(ctx context.Context, weddingID uuid.UUID, offset, limit int, opts ...ReadOption) ([]model.Guest, int64, error)
	CountByRSVP(ctx context.Context, weddingID uuid.UUID) (map[string]int64, error)
	Create(ctx context.Context, guest *model.Guest) error
	Update(ctx context.Context, guest *model.Guest, changes map[string]any) error
	Remove(ctx context.Context, id uuid.UUID) error
}

type guestRepository struct {
	*Repo[model.Guest]
	db *gorm.DB
}

func NewGuestRepository(db *gorm.DB) GuestRepository {
	return &guestRepository{Repo: NewRepo[model.Guest](db), db: db}
}

func (r *guestRepository) ListByWedding(ctx context.Context, weddingID uuid.UUID, offset, limit int, opts ...ReadOption) ([]model.Guest, int64, error) {
	cfg := applyReadOptions(opts)
	var zero model.Guest

	var total int64
	if err := visible(GetDB(ctx, r.db).Model(&zero), &zero, cfg).
		Where("wedding_id = ?", weddingID).
		Count(&total).Error; err != nil {
		return nil, 0, translateErr(err)
	}

	var guests []model.Guest
	q := visible(GetDB(ctx, r.db), &zero, cfg).
		Where("wedding_id = ?", weddingID).
		Order("name asc").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&guests).Error; err != nil {
		return nil, 0, translateErr(err)
	}
	return guests, total, nil
}

// CountByRSVP tallies visible guests per rsvp_status for a wedding dashboard.
func (r *guestRepository) CountByRSVP(ctx context.Context, weddingID uuid.UUID) (map[string]int64, error) {
	var zero model.Guest
	var rows []struct {
		RSVPStatus string
		N          int64
	}
	err := visible(GetDB(ctx, r.db).Model(&zero), &zero, readConfig{}).
		Select("rsvp_status, count(*) as n").
		Where("wedding_id = ?", weddingID).
		Group("rsvp_status").
		Scan(&rows).Error
	if err != nil {
		return nil, translateErr(err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.RSVPStatus] = row.N
	}
	return counts, nil
}
