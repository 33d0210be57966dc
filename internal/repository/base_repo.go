package repository

import (
	"context"
	"errors"
	"time"

	"backend/internal/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repo provides uniform CRUD over any entity type. Reads are routed through
// the soft-delete visibility scope; mutations each run in a single
// transaction and return the refreshed row.
type Repo[T any] struct {
	db *gorm.DB
}

// NewRepo returns a generic repository for T backed by db.
func NewRepo[T any](db *gorm.DB) *Repo[T] {
	return &Repo[T]{db: db}
}

// translateErr maps gorm errors to the shared taxonomy at the repository
// boundary so services never import gorm error values.
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.ErrConflict
	default:
		return err
	}
}

// Get fetches one row by id. Soft-deleted rows are invisible unless the
// caller passes IncludeDeleted.
func (r *Repo[T]) Get(ctx context.Context, id uuid.UUID, opts ...ReadOption) (*T, error) {
	cfg := applyReadOptions(opts)
	var out T
	if err := visible(GetDB(ctx, r.db), &out, cfg).First(&out, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &out, nil
}

// List returns a page of rows plus nothing else; callers needing a total run
// Count themselves.
func (r *Repo[T]) List(ctx context.Context, offset, limit int, opts ...ReadOption) ([]T, error) {
	cfg := applyReadOptions(opts)
	var items []T
	var zero T
	q := visible(GetDB(ctx, r.db), &zero, cfg).Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, translateErr(err)
	}
	return items, nil
}

// Count returns the number of visible rows.
func (r *Repo[T]) Count(ctx context.Context, opts ...ReadOption) (int64, error) {
	cfg := applyReadOptions(opts)
	var zero T
	var n int64
	if err := visible(GetDB(ctx, r.db).Model(&zero), &zero, cfg).Count(&n).Error; err != nil {
		return 0, translateErr(err)
	}
	return n, nil
}

// Create inserts entity and leaves it refreshed with server-assigned values
// (generated id, timestamps).
func (r *Repo[T]) Create(ctx context.Context, entity *T) error {
	return translateErr(GetDB(ctx, r.db).Create(entity).Error)
}

// Update applies only the keys present in changes to the already-fetched
// entity, then reloads it so defaults and timestamps are current. Unset
// fields are untouched.
func (r *Repo[T]) Update(ctx context.Context, entity *T, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(entity).Updates(changes)
		if res.Error != nil {
			return translateErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		return translateErr(tx.First(entity).Error)
	})
}

// Remove deletes by id. Soft-deletable entities are stamped, not removed;
// the stamp is guarded by `deleted_at IS NULL` so re-deleting an already
// deleted row is a no-op and the first timestamp survives. Everything else
// is hard-deleted. A missing id yields ErrNotFound either way.
func (r *Repo[T]) Remove(ctx context.Context, id uuid.UUID) error {
	var zero T
	if isSoftDeletable(&zero) {
		return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&zero).
				Where("id = ? AND deleted_at IS NULL", id).
				Update("deleted_at", time.Now().UTC())
			if res.Error != nil {
				return translateErr(res.Error)
			}
			if res.RowsAffected > 0 {
				return nil
			}
			var n int64
			if err := tx.Model(&zero).Where("id = ?", id).Count(&n).Error; err != nil {
				return translateErr(err)
			}
			if n == 0 {
				return apperr.ErrNotFound
			}
			return nil // already deleted, idempotent
		})
	}
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&zero)
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
