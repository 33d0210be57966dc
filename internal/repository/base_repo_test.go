package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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
		&model.Template{},
		&model.Wedding{},
		&model.Guest{},
	))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	email := uuid.NewString() + "@example.com"
	user := &model.User{Email: &email, FullName: "Test User", Password: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestWedding(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *model.Wedding {
	t.Helper()
	w := &model.Wedding{
		UserID:     ownerID,
		Status:     model.WeddingStatusDraft,
		ConfigData: json.RawMessage(`{}`),
	}
	require.NoError(t, db.Create(w).Error)
	return w
}

// The schema must migrate and generate ids on any dialect: primary keys are
// assigned client-side by the BeforeCreate hooks, with no engine-specific
// column default in the DDL.
func TestCreateAssignsIDsClientSide(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db)
	assert.NotEqual(t, uuid.Nil, owner.ID)

	w := newTestWedding(t, db, owner.ID)
	assert.NotEqual(t, uuid.Nil, w.ID)

	tpl := &model.Template{Name: "Minimal"}
	require.NoError(t, NewRepo[model.Template](db).Create(ctx, tpl))
	assert.NotEqual(t, uuid.Nil, tpl.ID)
}

func TestSoftDeleteHidesRowFromDefaultReads(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, db)
	repo := NewRepo[model.Wedding](db)

	w := newTestWedding(t, db, owner.ID)
	require.NoError(t, repo.Remove(ctx, w.ID))

	_, err := repo.Get(ctx, w.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	items, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, items)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIncludeDeletedRevealsSoftDeletedRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, db)
	repo := NewRepo[model.Wedding](db)

	w := newTestWedding(t, db, owner.ID)
	require.NoError(t, repo.Remove(ctx, w.ID))

	got, err := repo.Get(ctx, w.ID, IncludeDeleted())
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	items, err := repo.List(ctx, 0, 10, IncludeDeleted())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDoubleSoftDeleteKeepsFirstTimestamp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, db)
	repo := NewRepo[model.Wedding](db)

	w := newTestWedding(t, db, owner.ID)
	require.NoError(t, repo.Remove(ctx, w.ID))

	first, err := repo.Get(ctx, w.ID, IncludeDeleted())
	require.NoError(t, err)
	require.NotNil(t, first.DeletedAt)

	// Second delete is a no-op, not an error, and the stamp survives.
	require.NoError(t, repo.Remove(ctx, w.ID))

	second, err := repo.Get(ctx, w.ID, IncludeDeleted())
	require.NoError(t, err)
	require.NotNil(t, second.DeletedAt)
	assert.Equal(t, first.DeletedAt.UnixNano(), second.DeletedAt.UnixNano())
}

func TestRemoveMissingRowReturnsNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := NewRepo[model.Wedding](db).Remove(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = NewRepo[model.Template](db).Remove(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestHardDeleteForNonSoftDeletableEntity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewRepo[model.Template](db)

	tpl := &model.Template{Name: "Classic"}
	require.NoError(t, repo.Create(ctx, tpl))
	require.NoError(t, repo.Remove(ctx, tpl.ID))

	// Gone for real: no read option brings it back.
	_, err := repo.Get(ctx, tpl.ID, IncludeDeleted())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, repo.Remove(ctx, tpl.ID), apperr.ErrNotFound)
}

func TestUpdateTouchesOnlyGivenFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, db)
	repo := NewRepo[model.Wedding](db)

	w := newTestWedding(t, db, owner.ID)
	slug := "our-big-day"
	require.NoError(t, db.Model(w).Update("slug", slug).Error)

	require.NoError(t, repo.Update(ctx, w, map[string]any{"status": model.WeddingStatusPublished}))

	got, err := repo.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, model.WeddingStatusPublished, got.Status)
	require.NotNil(t, got.Slug)
	assert.Equal(t, slug, *got.Slug)
}

func TestUpdateWithNoChangesIsNoOp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, db)
	repo := NewRepo[model.Wedding](db)

	w := newTestWedding(t, db, owner.ID)
	assert.NoError(t, repo.Update(ctx, w, map[string]any{}))
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, db)
	repo := NewRepo[model.Wedding](db)
	tm := NewTransactionManager(db)

	sentinel := errors.New("boom")
	err := tm.RunInTx(ctx, func(txCtx context.Context) error {
		w := &model.Wedding{UserID: owner.ID, Status: model.WeddingStatusDraft}
		if err := repo.Create(txCtx, w); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunInTxCommitsAndSharesConnection(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newTestUser(t, db)
	repo := NewRepo[model.Wedding](db)
	tm := NewTransactionManager(db)

	var id uuid.UUID
	err := tm.RunInTx(ctx, func(txCtx context.Context) error {
		w := &model.Wedding{UserID: owner.ID, Status: model.WeddingStatusDraft}
		if err := repo.Create(txCtx, w); err != nil {
			return err
		}
		id = w.ID
		// Visible inside the same transaction before commit.
		_, err := repo.Get(txCtx, w.ID)
		return err
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.UserID)
}
