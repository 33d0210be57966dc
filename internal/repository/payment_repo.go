package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentRepository wraps the generic base with transaction-id lookups.
// Payments are not soft-deletable and are never removed.
type PaymentRepository interface {
	Get(ctx context.Context, id uuid.UUID, opts ...ReadOption) (*model.Payment, error)
	List(ctx context.Context, offset, limit int, opts ...ReadOption) ([]model.Payment, error)
	Count(ctx context.Context, opts ...ReadOption) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.Payment, int64, error)
	FindByTransactionID(ctx context.Context, txID string) (*model.Payment, error)
	Create(ctx context.Context, payment *model.Payment) error
	Update(ctx context.Context, payment *model.Payment, changes map[string]any) error
}

type paymentRepository struct {
	*Repo[model.Payment]
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{Repo: NewRepo[model.Payment](db), db: db}
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.Payment, int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&model.Payment{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, translateErr(err)
	}

	var payments []model.Payment
	q := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&payments).Error; err != nil {
		return nil, 0, translateErr(err)
	}
	return payments, total, nil
}

func (r *paymentRepository) FindByTransactionID(ctx context.Context, txID string) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).First(&payment, "transaction_id = ?", txID).Error; err != nil {
		return nil, translateErr(err)
	}
	return &payment, nil
}
