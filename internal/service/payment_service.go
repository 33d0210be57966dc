package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/projection"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreatePaymentRequest struct {
	Amount        string          `json:"amount" binding:"required"`
	Currency      string          `json:"currency"`
	TransactionID string          `json:"transaction_id" binding:"required"`
	Metadata      json.RawMessage `json:"metadata"`
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PaymentWebhookRequest is the gateway callback payload: the payment is
// addressed by the gateway's transaction id, not our row id.
type PaymentWebhookRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Status        string `json:"status" binding:"required"`
}

type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	Metadata      json.RawMessage `json:"metadata"`
	CreatedAt     time.Time       `json:"created_at"`
}

var paymentProjector = projection.New[model.Payment, PaymentResponse]()

func validPaymentStatus(status string) bool {
	switch status {
	case model.PaymentStatusPending, model.PaymentStatusCompleted,
		model.PaymentStatusFailed, model.PaymentStatusRefunded:
		return true
	}
	return false
}

// --- Interface ---

type PaymentService interface {
	Create(ctx context.Context, principal *model.User, req CreatePaymentRequest) (*PaymentResponse, error)
	Get(ctx context.Context, principal *model.User, id uuid.UUID) (*PaymentResponse, error)
	ListByUser(ctx context.Context, principal *model.User, userID uuid.UUID, offset, limit int) (projection.Page[PaymentResponse], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req UpdatePaymentStatusRequest) (*PaymentResponse, error)
	UpdateStatusByTransaction(ctx context.Context, req PaymentWebhookRequest) (*PaymentResponse, error)
}

type paymentService struct {
	payments repository.PaymentRepository
	tx       repository.TransactionManager
}

func NewPaymentService(payments repository.PaymentRepository, tx repository.TransactionManager) PaymentService {
	return &paymentService{payments: payments, tx: tx}
}

// --- Implementation ---

func (s *paymentService) Create(ctx context.Context, principal *model.User, req CreatePaymentRequest) (*PaymentResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid amount %q", apperr.ErrValidation, req.Amount)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount cannot be negative", apperr.ErrValidation)
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	payment := &model.Payment{
		UserID:        principal.ID,
		Amount:        amount,
		Currency:      currency,
		Status:        model.PaymentStatusPending,
		TransactionID: req.TransactionID,
		Metadata:      req.Metadata,
	}
	// Duplicate transaction ids surface as Conflict from the unique index.
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	res := paymentProjector.One(payment)
	return &res, nil
}

func (s *paymentService) Get(ctx context.Context, principal *model.User, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.UserID != principal.ID {
		if err := Decide(principal, CapPaymentsRead); err != nil {
			return nil, err
		}
	}
	res := paymentProjector.One(payment)
	return &res, nil
}

func (s *paymentService) ListByUser(ctx context.Context, principal *model.User, userID uuid.UUID, offset, limit int) (projection.Page[PaymentResponse], error) {
	if userID != principal.ID {
		if err := Decide(principal, CapPaymentsRead); err != nil {
			return projection.Page[PaymentResponse]{}, err
		}
	}
	payments, total, err := s.payments.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return projection.Page[PaymentResponse]{}, err
	}
	return paymentProjector.PageOf(payments, offset, limit, &total), nil
}

// UpdateStatus is the webhook/admin path for settling or refunding.
func (s *paymentService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdatePaymentStatusRequest) (*PaymentResponse, error) {
	if !validPaymentStatus(req.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", apperr.ErrValidation, req.Status)
	}
	var updated *model.Payment
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		payment, err := s.payments.Get(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.payments.Update(txCtx, payment, map[string]any{"status": req.Status}); err != nil {
			return err
		}
		updated = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := paymentProjector.One(updated)
	return &res, nil
}

// UpdateStatusByTransaction settles a payment from a gateway callback. The
// lookup and the write share one transaction.
func (s *paymentService) UpdateStatusByTransaction(ctx context.Context, req PaymentWebhookRequest) (*PaymentResponse, error) {
	if !validPaymentStatus(req.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", apperr.ErrValidation, req.Status)
	}
	var updated *model.Payment
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		payment, err := s.payments.FindByTransactionID(txCtx, req.TransactionID)
		if err != nil {
			return err
		}
		if err := s.payments.Update(txCtx, payment, map[string]any{"status": req.Status}); err != nil {
			return err
		}
		updated = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := paymentProjector.One(updated)
	return &res, nil
}
