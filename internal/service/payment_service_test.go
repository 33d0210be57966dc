package service

import (
	"context"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentCreateRejectsBadAmounts(t *testing.T) {
	env := newDomainTestEnv(t)
	ctx := context.Background()
	owner := env.principal(t, model.RoleCustomer)

	_, err := env.payments.Create(ctx, owner, CreatePaymentRequest{Amount: "not-a-number", TransactionID: "tx-1"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.payments.Create(ctx, owner, CreatePaymentRequest{Amount: "-5.00", TransactionID: "tx-1"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPaymentDuplicateTransactionIDConflicts(t *testing.T) {
	env := newDomainTestEnv(t)
	ctx := context.Background()
	owner := env.principal(t, model.RoleCustomer)

	created, err := env.payments.Create(ctx, owner, CreatePaymentRequest{Amount: "120.50", TransactionID: "tx-dup"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, created.Status)
	assert.Equal(t, "USD", created.Currency)

	_, err = env.payments.Create(ctx, owner, CreatePaymentRequest{Amount: "99.00", TransactionID: "tx-dup"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestPaymentReadIsOwnerOrStaff(t *testing.T) {
	env := newDomainTestEnv(t)
	ctx := context.Background()
	owner := env.principal(t, model.RoleCustomer)
	stranger := env.principal(t, model.RoleCustomer)
	staff := env.principal(t, model.RoleEmployee)

	created, err := env.payments.Create(ctx, owner, CreatePaymentRequest{Amount: "10.00", TransactionID: "tx-read"})
	require.NoError(t, err)

	_, err = env.payments.Get(ctx, owner, created.ID)
	assert.NoError(t, err)

	_, err = env.payments.Get(ctx, stranger, created.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = env.payments.Get(ctx, staff, created.ID)
	assert.NoError(t, err)

	_, err = env.payments.ListByUser(ctx, stranger, owner.ID, 0, 10)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	page, err := env.payments.ListByUser(ctx, staff, owner.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
}

// Gateway callbacks address the row by transaction id, not by our primary key.
func TestPaymentWebhookSettlesByTransactionID(t *testing.T) {
	env := newDomainTestEnv(t)
	ctx := context.Background()
	owner := env.principal(t, model.RoleCustomer)

	created, err := env.payments.Create(ctx, owner, CreatePaymentRequest{Amount: "250.00", TransactionID: "tx-hook"})
	require.NoError(t, err)

	settled, err := env.payments.UpdateStatusByTransaction(ctx, PaymentWebhookRequest{
		TransactionID: "tx-hook",
		Status:        model.PaymentStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, settled.ID)
	assert.Equal(t, model.PaymentStatusCompleted, settled.Status)

	got, err := env.payments.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, got.Status)
}

func TestPaymentWebhookUnknownTransactionIsNotFound(t *testing.T) {
	env := newDomainTestEnv(t)
	ctx := context.Background()

	_, err := env.payments.UpdateStatusByTransaction(ctx, PaymentWebhookRequest{
		TransactionID: "tx-never-seen",
		Status:        model.PaymentStatusCompleted,
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPaymentWebhookRejectsInvalidStatus(t *testing.T) {
	env := newDomainTestEnv(t)
	ctx := context.Background()
	owner := env.principal(t, model.RoleCustomer)

	_, err := env.payments.Create(ctx, owner, CreatePaymentRequest{Amount: "30.00", TransactionID: "tx-bad-status"})
	require.NoError(t, err)

	_, err = env.payments.UpdateStatusByTransaction(ctx, PaymentWebhookRequest{
		TransactionID: "tx-bad-status",
		Status:        "settled-ish",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
