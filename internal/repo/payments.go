package repo

import (
	"context"
	"errors"

	"github.com/LeventeLantos/payment-verification/internal/model"
)

var (
	ErrNotFound   = errors.New("payment not found")
	ErrNotPending = errors.New("payment is not pending")
)

type PaymentRepository interface {
	// ListPayments returns payments in creation order. An empty status lists all.
	ListPayments(ctx context.Context, status model.Status) ([]model.Payment, error)
	GetPayment(ctx context.Context, id string) (model.Payment, error)
	CreatePayment(ctx context.Context, p model.Payment) error

	// UpdatePaymentStatus and MarkVerified only move a pending payment; any
	// other current status yields ErrNotPending.
	UpdatePaymentStatus(ctx context.Context, id string, status model.Status) error
	MarkVerified(ctx context.Context, id string) error

	ListApprovedAdmins(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, u model.User) error
}
