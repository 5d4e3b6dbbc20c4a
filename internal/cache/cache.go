package cache

import "context"

// ReferenceLedger remembers which payment a bank reference has already
// approved, so one SMS can never confirm two payments.
type ReferenceLedger interface {
	Claim(ctx context.Context, reference, paymentID string) (bool, error)
	// Release drops the claim if it still belongs to paymentID.
	Release(ctx context.Context, reference, paymentID string) error
}
