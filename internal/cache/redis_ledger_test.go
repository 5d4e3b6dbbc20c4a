package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLedger(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisLedger) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, NewRedisLedger(rdb, ttl)
}

func TestRedisLedger_Claim_StoresPaymentWithTTL(t *testing.T) {
	t.Parallel()

	mr, ledger := newTestLedger(t, time.Hour)
	claimedAt := time.Date(2025, 8, 17, 10, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return claimedAt }

	ok, err := ledger.Claim(context.Background(), "559526315119", "p1")
	if err != nil {
		t.Fatalf("Claim() error: %v", err)
	}
	if !ok {
		t.Fatalf("expected first claim to succeed")
	}

	key := "smsref:559526315119"
	if ttl := mr.TTL(key); ttl <= 0 {
		t.Fatalf("expected TTL to be set, got %v", ttl)
	}

	raw, err := mr.Get(key)
	if err != nil {
		t.Fatalf("failed to get key %q: %v", key, err)
	}

	var got claimValue
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("failed to unmarshal value: %v", err)
	}
	if got.PaymentID != "p1" {
		t.Fatalf("expected PaymentID p1, got %q", got.PaymentID)
	}
	if !got.ClaimedAt.Equal(claimedAt) {
		t.Fatalf("expected ClaimedAt %v, got %v", claimedAt, got.ClaimedAt)
	}
}

func TestRedisLedger_Claim_SecondPaymentIsRejected(t *testing.T) {
	t.Parallel()

	_, ledger := newTestLedger(t, time.Hour)
	ctx := context.Background()

	if ok, err := ledger.Claim(ctx, "REF1234567890", "p1"); err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}

	ok, err := ledger.Claim(ctx, "REF1234567890", "p2")
	if err != nil {
		t.Fatalf("Claim() error: %v", err)
	}
	if ok {
		t.Fatalf("expected claim by another payment to be rejected")
	}

	ok, err = ledger.Claim(ctx, "REF1234567890", "p1")
	if err != nil {
		t.Fatalf("Claim() error: %v", err)
	}
	if !ok {
		t.Fatalf("expected repeated claim by the same payment to succeed")
	}
}

func TestRedisLedger_Claim_ExpiredReferenceCanBeReused(t *testing.T) {
	t.Parallel()

	mr, ledger := newTestLedger(t, time.Minute)
	ctx := context.Background()

	if ok, err := ledger.Claim(ctx, "REF1234567890", "p1"); err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}

	mr.FastForward(2 * time.Minute)

	ok, err := ledger.Claim(ctx, "REF1234567890", "p2")
	if err != nil {
		t.Fatalf("Claim() error: %v", err)
	}
	if !ok {
		t.Fatalf("expected claim after expiry to succeed")
	}
}

func TestRedisLedger_Claim_EmptyReference(t *testing.T) {
	t.Parallel()

	_, ledger := newTestLedger(t, time.Minute)

	if _, err := ledger.Claim(context.Background(), "", "p1"); err == nil {
		t.Fatalf("expected error for empty reference")
	}
}

func TestRedisLedger_Claim_ContextCanceled(t *testing.T) {
	t.Parallel()

	_, ledger := newTestLedger(t, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ledger.Claim(ctx, "REF1234567890", "p1"); err == nil {
		t.Fatalf("expected error due to canceled context, got nil")
	}
}

func TestRedisLedger_Release_FreesReferenceForAnotherPayment(t *testing.T) {
	t.Parallel()

	mr, ledger := newTestLedger(t, time.Hour)
	ctx := context.Background()

	if ok, err := ledger.Claim(ctx, "559526315119", "p1"); err != nil || !ok {
		t.Fatalf("Claim(p1) = %v, %v; want true, nil", ok, err)
	}

	if err := ledger.Release(ctx, "559526315119", "p1"); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if mr.Exists("smsref:559526315119") {
		t.Fatalf("expected claim to be deleted")
	}

	ok, err := ledger.Claim(ctx, "559526315119", "p2")
	if err != nil {
		t.Fatalf("Claim(p2) error: %v", err)
	}
	if !ok {
		t.Fatalf("expected released reference to be claimable by another payment")
	}
}

func TestRedisLedger_Release_LeavesOtherPaymentsClaim(t *testing.T) {
	t.Parallel()

	mr, ledger := newTestLedger(t, time.Hour)
	ctx := context.Background()

	if ok, err := ledger.Claim(ctx, "559526315119", "p2"); err != nil || !ok {
		t.Fatalf("Claim(p2) = %v, %v; want true, nil", ok, err)
	}

	if err := ledger.Release(ctx, "559526315119", "p1"); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if !mr.Exists("smsref:559526315119") {
		t.Fatalf("expected claim held by p2 to survive a release by p1")
	}

	if err := ledger.Release(ctx, "unknown-ref-000", "p1"); err != nil {
		t.Fatalf("Release() of a missing claim should be a no-op, got %v", err)
	}
	if err := ledger.Release(ctx, "", "p1"); err == nil {
		t.Fatalf("expected error for empty reference")
	}
}
