package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisLedger struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewRedisLedger(rdb *redis.Client, ttl time.Duration) *RedisLedger {
	return &RedisLedger{rdb: rdb, ttl: ttl, now: time.Now}
}

type claimValue struct {
	PaymentID string    `json:"paymentId"`
	ClaimedAt time.Time `json:"claimedAt"`
}

func referenceKey(reference string) string {
	return fmt.Sprintf("smsref:%s", reference)
}

// Claim records reference for paymentID. It returns false when the reference
// already belongs to a different payment; claiming again for the same payment
// succeeds so a retried approval is not blocked by its own earlier claim.
func (l *RedisLedger) Claim(ctx context.Context, reference, paymentID string) (bool, error) {
	if reference == "" {
		return false, errors.New("reference must not be empty")
	}

	b, err := json.Marshal(claimValue{PaymentID: paymentID, ClaimedAt: l.now().UTC()})
	if err != nil {
		return false, err
	}

	key := referenceKey(reference)
	ok, err := l.rdb.SetNX(ctx, key, b, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	raw, err := l.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return l.rdb.SetNX(ctx, key, b, l.ttl).Result()
	}
	if err != nil {
		return false, err
	}

	var existing claimValue
	if err := json.Unmarshal(raw, &existing); err != nil {
		return false, fmt.Errorf("decode claim %s: %w", key, err)
	}
	return existing.PaymentID == paymentID, nil
}

// Release deletes the claim on reference only when paymentID holds it. The
// check and delete run in one WATCH transaction so a claim taken over by
// another payment in between is left alone.
func (l *RedisLedger) Release(ctx context.Context, reference, paymentID string) error {
	if reference == "" {
		return errors.New("reference must not be empty")
	}

	key := referenceKey(reference)
	return l.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}

		var existing claimValue
		if err := json.Unmarshal(raw, &existing); err != nil {
			return fmt.Errorf("decode claim %s: %w", key, err)
		}
		if existing.PaymentID != paymentID {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)
}
