package smssource

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeventeLantos/payment-verification/internal/model"
	"github.com/LeventeLantos/payment-verification/internal/smsparse"
	"github.com/LeventeLantos/payment-verification/internal/verify"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func pendingPayment(amount string, upi string) model.Payment {
	return model.Payment{
		ID:                     "p1",
		ExpectedAmount:         decimal.NewNullDecimal(decimal.RequireFromString(amount)),
		ExpectedCounterpartyID: upi,
		Status:                 model.Pending,
	}
}

func TestSimulatedSMS_Format(t *testing.T) {
	at := time.Date(2025, 8, 17, 10, 30, 0, 0, time.UTC)

	got := SimulatedSMS("2500", "sagarmanthan0001-1@oksbi", at)

	assert.Contains(t, got, "Sent Rs.2500 from Kotak Bank AC X6878 to sagarmanthan0001-1@oksbi on 17-08-2025.UPI Ref ")
	assert.Contains(t, got, "Not you, https://kotak.com/KBANKT/Fraud")
}

func TestSimulated_IsDeterministicAndVerifies(t *testing.T) {
	at := time.Date(2025, 8, 17, 10, 30, 0, 0, time.UTC)
	src := NewSimulated(fixedClock(at))
	p := pendingPayment("1250.50", "fund@ybl")

	first, err := src.Candidates(context.Background(), p)
	require.NoError(t, err)
	second, err := src.Candidates(context.Background(), p)
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.Equal(t, first, second)

	msg := smsparse.Parse(first[0])
	require.True(t, msg.IsPaymentConfirmation)
	assert.Len(t, msg.Reference, 12)
	assert.Equal(t, "17-08-2025", msg.Date)

	v := verify.Validate(msg, p.ExpectedAmount.Decimal, p.ExpectedCounterpartyID)
	assert.True(t, v.Valid)
	assert.Equal(t, 100, v.Confidence)
}

func TestSimulated_SkipsIncompletePayments(t *testing.T) {
	src := NewSimulated(nil)

	got, err := src.Candidates(context.Background(), model.Payment{ID: "p2", Status: model.Pending})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSimulated_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulated(nil).Candidates(ctx, pendingPayment("10", "a@b"))
	assert.Error(t, err)
}

func TestInbox_NewestFirstWithinWindow(t *testing.T) {
	now := time.Date(2025, 8, 17, 12, 0, 0, 0, time.UTC)
	inbox := NewInbox(10*time.Minute, fixedClock(now))

	require.NoError(t, inbox.Add("old", now.Add(-11*time.Minute)))
	require.NoError(t, inbox.Add("older", now.Add(-5*time.Minute)))
	require.NoError(t, inbox.Add("newer", now.Add(-1*time.Minute)))

	got, err := inbox.Candidates(context.Background(), model.Payment{})
	require.NoError(t, err)
	assert.Equal(t, []string{"newer", "older"}, got)
	assert.Equal(t, 2, inbox.Len())
}

func TestInbox_AddDefaultsToNowAndRejectsEmpty(t *testing.T) {
	now := time.Date(2025, 8, 17, 12, 0, 0, 0, time.UTC)
	inbox := NewInbox(time.Minute, fixedClock(now))

	assert.Error(t, inbox.Add("   ", time.Time{}))
	require.NoError(t, inbox.Add(" Sent Rs.10 to a@b ", time.Time{}))

	got, err := inbox.Candidates(context.Background(), model.Payment{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sent Rs.10 to a@b"}, got)
}

func TestInbox_EmptyHasNoCandidates(t *testing.T) {
	inbox := NewInbox(time.Minute, nil)

	got, err := inbox.Candidates(context.Background(), model.Payment{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
