// Package smssource supplies raw SMS text that may confirm a pending payment.
package smssource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LeventeLantos/payment-verification/internal/model"
)

type Source interface {
	Candidates(ctx context.Context, p model.Payment) ([]string, error)
}

// Simulated synthesises the bank SMS a payer would have received for p. It
// stands in for device SMS access in development and tests.
type Simulated struct {
	now func() time.Time
}

func NewSimulated(now func() time.Time) *Simulated {
	if now == nil {
		now = time.Now
	}
	return &Simulated{now: now}
}

func (s *Simulated) Candidates(ctx context.Context, p model.Payment) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.ExpectedAmount.Valid || p.ExpectedCounterpartyID == "" {
		return nil, nil
	}
	return []string{SimulatedSMS(p.ExpectedAmount.Decimal.String(), p.ExpectedCounterpartyID, s.now())}, nil
}

// SimulatedSMS renders a Kotak-style debit confirmation.
func SimulatedSMS(amount, counterparty string, at time.Time) string {
	ref := fmt.Sprintf("%012d", at.UnixMilli())
	ref = ref[len(ref)-12:]
	return fmt.Sprintf("Sent Rs.%s from Kotak Bank AC X6878 to %s on %s.UPI Ref %s. Not you, https://kotak.com/KBANKT/Fraud",
		amount, counterparty, at.Format("02-01-2006"), ref)
}

type inboxEntry struct {
	text       string
	receivedAt time.Time
}

// Inbox holds SMS text pushed in from outside (a forwarding webhook or an
// operator pasting a message). Every pending payment is checked against all
// messages inside the look-back window.
type Inbox struct {
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries []inboxEntry
}

func NewInbox(window time.Duration, now func() time.Time) *Inbox {
	if now == nil {
		now = time.Now
	}
	return &Inbox{window: window, now: now}
}

// Add stores text received at receivedAt; a zero time means now.
func (b *Inbox) Add(text string, receivedAt time.Time) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("sms text must not be empty")
	}
	if receivedAt.IsZero() {
		receivedAt = b.now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, inboxEntry{text: text, receivedAt: receivedAt.UTC()})
	return nil
}

func (b *Inbox) Candidates(ctx context.Context, _ model.Payment) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.pruneLocked()

	sorted := make([]inboxEntry, len(b.entries))
	copy(sorted, b.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].receivedAt.After(sorted[j].receivedAt)
	})

	out := make([]string, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, e.text)
	}
	return out, nil
}

// Len reports the number of messages still inside the window.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pruneLocked()
	return len(b.entries)
}

func (b *Inbox) pruneLocked() {
	cutoff := b.now().Add(-b.window)
	kept := b.entries[:0]
	for _, e := range b.entries {
		if !e.receivedAt.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	b.entries = kept
}
