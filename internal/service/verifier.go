package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LeventeLantos/payment-verification/internal/cache"
	"github.com/LeventeLantos/payment-verification/internal/model"
	"github.com/LeventeLantos/payment-verification/internal/repo"
	"github.com/LeventeLantos/payment-verification/internal/smsparse"
	"github.com/LeventeLantos/payment-verification/internal/smssource"
	"github.com/LeventeLantos/payment-verification/internal/verify"
)

var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentNotPending = errors.New("payment is not in pending status")
)

type Notifier interface {
	Notify(ctx context.Context, title, body string, data map[string]any) error
}

type Outcome string

const (
	Approved Outcome = "approved"
	// Unmatched means no SMS corroborated the payment; it stays pending.
	Unmatched Outcome = "unmatched"
	// Superseded means another writer settled the payment first.
	Superseded Outcome = "superseded"
	Errored    Outcome = "error"
)

type PassResult struct {
	Eligible   int  `json:"eligible"`
	Approved   int  `json:"approved"`
	Unmatched  int  `json:"unmatched"`
	Superseded int  `json:"superseded"`
	Failed     int  `json:"failed"`
	Skipped    bool `json:"skipped"`
}

// Verifier reconciles pending payments against SMS evidence.
type Verifier struct {
	repo     repo.PaymentRepository
	source   smssource.Source
	notifier Notifier
	ledger   cache.ReferenceLedger
	logger   *slog.Logger
}

type Option func(*Verifier)

// WithLedger makes every bank reference approve at most one payment.
func WithLedger(l cache.ReferenceLedger) Option {
	return func(v *Verifier) { v.ledger = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(v *Verifier) { v.logger = l }
}

func NewVerifier(r repo.PaymentRepository, src smssource.Source, n Notifier, opts ...Option) *Verifier {
	v := &Verifier{
		repo:     r,
		source:   src,
		notifier: n,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "payment_verifier")
	return v
}

// CheckPendingPayments runs one reconciliation pass. Failures never escape:
// an unreachable repository skips the pass, a failing payment is logged and
// the pass moves on.
func (v *Verifier) CheckPendingPayments(ctx context.Context) PassResult {
	start := time.Now()
	defer func() { passDuration.Observe(time.Since(start).Seconds()) }()

	var res PassResult

	payments, err := v.repo.ListPayments(ctx, model.Pending)
	if err != nil {
		v.logger.ErrorContext(ctx, "failed to fetch payments, skipping pass", "error", err)
		passesTotal.WithLabelValues("skipped").Inc()
		res.Skipped = true
		return res
	}

	for _, p := range payments {
		if !p.Eligible() {
			continue
		}
		res.Eligible++

		switch outcome := v.verifyPayment(ctx, p); outcome {
		case Approved:
			res.Approved++
		case Unmatched:
			res.Unmatched++
		case Superseded:
			res.Superseded++
		default:
			res.Failed++
		}
	}

	passesTotal.WithLabelValues("completed").Inc()
	v.logger.InfoContext(ctx, "verification pass finished",
		"eligible", res.Eligible,
		"approved", res.Approved,
		"unmatched", res.Unmatched,
		"superseded", res.Superseded,
		"failed", res.Failed,
	)
	return res
}

// ManualVerification verifies one payment outside the schedule.
func (v *Verifier) ManualVerification(ctx context.Context, paymentID string) (Outcome, error) {
	p, err := v.repo.GetPayment(ctx, paymentID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
	}
	if err != nil {
		return "", fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}
	if p.Status != model.Pending {
		return "", fmt.Errorf("%w: %s is %s", ErrPaymentNotPending, paymentID, p.Status)
	}

	v.logger.InfoContext(ctx, "manual verification triggered", "payment_id", paymentID)
	return v.verifyPayment(ctx, p), nil
}

func (v *Verifier) verifyPayment(ctx context.Context, p model.Payment) Outcome {
	outcome := v.matchAndApprove(ctx, p)
	paymentOutcomesTotal.WithLabelValues(string(outcome)).Inc()
	return outcome
}

func (v *Verifier) matchAndApprove(ctx context.Context, p model.Payment) Outcome {
	log := v.logger.With("payment_id", p.ID)

	texts, err := v.source.Candidates(ctx, p)
	if err != nil {
		log.WarnContext(ctx, "failed to read sms candidates", "error", err)
		return Errored
	}

	expected := p.ExpectedAmount.Decimal
	var best *verify.Verdict

	for _, text := range texts {
		msg := smsparse.Parse(text)
		verdict := verify.Validate(msg, expected, p.ExpectedCounterpartyID)
		if !verdict.Valid {
			if best == nil || verdict.Confidence > best.Confidence {
				best = &verdict
			}
			continue
		}

		claimed := false
		if v.ledger != nil && msg.Reference != "" {
			ok, err := v.ledger.Claim(ctx, msg.Reference, p.ID)
			if err != nil {
				log.WarnContext(ctx, "failed to claim sms reference", "reference", msg.Reference, "error", err)
				return Errored
			}
			if !ok {
				log.InfoContext(ctx, "sms reference already used by another payment", "reference", msg.Reference)
				continue
			}
			claimed = true
		}

		outcome := v.approve(ctx, p, msg, verdict)
		if claimed && outcome != Approved {
			// the reference did not settle this payment; free it for its real owner
			if err := v.ledger.Release(ctx, msg.Reference, p.ID); err != nil {
				log.WarnContext(ctx, "failed to release sms reference", "reference", msg.Reference, "error", err)
			}
		}
		return outcome
	}

	if best != nil {
		log.DebugContext(ctx, "payment not verified", "confidence", best.Confidence, "errors", best.Errors)
	} else {
		log.DebugContext(ctx, "no sms evidence for payment")
	}
	return Unmatched
}

func (v *Verifier) approve(ctx context.Context, p model.Payment, msg smsparse.Message, verdict verify.Verdict) Outcome {
	log := v.logger.With("payment_id", p.ID)

	if err := v.repo.MarkVerified(ctx, p.ID); err != nil {
		if errors.Is(err, repo.ErrNotPending) {
			log.InfoContext(ctx, "payment settled elsewhere before approval")
			return Superseded
		}
		log.ErrorContext(ctx, "failed to update payment status", "error", err)
		return Errored
	}

	log.InfoContext(ctx, "payment approved via sms verification",
		"amount", p.ExpectedAmount.Decimal.String(),
		"reference", msg.Reference,
		"confidence", verdict.Confidence,
	)

	v.notifyPaymentApproved(ctx, p)
	v.notifyAdminsPaymentReceived(ctx, p, msg)
	return Approved
}

func (v *Verifier) notifyPaymentApproved(ctx context.Context, p model.Payment) {
	amount := p.ExpectedAmount.Decimal.String()
	err := v.notifier.Notify(ctx,
		"Payment Approved",
		fmt.Sprintf("Your payment of ₹%s has been verified and approved.", amount),
		map[string]any{
			"type":        "payment_approved",
			"paymentId":   p.ID,
			"amount":      amount,
			"recipientId": p.UserID,
		},
	)
	if err != nil {
		notificationFailuresTotal.WithLabelValues("payer").Inc()
		v.logger.WarnContext(ctx, "failed to send approval notification", "payment_id", p.ID, "error", err)
	}
}

func (v *Verifier) notifyAdminsPaymentReceived(ctx context.Context, p model.Payment, msg smsparse.Message) {
	admins, err := v.repo.ListApprovedAdmins(ctx)
	if err != nil {
		notificationFailuresTotal.WithLabelValues("admin").Inc()
		v.logger.WarnContext(ctx, "failed to list admins", "payment_id", p.ID, "error", err)
		return
	}

	amount := p.ExpectedAmount.Decimal.String()
	body := fmt.Sprintf("%s (%s) paid ₹%s for %s", p.Username, location(p), amount, p.Description)

	for _, admin := range admins {
		err := v.notifier.Notify(ctx, "Payment Received", body, map[string]any{
			"type":        "payment_received",
			"paymentId":   p.ID,
			"userId":      p.UserID,
			"username":    p.Username,
			"amount":      amount,
			"buildingId":  p.BuildingID,
			"houseNumber": p.HouseNumber,
			"referenceId": msg.Reference,
			"recipientId": admin.ID,
		})
		if err != nil {
			notificationFailuresTotal.WithLabelValues("admin").Inc()
			v.logger.WarnContext(ctx, "failed to notify admin", "payment_id", p.ID, "admin_id", admin.ID, "error", err)
		}
	}
}

func location(p model.Payment) string {
	switch {
	case p.BuildingID != "" && p.HouseNumber != "":
		return p.BuildingID + "-" + p.HouseNumber
	case p.HouseNumber != "":
		return p.HouseNumber
	case p.BuildingID != "":
		return p.BuildingID
	}
	return "unknown flat"
}
