// Package verify scores a parsed SMS against the payment it is supposed to
// confirm.
package verify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/LeventeLantos/payment-verification/internal/smsparse"
)

const (
	amountWeight       = 40
	counterpartyWeight = 40
	referenceWeight    = 10
	dateWeight         = 10

	// Threshold is the minimum confidence for automatic approval.
	Threshold = 70
)

var amountTolerance = decimal.New(1, -2)

type Verdict struct {
	Valid      bool     `json:"isValid"`
	Confidence int      `json:"confidence"`
	Errors     []string `json:"errors"`
}

// Validate checks msg against the expected amount and counterparty. Any
// mismatch makes the verdict invalid regardless of confidence.
func Validate(msg smsparse.Message, expectedAmount decimal.Decimal, expectedCounterparty string) Verdict {
	v := Verdict{Errors: []string{}}

	if !msg.IsPaymentConfirmation {
		v.Errors = append(v.Errors, "Not a payment confirmation message")
		return v
	}

	switch {
	case !msg.Amount.Valid:
		v.Errors = append(v.Errors, "Amount not found in SMS")
	case msg.Amount.Decimal.Sub(expectedAmount).Abs().LessThan(amountTolerance):
		v.Confidence += amountWeight
	default:
		v.Errors = append(v.Errors, fmt.Sprintf("Amount mismatch: Expected %s, found %s",
			expectedAmount.String(), msg.Amount.Decimal.String()))
	}

	switch {
	case msg.Counterparty == "":
		v.Errors = append(v.Errors, "Counterparty ID not found in SMS")
	case strings.EqualFold(msg.Counterparty, expectedCounterparty):
		v.Confidence += counterpartyWeight
	default:
		v.Errors = append(v.Errors, fmt.Sprintf("Counterparty ID mismatch: Expected %s, found %s",
			expectedCounterparty, msg.Counterparty))
	}

	if msg.Reference != "" {
		v.Confidence += referenceWeight
	}
	if msg.Date != "" {
		v.Confidence += dateWeight
	}

	v.Valid = v.Confidence >= Threshold && len(v.Errors) == 0
	return v
}
