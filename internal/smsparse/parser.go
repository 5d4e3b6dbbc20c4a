// Package smsparse extracts payment details from bank SMS confirmations.
//
// Every field has its own extractor so a message can be partially understood:
// a missing reference number does not prevent the amount from being read.
package smsparse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var paymentKeywords = []string{"sent", "paid", "debited", "transferred", "upi", "transaction"}

var (
	amountRe       = regexp.MustCompile(`(?i)(?:Sent|Rs\.?|₹)\s*(?:Rs\.?)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	counterpartyRe = regexp.MustCompile(`(?i)\bto\s+([a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+)`)
	referenceRe    = regexp.MustCompile(`(?i)\b(?:UPI\s*)?Ref(?:\s*No)?[\s.:#-]*([A-Za-z0-9]{10,})`)
	dateRe         = regexp.MustCompile(`(?i)\bon\s+(\d{1,2}-\d{1,2}-\d{2}(?:\d{2})?|\d{1,2}/\d{1,2}/\d{2}(?:\d{2})?)`)
	bankRe         = regexp.MustCompile(`(?i)\bfrom\s+([A-Za-z ]+(?:Bank|AC))\s+([A-Za-z0-9]+)`)
)

// Message is the structured reading of one SMS. Empty strings and an invalid
// Amount mean the field was not found.
type Message struct {
	Raw                   string              `json:"raw"`
	Amount                decimal.NullDecimal `json:"amount"`
	Counterparty          string              `json:"counterpartyId,omitempty"`
	Reference             string              `json:"referenceId,omitempty"`
	Date                  string              `json:"date,omitempty"`
	Bank                  string              `json:"bank,omitempty"`
	AccountHint           string              `json:"accountHint,omitempty"`
	IsPaymentConfirmation bool                `json:"isPaymentConfirmation"`
}

// Parse never fails. Text without any payment keyword is returned with no
// fields extracted.
func Parse(text string) Message {
	msg := Message{Raw: text}
	if !LooksLikePayment(text) {
		return msg
	}

	if amount, ok := ExtractAmount(text); ok {
		msg.Amount = decimal.NewNullDecimal(amount)
	}
	if v, ok := ExtractCounterparty(text); ok {
		msg.Counterparty = v
	}
	if v, ok := ExtractReference(text); ok {
		msg.Reference = v
	}
	if v, ok := ExtractDate(text); ok {
		msg.Date = v
	}
	if bank, account, ok := ExtractBank(text); ok {
		msg.Bank = bank
		msg.AccountHint = account
	}

	msg.IsPaymentConfirmation = msg.Amount.Valid && msg.Counterparty != ""
	return msg
}

// LooksLikePayment is the keyword gate applied before any extraction.
func LooksLikePayment(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range paymentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ExtractAmount reads a currency-prefixed amount such as "Rs.1,250.50" or
// "₹2500". A zero amount, or one with more than two decimal places, is
// reported as not found.
func ExtractAmount(text string) (decimal.Decimal, bool) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	if i := strings.IndexByte(m[1], '.'); i >= 0 && len(m[1])-i-1 > 2 {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

// ExtractCounterparty reads the UPI handle or email-like payee after "to".
func ExtractCounterparty(text string) (string, bool) {
	m := counterpartyRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	// "to name@bank." at the end of a sentence
	id := strings.TrimRight(m[1], ".")
	if strings.HasSuffix(id, "@") {
		return "", false
	}
	return id, true
}

func ExtractReference(text string) (string, bool) {
	m := referenceRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractDate returns the date exactly as printed, e.g. "17-08-25".
func ExtractDate(text string) (string, bool) {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractBank returns the debited account label ("Kotak Bank AC") and the
// account fragment printed after it ("X6878").
func ExtractBank(text string) (bank, account string, ok bool) {
	m := bankRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}
