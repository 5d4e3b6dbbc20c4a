package smsparse

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kotakSMS = "Sent Rs.2500 from Kotak Bank AC X6878 to sagarmanthan0001-1@oksbi on 17-08-25.UPI Ref 559526315119."

func TestParse_KotakConfirmation(t *testing.T) {
	msg := Parse(kotakSMS)

	require.True(t, msg.IsPaymentConfirmation)
	require.True(t, msg.Amount.Valid)
	assert.True(t, msg.Amount.Decimal.Equal(decimal.NewFromInt(2500)), "amount %s", msg.Amount.Decimal)
	assert.Equal(t, "sagarmanthan0001-1@oksbi", msg.Counterparty)
	assert.Equal(t, "559526315119", msg.Reference)
	assert.Equal(t, "17-08-25", msg.Date)
	assert.Equal(t, "Kotak Bank AC", msg.Bank)
	assert.Equal(t, "X6878", msg.AccountHint)
	assert.Equal(t, kotakSMS, msg.Raw)
}

func TestParse_WithFraudFooter(t *testing.T) {
	msg := Parse("Sent Rs.1.00 from Kotak Bank AC X6878 to sagarmanthan0001-1@oksbi on 17-08-25.UPI Ref 559526315119. Not you, https://kotak.com/KBANKT/Fraud")

	require.True(t, msg.IsPaymentConfirmation)
	assert.True(t, msg.Amount.Decimal.Equal(decimal.RequireFromString("1")))
	assert.Equal(t, "559526315119", msg.Reference)
}

func TestParse_KeywordGate(t *testing.T) {
	cases := []string{
		"Your OTP is 4821, do not share.",
		"Rs.500 to someone@okaxis on 01-01-25 Ref 1234567890",
		"",
		"Meeting moved to 5pm",
	}

	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			msg := Parse(text)
			assert.False(t, msg.IsPaymentConfirmation)
			assert.False(t, msg.Amount.Valid)
			assert.Empty(t, msg.Counterparty)
			assert.Empty(t, msg.Reference)
			assert.Empty(t, msg.Date)
			assert.Empty(t, msg.Bank)
		})
	}
}

func TestParse_KeywordGateIsCaseInsensitive(t *testing.T) {
	msg := Parse("PAID ₹750 TO treasurer@ybl")

	require.True(t, msg.IsPaymentConfirmation)
	assert.True(t, msg.Amount.Decimal.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, "treasurer@ybl", msg.Counterparty)
}

func TestParse_KeywordWithoutFieldsIsNotConfirmation(t *testing.T) {
	msg := Parse("Your UPI PIN was changed successfully")

	assert.False(t, msg.IsPaymentConfirmation)
	assert.False(t, msg.Amount.Valid)
	assert.Empty(t, msg.Counterparty)
}

func TestParse_PartialExtraction(t *testing.T) {
	msg := Parse("Sent Rs.300 via UPI")

	assert.True(t, msg.Amount.Valid)
	assert.Empty(t, msg.Counterparty)
	assert.False(t, msg.IsPaymentConfirmation)
}

func TestParse_AmountRoundTrip(t *testing.T) {
	amounts := []string{"1", "1.5", "1.05", "99.99", "2500", "12345.67", "0.01"}

	for _, raw := range amounts {
		t.Run(raw, func(t *testing.T) {
			want := decimal.RequireFromString(raw)
			text := fmt.Sprintf("Sent Rs.%s from HDFC Bank AC XX1234 to society.fund@okhdfcbank on 02/09/2025.UPI Ref 123456789012.", raw)

			msg := Parse(text)
			require.True(t, msg.IsPaymentConfirmation)
			assert.True(t, msg.Amount.Decimal.Equal(want), "want %s got %s", want, msg.Amount.Decimal)
			assert.Equal(t, "society.fund@okhdfcbank", msg.Counterparty)
			assert.Equal(t, "02/09/2025", msg.Date)
		})
	}
}

func TestExtractAmount(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"rs prefix", "Rs.2500 debited", "2500", true},
		{"rs with space", "Rs 2,500.50 debited", "2500.50", true},
		{"rupee symbol", "₹1,00,000 paid", "100000", true},
		{"sent then rs", "Sent Rs.42.10", "42.10", true},
		{"sent bare number", "Sent 99 to x@y", "99", true},
		{"zero is absent", "Sent Rs.0 to x@y", "", false},
		{"no currency", "Transaction of 500 complete", "", false},
		{"three decimals is absent", "Sent Rs.12.345 to x@y", "", false},
		{"trailing full stop", "Sent Rs.2500. Ref 1234567890", "2500", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractAmount(tc.text)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "want %s got %s", tc.want, got)
			}
		})
	}
}

func TestExtractCounterparty(t *testing.T) {
	cases := []struct {
		text string
		want string
		ok   bool
	}{
		{"paid to flat.101@okicici on", "flat.101@okicici", true},
		{"sent to Maint_Fund-2@ybl.", "Maint_Fund-2@ybl", true},
		{"sent to the society", "", false},
		{"sent into acct@bank", "", false},
		{"sent to @bank", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, ok := ExtractCounterparty(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractReference(t *testing.T) {
	got, ok := ExtractReference("UPI Ref 559526315119.")
	assert.True(t, ok)
	assert.Equal(t, "559526315119", got)

	got, ok = ExtractReference("Ref No: AB12CD34EF56")
	assert.True(t, ok)
	assert.Equal(t, "AB12CD34EF56", got)

	_, ok = ExtractReference("UPI Ref 12345")
	assert.False(t, ok, "references shorter than 10 characters are ignored")

	_, ok = ExtractReference("no reference here")
	assert.False(t, ok)
}

func TestExtractDate(t *testing.T) {
	got, ok := ExtractDate("debited on 7-8-25 at 10:00")
	assert.True(t, ok)
	assert.Equal(t, "7-8-25", got)

	got, ok = ExtractDate("on 17/08/2025")
	assert.True(t, ok)
	assert.Equal(t, "17/08/2025", got)

	_, ok = ExtractDate("on 17.08.2025")
	assert.False(t, ok)

	_, ok = ExtractDate("17-08-25 without prefix")
	assert.False(t, ok)
}

func TestExtractBank(t *testing.T) {
	bank, account, ok := ExtractBank("Sent Rs.10 from State Bank XX9911 to a@b")
	assert.True(t, ok)
	assert.Equal(t, "State Bank", bank)
	assert.Equal(t, "XX9911", account)

	_, _, ok = ExtractBank("Sent Rs.10 from wallet to a@b")
	assert.False(t, ok)
}
