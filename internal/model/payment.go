package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	Pending Status = "pending"
	Success Status = "success"
	Failed  Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case Pending, Success, Failed:
		return true
	}
	return false
}

// Terminal statuses are never changed again.
func (s Status) Terminal() bool {
	return s == Success || s == Failed
}

type Payment struct {
	ID                     string              `json:"id"`
	UserID                 string              `json:"userId"`
	Username               string              `json:"username"`
	BuildingID             string              `json:"buildingId"`
	HouseNumber            string              `json:"houseNumber"`
	Description            string              `json:"description"`
	ExpectedAmount         decimal.NullDecimal `json:"expectedAmount"`
	ExpectedCounterpartyID string              `json:"expectedCounterpartyId,omitempty"`
	Status                 Status              `json:"status"`
	SMSVerified            bool                `json:"smsVerified"`
	CreatedAt              time.Time           `json:"createdAt"`
	UpdatedAt              time.Time           `json:"updatedAt"`
}

// Eligible reports whether the payment can be verified automatically.
func (p Payment) Eligible() bool {
	return p.Status == Pending &&
		!p.SMSVerified &&
		p.ExpectedAmount.Valid &&
		p.ExpectedAmount.Decimal.IsPositive() &&
		p.ExpectedCounterpartyID != ""
}
