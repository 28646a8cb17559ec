package xrpl

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is an XRPL amount: either native drops (JSON string) or an issued
// amount (JSON object with currency, issuer, value).
type Amount struct {
	Issue Issue
	Value decimal.Decimal
}

// iouAmount mirrors the JSON object form of an issued amount.
type iouAmount struct {
	Currency string    `json:"currency"`
	Issuer   AccountID `json:"issuer"`
	Value    string    `json:"value"`
}

// UnmarshalJSON accepts both wire forms.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var drops string
	if err := json.Unmarshal(data, &drops); err == nil {
		v, err := decimal.NewFromString(drops)
		if err != nil {
			return fmt.Errorf("invalid drops amount %q: %w", drops, err)
		}
		a.Issue = XRPIssue()
		a.Value = v
		return nil
	}

	var iou iouAmount
	if err := json.Unmarshal(data, &iou); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	v, err := decimal.NewFromString(iou.Value)
	if err != nil {
		return fmt.Errorf("invalid amount value %q: %w", iou.Value, err)
	}
	a.Issue = Issue{Currency: iou.Currency, Issuer: iou.Issuer}
	a.Value = v
	return nil
}

// MarshalJSON renders the wire form matching the issue kind.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Issue.IsXRP() {
		return json.Marshal(a.Value.String())
	}
	return json.Marshal(iouAmount{
		Currency: a.Issue.Currency,
		Issuer:   a.Issue.Issuer,
		Value:    a.Value.String(),
	})
}

// Sub returns a - b. The issues must match for the result to be meaningful;
// the receiver's issue is kept.
func (a Amount) Sub(b Amount) Amount {
	return Amount{Issue: a.Issue, Value: a.Value.Sub(b.Value)}
}

// Abs returns the amount with a non-negative value.
func (a Amount) Abs() Amount {
	return Amount{Issue: a.Issue, Value: a.Value.Abs()}
}

// IsZero reports whether the value is exactly zero.
func (a Amount) IsZero() bool {
	return a.Value.IsZero()
}

// IsPositive reports whether the value is strictly positive.
func (a Amount) IsPositive() bool {
	return a.Value.IsPositive()
}
