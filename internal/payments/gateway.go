// Package payments wraps the hosted-checkout payment processor.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidAmount = errors.New("amount must be a positive number")

// Gateway creates hosted checkout sessions and looks them up after the
// buyer returns.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (SessionDetails, error)
}

type CheckoutRequest struct {
	AmountMinor   int64
	Currency      string
	ProductName   string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type SessionDetails struct {
	ID              string
	PaymentStatus   string
	PaymentIntentID string
	AmountTotal     int64
	CustomerEmail   string
	Metadata        map[string]string
}

const PaymentStatusPaid = "paid"

func (s SessionDetails) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid && s.PaymentIntentID != ""
}

// Amount is a decimal currency amount that decodes from a JSON number or a
// numeric string ("20", "12.50").
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return ErrInvalidAmount
		}
		*a = Amount(v)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return ErrInvalidAmount
	}
	*a = Amount(f)
	return nil
}

// MinorUnits converts to cents, rounding half away from zero.
func (a Amount) MinorUnits() (int64, error) {
	v := float64(a)
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	cents := int64(math.Round(v * 100))
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// FromMinorUnits converts cents back to a decimal amount.
func FromMinorUnits(cents int64) float64 {
	return float64(cents) / 100
}
