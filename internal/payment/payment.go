// Package payment charges card sources through Stripe and refunds charges
// the order flow could not finalize.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

var ErrDeclined = errors.New("payment declined")

const orderIDKey = "order_id"

type ChargeRequest struct {
	Amount         int64
	Currency       string
	Source         string
	Description    string
	IdempotencyKey string
	// OrderID is stored as charge metadata so FindCharge can recover it.
	OrderID string
}

type ChargeResult struct {
	ID       string
	Amount   int64
	Currency string
	Paid     bool
}

type StripeCharger struct {
	api *client.API
}

func NewStripeCharger(secretKey string) (*StripeCharger, error) {
	return newStripeCharger(secretKey, nil)
}

// newStripeCharger uses backends instead of the live Stripe endpoints when
// non-nil.
func newStripeCharger(secretKey string, backends *stripe.Backends) (*StripeCharger, error) {
	if secretKey == "" {
		return nil, errors.New("payment: stripe secret key is empty")
	}
	sc := &client.API{}
	sc.Init(secretKey, backends)
	return &StripeCharger{api: sc}, nil
}

func (s *StripeCharger) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	if req.OrderID != "" {
		params.AddMetadata(orderIDKey, req.OrderID)
	}
	if err := params.SetSource(req.Source); err != nil {
		return nil, fmt.Errorf("payment: source: %w", err)
	}

	ch, err := s.api.Charges.New(params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.Type == stripe.ErrorTypeCard {
			return nil, fmt.Errorf("%w: %s", ErrDeclined, se.Msg)
		}
		return nil, fmt.Errorf("payment: charge: %w", err)
	}
	if !ch.Paid {
		return nil, fmt.Errorf("%w: charge %s status %s", ErrDeclined, ch.ID, ch.Status)
	}

	return &ChargeResult{
		ID:       ch.ID,
		Amount:   ch.Amount,
		Currency: string(ch.Currency),
		Paid:     ch.Paid,
	}, nil
}

func (s *StripeCharger) Refund(ctx context.Context, chargeID string) error {
	params := &stripe.RefundParams{Charge: stripe.String(chargeID)}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + chargeID)
	if _, err := s.api.Refunds.New(params); err != nil {
		return fmt.Errorf("payment: refund %s: %w", chargeID, err)
	}
	return nil
}

// FindCharge returns the paid, unrefunded charge made for orderID, or "" when
// there is none. Used when the charge response was lost before it was stored.
func (s *StripeCharger) FindCharge(ctx context.Context, orderID string) (string, error) {
	params := &stripe.ChargeSearchParams{}
	params.Context = ctx
	params.Query = fmt.Sprintf("metadata['%s']:'%s'", orderIDKey, strings.ReplaceAll(orderID, "'", ""))

	iter := s.api.Charges.Search(params)
	for iter.Next() {
		ch := iter.Charge()
		if ch.Paid && !ch.Refunded {
			return ch.ID, nil
		}
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("payment: search charges for order %s: %w", orderID, err)
	}
	return "", nil
}
