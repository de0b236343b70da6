package billingapimodels

import (
	"canopy-backend/models"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type PointsView struct {
	Balance    int64 `json:"balance"`
	ValueCents int64 `json:"value_cents"`
}

type EntitlementsView struct {
	Credits map[models.CreditType]int64 `json:"credits"`
	Points  PointsView                  `json:"points"`
}

type GateResultView struct {
	Allowed      bool              `json:"allowed"`
	Reason       models.GateReason `json:"reason"`
	RequiredTier *models.PlanTier  `json:"required_tier,omitempty"`
}

type CreditDebit struct {
	CreditType models.CreditType `json:"credit_type"` // credit type to consume
	Amount     int64             `json:"amount"`      // units to consume
}

func (d CreditDebit) Validate() error {
	if !d.CreditType.IsKnown() {
		return errors.Errorf("unknown credit type (%v)", d.CreditType)
	}
	if d.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}

type PointsRedeem struct {
	Amount int64 `json:"amount"` // points to redeem
}

func (r PointsRedeem) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}

// BillingWebhookEvent is the provider payload accepted on the billing
// webhook. EventID is the provider's delivery id and is the idempotency key.
type BillingWebhookEvent struct {
	EventID    string                    `json:"event_id"`
	EventType  models.BillingEventType   `json:"event_type"`
	OrgID      string                    `json:"org_id"`
	CreditType models.CreditType         `json:"credit_type,omitempty"`
	Amount     int64                     `json:"amount,omitempty"`
	Tier       models.PlanTier           `json:"tier,omitempty"`
	Status     models.SubscriptionStatus `json:"status,omitempty"`
	OccurredAt *time.Time                `json:"occurred_at,omitempty"`
}

func (e BillingWebhookEvent) Validate() error {
	if _, err := uuid.Parse(e.EventID); err != nil {
		return errors.New("event id must be a valid uuid")
	}
	if e.OrgID == "" {
		return errors.New("organization is not specified")
	}
	switch e.EventType {
	case models.BillingEventCreditPurchase:
		if !e.CreditType.IsKnown() {
			return errors.Errorf("unknown credit type (%v)", e.CreditType)
		}
		if e.Amount <= 0 {
			return errors.New("amount must be positive")
		}
	case models.BillingEventPointsEarn:
		if e.Amount <= 0 {
			return errors.New("amount must be positive")
		}
	case models.BillingEventSubscriptionUpdated:
		if !e.Tier.IsKnown() {
			return errors.Errorf("unknown plan tier (%v)", e.Tier)
		}
		if !e.Status.IsKnown() {
			return errors.Errorf("unknown subscription status (%v)", e.Status)
		}
	default:
		return errors.Errorf("unknown event type (%v)", e.EventType)
	}
	return nil
}

type CreditTransactionView struct {
	ID         string            `json:"id"`
	CreditType models.CreditType `json:"credit_type"`
	Amount     int64             `json:"amount"`
	Reference  string            `json:"reference"`
	CreatedAt  time.Time         `json:"created_at"`
}
