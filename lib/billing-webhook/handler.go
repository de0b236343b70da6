package billingwebhook

import (
	"context"
	"encoding/json"

	"canopy-backend/db"
	billingeventstore "canopy-backend/lib/billing-webhook/event-store"
	subscriptionstore "canopy-backend/lib/entitlement/subscription-store"
	"canopy-backend/lib/ledger"
	"canopy-backend/models"
	billingapimodels "canopy-backend/models/api/billing"
	dbmodels "canopy-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	// HandleEvent applies a provider event exactly once. Replays of an
	// already-processed event id report duplicate=true and change nothing;
	// replays of an event whose effects never committed reapply them.
	HandleEvent(ctx context.Context, event billingapimodels.BillingWebhookEvent) (duplicate bool, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		eventStore:        billingeventstore.NewInstance(db.DB),
		subscriptionStore: subscriptionstore.NewInstance(db.DB),
		ledger:            ledger.Instance,
	}
}

type impl struct {
	eventStore        billingeventstore.Provider
	subscriptionStore subscriptionstore.Provider
	ledger            ledger.Provider
}

func (i impl) HandleEvent(ctx context.Context, event billingapimodels.BillingWebhookEvent) (bool, error) {
	logger := log.WithField("org_id", event.OrgID).
		WithField("event_id", event.EventID).
		WithField("event_type", event.EventType)

	payload, err := json.Marshal(event)
	if err != nil {
		return false, errors.Wrap(err, "failed to serialize event payload")
	}
	rec := dbmodels.BillingEvent{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: event.OrgID,
		},
		EventID:   event.EventID,
		EventType: event.EventType,
		Status:    models.BillingEventStatusPending,
		Payload:   string(payload),
	}
	// the unique event id is the idempotency key: providers retry deliveries
	// and a replay must not apply the effects twice
	created, err := i.eventStore.CreateIfAbsent(ctx, rec)
	if err != nil {
		return false, err
	}
	if !created {
		prev, err := i.eventStore.GetByEventID(ctx, event.EventID)
		if err != nil {
			return false, err
		}
		if prev == nil || prev.Status == models.BillingEventStatusProcessed {
			logger.Info("billing event already processed, skipping")
			return true, nil
		}
		// recorded but never applied: an earlier delivery failed between the
		// event insert and the effect, the retry finishes the job
		logger.Warn("billing event recorded but not applied, reapplying")
	}

	switch event.EventType {
	case models.BillingEventCreditPurchase:
		err = i.ledger.GrantCredits(ctx, event.OrgID, event.CreditType, event.Amount, "provider event "+event.EventID)
	case models.BillingEventPointsEarn:
		err = i.ledger.EarnPoints(ctx, event.OrgID, event.Amount)
	case models.BillingEventSubscriptionUpdated:
		err = i.subscriptionStore.Upsert(ctx, event.OrgID, event.Tier, event.Status)
	default:
		err = errors.Errorf("unknown event type (%v)", event.EventType)
	}
	if err != nil {
		return false, err
	}

	ok, err := i.eventStore.MarkProcessed(ctx, event.EventID)
	if err != nil {
		return false, errors.Wrap(err, "failed to mark billing event processed")
	}
	if !ok {
		logger.Warn("billing event was marked processed by a concurrent delivery")
	}
	logger.Info("billing event processed")
	return false, nil
}
