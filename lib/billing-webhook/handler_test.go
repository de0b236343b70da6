package billingwebhook

import (
	"context"
	"testing"

	"canopy-backend/models"
	billingapimodels "canopy-backend/models/api/billing"
	dbmodels "canopy-backend/models/db"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeEventStore struct {
	recs map[string]*dbmodels.BillingEvent
}

func (f *fakeEventStore) GetByEventID(_ context.Context, eventID string) (*dbmodels.BillingEvent, error) {
	rec, exists := f.recs[eventID]
	if !exists {
		return nil, nil
	}
	return rec, nil
}

func (f *fakeEventStore) CreateIfAbsent(_ context.Context, rec dbmodels.BillingEvent) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}
	if _, exists := f.recs[rec.EventID]; exists {
		return false, nil
	}
	f.recs[rec.EventID] = &rec
	return true, nil
}

func (f *fakeEventStore) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	rec, exists := f.recs[eventID]
	if !exists || rec.Status != models.BillingEventStatusPending {
		return false, nil
	}
	rec.Status = models.BillingEventStatusProcessed
	return true, nil
}

type fakeLedger struct {
	granted       map[models.CreditType]int64
	earned        int64
	grantFailures int
}

func (f *fakeLedger) GetCredits(_ context.Context, _ string) (map[models.CreditType]int64, error) {
	return f.granted, nil
}

func (f *fakeLedger) GrantCredits(_ context.Context, _ string, creditType models.CreditType, amount int64, _ string) error {
	if f.grantFailures > 0 {
		f.grantFailures--
		return errors.New("connection reset")
	}
	f.granted[creditType] += amount
	return nil
}

func (f *fakeLedger) DebitCredits(_ context.Context, _ string, _ models.CreditType, _ int64, _ string) error {
	return nil
}

func (f *fakeLedger) GetPoints(_ context.Context, _ string) (int64, error) {
	return f.earned, nil
}

func (f *fakeLedger) PointsValueCents(balance int64) int64 {
	return balance
}

func (f *fakeLedger) EarnPoints(_ context.Context, _ string, amount int64) error {
	f.earned += amount
	return nil
}

func (f *fakeLedger) RedeemPoints(_ context.Context, _ string, _ int64) error {
	return nil
}

func (f *fakeLedger) ListTransactions(_ context.Context, _ string) ([]billingapimodels.CreditTransactionView, error) {
	return nil, nil
}

type fakeSubscriptionStore struct {
	tier    models.PlanTier
	status  models.SubscriptionStatus
	upserts int
}

func (f *fakeSubscriptionStore) GetByOrg(_ context.Context, _ string) (*dbmodels.Subscription, error) {
	return nil, nil
}

func (f *fakeSubscriptionStore) Upsert(_ context.Context, _ string, tier models.PlanTier, status models.SubscriptionStatus) error {
	f.tier = tier
	f.status = status
	f.upserts++
	return nil
}

func getInstance() (impl, *fakeEventStore, *fakeLedger, *fakeSubscriptionStore) {
	fakeStore := &fakeEventStore{recs: map[string]*dbmodels.BillingEvent{}}
	fakeLed := &fakeLedger{granted: map[models.CreditType]int64{}}
	fakeSubs := &fakeSubscriptionStore{}
	return impl{eventStore: fakeStore, subscriptionStore: fakeSubs, ledger: fakeLed}, fakeStore, fakeLed, fakeSubs
}

func TestHandleEvent(t *testing.T) {
	ctx := context.TODO()
	const orgID = "4aa0a6c3-9c70-4f1e-8f0a-1f1f2ab55001"

	t.Run(`credit purchase grants once check`, func(t *testing.T) {
		i, _, fakeLed, _ := getInstance()

		event := billingapimodels.BillingWebhookEvent{
			EventID:    "0b0e51e3-32bb-4f54-9c4e-64e8b6517e7b",
			EventType:  models.BillingEventCreditPurchase,
			OrgID:      orgID,
			CreditType: models.CreditTypeJobListing,
			Amount:     5,
		}
		duplicate, err := i.HandleEvent(ctx, event)
		require.Nil(t, err)
		require.False(t, duplicate)
		require.Equal(t, int64(5), fakeLed.granted[models.CreditTypeJobListing])

		// provider retry of the same delivery
		duplicate, err = i.HandleEvent(ctx, event)
		require.Nil(t, err)
		require.True(t, duplicate)
		require.Equal(t, int64(5), fakeLed.granted[models.CreditTypeJobListing])
	})

	t.Run(`grant survives a failed first delivery check`, func(t *testing.T) {
		i, fakeStore, fakeLed, _ := getInstance()
		fakeLed.grantFailures = 1

		event := billingapimodels.BillingWebhookEvent{
			EventID:    "9c2f7d40-68ba-4a47-8a6e-24d9d32be50a",
			EventType:  models.BillingEventCreditPurchase,
			OrgID:      orgID,
			CreditType: models.CreditTypeJobListing,
			Amount:     5,
		}
		// the event row is recorded but the grant fails, the delivery errors
		_, err := i.HandleEvent(ctx, event)
		require.NotNil(t, err)
		require.Equal(t, int64(0), fakeLed.granted[models.CreditTypeJobListing])
		require.Equal(t, models.BillingEventStatusPending, fakeStore.recs[event.EventID].Status)

		// the provider retry must finish the grant, not skip it
		duplicate, err := i.HandleEvent(ctx, event)
		require.Nil(t, err)
		require.False(t, duplicate)
		require.Equal(t, int64(5), fakeLed.granted[models.CreditTypeJobListing])
		require.Equal(t, models.BillingEventStatusProcessed, fakeStore.recs[event.EventID].Status)

		// a further replay is a plain no-op
		duplicate, err = i.HandleEvent(ctx, event)
		require.Nil(t, err)
		require.True(t, duplicate)
		require.Equal(t, int64(5), fakeLed.granted[models.CreditTypeJobListing])
	})

	t.Run(`points earn check`, func(t *testing.T) {
		i, _, fakeLed, _ := getInstance()

		duplicate, err := i.HandleEvent(ctx, billingapimodels.BillingWebhookEvent{
			EventID:   "6a3d7a81-2f0e-4e71-9a93-0f2f6f8f4c11",
			EventType: models.BillingEventPointsEarn,
			OrgID:     orgID,
			Amount:    250,
		})
		require.Nil(t, err)
		require.False(t, duplicate)
		require.Equal(t, int64(250), fakeLed.earned)
	})

	t.Run(`subscription update upserts check`, func(t *testing.T) {
		i, _, _, fakeSubs := getInstance()

		event := billingapimodels.BillingWebhookEvent{
			EventID:   "f3d1c7ae-51f2-4b7a-b0cd-7f5f1d2a9b44",
			EventType: models.BillingEventSubscriptionUpdated,
			OrgID:     orgID,
			Tier:      models.PlanTierGrowth,
			Status:    models.SubscriptionStatusPastDue,
		}
		duplicate, err := i.HandleEvent(ctx, event)
		require.Nil(t, err)
		require.False(t, duplicate)
		require.Equal(t, models.PlanTierGrowth, fakeSubs.tier)
		require.Equal(t, models.SubscriptionStatusPastDue, fakeSubs.status)
		require.Equal(t, 1, fakeSubs.upserts)

		duplicate, err = i.HandleEvent(ctx, event)
		require.Nil(t, err)
		require.True(t, duplicate)
		require.Equal(t, 1, fakeSubs.upserts)
	})
}
