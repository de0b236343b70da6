package ledger

import (
	"context"
	"sync"
	"testing"

	txstore "canopy-backend/lib/ledger/tx-store"
	"canopy-backend/models"
	dbmodels "canopy-backend/models/db"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type balanceKey struct {
	orgID      string
	creditType models.CreditType
}

// fakeCreditStore mirrors the storage contract: increments are plain upserts
// and debits re-check the sufficiency predicate atomically.
type fakeCreditStore struct {
	mu       sync.Mutex
	balances map[balanceKey]int64
	history  []dbmodels.CreditTransaction
	failures int // transient errors injected before the next call succeeds
}

func newFakeCreditStore() *fakeCreditStore {
	return &fakeCreditStore{balances: map[balanceKey]int64{}}
}

func (f *fakeCreditStore) takeFailure() bool {
	if f.failures > 0 {
		f.failures--
		return true
	}
	return false
}

func (f *fakeCreditStore) Get(_ context.Context, orgID string, creditType models.CreditType) (*dbmodels.CreditBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	balance, exists := f.balances[balanceKey{orgID, creditType}]
	if !exists {
		return nil, nil
	}
	rec := dbmodels.CreditBalance{CreditType: creditType, Balance: balance}
	rec.OrgID = orgID
	return &rec, nil
}

func (f *fakeCreditStore) List(_ context.Context, orgID string) ([]dbmodels.CreditBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.takeFailure() {
		return nil, errors.New("storage unavailable")
	}
	list := []dbmodels.CreditBalance{}
	for key, balance := range f.balances {
		if key.orgID != orgID {
			continue
		}
		rec := dbmodels.CreditBalance{CreditType: key.creditType, Balance: balance}
		rec.OrgID = orgID
		list = append(list, rec)
	}
	return list, nil
}

func (f *fakeCreditStore) Grant(_ context.Context, orgID string, creditType models.CreditType, amount int64, reference string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.takeFailure() {
		return errors.New("storage unavailable")
	}
	key := balanceKey{orgID, creditType}
	f.balances[key] += amount
	f.history = append(f.history, dbmodels.CreditTransaction{CreditType: creditType, Amount: amount, Reference: reference})
	return nil
}

func (f *fakeCreditStore) Debit(_ context.Context, orgID string, creditType models.CreditType, amount int64, reference string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.takeFailure() {
		return false, errors.New("storage unavailable")
	}
	key := balanceKey{orgID, creditType}
	if f.balances[key] < amount {
		return false, nil
	}
	f.balances[key] -= amount
	f.history = append(f.history, dbmodels.CreditTransaction{CreditType: creditType, Amount: -amount, Reference: reference})
	return true, nil
}

type fakePointsStore struct {
	mu       sync.Mutex
	balances map[string]int64
}

func newFakePointsStore() *fakePointsStore {
	return &fakePointsStore{balances: map[string]int64{}}
}

func (f *fakePointsStore) Get(_ context.Context, orgID string) (*dbmodels.PointsBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	balance, exists := f.balances[orgID]
	if !exists {
		return nil, nil
	}
	rec := dbmodels.PointsBalance{Balance: balance}
	rec.OrgID = orgID
	return &rec, nil
}

func (f *fakePointsStore) Earn(_ context.Context, orgID string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[orgID] += amount
	return nil
}

func (f *fakePointsStore) Redeem(_ context.Context, orgID string, amount int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balances[orgID] < amount {
		return false, nil
	}
	f.balances[orgID] -= amount
	return true, nil
}

type fakeTxStore struct{}

func (fakeTxStore) List(_ context.Context, _ string, _ txstore.Filter) ([]dbmodels.CreditTransaction, error) {
	return nil, nil
}

func getInstance(creditStore *fakeCreditStore, pointsStore *fakePointsStore) impl {
	return impl{
		creditStore:     creditStore,
		pointsStore:     pointsStore,
		txStore:         fakeTxStore{},
		pointValueCents: 1,
	}
}

func TestCreditLedger(t *testing.T) {
	ctx := context.TODO()
	const orgID = "4aa0a6c3-9c70-4f1e-8f0a-1f1f2ab55001"

	t.Run(`grant then full debit check`, func(t *testing.T) {
		store := newFakeCreditStore()
		i := getInstance(store, newFakePointsStore())

		err := i.GrantCredits(ctx, orgID, models.CreditTypeJobListing, 5, "purchase")
		require.Nil(t, err)
		err = i.DebitCredits(ctx, orgID, models.CreditTypeJobListing, 5, "listing published")
		require.Nil(t, err)

		credits, err := i.GetCredits(ctx, orgID)
		require.Nil(t, err)
		require.Equal(t, int64(0), credits[models.CreditTypeJobListing])

		err = i.DebitCredits(ctx, orgID, models.CreditTypeJobListing, 1, "listing published")
		require.True(t, errors.Is(err, ErrInsufficientCredits))
	})

	t.Run(`missing row reads as zero check`, func(t *testing.T) {
		i := getInstance(newFakeCreditStore(), newFakePointsStore())
		credits, err := i.GetCredits(ctx, orgID)
		require.Nil(t, err)
		require.Equal(t, int64(0), credits[models.CreditTypeJobListing])
		require.Equal(t, int64(0), credits[models.CreditTypeFeaturedListing])
	})

	t.Run(`non-positive amounts rejected check`, func(t *testing.T) {
		i := getInstance(newFakeCreditStore(), newFakePointsStore())
		require.NotNil(t, i.GrantCredits(ctx, orgID, models.CreditTypeJobListing, 0, ""))
		require.NotNil(t, i.DebitCredits(ctx, orgID, models.CreditTypeJobListing, -1, ""))
	})

	t.Run(`final balance equals grants minus successful debits check`, func(t *testing.T) {
		store := newFakeCreditStore()
		i := getInstance(store, newFakePointsStore())

		require.Nil(t, i.GrantCredits(ctx, orgID, models.CreditTypeJobListing, 3, ""))
		require.Nil(t, i.DebitCredits(ctx, orgID, models.CreditTypeJobListing, 2, ""))
		require.True(t, errors.Is(i.DebitCredits(ctx, orgID, models.CreditTypeJobListing, 2, ""), ErrInsufficientCredits))
		require.Nil(t, i.GrantCredits(ctx, orgID, models.CreditTypeJobListing, 4, ""))
		require.Nil(t, i.DebitCredits(ctx, orgID, models.CreditTypeJobListing, 5, ""))

		credits, err := i.GetCredits(ctx, orgID)
		require.Nil(t, err)
		require.Equal(t, int64(0), credits[models.CreditTypeJobListing])
	})

	t.Run(`transient storage errors retried check`, func(t *testing.T) {
		store := newFakeCreditStore()
		store.failures = 2
		i := getInstance(store, newFakePointsStore())

		err := i.GrantCredits(ctx, orgID, models.CreditTypeJobListing, 1, "purchase")
		require.Nil(t, err)
	})

	t.Run(`insufficient credits never retried check`, func(t *testing.T) {
		store := newFakeCreditStore()
		i := getInstance(store, newFakePointsStore())

		err := i.DebitCredits(ctx, orgID, models.CreditTypeJobListing, 1, "")
		require.True(t, errors.Is(err, ErrInsufficientCredits))
		require.Empty(t, store.history)
	})

	t.Run(`concurrent debits admit exactly the balance check`, func(t *testing.T) {
		const startBalance = 7
		const workers = 20
		store := newFakeCreditStore()
		i := getInstance(store, newFakePointsStore())
		require.Nil(t, i.GrantCredits(ctx, orgID, models.CreditTypeJobListing, startBalance, ""))

		var wg sync.WaitGroup
		results := make(chan error, workers)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- i.DebitCredits(ctx, orgID, models.CreditTypeJobListing, 1, "")
			}()
		}
		wg.Wait()
		close(results)

		succeeded := 0
		failed := 0
		for err := range results {
			if err == nil {
				succeeded++
				continue
			}
			require.True(t, errors.Is(err, ErrInsufficientCredits))
			failed++
		}
		require.Equal(t, startBalance, succeeded)
		require.Equal(t, workers-startBalance, failed)

		credits, err := i.GetCredits(ctx, orgID)
		require.Nil(t, err)
		require.Equal(t, int64(0), credits[models.CreditTypeJobListing])
	})
}

func TestPointsLedger(t *testing.T) {
	ctx := context.TODO()
	const orgID = "4aa0a6c3-9c70-4f1e-8f0a-1f1f2ab55001"

	t.Run(`points value is integer multiply check`, func(t *testing.T) {
		i := getInstance(newFakeCreditStore(), newFakePointsStore())
		require.Equal(t, int64(250), i.PointsValueCents(250))
	})

	t.Run(`earn and redeem check`, func(t *testing.T) {
		i := getInstance(newFakeCreditStore(), newFakePointsStore())
		require.Nil(t, i.EarnPoints(ctx, orgID, 100))
		require.Nil(t, i.RedeemPoints(ctx, orgID, 40))

		balance, err := i.GetPoints(ctx, orgID)
		require.Nil(t, err)
		require.Equal(t, int64(60), balance)

		err = i.RedeemPoints(ctx, orgID, 61)
		require.True(t, errors.Is(err, ErrInsufficientPoints))
	})

	t.Run(`missing points row reads as zero check`, func(t *testing.T) {
		i := getInstance(newFakeCreditStore(), newFakePointsStore())
		balance, err := i.GetPoints(ctx, orgID)
		require.Nil(t, err)
		require.Equal(t, int64(0), balance)
	})
}
