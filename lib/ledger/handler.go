package ledger

import (
	"context"
	"time"

	"canopy-backend/db"
	creditstore "canopy-backend/lib/ledger/credit-store"
	pointsstore "canopy-backend/lib/ledger/points-store"
	txstore "canopy-backend/lib/ledger/tx-store"
	"canopy-backend/lib/utils/helpers"
	"canopy-backend/models"
	billingapimodels "canopy-backend/models/api/billing"
	dbmodels "canopy-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrInsufficientCredits is a business-rule failure: the debit would drive
// the balance negative. It is user-facing and never retried.
var ErrInsufficientCredits = errors.New("insufficient credits")

// ErrInsufficientPoints is the points counterpart of ErrInsufficientCredits.
var ErrInsufficientPoints = errors.New("insufficient points")

const (
	storageRetryAttempts = 3
	storageRetryDelay    = 50 * time.Millisecond
)

type Provider interface {
	GetCredits(ctx context.Context, orgID string) (map[models.CreditType]int64, error)
	GrantCredits(ctx context.Context, orgID string, creditType models.CreditType, amount int64, reference string) error
	DebitCredits(ctx context.Context, orgID string, creditType models.CreditType, amount int64, reference string) error
	GetPoints(ctx context.Context, orgID string) (int64, error)
	PointsValueCents(balance int64) int64
	EarnPoints(ctx context.Context, orgID string, amount int64) error
	RedeemPoints(ctx context.Context, orgID string, amount int64) error
	ListTransactions(ctx context.Context, orgID string) ([]billingapimodels.CreditTransactionView, error)
}

var Instance Provider

func NewHandler(pointValueCents int64) {
	Instance = impl{
		creditStore:     creditstore.NewInstance(db.DB),
		pointsStore:     pointsstore.NewInstance(db.DB),
		txStore:         txstore.NewInstance(db.DB),
		pointValueCents: pointValueCents,
	}
}

type impl struct {
	creditStore     creditstore.Provider
	pointsStore     pointsstore.Provider
	txStore         txstore.Provider
	pointValueCents int64
}

func (i impl) getLogger(orgID string) *log.Entry {
	return log.WithField("org_id", orgID)
}

// GetCredits returns every known credit type, zero for types with no row.
// Reads always hit the source of truth: entitlement decisions must not be
// served from a stale cache.
func (i impl) GetCredits(ctx context.Context, orgID string) (map[models.CreditType]int64, error) {
	var recs []dbmodels.CreditBalance
	err := helpers.RetryWithBackoff(ctx, storageRetryAttempts, storageRetryDelay, func() (bool, error) {
		var err error
		recs, err = i.creditStore.List(ctx, orgID)
		return true, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load credit balances")
	}
	result := make(map[models.CreditType]int64, len(models.KnownCreditTypes))
	for _, creditType := range models.KnownCreditTypes {
		result[creditType] = 0
	}
	for _, rec := range recs {
		result[rec.CreditType] = rec.Balance
	}
	return result, nil
}

// GrantCredits increments the balance. Idempotency is the caller's job: the
// webhook handler dedupes on the provider event id before calling in here.
func (i impl) GrantCredits(ctx context.Context, orgID string, creditType models.CreditType, amount int64, reference string) error {
	if amount <= 0 {
		return errors.New("grant amount must be positive")
	}
	err := helpers.RetryWithBackoff(ctx, storageRetryAttempts, storageRetryDelay, func() (bool, error) {
		return true, i.creditStore.Grant(ctx, orgID, creditType, amount, reference)
	})
	if err != nil {
		return errors.Wrap(err, "failed to grant credits")
	}
	i.getLogger(orgID).
		WithField("credit_type", creditType).
		WithField("amount", amount).
		Info("credits granted")
	return nil
}

// DebitCredits consumes credits through a single conditional decrement.
// Retrying a failed attempt is safe: the sufficiency predicate is re-checked
// by the storage layer on every try.
func (i impl) DebitCredits(ctx context.Context, orgID string, creditType models.CreditType, amount int64, reference string) error {
	if amount <= 0 {
		return errors.New("debit amount must be positive")
	}
	err := helpers.RetryWithBackoff(ctx, storageRetryAttempts, storageRetryDelay, func() (bool, error) {
		ok, err := i.creditStore.Debit(ctx, orgID, creditType, amount, reference)
		if err != nil {
			return true, err
		}
		if !ok {
			return false, errors.Wrapf(ErrInsufficientCredits, "(%v)", creditType)
		}
		return false, nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			return err
		}
		return errors.Wrap(err, "failed to debit credits")
	}
	i.getLogger(orgID).
		WithField("credit_type", creditType).
		WithField("amount", amount).
		Info("credits debited")
	return nil
}

func (i impl) GetPoints(ctx context.Context, orgID string) (balance int64, err error) {
	err = helpers.RetryWithBackoff(ctx, storageRetryAttempts, storageRetryDelay, func() (bool, error) {
		rec, err := i.pointsStore.Get(ctx, orgID)
		if err != nil {
			return true, err
		}
		if rec != nil {
			balance = rec.Balance
		}
		return false, nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to load points balance")
	}
	return balance, nil
}

// PointsValueCents is a pure integer multiply; both operands are integers so
// there is no rounding to argue about.
func (i impl) PointsValueCents(balance int64) int64 {
	return balance * i.pointValueCents
}

func (i impl) EarnPoints(ctx context.Context, orgID string, amount int64) error {
	if amount <= 0 {
		return errors.New("earn amount must be positive")
	}
	err := helpers.RetryWithBackoff(ctx, storageRetryAttempts, storageRetryDelay, func() (bool, error) {
		return true, i.pointsStore.Earn(ctx, orgID, amount)
	})
	if err != nil {
		return errors.Wrap(err, "failed to earn points")
	}
	i.getLogger(orgID).WithField("amount", amount).Info("points earned")
	return nil
}

func (i impl) RedeemPoints(ctx context.Context, orgID string, amount int64) error {
	if amount <= 0 {
		return errors.New("redeem amount must be positive")
	}
	err := helpers.RetryWithBackoff(ctx, storageRetryAttempts, storageRetryDelay, func() (bool, error) {
		ok, err := i.pointsStore.Redeem(ctx, orgID, amount)
		if err != nil {
			return true, err
		}
		if !ok {
			return false, ErrInsufficientPoints
		}
		return false, nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientPoints) {
			return err
		}
		return errors.Wrap(err, "failed to redeem points")
	}
	i.getLogger(orgID).WithField("amount", amount).Info("points redeemed")
	return nil
}

func (i impl) ListTransactions(ctx context.Context, orgID string) ([]billingapimodels.CreditTransactionView, error) {
	list, err := i.txStore.List(ctx, orgID, txstore.Filter{})
	if err != nil {
		return nil, err
	}
	result := make([]billingapimodels.CreditTransactionView, 0, len(list))
	for _, rec := range list {
		result = append(result, billingapimodels.CreditTransactionView{
			ID:         rec.ID,
			CreditType: rec.CreditType,
			Amount:     rec.Amount,
			Reference:  rec.Reference,
			CreatedAt:  rec.CreatedAt,
		})
	}
	return result, nil
}
