package creditstore

import (
	"context"

	"canopy-backend/models"
	dbmodels "canopy-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Provider interface {
	Get(ctx context.Context, orgID string, creditType models.CreditType) (*dbmodels.CreditBalance, error)
	List(ctx context.Context, orgID string) (list []dbmodels.CreditBalance, err error)
	Grant(ctx context.Context, orgID string, creditType models.CreditType, amount int64, reference string) error
	Debit(ctx context.Context, orgID string, creditType models.CreditType, amount int64, reference string) (ok bool, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Get(ctx context.Context, orgID string, creditType models.CreditType) (*dbmodels.CreditBalance, error) {
	rec := dbmodels.CreditBalance{}
	err := i.db.
		WithContext(ctx).
		Where("org_id = ?", orgID).
		Where("credit_type = ?", creditType).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) List(ctx context.Context, orgID string) (list []dbmodels.CreditBalance, err error) {
	list = []dbmodels.CreditBalance{}
	err = i.db.
		WithContext(ctx).
		Where("org_id = ?", orgID).
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

// Grant increments the balance, creating the row on first grant, and appends
// the history record in the same transaction. The upsert keeps concurrent
// first grants from racing on row creation.
func (i impl) Grant(ctx context.Context, orgID string, creditType models.CreditType, amount int64, reference string) error {
	rec := dbmodels.CreditBalance{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: orgID,
		},
		CreditType: creditType,
		Balance:    amount,
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	return i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "org_id"}, {Name: "credit_type"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("credit_balances.balance + ?", amount)}),
			}).
			Create(&rec).
			Error
		if err != nil {
			return errors.Wrap(err, "failed to increment credit balance")
		}
		return i.appendHistory(tx, orgID, creditType, amount, reference)
	})
}

// Debit is a single conditional decrement: the sufficiency predicate is part
// of the UPDATE itself, so concurrent debits serialize at the storage layer
// and the balance can never go negative. ok=false means insufficient funds.
func (i impl) Debit(ctx context.Context, orgID string, creditType models.CreditType, amount int64, reference string) (ok bool, err error) {
	err = i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&dbmodels.CreditBalance{}).
			Where("org_id = ?", orgID).
			Where("credit_type = ?", creditType).
			Where("balance >= ?", amount).
			UpdateColumn("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to decrement credit balance")
		}
		if res.RowsAffected == 0 {
			return nil
		}
		ok = true
		return i.appendHistory(tx, orgID, creditType, -amount, reference)
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (i impl) appendHistory(tx *gorm.DB, orgID string, creditType models.CreditType, amount int64, reference string) error {
	histRec := dbmodels.CreditTransaction{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: orgID,
		},
		CreditType: creditType,
		Amount:     amount,
		Reference:  reference,
	}
	if err := histRec.Validate(); err != nil {
		return err
	}
	if err := tx.Create(&histRec).Error; err != nil {
		return errors.Wrap(err, "failed to append credit history record")
	}
	return nil
}
