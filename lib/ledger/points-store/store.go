package pointsstore

import (
	"context"

	dbmodels "canopy-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Provider interface {
	Get(ctx context.Context, orgID string) (*dbmodels.PointsBalance, error)
	Earn(ctx context.Context, orgID string, amount int64) error
	Redeem(ctx context.Context, orgID string, amount int64) (ok bool, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Get(ctx context.Context, orgID string) (*dbmodels.PointsBalance, error) {
	rec := dbmodels.PointsBalance{}
	err := i.db.
		WithContext(ctx).
		Where("org_id = ?", orgID).
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

func (i impl) Earn(ctx context.Context, orgID string, amount int64) error {
	rec := dbmodels.PointsBalance{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: orgID,
		},
		Balance: amount,
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	err := i.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "org_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("points_balances.balance + ?", amount)}),
		}).
		Create(&rec).
		Error
	if err != nil {
		return errors.Wrap(err, "failed to increment points balance")
	}
	return nil
}

// Redeem decrements only when the balance covers the amount; the predicate is
// part of the UPDATE so interleaved redemptions cannot underflow.
func (i impl) Redeem(ctx context.Context, orgID string, amount int64) (ok bool, err error) {
	res := i.db.
		WithContext(ctx).
		Model(&dbmodels.PointsBalance{}).
		Where("org_id = ?", orgID).
		Where("balance >= ?", amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "failed to decrement points balance")
	}
	return res.RowsAffected != 0, nil
}
