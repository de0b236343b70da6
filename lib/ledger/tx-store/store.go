package txstore

import (
	"context"

	"canopy-backend/models"
	dbmodels "canopy-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Filter struct {
	CreditType *models.CreditType
}

type Provider interface {
	List(ctx context.Context, orgID string, filter Filter) (list []dbmodels.CreditTransaction, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) List(ctx context.Context, orgID string, filter Filter) (list []dbmodels.CreditTransaction, err error) {
	var result []dbmodels.CreditTransaction
	tx := i.db.
		WithContext(ctx).
		Model(dbmodels.CreditTransaction{}).
		Where("org_id = ?", orgID)
	i.addFilter(tx, filter)
	err = tx.Find(&result).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load credit history")
	}
	return result, nil
}

func (i impl) addFilter(tx *gorm.DB, filter Filter) {
	if filter.CreditType != nil {
		tx.Where("credit_transactions.credit_type = ?", *filter.CreditType)
	}

	tx.Order("created_at desc")
}
