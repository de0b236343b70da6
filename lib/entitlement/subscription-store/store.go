package subscriptionstore

import (
	"context"
	"time"

	"canopy-backend/models"
	dbmodels "canopy-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	GetByOrg(ctx context.Context, orgID string) (rec *dbmodels.Subscription, err error)
	Upsert(ctx context.Context, orgID string, tier models.PlanTier, status models.SubscriptionStatus) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) GetByOrg(ctx context.Context, orgID string) (*dbmodels.Subscription, error) {
	rec := dbmodels.Subscription{}
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

func (i impl) Upsert(ctx context.Context, orgID string, tier models.PlanTier, status models.SubscriptionStatus) error {
	existing, err := i.GetByOrg(ctx, orgID)
	if err != nil {
		return err
	}
	now := time.Now()
	if existing == nil {
		rec := dbmodels.Subscription{
			BaseOrgModel: dbmodels.BaseOrgModel{
				OrgID: orgID,
			},
			Tier:            tier,
			Status:          status,
			StatusChangedAt: &now,
		}
		if err := rec.Validate(); err != nil {
			return err
		}
		return i.db.WithContext(ctx).Save(&rec).Error
	}
	updMap := map[string]interface{}{
		"tier":   tier,
		"status": status,
	}
	if existing.Status != status {
		updMap["status_changed_at"] = now
	}
	return i.db.
		WithContext(ctx).
		Model(&dbmodels.Subscription{}).
		Where("id = ?", existing.ID).
		Updates(updMap).
		Error
}
