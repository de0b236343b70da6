package dbmodels

import (
	"canopy-backend/models"
	"time"

	"github.com/pkg/errors"
)

// Subscription is the payment provider's view of an organization, one row per
// org. Tier and status are written by the provider webhook; the gate
// evaluator only reads them.
type Subscription struct {
	BaseOrgModel
	Tier            models.PlanTier           `gorm:"type:varchar(50)"`
	Status          models.SubscriptionStatus `gorm:"type:varchar(50)"`
	StatusChangedAt *time.Time
}

func (s Subscription) Validate() error {
	if err := s.BaseOrgModel.Validate(); err != nil {
		return err
	}
	if s.Tier == "" {
		return errors.New("tier is not specified")
	}
	if s.Status == "" {
		return errors.New("status is not specified")
	}
	return nil
}
