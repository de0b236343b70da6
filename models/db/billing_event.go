package dbmodels

import (
	"canopy-backend/models"

	"github.com/pkg/errors"
)

// BillingEvent records a payment-provider event. The unique provider event id
// is what makes webhook replays a no-op, and Status tracks whether the
// event's effects were actually committed: a PENDING row means an earlier
// delivery failed mid-way and the retry must finish the job.
type BillingEvent struct {
	BaseOrgModel
	EventID   string                    `gorm:"type:varchar(64);uniqueIndex"`
	EventType models.BillingEventType   `gorm:"type:varchar(50)"`
	Status    models.BillingEventStatus `gorm:"type:varchar(20)"`
	Payload   string
}

func (e BillingEvent) Validate() error {
	if err := e.BaseOrgModel.Validate(); err != nil {
		return err
	}
	if e.EventID == "" {
		return errors.New("provider event id is not specified")
	}
	if e.EventType == "" {
		return errors.New("event type is not specified")
	}
	if e.Status == "" {
		return errors.New("event status is not specified")
	}
	return nil
}
