package billingeventstore

import (
	"context"

	"canopy-backend/models"
	dbmodels "canopy-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Provider interface {
	GetByEventID(ctx context.Context, eventID string) (rec *dbmodels.BillingEvent, err error)
	// CreateIfAbsent inserts the event record, reporting created=false when a
	// record with the same provider event id already exists.
	CreateIfAbsent(ctx context.Context, rec dbmodels.BillingEvent) (created bool, err error)
	// MarkProcessed flips a PENDING record to PROCESSED. ok=false means the
	// record was already processed by a concurrent delivery.
	MarkProcessed(ctx context.Context, eventID string) (ok bool, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) GetByEventID(ctx context.Context, eventID string) (*dbmodels.BillingEvent, error) {
	rec := dbmodels.BillingEvent{}
	err := i.db.
		WithContext(ctx).
		Where("event_id = ?", eventID).
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

func (i impl) CreateIfAbsent(ctx context.Context, rec dbmodels.BillingEvent) (created bool, err error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}
	res := i.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(&rec)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "failed to record billing event")
	}
	return res.RowsAffected != 0, nil
}

func (i impl) MarkProcessed(ctx context.Context, eventID string) (ok bool, err error) {
	res := i.db.
		WithContext(ctx).
		Model(&dbmodels.BillingEvent{}).
		Where("event_id = ?", eventID).
		Where("status = ?", models.BillingEventStatusPending).
		UpdateColumn("status", models.BillingEventStatusProcessed)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "failed to mark billing event processed")
	}
	return res.RowsAffected != 0, nil
}
