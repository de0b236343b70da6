package db

import (
	dbmodels "canopy-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func AutoMigrateDB() error {
	DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	log.Info("running migrations")
	if err := DB.AutoMigrate(&dbmodels.CreditBalance{}); err != nil {
		return errors.Wrap(err, "failed to migrate CreditBalance")
	}
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uk_credit_balances_org_type ON credit_balances (org_id, credit_type);")
	if err := DB.AutoMigrate(&dbmodels.CreditTransaction{}); err != nil {
		return errors.Wrap(err, "failed to migrate CreditTransaction")
	}
	if err := DB.AutoMigrate(&dbmodels.PointsBalance{}); err != nil {
		return errors.Wrap(err, "failed to migrate PointsBalance")
	}
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uk_points_balances_org ON points_balances (org_id);")
	if err := DB.AutoMigrate(&dbmodels.Subscription{}); err != nil {
		return errors.Wrap(err, "failed to migrate Subscription")
	}
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uk_subscriptions_org ON subscriptions (org_id);")
	if err := DB.AutoMigrate(&dbmodels.BillingEvent{}); err != nil {
		return errors.Wrap(err, "failed to migrate BillingEvent")
	}
	log.Info("migrations finished")
	return nil
}
