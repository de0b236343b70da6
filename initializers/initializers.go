package initializers

import (
	"context"
	"time"

	"canopy-backend/config"
	"canopy-backend/fiberlog"
	billingwebhook "canopy-backend/lib/billing-webhook"
	"canopy-backend/lib/entitlement"
	xlsexport "canopy-backend/lib/export/xls"
	"canopy-backend/lib/ledger"
	transitionplanner "canopy-backend/lib/pipeline/planner"
	stageregistry "canopy-backend/lib/pipeline/registry"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(_ context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	stageregistry.NewHandler(stageregistry.DefaultStageDefinitions)
	transitionplanner.NewHandler()
	ledger.NewHandler(config.Conf.Billing.PointValueCents)
	entitlement.NewHandler(time.Duration(config.Conf.Billing.PastDueGraceDays) * 24 * time.Hour)
	billingwebhook.NewHandler()
	xlsexport.NewHandler()
}
