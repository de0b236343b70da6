package entitlement

import (
	"context"
	"time"

	"canopy-backend/db"
	subscriptionstore "canopy-backend/lib/entitlement/subscription-store"
	creditstore "canopy-backend/lib/ledger/credit-store"
	"canopy-backend/models"
	billingapimodels "canopy-backend/models/api/billing"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// GateContext carries request-scoped facts the evaluator cannot derive from
// billing state alone.
type GateContext struct {
	ActiveListings int64 // listings currently active for the org
}

type Provider interface {
	EvaluateGate(ctx context.Context, orgID string, feature models.FeatureKey, gCtx GateContext) (billingapimodels.GateResultView, error)
	EffectiveTier(ctx context.Context, orgID string) (models.PlanTier, error)
}

var Instance Provider

func NewHandler(graceWindow time.Duration) {
	Instance = impl{
		subscriptionStore: subscriptionstore.NewInstance(db.DB),
		creditStore:       creditstore.NewInstance(db.DB),
		graceWindow:       graceWindow,
	}
}

type impl struct {
	subscriptionStore subscriptionstore.Provider
	creditStore       creditstore.Provider
	graceWindow       time.Duration
}

func (i impl) getLogger(orgID string) *log.Entry {
	return log.WithField("org_id", orgID)
}

// EffectiveTier maps the stored subscription onto the tier gates are checked
// against. CANCELED and expired PAST_DUE evaluate as FREE: fail closed, never
// open. A missing row is a FREE organization.
func (i impl) EffectiveTier(ctx context.Context, orgID string) (models.PlanTier, error) {
	rec, err := i.subscriptionStore.GetByOrg(ctx, orgID)
	if err != nil {
		return "", errors.Wrap(err, "failed to load subscription")
	}
	if rec == nil {
		return models.PlanTierFree, nil
	}
	switch rec.Status {
	case models.SubscriptionStatusActive:
		return rec.Tier, nil
	case models.SubscriptionStatusPastDue:
		if rec.StatusChangedAt != nil && time.Since(*rec.StatusChangedAt) <= i.graceWindow {
			return rec.Tier, nil
		}
		return models.PlanTierFree, nil
	case models.SubscriptionStatusCanceled:
		return models.PlanTierFree, nil
	}
	i.getLogger(orgID).
		WithField("status", rec.Status).
		Warn("unknown subscription status, evaluating as FREE")
	return models.PlanTierFree, nil
}

func (i impl) EvaluateGate(ctx context.Context, orgID string, feature models.FeatureKey, gCtx GateContext) (billingapimodels.GateResultView, error) {
	tier, err := i.EffectiveTier(ctx, orgID)
	if err != nil {
		return billingapimodels.GateResultView{}, err
	}
	features, err := GetPlanFeatures(tier)
	if err != nil {
		// configuration gap, not a user error: log loudly and abort
		i.getLogger(orgID).WithError(err).Error("plan tier missing from the feature table")
		return billingapimodels.GateResultView{}, err
	}

	switch feature {
	case models.FeatureJobListing:
		return i.evaluateConsumption(ctx, orgID, tier, features, gCtx, models.CreditTypeJobListing)
	case models.FeatureFeaturedListing:
		if features.FeaturedListings {
			return allowed(), nil
		}
		// featured listings can also be bought as credits on any tier
		return i.evaluateCreditFallback(ctx, orgID, tier, models.CreditTypeFeaturedListing, minTierWithFlag(feature))
	}

	flag, known := features.booleanFlag(feature)
	if !known {
		return billingapimodels.GateResultView{
			Allowed: false,
			Reason:  models.GateReasonUnknownFeature,
		}, nil
	}
	if flag {
		return allowed(), nil
	}
	return billingapimodels.GateResultView{
		Allowed:      false,
		Reason:       models.GateReasonPlanInsufficient,
		RequiredTier: minTierWithFlag(feature),
	}, nil
}

// evaluateConsumption checks the plan quota first and falls back to credits
// for the overage path, so the caller can tell "upgrade" apart from "buy
// credits".
func (i impl) evaluateConsumption(ctx context.Context, orgID string, tier models.PlanTier, features PlanFeatures, gCtx GateContext, creditType models.CreditType) (billingapimodels.GateResultView, error) {
	if features.MaxActiveListings >= 0 && gCtx.ActiveListings >= features.MaxActiveListings {
		return billingapimodels.GateResultView{
			Allowed:      false,
			Reason:       models.GateReasonPlanInsufficient,
			RequiredTier: minTierWithCeilingAbove(gCtx.ActiveListings),
		}, nil
	}
	if gCtx.ActiveListings < features.IncludedListings {
		return allowed(), nil
	}
	return i.evaluateCreditFallback(ctx, orgID, tier, creditType, minTierWithQuotaAbove(gCtx.ActiveListings))
}

func (i impl) evaluateCreditFallback(ctx context.Context, orgID string, tier models.PlanTier, creditType models.CreditType, upgradeTier *models.PlanTier) (billingapimodels.GateResultView, error) {
	rec, err := i.creditStore.Get(ctx, orgID, creditType)
	if err != nil {
		return billingapimodels.GateResultView{}, errors.Wrap(err, "failed to load credit balance")
	}
	if rec != nil && rec.Balance > 0 {
		return allowed(), nil
	}
	return billingapimodels.GateResultView{
		Allowed:      false,
		Reason:       models.GateReasonCreditExhausted,
		RequiredTier: upgradeTier,
	}, nil
}

func allowed() billingapimodels.GateResultView {
	return billingapimodels.GateResultView{
		Allowed: true,
		Reason:  models.GateReasonNone,
	}
}

// minTierWithFlag walks tiers from least to most capable and returns the
// first one whose flag satisfies the feature, nil when none does.
func minTierWithFlag(feature models.FeatureKey) *models.PlanTier {
	for _, tier := range models.PlanTierOrder {
		features, err := GetPlanFeatures(tier)
		if err != nil {
			continue
		}
		if flag, known := features.booleanFlag(feature); known && flag {
			result := tier
			return &result
		}
	}
	return nil
}

func minTierWithQuotaAbove(activeListings int64) *models.PlanTier {
	for _, tier := range models.PlanTierOrder {
		features, err := GetPlanFeatures(tier)
		if err != nil {
			continue
		}
		if features.IncludedListings > activeListings {
			result := tier
			return &result
		}
	}
	return nil
}

func minTierWithCeilingAbove(activeListings int64) *models.PlanTier {
	for _, tier := range models.PlanTierOrder {
		features, err := GetPlanFeatures(tier)
		if err != nil {
			continue
		}
		if features.MaxActiveListings < 0 || features.MaxActiveListings > activeListings {
			result := tier
			return &result
		}
	}
	return nil
}
