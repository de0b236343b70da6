package entitlement

import (
	"canopy-backend/models"

	"github.com/pkg/errors"
)

// PlanFeatures is the full capability row for one tier. Every tier in
// models.PlanTierOrder must have a row; a gap is a deployment error, not a
// user-facing condition.
type PlanFeatures struct {
	IncludedListings    int64 // active listings covered by the plan before credits kick in
	MaxActiveListings   int64 // hard ceiling, -1 for unlimited
	FeaturedListings    bool
	Analytics           bool
	SlackIntegration    bool
	CalendarIntegration bool
}

var planFeatures = map[models.PlanTier]PlanFeatures{
	models.PlanTierFree: {
		IncludedListings:  1,
		MaxActiveListings: 3,
	},
	models.PlanTierStarter: {
		IncludedListings:  5,
		MaxActiveListings: 15,
		Analytics:         true,
	},
	models.PlanTierGrowth: {
		IncludedListings:    20,
		MaxActiveListings:   60,
		FeaturedListings:    true,
		Analytics:           true,
		SlackIntegration:    true,
		CalendarIntegration: true,
	},
	models.PlanTierEnterprise: {
		IncludedListings:    100,
		MaxActiveListings:   -1,
		FeaturedListings:    true,
		Analytics:           true,
		SlackIntegration:    true,
		CalendarIntegration: true,
	},
}

// GetPlanFeatures is total over the closed tier set. An unknown tier means a
// migration shipped a tier this build does not know about; the caller logs it
// loudly and aborts the operation.
func GetPlanFeatures(tier models.PlanTier) (PlanFeatures, error) {
	features, exists := planFeatures[tier]
	if !exists {
		return PlanFeatures{}, errors.Errorf("plan tier missing from the feature table (%v)", tier)
	}
	return features, nil
}

func (f PlanFeatures) booleanFlag(feature models.FeatureKey) (value bool, known bool) {
	switch feature {
	case models.FeatureFeaturedListing:
		return f.FeaturedListings, true
	case models.FeatureAnalytics:
		return f.Analytics, true
	case models.FeatureSlackIntegration:
		return f.SlackIntegration, true
	case models.FeatureCalendarIntegration:
		return f.CalendarIntegration, true
	}
	return false, false
}
