package models

// CreditType is a consumable unit an organization spends to unlock a discrete
// action.
type CreditType string

const (
	CreditTypeJobListing      CreditType = "JOB_LISTING"
	CreditTypeFeaturedListing CreditType = "FEATURED_LISTING"
)

var creditTypeHumanName = map[CreditType]string{
	CreditTypeJobListing:      "Job listing",
	CreditTypeFeaturedListing: "Featured listing",
}

func (t CreditType) ToHuman() string {
	if human, exist := creditTypeHumanName[t]; exist {
		return human
	}
	return string(t)
}

var KnownCreditTypes = []CreditType{CreditTypeJobListing, CreditTypeFeaturedListing}

func (t CreditType) IsKnown() bool {
	for _, known := range KnownCreditTypes {
		if t == known {
			return true
		}
	}
	return false
}

// PlanTier is the subscription tier of an organization.
type PlanTier string

const (
	PlanTierFree       PlanTier = "FREE"
	PlanTierStarter    PlanTier = "STARTER"
	PlanTierGrowth     PlanTier = "GROWTH"
	PlanTierEnterprise PlanTier = "ENTERPRISE"
)

// PlanTierOrder lists tiers from least to most capable; used to suggest the
// minimum upgrade that satisfies a gate.
var PlanTierOrder = []PlanTier{PlanTierFree, PlanTierStarter, PlanTierGrowth, PlanTierEnterprise}

func (t PlanTier) IsKnown() bool {
	for _, known := range PlanTierOrder {
		if t == known {
			return true
		}
	}
	return false
}

var planTierHumanName = map[PlanTier]string{
	PlanTierFree:       "Free",
	PlanTierStarter:    "Starter",
	PlanTierGrowth:     "Growth",
	PlanTierEnterprise: "Enterprise",
}

func (t PlanTier) ToHuman() string {
	if human, exist := planTierHumanName[t]; exist {
		return human
	}
	return string(t)
}

// SubscriptionStatus tracks the linear degradation ACTIVE -> PAST_DUE ->
// CANCELED. The status itself is maintained by the payment provider webhook;
// the gate evaluator only consumes it.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
)

var knownSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusActive,
	SubscriptionStatusPastDue,
	SubscriptionStatusCanceled,
}

func (s SubscriptionStatus) IsKnown() bool {
	for _, known := range knownSubscriptionStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// FeatureKey names a gated capability. Boolean features switch on the tier
// flag alone; consumption features also look at quotas and credit balances.
type FeatureKey string

const (
	FeatureJobListing          FeatureKey = "JOB_LISTING"
	FeatureFeaturedListing     FeatureKey = "FEATURED_LISTING"
	FeatureAnalytics           FeatureKey = "ANALYTICS"
	FeatureSlackIntegration    FeatureKey = "SLACK_INTEGRATION"
	FeatureCalendarIntegration FeatureKey = "CALENDAR_INTEGRATION"
)

// GateReason explains a gate decision so the caller can render the right
// upsell.
type GateReason string

const (
	GateReasonNone             GateReason = "NONE"
	GateReasonPlanInsufficient GateReason = "PLAN_INSUFFICIENT"
	GateReasonCreditExhausted  GateReason = "CREDIT_EXHAUSTED"
	GateReasonUnknownFeature   GateReason = "UNKNOWN_FEATURE"
)

// BillingEventType is the kind of payment-provider event accepted by the
// billing webhook.
type BillingEventType string

const (
	BillingEventCreditPurchase      BillingEventType = "CREDIT_PURCHASE"
	BillingEventPointsEarn          BillingEventType = "POINTS_EARN"
	BillingEventSubscriptionUpdated BillingEventType = "SUBSCRIPTION_UPDATED"
)

// BillingEventStatus is the processing state of a recorded provider event.
// PENDING means the event row exists but its effects were not committed yet,
// so a provider retry must reapply them instead of skipping.
type BillingEventStatus string

const (
	BillingEventStatusPending   BillingEventStatus = "PENDING"
	BillingEventStatusProcessed BillingEventStatus = "PROCESSED"
)
