package transitionplanner

import (
	stageregistry "canopy-backend/lib/pipeline/registry"
	"canopy-backend/models"
	pipelineapimodels "canopy-backend/models/api/pipeline"
)

// PlanContext carries the few facts about the application the decision table
// needs. It is supplied by the caller; the planner itself reads no storage.
type PlanContext struct {
	OfferExists bool // an offer was already sent for this application
}

type Provider interface {
	PlanTransition(fromStage, toStage string, pCtx PlanContext) (pipelineapimodels.TransitionPlanView, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		registry: stageregistry.Instance,
	}
}

type impl struct {
	registry stageregistry.Provider
}

const (
	rejectionTemplateKey = "candidate_rejection"
	offerTemplateKey     = "candidate_offer"
	interviewTemplateKey = "interview_invitation"
)

// PlanTransition resolves both stage keys and walks the decision table for
// the (fromGroup, toGroup) pair. The result is advisory only: the caller
// confirms the listed actions and commits the stage change elsewhere.
func (i impl) PlanTransition(fromStage, toStage string, pCtx PlanContext) (pipelineapimodels.TransitionPlanView, error) {
	plan := pipelineapimodels.TransitionPlanView{
		FromStage: fromStage,
		ToStage:   toStage,
		Actions:   []pipelineapimodels.ActionView{},
	}
	fromGroup, err := i.registry.ResolvePhaseGroup(fromStage)
	if err != nil {
		return plan, err
	}
	toGroup, err := i.registry.ResolvePhaseGroup(toStage)
	if err != nil {
		return plan, err
	}

	// lateral move inside one group (stage rename, reorder) prompts nothing
	if fromGroup == toGroup {
		return plan, nil
	}

	for _, rule := range transitionRules {
		if !rule.matches(i.registry, fromGroup, toGroup, pCtx) {
			continue
		}
		plan.Actions = append(plan.Actions, rule.action)
		if rule.exclusive {
			break
		}
	}
	return plan, nil
}

// transitionRule is one row of the decision table. Rules are evaluated in
// declaration order; an exclusive rule swallows the rest of the table.
type transitionRule struct {
	matches   func(reg stageregistry.Provider, from, to models.PhaseGroup, pCtx PlanContext) bool
	action    pipelineapimodels.ActionView
	exclusive bool
}

var transitionRules = []transitionRule{
	// a rejection must be confirmed or explicitly skipped by the caller
	{
		matches: func(_ stageregistry.Provider, _, to models.PhaseGroup, _ PlanContext) bool {
			return to == models.PhaseRejected
		},
		action: pipelineapimodels.ActionView{
			Kind:     models.ActionSendRejection,
			Required: true,
			Data:     pipelineapimodels.ActionData{TemplateKey: rejectionTemplateKey},
		},
		exclusive: true,
	},
	// a withdrawal only informs the team
	{
		matches: func(_ stageregistry.Provider, _, to models.PhaseGroup, _ PlanContext) bool {
			return to == models.PhaseWithdrawn
		},
		action: pipelineapimodels.ActionView{
			Kind:     models.ActionNotifyTeam,
			Required: false,
		},
		exclusive: true,
	},
	{
		matches: func(_ stageregistry.Provider, _, to models.PhaseGroup, _ PlanContext) bool {
			return to == models.PhaseInterviewing
		},
		action: pipelineapimodels.ActionView{
			Kind:     models.ActionScheduleInterview,
			Required: false,
			Data:     pipelineapimodels.ActionData{TemplateKey: interviewTemplateKey},
		},
	},
	{
		matches: func(_ stageregistry.Provider, from, to models.PhaseGroup, _ PlanContext) bool {
			return from == models.PhaseInterviewing && to == models.PhaseOffer
		},
		action: pipelineapimodels.ActionView{
			Kind:     models.ActionSendOffer,
			Required: false,
			Data:     pipelineapimodels.ActionData{TemplateKey: offerTemplateKey},
		},
	},
	{
		matches: func(_ stageregistry.Provider, _, to models.PhaseGroup, pCtx PlanContext) bool {
			return to == models.PhaseHired && !pCtx.OfferExists
		},
		action: pipelineapimodels.ActionView{
			Kind:     models.ActionSendOffer,
			Required: false,
			Data:     pipelineapimodels.ActionData{TemplateKey: offerTemplateKey},
		},
	},
	{
		matches: func(_ stageregistry.Provider, _, to models.PhaseGroup, _ PlanContext) bool {
			return to == models.PhaseHired
		},
		action: pipelineapimodels.ActionView{
			Kind:     models.ActionNotifyTeam,
			Required: false,
		},
	},
	// backward move on the linear path; terminal groups never reach this rule
	// because the entries above are exclusive for them
	{
		matches: func(reg stageregistry.Provider, from, to models.PhaseGroup, _ PlanContext) bool {
			if from.IsTerminal() || to.IsTerminal() {
				return false
			}
			return reg.Compare(to, from) == stageregistry.OrderBefore
		},
		action: pipelineapimodels.ActionView{
			Kind:     models.ActionNotifyTeam,
			Required: false,
			Data:     pipelineapimodels.ActionData{Regression: true},
		},
	},
}
