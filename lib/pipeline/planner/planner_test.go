package transitionplanner

import (
	"testing"

	stageregistry "canopy-backend/lib/pipeline/registry"
	"canopy-backend/models"
	pipelineapimodels "canopy-backend/models/api/pipeline"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func getInstance(t *testing.T) impl {
	reg, err := stageregistry.NewRegistry(stageregistry.DefaultStageDefinitions)
	require.Nil(t, err)
	return impl{registry: reg}
}

func kinds(plan pipelineapimodels.TransitionPlanView) []models.ActionKind {
	result := make([]models.ActionKind, 0, len(plan.Actions))
	for _, action := range plan.Actions {
		result = append(result, action.Kind)
	}
	return result
}

func TestPlanTransition(t *testing.T) {
	i := getInstance(t)

	t.Run(`unknown stage check`, func(t *testing.T) {
		_, err := i.PlanTransition("screening", "background_check", PlanContext{})
		require.True(t, errors.Is(err, stageregistry.ErrUnknownStage))

		_, err = i.PlanTransition("background_check", "screening", PlanContext{})
		require.True(t, errors.Is(err, stageregistry.ErrUnknownStage))
	})

	t.Run(`lateral move is empty check`, func(t *testing.T) {
		plan, err := i.PlanTransition("screening", "phone_screen", PlanContext{})
		require.Nil(t, err)
		require.Empty(t, plan.Actions)

		plan, err = i.PlanTransition("interviewing", "interviewing", PlanContext{})
		require.Nil(t, err)
		require.Empty(t, plan.Actions)
	})

	t.Run(`move to interviewing check`, func(t *testing.T) {
		plan, err := i.PlanTransition("screening", "interviewing", PlanContext{})
		require.Nil(t, err)
		require.Equal(t, []models.ActionKind{models.ActionScheduleInterview}, kinds(plan))
		require.False(t, plan.Actions[0].Required)
	})

	t.Run(`move to rejected check`, func(t *testing.T) {
		plan, err := i.PlanTransition("interviewing", "rejected", PlanContext{})
		require.Nil(t, err)
		require.Equal(t, []models.ActionKind{models.ActionSendRejection}, kinds(plan))
		require.True(t, plan.Actions[0].Required)
		require.Equal(t, "candidate_rejection", plan.Actions[0].Data.TemplateKey)
	})

	t.Run(`move to withdrawn check`, func(t *testing.T) {
		plan, err := i.PlanTransition("offer", "withdrawn", PlanContext{})
		require.Nil(t, err)
		require.Equal(t, []models.ActionKind{models.ActionNotifyTeam}, kinds(plan))
		require.False(t, plan.Actions[0].Required)
	})

	t.Run(`move to hired without offer check`, func(t *testing.T) {
		plan, err := i.PlanTransition("interviewing", "hired", PlanContext{OfferExists: false})
		require.Nil(t, err)
		require.Equal(t, []models.ActionKind{models.ActionSendOffer, models.ActionNotifyTeam}, kinds(plan))
	})

	t.Run(`move to hired with existing offer check`, func(t *testing.T) {
		plan, err := i.PlanTransition("offer", "hired", PlanContext{OfferExists: true})
		require.Nil(t, err)
		require.Equal(t, []models.ActionKind{models.ActionNotifyTeam}, kinds(plan))
	})

	t.Run(`interviewing to offer check`, func(t *testing.T) {
		plan, err := i.PlanTransition("final_interview", "offer", PlanContext{})
		require.Nil(t, err)
		require.Equal(t, []models.ActionKind{models.ActionSendOffer}, kinds(plan))
	})

	t.Run(`backward move flags regression check`, func(t *testing.T) {
		plan, err := i.PlanTransition("offer", "screening", PlanContext{})
		require.Nil(t, err)
		require.Equal(t, []models.ActionKind{models.ActionNotifyTeam}, kinds(plan))
		require.True(t, plan.Actions[0].Data.Regression)
	})

	t.Run(`backward move into interviewing keeps both prompts check`, func(t *testing.T) {
		plan, err := i.PlanTransition("offer", "interviewing", PlanContext{})
		require.Nil(t, err)
		require.Equal(t, []models.ActionKind{models.ActionScheduleInterview, models.ActionNotifyTeam}, kinds(plan))
		require.True(t, plan.Actions[1].Data.Regression)
	})

	t.Run(`terminal source yields empty plan check`, func(t *testing.T) {
		plan, err := i.PlanTransition("hired", "screening", PlanContext{})
		require.Nil(t, err)
		require.Empty(t, plan.Actions)
	})

	t.Run(`planner is idempotent check`, func(t *testing.T) {
		first, err := i.PlanTransition("screening", "rejected", PlanContext{})
		require.Nil(t, err)
		second, err := i.PlanTransition("screening", "rejected", PlanContext{})
		require.Nil(t, err)
		require.Equal(t, first, second)
	})
}
