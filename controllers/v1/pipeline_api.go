package apiv1

import (
	"canopy-backend/controllers"
	transitionplanner "canopy-backend/lib/pipeline/planner"
	stageregistry "canopy-backend/lib/pipeline/registry"
	apimodels "canopy-backend/models/api"
	pipelineapimodels "canopy-backend/models/api/pipeline"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type pipelineApiController struct {
	controllers.BaseAPIController
}

func InitPipelineApiRouters(app *fiber.App) {
	controller := pipelineApiController{}
	app.Route("pipeline", func(router fiber.Router) {
		router.Get("stages", controller.listStages)
		router.Get("transition_plan", controller.transitionPlan)
	})
}

// @Summary Pipeline stages
// @Tags Pipeline
// @Description List the registered pipeline stages in board order
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]pipelineapimodels.StageView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/org/pipeline/stages [get]
func (c *pipelineApiController) listStages(ctx *fiber.Ctx) error {
	defs := stageregistry.Instance.ListStages()
	resp := make([]pipelineapimodels.StageView, 0, len(defs))
	for _, def := range defs {
		resp = append(resp, pipelineapimodels.StageView{
			Key:        def.Key,
			Name:       def.Name,
			StageOrder: def.StageOrder,
			PhaseGroup: def.Group,
			Assignable: def.Assignable,
		})
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Transition plan
// @Tags Pipeline
// @Description Plan the side effects of moving a candidate between stages
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   from_stage			query		string	true	"current stage key"
// @Param   to_stage			query		string	true	"target stage key"
// @Param   offer_exists		query		bool	false	"an offer already exists for the candidate"
// @Success 200 {object} apimodels.Response{data=pipelineapimodels.TransitionPlanView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/org/pipeline/transition_plan [get]
func (c *pipelineApiController) transitionPlan(ctx *fiber.Ctx) error {
	fromStage := ctx.Query("from_stage")
	toStage := ctx.Query("to_stage")
	if fromStage == "" || toStage == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("from_stage and to_stage are required"))
	}
	pCtx := transitionplanner.PlanContext{
		OfferExists: ctx.QueryBool("offer_exists"),
	}
	resp, err := transitionplanner.Instance.PlanTransition(fromStage, toStage, pCtx)
	if err != nil {
		if errors.Is(err, stageregistry.ErrUnknownStage) {
			return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError(err.Error()))
		}
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to plan the stage transition")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}
