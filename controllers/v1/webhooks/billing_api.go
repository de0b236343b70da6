package webhooksapi

import (
	"canopy-backend/controllers"
	billingwebhook "canopy-backend/lib/billing-webhook"
	apimodels "canopy-backend/models/api"
	billingapimodels "canopy-backend/models/api/billing"

	"github.com/gofiber/fiber/v2"
)

type billingWebhookController struct {
	controllers.BaseAPIController
}

func InitBillingWebhookApiRouters(app *fiber.App) {
	controller := billingWebhookController{}
	app.Route("billing", func(router fiber.Router) {
		router.Post("/", controller.handleEvent)
	})
}

// @Summary Billing provider events
// @Tags Webhooks. Billing
// @Description Accept a billing provider event. Replayed event ids are acknowledged without effect
// @Param	body body	billingapimodels.BillingWebhookEvent	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/webhooks/billing [post]
func (c *billingWebhookController) handleEvent(ctx *fiber.Ctx) error {
	var payload billingapimodels.BillingWebhookEvent
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	logger := c.GetLogger(ctx).
		WithField("event_id", payload.EventID).
		WithField("event_type", payload.EventType)
	duplicate, err := billingwebhook.Instance.HandleEvent(ctx.UserContext(), payload)
	if err != nil {
		return c.SendError(ctx, logger, err, "failed to process the billing event")
	}
	if duplicate {
		logger.Info("billing event replay ignored")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
