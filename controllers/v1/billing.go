package apiv1

import (
	"canopy-backend/controllers"
	"canopy-backend/lib/entitlement"
	xlsexport "canopy-backend/lib/export/xls"
	ledgerhandler "canopy-backend/lib/ledger"
	"canopy-backend/middleware"
	"canopy-backend/models"
	apimodels "canopy-backend/models/api"
	billingapimodels "canopy-backend/models/api/billing"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type billingApiController struct {
	controllers.BaseAPIController
}

func InitBillingApiRouters(app *fiber.App) {
	controller := billingApiController{}
	app.Route("billing", func(router fiber.Router) {
		router.Get("entitlements", controller.getEntitlements)
		router.Get("gate", controller.evaluateGate)
		router.Post("credits/debit", controller.debitCredits)
		router.Get("credits/history", controller.creditHistory)
		router.Get("credits/history/export", controller.creditHistoryExport)
		router.Post("points/redeem", middleware.OrgAdminRequired(), controller.redeemPoints)
	})
}

// @Summary Organization entitlements
// @Tags Billing
// @Description Credit balances per credit type and the points balance with its monetary value
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=billingapimodels.EntitlementsView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/org/billing/entitlements [get]
func (c *billingApiController) getEntitlements(ctx *fiber.Ctx) error {
	orgID := middleware.GetUserOrg(ctx)
	credits, err := ledgerhandler.Instance.GetCredits(ctx.UserContext(), orgID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to load the credit balances")
	}
	points, err := ledgerhandler.Instance.GetPoints(ctx.UserContext(), orgID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to load the points balance")
	}
	resp := billingapimodels.EntitlementsView{
		Credits: credits,
		Points: billingapimodels.PointsView{
			Balance:    points,
			ValueCents: ledgerhandler.Instance.PointsValueCents(points),
		},
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Feature gate
// @Tags Billing
// @Description Decide whether the organization may use a feature right now
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   feature				query		string	true	"feature key"
// @Param   active_listings		query		int		false	"currently active job listings"
// @Success 200 {object} apimodels.Response{data=billingapimodels.GateResultView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/org/billing/gate [get]
func (c *billingApiController) evaluateGate(ctx *fiber.Ctx) error {
	feature := models.FeatureKey(ctx.Query("feature"))
	if feature == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("feature is required"))
	}
	orgID := middleware.GetUserOrg(ctx)
	gCtx := entitlement.GateContext{
		ActiveListings: int64(ctx.QueryInt("active_listings")),
	}
	resp, err := entitlement.Instance.EvaluateGate(ctx.UserContext(), orgID, feature, gCtx)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to evaluate the feature gate")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Consume credits
// @Tags Billing
// @Description Debit credits from the organization balance
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	billingapimodels.CreditDebit	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/org/billing/credits/debit [post]
func (c *billingApiController) debitCredits(ctx *fiber.Ctx) error {
	var payload billingapimodels.CreditDebit
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	orgID := middleware.GetUserOrg(ctx)
	reference := fmt.Sprintf("debit by user %v", middleware.GetUserID(ctx))
	err := ledgerhandler.Instance.DebitCredits(ctx.UserContext(), orgID, payload.CreditType, payload.Amount, reference)
	if err != nil {
		if errors.Is(err, ledgerhandler.ErrInsufficientCredits) {
			return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("not enough credits"))
		}
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to debit credits")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Credit history
// @Tags Billing
// @Description Credit transaction history, most recent first
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]billingapimodels.CreditTransactionView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/org/billing/credits/history [get]
func (c *billingApiController) creditHistory(ctx *fiber.Ctx) error {
	orgID := middleware.GetUserOrg(ctx)
	resp, err := ledgerhandler.Instance.ListTransactions(ctx.UserContext(), orgID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to load the credit history")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Credit history. Export to Excel
// @Tags Billing
// @Description Credit transaction history as an xlsx download
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/org/billing/credits/history/export [get]
func (c *billingApiController) creditHistoryExport(ctx *fiber.Ctx) error {
	orgID := middleware.GetUserOrg(ctx)
	list, err := ledgerhandler.Instance.ListTransactions(ctx.UserContext(), orgID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to load the credit history for export")
	}
	data, err := xlsexport.Instance.ExportCreditHistory(list)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to export the credit history to Excel")
	}
	fileName := fmt.Sprintf("credit-history-%v.xlsx", time.Now().Format("20060102-150405"))
	ctx.Set("Content-Type", "application/vnd.ms-excel")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(data)
}

// @Summary Redeem points
// @Tags Billing
// @Description Redeem loyalty points from the organization balance
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	billingapimodels.PointsRedeem	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/org/billing/points/redeem [post]
func (c *billingApiController) redeemPoints(ctx *fiber.Ctx) error {
	var payload billingapimodels.PointsRedeem
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	orgID := middleware.GetUserOrg(ctx)
	err := ledgerhandler.Instance.RedeemPoints(ctx.UserContext(), orgID, payload.Amount)
	if err != nil {
		if errors.Is(err, ledgerhandler.ErrInsufficientPoints) {
			return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("not enough points"))
		}
		return c.SendError(ctx, c.GetLogger(ctx), err, "failed to redeem points")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
