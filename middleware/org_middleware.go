package middleware

import (
	authutils "canopy-backend/lib/utils/auth-utils"
	"canopy-backend/models"
	apimodels "canopy-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

// GetUserOrg returns the authenticated organization id from the JWT claims.
// The identity collaborator issued the token; no credential checks happen
// here.
func GetUserOrg(ctx *fiber.Ctx) string {
	claims := authutils.GetClaims(ctx)
	if org, exist := claims["org"]; exist {
		if stringOrg, ok := org.(string); ok {
			return stringOrg
		}
	}
	return ""
}

func GetUserID(ctx *fiber.Ctx) string {
	claims := authutils.GetClaims(ctx)
	if sub, exist := claims["sub"]; exist {
		if stringSub, ok := sub.(string); ok {
			return stringSub
		}
	}
	return ""
}

func GetOrgRole(ctx *fiber.Ctx) models.UserRole {
	claims := authutils.GetClaims(ctx)
	if role, exist := claims["role"]; exist {
		if stringRole, ok := role.(string); ok && stringRole != "" {
			return models.UserRole(stringRole)
		}
	}
	return ""
}

func OrgAdminRequired() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		if !GetOrgRole(ctx).IsOrgAdmin() {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("operation is not available"))
		}
		return ctx.Next()
	}
}
