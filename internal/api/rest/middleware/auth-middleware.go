package middleware

import (
	"strings"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/interfaces"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthMiddleware accepts a JWT from the access_token cookie or the
// Authorization header and requires its session to still be live.
func AuthMiddleware(auth helper.Auth, sessions interfaces.SessionStore) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := strings.TrimSpace(ctx.Cookies("access_token"))
		if tokenStr == "" {
			tokenStr = strings.TrimSpace(ctx.Get(fiber.HeaderAuthorization))
		}

		user, err := auth.VerifyToken(tokenStr)
		if err != nil {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
		}

		active, err := sessions.Active(ctx.UserContext(), user.SessionID, user.MemberID)
		if err != nil {
			logger.Error("session lookup failed", err, zap.String("member_id", user.MemberID))
			return utils.ResponseError(ctx, fiber.StatusInternalServerError, "session store unavailable")
		}
		if !active {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, "session expired or revoked")
		}

		ctx.Locals(helper.UserLocal, user)
		return ctx.Next()
	}
}

func currentUser(ctx *fiber.Ctx) (dto.AuthResponse, bool) {
	user, err := helper.CurrentUser(ctx)
	return user, err == nil
}

func AdminOnly() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, ok := currentUser(ctx)
		if !ok {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
		}
		if !user.IsAdmin() {
			return utils.ResponseError(ctx, fiber.StatusForbidden, "admin only")
		}
		return ctx.Next()
	}
}

// SelfOrAdmin lets a member reach only routes whose param names their own
// id. Admins pass for any member.
func SelfOrAdmin(param string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, ok := currentUser(ctx)
		if !ok {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
		}
		if user.IsAdmin() || ctx.Params(param) == user.MemberID {
			return ctx.Next()
		}
		return utils.ResponseError(ctx, fiber.StatusForbidden, "you can only access your own account")
	}
}
