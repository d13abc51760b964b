package handlers

import (
	"time"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	svc services.MemberService
}

func NewAuthHandler(svc services.MemberService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) SetupRoutes(r Routes, loginLimiter fiber.Handler) {
	group := r.API.Group("/auth")
	group.Post("/login", loginLimiter, h.Login)
	group.Post("/logout", r.Auth, h.Logout)
}

func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var req dto.UserLogin
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "email and password are required")
	}

	res, err := h.svc.Login(ctx.UserContext(), req)
	if err != nil {
		return respondError(ctx, err)
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    res.Token,
		Expires:  res.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   ctx.Protocol() == "https",
	})
	return utils.ResponseSuccess(ctx, fiber.StatusOK, res)
}

func (h *AuthHandler) Logout(ctx *fiber.Ctx) error {
	if err := h.svc.Logout(ctx.UserContext(), actor(ctx).SessionID); err != nil {
		return respondError(ctx, err)
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "logged out")
}
