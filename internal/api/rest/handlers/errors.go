package handlers

import (
	"errors"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/services"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps service error kinds onto HTTP status codes. Anything
// unclassified is logged and hidden behind a 500.
func respondError(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	}

	if status == fiber.StatusInternalServerError {
		logger.Error("request failed", err,
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Any("request_id", ctx.Locals("requestid")),
		)
		return utils.ResponseError(ctx, status, "internal server error")
	}
	return utils.ResponseError(ctx, status, err.Error())
}

// actor is the authenticated caller; routes without auth get the zero value.
func actor(ctx *fiber.Ctx) dto.AuthResponse {
	user, _ := helper.CurrentUser(ctx)
	return user
}

// ErrorHandler renders fiber's own errors (unknown route, body too large)
// in the same envelope as handler errors.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.ResponseError(ctx, fe.Code, fe.Message)
	}
	return respondError(ctx, err)
}
