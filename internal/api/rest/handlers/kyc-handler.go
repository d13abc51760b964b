package handlers

import (
	"github.com/SundayYogurt/lending_portal/internal/api/rest/middleware"
	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type KYCHandler struct {
	svc   services.KYCService
	audit services.AuditService
}

func NewKYCHandler(svc services.KYCService, audit services.AuditService) *KYCHandler {
	return &KYCHandler{svc: svc, audit: audit}
}

func (h *KYCHandler) SetupRoutes(r Routes) {
	r.Self.Get("/kyc", h.Latest)
	r.Self.Post("/kyc", h.Submit)

	// reviewer
	admin := r.API.Group("/kyc", r.Auth, middleware.AdminOnly())
	admin.Get("/pending", h.ListPending)
	admin.Post("/:kycID/approve", h.Approve)
	admin.Post("/:kycID/reject", h.Reject)

	r.API.Get("/audit/:entityID", r.Auth, middleware.AdminOnly(), h.Audit)
}

func (h *KYCHandler) Latest(ctx *fiber.Ctx) error {
	sub, err := h.svc.Latest(ctx.Params("memberID"))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.NewKYCSubmissionResponse(sub))
}

func (h *KYCHandler) Submit(ctx *fiber.Ctx) error {
	var req dto.KYCSubmissionInput
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	sub, err := h.svc.Submit(ctx.UserContext(), ctx.Params("memberID"), req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, dto.NewKYCSubmissionResponse(sub))
}

func (h *KYCHandler) ListPending(ctx *fiber.Ctx) error {
	subs, err := h.svc.ListPending(ctx.QueryInt("limit", 20), ctx.QueryInt("offset", 0))
	if err != nil {
		return respondError(ctx, err)
	}

	out := make([]dto.PendingKYCResponse, 0, len(subs))
	for i := range subs {
		out = append(out, dto.NewPendingKYCResponse(&subs[i]))
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, out)
}

func (h *KYCHandler) Approve(ctx *fiber.Ctx) error {
	return h.review(ctx, domain.KYCDecisionApproved)
}

func (h *KYCHandler) Reject(ctx *fiber.Ctx) error {
	return h.review(ctx, domain.KYCDecisionRejected)
}

func (h *KYCHandler) review(ctx *fiber.Ctx, decision domain.KYCDecision) error {
	var req dto.ReviewKYCRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
		}
	}

	sub, err := h.svc.Review(actor(ctx).MemberID, ctx.Params("kycID"), decision, req.Note)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.NewKYCSubmissionResponse(sub))
}

func (h *KYCHandler) Audit(ctx *fiber.Ctx) error {
	logs, err := h.audit.List(ctx.Params("entityID"), ctx.QueryInt("limit", 50))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, logs)
}
