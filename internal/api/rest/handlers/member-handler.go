package handlers

import (
	"strconv"
	"strings"

	"github.com/SundayYogurt/lending_portal/internal/api/rest/middleware"
	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MemberHandler struct {
	svc services.MemberService
}

func NewMemberHandler(svc services.MemberService) *MemberHandler {
	return &MemberHandler{svc: svc}
}

func (h *MemberHandler) SetupRoutes(r Routes) {
	r.Members.Post("/", h.Register)
	// ?email= is the public uniqueness check, the bare collection needs a token
	r.Members.Get("/", h.lookupByEmail, r.Auth, h.List)

	r.Self.Get("/", h.Get)
	r.Self.Patch("/", h.Patch)
	r.Self.Put("/", h.Replace)
	r.Self.Patch("/status", middleware.AdminOnly(), h.SetStatus)
}

func toResponses(members []domain.Member) []dto.MemberResponse {
	out := make([]dto.MemberResponse, 0, len(members))
	for i := range members {
		out = append(out, dto.NewMemberResponse(&members[i]))
	}
	return out
}

func (h *MemberHandler) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	member, err := h.svc.Register(req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, dto.NewMemberResponse(member))
}

func (h *MemberHandler) lookupByEmail(ctx *fiber.Ctx) error {
	email := strings.TrimSpace(ctx.Query("email"))
	if email == "" {
		return ctx.Next()
	}

	found, err := h.svc.FindByEmail(email)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, found)
}

func (h *MemberHandler) List(ctx *fiber.Ctx) error {
	members, err := h.svc.List(actor(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, toResponses(members))
}

func (h *MemberHandler) Get(ctx *fiber.Ctx) error {
	member, err := h.svc.Get(ctx.Params("memberID"))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.NewMemberResponse(member))
}

// ifMatch reads an expected version from If-Match ("3" or "\"3\"").
func ifMatch(ctx *fiber.Ctx) (*int64, bool) {
	raw := strings.Trim(strings.TrimSpace(ctx.Get(fiber.HeaderIfMatch)), `"`)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func (h *MemberHandler) Patch(ctx *fiber.Ctx) error {
	var req dto.MemberPatch
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if req.Version == nil {
		v, ok := ifMatch(ctx)
		if !ok {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid If-Match header")
		}
		req.Version = v
	}

	member, err := h.svc.Patch(ctx.UserContext(), actor(ctx), ctx.Params("memberID"), req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.NewMemberResponse(member))
}

func (h *MemberHandler) Replace(ctx *fiber.Ctx) error {
	var req dto.MemberReplace
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if req.Version == nil {
		v, ok := ifMatch(ctx)
		if !ok {
			return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid If-Match header")
		}
		req.Version = v
	}

	member, err := h.svc.Replace(actor(ctx), ctx.Params("memberID"), req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.NewMemberResponse(member))
}

func (h *MemberHandler) SetStatus(ctx *fiber.Ctx) error {
	var req dto.SetStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	member, err := h.svc.SetStatus(ctx.UserContext(), actor(ctx), ctx.Params("memberID"), req.Status)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.NewMemberResponse(member))
}
