package handlers

import (
	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type BankAccountHandler struct {
	svc services.BankAccountService
}

func NewBankAccountHandler(svc services.BankAccountService) *BankAccountHandler {
	return &BankAccountHandler{svc: svc}
}

func (h *BankAccountHandler) SetupRoutes(r Routes) {
	r.API.Get("/banks", h.Banks)

	r.Self.Get("/bank-accounts", h.List)
	r.Self.Post("/bank-accounts", h.Add)
	r.Self.Put("/bank-accounts/:accountID", h.Update)
	r.Self.Delete("/bank-accounts/:accountID", h.Delete)
	r.Self.Post("/bank-accounts/:accountID/primary", h.SetPrimary)
}

func bankResponses(accounts []domain.BankAccount) []dto.BankAccountResponse {
	out := make([]dto.BankAccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, dto.NewBankAccountResponse(&accounts[i]))
	}
	return out
}

// Banks lists the supported bank codes and display names.
func (h *BankAccountHandler) Banks(ctx *fiber.Ctx) error {
	return utils.ResponseSuccess(ctx, fiber.StatusOK, domain.SupportedBanks)
}

func (h *BankAccountHandler) List(ctx *fiber.Ctx) error {
	accounts, err := h.svc.List(ctx.Params("memberID"))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, bankResponses(accounts))
}

func (h *BankAccountHandler) Add(ctx *fiber.Ctx) error {
	var req dto.BankAccountInput
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	account, err := h.svc.Add(ctx.Params("memberID"), req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, dto.NewBankAccountResponse(account))
}

func (h *BankAccountHandler) Update(ctx *fiber.Ctx) error {
	var req dto.BankAccountInput
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	account, err := h.svc.Update(ctx.Params("memberID"), ctx.Params("accountID"), req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.NewBankAccountResponse(account))
}

func (h *BankAccountHandler) Delete(ctx *fiber.Ctx) error {
	if err := h.svc.Delete(ctx.Params("memberID"), ctx.Params("accountID")); err != nil {
		return respondError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (h *BankAccountHandler) SetPrimary(ctx *fiber.Ctx) error {
	accounts, err := h.svc.SetPrimary(ctx.Params("memberID"), ctx.Params("accountID"))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, bankResponses(accounts))
}
