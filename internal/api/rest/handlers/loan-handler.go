package handlers

import (
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type LoanHandler struct {
	svc services.LoanService
}

func NewLoanHandler(svc services.LoanService) *LoanHandler {
	return &LoanHandler{svc: svc}
}

func (h *LoanHandler) SetupRoutes(r Routes) {
	r.API.Get("/loans/quote", h.Quote)

	r.Self.Get("/loans", h.List)
	r.Self.Post("/loans", h.Apply)
	r.Self.Get("/loans/:loanID/payments", h.ListPayments)
	r.Self.Post("/loans/:loanID/payments", h.SubmitPayment)
}

// GET /api/loans/quote?amount=500000&tenor=3
func (h *LoanHandler) Quote(ctx *fiber.Ctx) error {
	amount, err := decimal.NewFromString(ctx.Query("amount"))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "amount must be a number")
	}

	quote, err := h.svc.Quote(amount, ctx.QueryInt("tenor"))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, quote)
}

func (h *LoanHandler) Apply(ctx *fiber.Ctx) error {
	var req dto.LoanApplicationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	loan, err := h.svc.Apply(ctx.Params("memberID"), req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, dto.NewLoanResponse(loan))
}

func (h *LoanHandler) List(ctx *fiber.Ctx) error {
	loans, err := h.svc.List(ctx.Params("memberID"))
	if err != nil {
		return respondError(ctx, err)
	}

	out := make([]dto.LoanResponse, 0, len(loans))
	for i := range loans {
		out = append(out, dto.NewLoanResponse(&loans[i]))
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, out)
}

func (h *LoanHandler) SubmitPayment(ctx *fiber.Ctx) error {
	var req dto.PaymentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	payment, err := h.svc.SubmitPayment(ctx.Params("memberID"), ctx.Params("loanID"), req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, dto.NewPaymentResponse(payment))
}

func (h *LoanHandler) ListPayments(ctx *fiber.Ctx) error {
	payments, err := h.svc.ListPayments(ctx.Params("memberID"), ctx.Params("loanID"))
	if err != nil {
		return respondError(ctx, err)
	}

	out := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, dto.NewPaymentResponse(&payments[i]))
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, out)
}
