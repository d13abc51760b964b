package services

import (
	"context"
	"testing"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedMember(t *testing.T, f *fixture, email string) dto.AuthResponse {
	t.Helper()
	me := f.register(t, email)
	sub, err := f.kyc.Submit(context.Background(), me.MemberID, kycInput(t))
	require.NoError(t, err)
	_, err = f.kyc.Review("admin-1", sub.ID, domain.KYCDecisionApproved, "")
	require.NoError(t, err)
	return me
}

func loanRequest() dto.LoanApplicationRequest {
	return dto.LoanApplicationRequest{
		Amount:     decimal.NewFromInt(500000),
		Tenor:      3,
		Purpose:    "education",
		Occupation: "nurse",
		Salary:     decimal.NewFromInt(4500000),
	}
}

func TestLoanService_Quote(t *testing.T) {
	f := newFixture(t)

	q, err := f.loans.Quote(decimal.NewFromInt(500000), 3)
	require.NoError(t, err)
	assert.Equal(t, "176667", q.Installment.String())
	assert.Equal(t, "530000", q.TotalAmount.String())

	_, err = f.loans.Quote(decimal.NewFromInt(525000), 3)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.loans.Quote(decimal.NewFromInt(500000), 2)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoanService_ApplyRequiresApprovedKYC(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	me := f.register(t, "nokyc@example.com")

	_, err := f.loans.Apply(me.MemberID, loanRequest())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.kyc.Submit(ctx, me.MemberID, kycInput(t))
	require.NoError(t, err)
	_, err = f.loans.Apply(me.MemberID, loanRequest())
	assert.ErrorIs(t, err, ErrForbidden, "pending is not enough")
}

func TestLoanService_ApplyAndPay(t *testing.T) {
	f := newFixture(t)
	me := approvedMember(t, f, "borrower@example.com")

	loan, err := f.loans.Apply(me.MemberID, loanRequest())
	require.NoError(t, err)
	assert.Equal(t, "176667", loan.Installment.String())
	assert.Equal(t, domain.LoanStatusSubmitted, loan.Status)

	loans, err := f.loans.List(me.MemberID)
	require.NoError(t, err)
	require.Len(t, loans, 1)

	m, err := f.members.Get(me.MemberID)
	require.NoError(t, err)
	resp := dto.NewMemberResponse(m)
	assert.Len(t, resp.ActiveLoans, 1)
	assert.Empty(t, resp.LoanHistory)

	p, err := f.loans.SubmitPayment(me.MemberID, loan.ID, dto.PaymentRequest{
		Amount: loan.Installment,
		Method: "virtual_account",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, p.Status)

	payments, err := f.loans.ListPayments(me.MemberID, loan.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	_, err = f.loans.SubmitPayment(me.MemberID, loan.ID, dto.PaymentRequest{Amount: decimal.Zero, Method: "qris"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.loans.SubmitPayment(me.MemberID, loan.ID, dto.PaymentRequest{Amount: decimal.NewFromInt(1), Method: "cash"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.loans.SubmitPayment(me.MemberID, "missing", dto.PaymentRequest{Amount: decimal.NewFromInt(1), Method: "qris"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Contains(t, f.events.types(), dto.EventLoanSubmitted)
	assert.Contains(t, f.events.types(), dto.EventPaymentSubmitted)
}

func TestLoanService_LoanLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	me := approvedMember(t, f, "limit@example.com")

	limit := decimal.NewFromInt(1000000)
	_, err := f.members.Patch(ctx, admin(), me.MemberID, dto.MemberPatch{LoanLimit: &limit})
	require.NoError(t, err)

	req := loanRequest()
	req.Amount = decimal.NewFromInt(1500000)
	_, err = f.loans.Apply(me.MemberID, req)
	assert.ErrorIs(t, err, ErrValidation)

	req.Amount = decimal.NewFromInt(1000000)
	_, err = f.loans.Apply(me.MemberID, req)
	assert.NoError(t, err)
}

func TestLoanService_PaymentsSettleLoan(t *testing.T) {
	f := newFixture(t)
	me := approvedMember(t, f, "settle@example.com")

	loan, err := f.loans.Apply(me.MemberID, loanRequest())
	require.NoError(t, err)

	_, err = f.loans.SubmitPayment(me.MemberID, loan.ID, dto.PaymentRequest{
		Amount: decimal.NewFromInt(530001),
		Method: "qris",
	})
	assert.ErrorIs(t, err, ErrValidation)

	for _, v := range []int64{176667, 176667, 176666} {
		_, err = f.loans.SubmitPayment(me.MemberID, loan.ID, dto.PaymentRequest{
			Amount: decimal.NewFromInt(v),
			Method: "bank_transfer",
		})
		require.NoError(t, err)
	}

	loans, err := f.loans.List(me.MemberID)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, domain.LoanStatusPaid, loans[0].Status)
	assert.True(t, loans[0].Remaining().IsZero())

	resp := dto.NewLoanResponse(&loans[0])
	assert.Nil(t, resp.NextPayment)
	require.Len(t, resp.Schedule, 3)
	for _, inst := range resp.Schedule {
		assert.Equal(t, "paid", inst.Status)
	}

	_, err = f.loans.SubmitPayment(me.MemberID, loan.ID, dto.PaymentRequest{Amount: decimal.NewFromInt(1), Method: "qris"})
	assert.ErrorIs(t, err, ErrConflict)
}
