package repository

import (
	"testing"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLoanRepository_ApplicationsAndPayments(t *testing.T) {
	db := newTestDB(t)
	repo := NewLoanRepository(db)
	m := seedMember(t, db, "loan@example.com")

	amount := decimal.NewFromInt(500000)
	inst, err := domain.Installment(amount, 3)
	require.NoError(t, err)

	loan := &domain.LoanApplication{
		MemberID:     m.ID,
		Amount:       amount,
		Tenor:        3,
		Purpose:      "education",
		Occupation:   "nurse",
		Salary:       decimal.NewFromInt(4000000),
		InterestRate: domain.MonthlyInterestRate,
		Installment:  inst,
		TotalAmount:  domain.TotalRepayment(amount, 3),
		Status:       domain.LoanStatusSubmitted,
	}
	require.NoError(t, repo.CreateApplication(loan))

	loans, err := repo.ListByMemberID(m.ID)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.True(t, loans[0].Installment.Equal(decimal.NewFromInt(176667)))

	_, err = repo.FindByID("someone-else", loan.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	updated, err := repo.RecordPayment(&domain.Payment{
		LoanID:   loan.ID,
		MemberID: m.ID,
		Amount:   inst,
		Method:   domain.PaymentQRIS,
		Status:   domain.PaymentStatusPending,
	})
	require.NoError(t, err)
	assert.True(t, updated.AmountPaid.Equal(inst))
	assert.Equal(t, domain.LoanStatusSubmitted, updated.Status)

	payments, err := repo.ListPayments(m.ID, loan.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, domain.PaymentQRIS, payments[0].Method)
}

func TestLoanRepository_RecordPaymentSettlesLoan(t *testing.T) {
	db := newTestDB(t)
	repo := NewLoanRepository(db)
	m := seedMember(t, db, "settle@example.com")

	amount := decimal.NewFromInt(500000)
	inst, err := domain.Installment(amount, 1)
	require.NoError(t, err)
	loan := &domain.LoanApplication{
		MemberID:     m.ID,
		Amount:       amount,
		Tenor:        1,
		Purpose:      "health",
		Occupation:   "nurse",
		Salary:       decimal.NewFromInt(4000000),
		InterestRate: domain.MonthlyInterestRate,
		Installment:  inst,
		TotalAmount:  domain.TotalRepayment(amount, 1),
		Status:       domain.LoanStatusActive,
	}
	require.NoError(t, repo.CreateApplication(loan))

	pay := func(v int64) (*domain.LoanApplication, error) {
		return repo.RecordPayment(&domain.Payment{
			LoanID:   loan.ID,
			MemberID: m.ID,
			Amount:   decimal.NewFromInt(v),
			Method:   domain.PaymentBankTransfer,
			Status:   domain.PaymentStatusPending,
		})
	}

	_, err = pay(510001)
	assert.ErrorIs(t, err, ErrOverpayment)

	updated, err := pay(10000)
	require.NoError(t, err)
	assert.Equal(t, "500000", updated.Remaining().String())

	updated, err = pay(500000)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusPaid, updated.Status)
	assert.True(t, updated.Remaining().IsZero())

	_, err = pay(1)
	assert.ErrorIs(t, err, ErrLoanClosed)

	_, err = repo.RecordPayment(&domain.Payment{LoanID: loan.ID, MemberID: "someone-else", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	payments, err := repo.ListPayments(m.ID, loan.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}
