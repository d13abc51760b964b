package dto

import (
	"time"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/shopspring/decimal"
)

type LoanApplicationRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Tenor          int             `json:"tenor" validate:"required,oneof=1 3 6 12"`
	Purpose        string          `json:"purpose" validate:"required,oneof=business_capital emergency education health wedding home_renovation other"`
	Occupation     string          `json:"occupation" validate:"required,max=100"`
	Salary         decimal.Decimal `json:"salary"`
	FamilyCardFile string          `json:"kk_file,omitempty"`
	SalarySlipFile string          `json:"salary_slip_file,omitempty"`
}

type LoanQuoteResponse struct {
	Amount       decimal.Decimal `json:"amount"`
	Tenor        int             `json:"tenor"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Installment  decimal.Decimal `json:"installment"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

type LoanResponse struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Tenor        int             `json:"tenor"`
	Purpose      string          `json:"purpose"`
	Occupation   string          `json:"occupation"`
	Salary       decimal.Decimal `json:"salary"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Installment  decimal.Decimal `json:"installment"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	Remaining    decimal.Decimal `json:"remaining"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`

	NextPayment *InstallmentResponse  `json:"next_payment,omitempty"`
	Schedule    []InstallmentResponse `json:"schedule"`
}

type InstallmentResponse struct {
	Number  int             `json:"number"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"due_date"` // YYYY-MM-DD
	Status  string          `json:"status"`   // paid | pending | overdue
}

type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required,oneof=bank_transfer virtual_account qris credit_card"`
	ProofFile string          `json:"proof_file,omitempty"`
}

type PaymentResponse struct {
	ID        string          `json:"id"`
	LoanID    string          `json:"loan_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewLoanResponse(l *domain.LoanApplication) LoanResponse {
	return newLoanResponseAt(l, time.Now())
}

func newLoanResponseAt(l *domain.LoanApplication, now time.Time) LoanResponse {
	sched := l.Schedule(now)
	out := LoanResponse{
		ID:           l.ID,
		Amount:       l.Amount,
		Tenor:        l.Tenor,
		Purpose:      l.Purpose,
		Occupation:   l.Occupation,
		Salary:       l.Salary,
		InterestRate: l.InterestRate,
		Installment:  l.Installment,
		TotalAmount:  l.TotalAmount,
		AmountPaid:   l.AmountPaid,
		Remaining:    l.Remaining(),
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt,
		Schedule:     make([]InstallmentResponse, 0, len(sched)),
	}
	for _, inst := range sched {
		out.Schedule = append(out.Schedule, InstallmentResponse{
			Number:  inst.Number,
			Amount:  inst.Amount,
			DueDate: inst.DueDate.Format(time.DateOnly),
			Status:  string(inst.Status),
		})
	}
	for i := range out.Schedule {
		if out.Schedule[i].Status != string(domain.InstallmentPaid) {
			next := out.Schedule[i]
			out.NextPayment = &next
			break
		}
	}
	return out
}

func NewPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		LoanID:    p.LoanID,
		Amount:    p.Amount,
		Method:    string(p.Method),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
	}
}
