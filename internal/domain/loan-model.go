package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusSubmitted LoanStatus = "submitted"
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusRejected  LoanStatus = "rejected"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusPaid      LoanStatus = "paid"
)

// Open reports whether the loan still counts as an active obligation.
func (s LoanStatus) Open() bool {
	return s == LoanStatusSubmitted || s == LoanStatusApproved || s == LoanStatusActive
}

var (
	MonthlyInterestRate = decimal.RequireFromString("0.02")

	MinLoanAmount  = decimal.NewFromInt(500_000)
	MaxLoanAmount  = decimal.NewFromInt(10_000_000)
	LoanAmountStep = decimal.NewFromInt(50_000)

	LoanTenors = []int{1, 3, 6, 12}

	LoanPurposes = []string{
		"business_capital",
		"emergency",
		"education",
		"health",
		"wedding",
		"home_renovation",
		"other",
	}
)

var (
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidTenor     = errors.New("tenor must be a positive number of months")
)

// Installment is ceil((P + P*r*T) / T) with simple monthly interest r.
func Installment(principal decimal.Decimal, tenor int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, ErrInvalidPrincipal
	}
	if tenor <= 0 {
		return decimal.Zero, ErrInvalidTenor
	}

	months := decimal.NewFromInt(int64(tenor))
	total := TotalRepayment(principal, tenor)
	return total.Div(months).Ceil(), nil
}

// TotalRepayment is P + P*r*T.
func TotalRepayment(principal decimal.Decimal, tenor int) decimal.Decimal {
	interest := principal.Mul(MonthlyInterestRate).Mul(decimal.NewFromInt(int64(tenor)))
	return principal.Add(interest)
}

func ValidTenor(tenor int) bool {
	for _, t := range LoanTenors {
		if t == tenor {
			return true
		}
	}
	return false
}

func ValidLoanAmount(amount decimal.Decimal) bool {
	if amount.LessThan(MinLoanAmount) || amount.GreaterThan(MaxLoanAmount) {
		return false
	}
	return amount.Mod(LoanAmountStep).IsZero()
}

type LoanApplication struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	MemberID       string          `gorm:"type:varchar(36);not null;index" json:"member_id"`
	Amount         decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Tenor          int             `gorm:"not null" json:"tenor"`
	Purpose        string          `gorm:"type:varchar(50);not null" json:"purpose"`
	Occupation     string          `gorm:"type:varchar(100);not null" json:"occupation"`
	Salary         decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"salary"`
	FamilyCardFile string          `gorm:"type:text" json:"kk_file,omitempty"`
	SalarySlipFile string          `gorm:"type:text" json:"salary_slip_file,omitempty"`

	InterestRate decimal.Decimal `gorm:"type:numeric(6,4);not null" json:"interest_rate"`
	Installment  decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"installment"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_amount"`
	AmountPaid   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"amount_paid"`
	Status       LoanStatus      `gorm:"type:varchar(20);not null;default:'submitted'" json:"status"`

	Payments []Payment `gorm:"foreignKey:LoanID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"payments,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type InstallmentStatus string

const (
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentPending InstallmentStatus = "pending"
	InstallmentOverdue InstallmentStatus = "overdue"
)

type ScheduledInstallment struct {
	Number  int
	Amount  decimal.Decimal
	DueDate time.Time
	Status  InstallmentStatus
}

// Remaining is the part of TotalAmount not yet paid, never negative.
func (l *LoanApplication) Remaining() decimal.Decimal {
	rest := l.TotalAmount.Sub(l.AmountPaid)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// Schedule lists the monthly installments, the first due one month after
// the loan was created. Every installment is Installment except the last,
// which takes the rounding remainder so the amounts add up to TotalAmount.
// AmountPaid settles installments in order.
func (l *LoanApplication) Schedule(now time.Time) []ScheduledInstallment {
	if l.Tenor <= 0 {
		return nil
	}

	out := make([]ScheduledInstallment, 0, l.Tenor)
	covered := decimal.Zero
	for i := 1; i <= l.Tenor; i++ {
		amount := l.Installment
		if i == l.Tenor {
			amount = l.TotalAmount.Sub(l.Installment.Mul(decimal.NewFromInt(int64(l.Tenor - 1))))
			if amount.IsNegative() {
				amount = decimal.Zero
			}
		}
		covered = covered.Add(amount)

		due := addMonths(l.CreatedAt, i)
		status := InstallmentPending
		switch {
		case l.AmountPaid.GreaterThanOrEqual(covered):
			status = InstallmentPaid
		case due.Before(now):
			status = InstallmentOverdue
		}

		out = append(out, ScheduledInstallment{
			Number:  i,
			Amount:  amount,
			DueDate: due,
			Status:  status,
		})
	}
	return out
}

// NextDue is the first installment not fully paid, or nil once the loan
// is settled.
func (l *LoanApplication) NextDue(now time.Time) *ScheduledInstallment {
	for _, inst := range l.Schedule(now) {
		if inst.Status != InstallmentPaid {
			return &inst
		}
	}
	return nil
}

// addMonths keeps the day of month, clamped to the end of shorter months.
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}
