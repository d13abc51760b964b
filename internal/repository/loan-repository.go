package repository

import (
	"time"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"gorm.io/gorm"
)

type LoanRepository interface {
	CreateApplication(loan *domain.LoanApplication) error
	FindByID(memberID, loanID string) (*domain.LoanApplication, error)
	ListByMemberID(memberID string) ([]domain.LoanApplication, error)

	RecordPayment(payment *domain.Payment) (*domain.LoanApplication, error)
	ListPayments(memberID, loanID string) ([]domain.Payment, error)
}

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (l *loanRepository) CreateApplication(loan *domain.LoanApplication) error {
	return l.db.Create(loan).Error
}

func (l *loanRepository) FindByID(memberID, loanID string) (*domain.LoanApplication, error) {
	var loan domain.LoanApplication
	if err := l.db.First(&loan, "id = ? AND member_id = ?", loanID, memberID).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

func (l *loanRepository) ListByMemberID(memberID string) ([]domain.LoanApplication, error) {
	var loans []domain.LoanApplication
	if err := l.db.Where("member_id = ?", memberID).Order("created_at DESC").Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// RecordPayment stores the payment and adds it to the loan's paid amount.
// A payment above the remaining balance fails with ErrOverpayment and the
// loan moves to paid once nothing remains.
func (l *loanRepository) RecordPayment(payment *domain.Payment) (*domain.LoanApplication, error) {
	var out domain.LoanApplication
	err := l.db.Transaction(func(tx *gorm.DB) error {
		// row lock, concurrent payments on one loan run one after another
		res := tx.Model(&domain.LoanApplication{}).
			Where("id = ? AND member_id = ?", payment.LoanID, payment.MemberID).
			Update("updated_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var loan domain.LoanApplication
		if err := tx.First(&loan, "id = ?", payment.LoanID).Error; err != nil {
			return err
		}
		if !loan.Status.Open() {
			return ErrLoanClosed
		}
		if payment.Amount.GreaterThan(loan.Remaining()) {
			return ErrOverpayment
		}

		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		paid := loan.AmountPaid.Add(payment.Amount)
		updates := map[string]any{"amount_paid": paid}
		if paid.GreaterThanOrEqual(loan.TotalAmount) {
			updates["status"] = domain.LoanStatusPaid
		}
		if err := tx.Model(&domain.LoanApplication{}).Where("id = ?", loan.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&out, "id = ?", loan.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *loanRepository) ListPayments(memberID, loanID string) ([]domain.Payment, error) {
	var payments []domain.Payment
	if err := l.db.
		Where("loan_id = ? AND member_id = ?", loanID, memberID).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
