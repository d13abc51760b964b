package services

import (
	"fmt"
	"strings"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/interfaces"
	"github.com/SundayYogurt/lending_portal/internal/repository"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LoanService interface {
	Quote(amount decimal.Decimal, tenor int) (dto.LoanQuoteResponse, error)
	Apply(memberID string, input dto.LoanApplicationRequest) (*domain.LoanApplication, error)
	List(memberID string) ([]domain.LoanApplication, error)

	SubmitPayment(memberID, loanID string, input dto.PaymentRequest) (*domain.Payment, error)
	ListPayments(memberID, loanID string) ([]domain.Payment, error)
}

type loanService struct {
	repo       repository.LoanRepository
	memberRepo repository.MemberRepository
	files      attachmentPolicy
	producer   interfaces.ProducerHandler
}

func NewLoanService(
	repo repository.LoanRepository,
	memberRepo repository.MemberRepository,
	producer interfaces.ProducerHandler,
	maxFileBytes int64,
) LoanService {
	return &loanService{
		repo:       repo,
		memberRepo: memberRepo,
		files:      attachmentPolicy{maxBytes: maxFileBytes},
		producer:   producer,
	}
}

func (l *loanService) Quote(amount decimal.Decimal, tenor int) (dto.LoanQuoteResponse, error) {
	if err := checkLoanTerms(amount, tenor); err != nil {
		return dto.LoanQuoteResponse{}, err
	}
	inst, err := domain.Installment(amount, tenor)
	if err != nil {
		return dto.LoanQuoteResponse{}, validationErr(err.Error())
	}
	return dto.LoanQuoteResponse{
		Amount:       amount,
		Tenor:        tenor,
		InterestRate: domain.MonthlyInterestRate,
		Installment:  inst,
		TotalAmount:  domain.TotalRepayment(amount, tenor),
	}, nil
}

func checkLoanTerms(amount decimal.Decimal, tenor int) error {
	if !domain.ValidLoanAmount(amount) {
		return validationErr(fmt.Sprintf("amount must be between %s and %s in steps of %s",
			domain.MinLoanAmount, domain.MaxLoanAmount, domain.LoanAmountStep))
	}
	if !domain.ValidTenor(tenor) {
		return validationErr(fmt.Sprintf("tenor must be one of %v", domain.LoanTenors))
	}
	return nil
}

func (l *loanService) Apply(memberID string, input dto.LoanApplicationRequest) (*domain.LoanApplication, error) {
	input.Occupation = strings.TrimSpace(input.Occupation)
	input.Purpose = strings.TrimSpace(input.Purpose)

	if err := utils.ValidateStruct(input); err != nil {
		return nil, validationErr(err.Error())
	}
	if err := checkLoanTerms(input.Amount, input.Tenor); err != nil {
		return nil, err
	}
	if input.Salary.IsNegative() {
		return nil, validationErr("salary must not be negative")
	}
	if err := l.files.optional("kk_file", input.FamilyCardFile); err != nil {
		return nil, err
	}
	if err := l.files.optional("salary_slip_file", input.SalarySlipFile); err != nil {
		return nil, err
	}

	member, err := l.memberRepo.FindMemberByID(memberID)
	if err != nil {
		return nil, fromRepo(err, "member")
	}
	if member.Status != domain.MemberStatusActive {
		return nil, forbiddenErr("account is not active")
	}
	if latest := member.LatestKYC(); latest == nil || latest.Status != domain.KYCStatusApproved {
		return nil, forbiddenErr("identity verification must be approved before applying")
	}
	if member.LoanLimit.IsPositive() && input.Amount.GreaterThan(member.LoanLimit) {
		return nil, validationErr("amount exceeds loan limit of " + member.LoanLimit.String())
	}

	inst, err := domain.Installment(input.Amount, input.Tenor)
	if err != nil {
		return nil, validationErr(err.Error())
	}

	loan := &domain.LoanApplication{
		ID:             uuid.NewString(),
		MemberID:       memberID,
		Amount:         input.Amount,
		Tenor:          input.Tenor,
		Purpose:        input.Purpose,
		Occupation:     input.Occupation,
		Salary:         input.Salary,
		FamilyCardFile: input.FamilyCardFile,
		SalarySlipFile: input.SalarySlipFile,
		InterestRate:   domain.MonthlyInterestRate,
		Installment:    inst,
		TotalAmount:    domain.TotalRepayment(input.Amount, input.Tenor),
		Status:         domain.LoanStatusSubmitted,
	}
	if err := l.repo.CreateApplication(loan); err != nil {
		return nil, fromRepo(err, "loan application")
	}

	logger.Info("loan submitted",
		zap.String("member_id", memberID),
		zap.String("loan_id", loan.ID),
		zap.String("amount", loan.Amount.String()),
		zap.Int("tenor", loan.Tenor),
	)

	ev := memberEvent(dto.EventLoanSubmitted, member)
	ev.Reference = loan.ID
	ev.Status = string(loan.Status)
	ev.Amount = &loan.Amount
	publish(l.producer, ev)

	return loan, nil
}

func (l *loanService) List(memberID string) ([]domain.LoanApplication, error) {
	if _, err := l.memberRepo.FindMemberByID(memberID); err != nil {
		return nil, fromRepo(err, "member")
	}
	return l.repo.ListByMemberID(memberID)
}

func (l *loanService) SubmitPayment(memberID, loanID string, input dto.PaymentRequest) (*domain.Payment, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, validationErr(err.Error())
	}
	if !input.Amount.IsPositive() {
		return nil, validationErr("amount must be positive")
	}
	if err := l.files.optional("proof_file", input.ProofFile); err != nil {
		return nil, err
	}

	loan, err := l.repo.FindByID(memberID, loanID)
	if err != nil {
		return nil, fromRepo(err, "loan")
	}
	if !loan.Status.Open() {
		return nil, conflictErr("loan is " + string(loan.Status) + " and accepts no payments")
	}
	if remaining := loan.Remaining(); input.Amount.GreaterThan(remaining) {
		return nil, validationErr("amount exceeds the remaining balance of " + remaining.String())
	}

	payment := &domain.Payment{
		ID:        uuid.NewString(),
		LoanID:    loan.ID,
		MemberID:  memberID,
		Amount:    input.Amount,
		Method:    domain.PaymentMethod(input.Method),
		ProofFile: input.ProofFile,
		Status:    domain.PaymentStatusPending,
	}
	updated, err := l.repo.RecordPayment(payment)
	if err != nil {
		return nil, fromRepo(err, "loan")
	}
	if updated.Status == domain.LoanStatusPaid {
		logger.Info("loan settled", zap.String("member_id", memberID), zap.String("loan_id", loan.ID))
	}

	if member, err := l.memberRepo.FindMemberByID(memberID); err == nil {
		ev := memberEvent(dto.EventPaymentSubmitted, member)
		ev.Reference = payment.ID
		ev.Status = string(payment.Status)
		ev.Amount = &payment.Amount
		publish(l.producer, ev)
	}
	return payment, nil
}

func (l *loanService) ListPayments(memberID, loanID string) ([]domain.Payment, error) {
	if _, err := l.repo.FindByID(memberID, loanID); err != nil {
		return nil, fromRepo(err, "loan")
	}
	return l.repo.ListPayments(memberID, loanID)
}
