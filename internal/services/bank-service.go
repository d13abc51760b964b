package services

import (
	"strings"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/repository"
	"github.com/google/uuid"
)

type BankAccountService interface {
	List(memberID string) ([]domain.BankAccount, error)
	Add(memberID string, input dto.BankAccountInput) (*domain.BankAccount, error)
	Update(memberID, accountID string, input dto.BankAccountInput) (*domain.BankAccount, error)
	Delete(memberID, accountID string) error
	SetPrimary(memberID, accountID string) ([]domain.BankAccount, error)
}

type bankAccountService struct {
	repo       repository.BankAccountRepository
	memberRepo repository.MemberRepository
}

func NewBankAccountService(repo repository.BankAccountRepository, memberRepo repository.MemberRepository) BankAccountService {
	return &bankAccountService{repo: repo, memberRepo: memberRepo}
}

func normalizeBankInput(input dto.BankAccountInput) (dto.BankAccountInput, error) {
	input.BankName = strings.ToLower(strings.TrimSpace(input.BankName))
	input.AccountNumber = strings.ReplaceAll(strings.TrimSpace(input.AccountNumber), " ", "")
	input.AccountName = strings.TrimSpace(input.AccountName)

	if err := utils.ValidateStruct(input); err != nil {
		return input, validationErr(err.Error())
	}
	if _, ok := domain.SupportedBanks[input.BankName]; !ok {
		return input, validationErr("unsupported bank")
	}
	return input, nil
}

func (b *bankAccountService) List(memberID string) ([]domain.BankAccount, error) {
	if _, err := b.memberRepo.FindMemberByID(memberID); err != nil {
		return nil, fromRepo(err, "member")
	}
	return b.repo.ListByMemberID(memberID)
}

func (b *bankAccountService) Add(memberID string, input dto.BankAccountInput) (*domain.BankAccount, error) {
	input, err := normalizeBankInput(input)
	if err != nil {
		return nil, err
	}
	if _, err := b.memberRepo.FindMemberByID(memberID); err != nil {
		return nil, fromRepo(err, "member")
	}

	account := &domain.BankAccount{
		ID:            uuid.NewString(),
		MemberID:      memberID,
		BankName:      input.BankName,
		AccountNumber: input.AccountNumber,
		AccountName:   input.AccountName,
	}
	if err := b.repo.Create(account); err != nil {
		return nil, fromRepo(err, "bank account")
	}
	return account, nil
}

func (b *bankAccountService) Update(memberID, accountID string, input dto.BankAccountInput) (*domain.BankAccount, error) {
	input, err := normalizeBankInput(input)
	if err != nil {
		return nil, err
	}

	account := &domain.BankAccount{
		ID:            accountID,
		MemberID:      memberID,
		BankName:      input.BankName,
		AccountNumber: input.AccountNumber,
		AccountName:   input.AccountName,
	}
	if err := b.repo.Update(account); err != nil {
		return nil, fromRepo(err, "bank account")
	}

	updated, err := b.repo.FindByID(memberID, accountID)
	if err != nil {
		return nil, fromRepo(err, "bank account")
	}
	return updated, nil
}

func (b *bankAccountService) Delete(memberID, accountID string) error {
	return fromRepo(b.repo.Delete(memberID, accountID), "bank account")
}

// SetPrimary returns the member's accounts after the switch.
func (b *bankAccountService) SetPrimary(memberID, accountID string) ([]domain.BankAccount, error) {
	if err := b.repo.SetPrimary(memberID, accountID); err != nil {
		return nil, fromRepo(err, "bank account")
	}
	return b.repo.ListByMemberID(memberID)
}
