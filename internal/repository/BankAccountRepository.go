package repository

import (
	"errors"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/helper"
	"gorm.io/gorm"
)

type BankAccountRepository interface {
	// Create makes the account primary when it is the member's first.
	Create(account *domain.BankAccount) error
	FindByID(memberID, accountID string) (*domain.BankAccount, error)
	ListByMemberID(memberID string) ([]domain.BankAccount, error)
	Update(account *domain.BankAccount) error
	SetPrimary(memberID, accountID string) error
	// Delete promotes the oldest remaining account if the primary goes.
	Delete(memberID, accountID string) error
}

type bankAccountRepository struct {
	db *gorm.DB
}

func NewBankAccountRepository(db *gorm.DB) BankAccountRepository {
	return &bankAccountRepository{db: db}
}

func (b *bankAccountRepository) Create(account *domain.BankAccount) error {
	err := b.create(account, true)
	if err == nil || !account.IsPrimary || !helper.IsDuplicateKey(err) {
		return err
	}
	// a concurrent first account took the primary slot after our count
	return b.create(account, false)
}

func (b *bankAccountRepository) create(account *domain.BankAccount, primaryIfFirst bool) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		account.IsPrimary = false
		if primaryIfFirst {
			var n int64
			if err := tx.Model(&domain.BankAccount{}).Where("member_id = ?", account.MemberID).Count(&n).Error; err != nil {
				return err
			}
			account.IsPrimary = n == 0
		}
		return tx.Create(account).Error
	})
}

func (b *bankAccountRepository) FindByID(memberID, accountID string) (*domain.BankAccount, error) {
	var account domain.BankAccount
	if err := b.db.First(&account, "id = ? AND member_id = ?", accountID, memberID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (b *bankAccountRepository) ListByMemberID(memberID string) ([]domain.BankAccount, error) {
	var accounts []domain.BankAccount
	if err := b.db.Where("member_id = ?", memberID).Order("is_primary DESC, created_at ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (b *bankAccountRepository) Update(account *domain.BankAccount) error {
	res := b.db.Model(&domain.BankAccount{}).
		Where("id = ? AND member_id = ?", account.ID, account.MemberID).
		Updates(map[string]any{
			"bank_name":      account.BankName,
			"account_number": account.AccountNumber,
			"account_name":   account.AccountName,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (b *bankAccountRepository) SetPrimary(memberID, accountID string) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		var target domain.BankAccount
		if err := tx.Select("id").First(&target, "id = ? AND member_id = ?", accountID, memberID).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.BankAccount{}).
			Where("member_id = ? AND is_primary = ?", memberID, true).
			Update("is_primary", false).Error; err != nil {
			return err
		}

		res := tx.Model(&domain.BankAccount{}).
			Where("id = ? AND member_id = ?", accountID, memberID).
			Update("is_primary", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (b *bankAccountRepository) Delete(memberID, accountID string) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		var account domain.BankAccount
		if err := tx.First(&account, "id = ? AND member_id = ?", accountID, memberID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&account).Error; err != nil {
			return err
		}
		if !account.IsPrimary {
			return nil
		}

		var next domain.BankAccount
		err := tx.Where("member_id = ?", memberID).Order("created_at ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_primary", true).Error
	})
}
