package repository

import (
	"github.com/SundayYogurt/lending_portal/internal/domain"
	"gorm.io/gorm"
)

// Migrate creates the portal tables plus the partial unique indexes that
// back the one-pending-KYC and one-primary-account rules. Works on both
// postgres and sqlite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Member{},
		&domain.KYCSubmission{},
		&domain.LoanApplication{},
		&domain.Payment{},
		&domain.BankAccount{},
		&domain.AuditLog{},
	); err != nil {
		return err
	}

	stmts := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS uidx_kyc_one_pending ON kyc_submissions (member_id) WHERE status = 'pending'",
		"CREATE UNIQUE INDEX IF NOT EXISTS uidx_bank_one_primary ON bank_accounts (member_id) WHERE is_primary",
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}
