package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusInactive  MemberStatus = "inactive"
	MemberStatusSuspended MemberStatus = "suspended"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusActive, MemberStatusInactive, MemberStatusSuspended:
		return true
	}
	return false
}

type MemberRole string

const (
	RoleMember MemberRole = "member"
	RoleAdmin  MemberRole = "admin"
)

type Member struct {
	ID           string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string       `gorm:"type:varchar(255);not null" json:"name"`
	Phone        string       `gorm:"type:varchar(30)" json:"phone"`
	PasswordHash string       `gorm:"not null" json:"-"`
	Status       MemberStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Role         MemberRole   `gorm:"type:varchar(20);not null;default:'member'" json:"role"`

	Occupation     string          `gorm:"type:varchar(100)" json:"occupation"`
	Salary         decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"salary"`
	LoanLimit      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"loan_limit"`
	FamilyCardFile string          `gorm:"type:text" json:"kk_file,omitempty"`
	SalarySlipFile string          `gorm:"type:text" json:"salary_slip_file,omitempty"`

	// Version increments on every write and backs conditional updates.
	Version int64 `gorm:"not null;default:1" json:"version"`

	KYCSubmissions []KYCSubmission   `gorm:"foreignKey:MemberID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"kyc_submissions,omitempty"`
	Loans          []LoanApplication `gorm:"foreignKey:MemberID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"loans,omitempty"`
	BankAccounts   []BankAccount     `gorm:"foreignKey:MemberID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"bank_accounts,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

// LatestKYC returns the most recently submitted KYC entry, or nil.
func (m *Member) LatestKYC() *KYCSubmission {
	if m == nil {
		return nil
	}
	return LatestSubmission(m.KYCSubmissions)
}
