package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentVirtualAccount PaymentMethod = "virtual_account"
	PaymentQRIS           PaymentMethod = "qris"
	PaymentCreditCard     PaymentMethod = "credit_card"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
)

type Payment struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	LoanID    string          `gorm:"type:varchar(36);not null;index" json:"loan_id"`
	MemberID  string          `gorm:"type:varchar(36);not null;index" json:"member_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Method    PaymentMethod   `gorm:"type:varchar(30);not null" json:"method"`
	ProofFile string          `gorm:"type:text" json:"proof_file,omitempty"`
	Status    PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
