package domain

import "time"

// Banks accepted for withdrawal and repayment accounts.
var SupportedBanks = map[string]string{
	"bca":     "BCA",
	"bni":     "BNI",
	"bri":     "BRI",
	"mandiri": "Bank Mandiri",
	"cimb":    "CIMB Niaga",
	"bsi":     "BSI",
}

type BankAccount struct {
	ID            string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	MemberID      string `gorm:"type:varchar(36);index;not null" json:"member_id"`
	BankName      string `gorm:"type:varchar(20);not null" json:"bank_name"`
	AccountNumber string `gorm:"type:varchar(50);not null" json:"account_number"`
	AccountName   string `gorm:"type:varchar(100);not null" json:"account_name"`
	IsPrimary     bool   `gorm:"not null;default:false" json:"is_primary"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
