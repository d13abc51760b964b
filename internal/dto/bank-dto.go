package dto

import (
	"time"

	"github.com/SundayYogurt/lending_portal/internal/domain"
)

type BankAccountInput struct {
	BankName      string `json:"bank_name" validate:"required,oneof=bca bni bri mandiri cimb bsi"`
	AccountNumber string `json:"account_number" validate:"required,numeric,min=6,max=20"`
	AccountName   string `json:"account_name" validate:"required,max=100"`
}

type BankAccountResponse struct {
	ID            string    `json:"id"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	AccountName   string    `json:"account_name"`
	IsPrimary     bool      `json:"is_primary"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewBankAccountResponse(a *domain.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		ID:            a.ID,
		BankName:      a.BankName,
		AccountNumber: a.AccountNumber,
		AccountName:   a.AccountName,
		IsPrimary:     a.IsPrimary,
		CreatedAt:     a.CreatedAt,
	}
}
