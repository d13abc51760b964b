package repository

import "errors"

var (
	ErrVersionConflict = errors.New("record was modified by another writer")
	ErrKYCPending      = errors.New("a kyc submission is already pending review")
	ErrNotPending      = errors.New("kyc submission is not pending")
	ErrLoanClosed      = errors.New("loan accepts no payments")
	ErrOverpayment     = errors.New("payment exceeds the remaining balance")
)
