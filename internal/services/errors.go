package services

import (
	"errors"

	"github.com/SundayYogurt/lending_portal/internal/helper"
	"github.com/SundayYogurt/lending_portal/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error carries a client-facing message and unwraps to one of the kinds
// above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func validationErr(msg string) error   { return &Error{Kind: ErrValidation, Msg: msg} }
func notFoundErr(msg string) error     { return &Error{Kind: ErrNotFound, Msg: msg} }
func conflictErr(msg string) error     { return &Error{Kind: ErrConflict, Msg: msg} }
func forbiddenErr(msg string) error    { return &Error{Kind: ErrForbidden, Msg: msg} }
func unauthorizedErr(msg string) error { return &Error{Kind: ErrUnauthorized, Msg: msg} }

// fromRepo translates storage errors into service errors. what names the
// missing record.
func fromRepo(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFoundErr(what + " not found")
	case errors.Is(err, repository.ErrVersionConflict):
		return conflictErr("version mismatch, reload and retry")
	case errors.Is(err, repository.ErrKYCPending):
		return conflictErr("kyc already pending admin review")
	case errors.Is(err, repository.ErrNotPending):
		return conflictErr("kyc submission is not pending")
	case errors.Is(err, repository.ErrLoanClosed):
		return conflictErr("loan accepts no payments")
	case errors.Is(err, repository.ErrOverpayment):
		return validationErr("amount exceeds the remaining balance")
	case helper.IsDuplicateKey(err):
		return conflictErr(what + " already exists")
	}
	return err
}
