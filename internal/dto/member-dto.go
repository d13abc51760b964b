package dto

import (
	"time"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email"`
	Phone                string `json:"phone" validate:"required,min=8,max=20"`
	Password             string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation,omitempty"`
}

// MemberPatch carries a partial update. Nil fields are left untouched.
type MemberPatch struct {
	Name           *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Phone          *string          `json:"phone,omitempty" validate:"omitempty,min=8,max=20"`
	Occupation     *string          `json:"occupation,omitempty" validate:"omitempty,max=100"`
	Salary         *decimal.Decimal `json:"salary,omitempty"`
	FamilyCardFile *string          `json:"kk_file,omitempty"`
	SalarySlipFile *string          `json:"salary_slip_file,omitempty"`

	// admin only
	Status    *string          `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended"`
	Role      *string          `json:"role,omitempty" validate:"omitempty,oneof=member admin"`
	LoanLimit *decimal.Decimal `json:"loan_limit,omitempty"`

	// Entries without an id are appended as new pending submissions.
	KYCSubmissions []KYCSubmissionInput `json:"kyc_submissions,omitempty"`

	Version *int64 `json:"version,omitempty"`
}

// MemberReplace is the full profile written by PUT.
type MemberReplace struct {
	Email          string          `json:"email,omitempty"`
	Name           string          `json:"name" validate:"required,max=255"`
	Phone          string          `json:"phone" validate:"required,min=8,max=20"`
	Occupation     string          `json:"occupation" validate:"max=100"`
	Salary         decimal.Decimal `json:"salary"`
	FamilyCardFile string          `json:"kk_file,omitempty"`
	SalarySlipFile string          `json:"salary_slip_file,omitempty"`
	Version        *int64          `json:"version,omitempty"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
}

type MemberResponse struct {
	ID             string                  `json:"id"`
	Email          string                  `json:"email"`
	Name           string                  `json:"name"`
	Phone          string                  `json:"phone"`
	Status         string                  `json:"status"`
	Role           string                  `json:"role"`
	Occupation     string                  `json:"occupation"`
	Salary         decimal.Decimal         `json:"salary"`
	LoanLimit      decimal.Decimal         `json:"loan_limit"`
	FamilyCardFile string                  `json:"kk_file,omitempty"`
	SalarySlipFile string                  `json:"salary_slip_file,omitempty"`
	Version        int64                   `json:"version"`
	KYCSubmissions []KYCSubmissionResponse `json:"kyc_submissions"`
	ActiveLoans    []LoanResponse          `json:"active_loans"`
	LoanHistory    []LoanResponse          `json:"loan_history"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// LatestKYC mirrors domain.LatestSubmission for clients.
func (m *MemberResponse) LatestKYC() *KYCSubmissionResponse {
	if m == nil {
		return nil
	}
	var latest *KYCSubmissionResponse
	for i := range m.KYCSubmissions {
		if latest == nil || m.KYCSubmissions[i].SubmittedAt.After(latest.SubmittedAt) {
			latest = &m.KYCSubmissions[i]
		}
	}
	return latest
}

type MemberSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMemberResponse(m *domain.Member) MemberResponse {
	out := MemberResponse{
		ID:             m.ID,
		Email:          m.Email,
		Name:           m.Name,
		Phone:          m.Phone,
		Status:         string(m.Status),
		Role:           string(m.Role),
		Occupation:     m.Occupation,
		Salary:         m.Salary,
		LoanLimit:      m.LoanLimit,
		FamilyCardFile: m.FamilyCardFile,
		SalarySlipFile: m.SalarySlipFile,
		Version:        m.Version,
		KYCSubmissions: make([]KYCSubmissionResponse, 0, len(m.KYCSubmissions)),
		ActiveLoans:    []LoanResponse{},
		LoanHistory:    []LoanResponse{},
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	for i := range m.KYCSubmissions {
		out.KYCSubmissions = append(out.KYCSubmissions, NewKYCSubmissionResponse(&m.KYCSubmissions[i]))
	}
	for i := range m.Loans {
		loan := NewLoanResponse(&m.Loans[i])
		if m.Loans[i].Status.Open() {
			out.ActiveLoans = append(out.ActiveLoans, loan)
		} else {
			out.LoanHistory = append(out.LoanHistory, loan)
		}
	}
	return out
}

func NewMemberSummary(m *domain.Member) MemberSummary {
	return MemberSummary{ID: m.ID, Email: m.Email, CreatedAt: m.CreatedAt}
}
