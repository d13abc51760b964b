package dto

import (
	"time"

	"github.com/SundayYogurt/lending_portal/internal/domain"
)

type KYCSubmissionInput struct {
	ID         string `json:"id,omitempty"`
	NationalID string `json:"nik" validate:"required,len=16,numeric"`
	Name       string `json:"name" validate:"required,max=255"`
	Address    string `json:"address" validate:"required"`
	Phone      string `json:"phone" validate:"required,min=8,max=20"`
	IDCardFile string `json:"ktp_file" validate:"required"`
	SelfieFile string `json:"selfie_file" validate:"required"`
}

type KYCSubmissionResponse struct {
	ID          string     `json:"id"`
	NationalID  string     `json:"nik"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	Phone       string     `json:"phone"`
	IDCardFile  string     `json:"ktp_file"`
	SelfieFile  string     `json:"selfie_file"`
	Status      string     `json:"status"` // pending | approved | rejected
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNote  *string    `json:"review_note,omitempty"`
}

type PendingKYCResponse struct {
	KYCID       string    `json:"kyc_id"`
	MemberID    string    `json:"member_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type ReviewKYCRequest struct {
	Note string `json:"note" validate:"max=1000"`
}

func NewKYCSubmissionResponse(s *domain.KYCSubmission) KYCSubmissionResponse {
	return KYCSubmissionResponse{
		ID:          s.ID,
		NationalID:  s.NationalID,
		Name:        s.Name,
		Address:     s.Address,
		Phone:       s.Phone,
		IDCardFile:  s.IDCardFile,
		SelfieFile:  s.SelfieFile,
		Status:      string(s.Status),
		SubmittedAt: s.SubmittedAt,
		ReviewedAt:  s.ReviewedAt,
		ReviewNote:  s.ReviewNote,
	}
}

func NewPendingKYCResponse(s *domain.KYCSubmission) PendingKYCResponse {
	return PendingKYCResponse{
		KYCID:       s.ID,
		MemberID:    s.MemberID,
		Name:        s.Name,
		Status:      string(s.Status),
		SubmittedAt: s.SubmittedAt,
	}
}
