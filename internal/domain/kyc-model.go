package domain

import (
	"time"
)

type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved" // reviewed by an admin
	KYCStatusRejected KYCStatus = "rejected"
)

type KYCDecision string

const (
	KYCDecisionApproved KYCDecision = "approved"
	KYCDecisionRejected KYCDecision = "rejected"
)

func (d KYCDecision) Status() KYCStatus {
	if d == KYCDecisionApproved {
		return KYCStatusApproved
	}
	return KYCStatusRejected
}

type KYCSubmission struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	MemberID   string    `gorm:"type:varchar(36);not null;index" json:"member_id"`
	NationalID string    `gorm:"type:varchar(16);not null" json:"nik"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Address    string    `gorm:"type:text;not null" json:"address"`
	Phone      string    `gorm:"type:varchar(30);not null" json:"phone"`
	IDCardFile string    `gorm:"type:text;not null" json:"ktp_file"`
	SelfieFile string    `gorm:"type:text;not null" json:"selfie_file"`
	Status     KYCStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	SubmittedAt time.Time  `gorm:"not null;index" json:"submitted_at"`
	ReviewedBy  *string    `gorm:"type:varchar(36)" json:"reviewed_by,omitempty"`
	ReviewNote  *string    `gorm:"type:text" json:"review_note,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// LatestSubmission picks the entry with the newest SubmittedAt.
func LatestSubmission(subs []KYCSubmission) *KYCSubmission {
	var latest *KYCSubmission
	for i := range subs {
		if latest == nil || subs[i].SubmittedAt.After(latest.SubmittedAt) {
			latest = &subs[i]
		}
	}
	return latest
}
