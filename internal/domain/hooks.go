package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	newID(&m.ID)
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}

func (s *KYCSubmission) BeforeCreate(tx *gorm.DB) error {
	newID(&s.ID)
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now()
	}
	if s.Status == "" {
		s.Status = KYCStatusPending
	}
	return nil
}

func (l *LoanApplication) BeforeCreate(tx *gorm.DB) error {
	newID(&l.ID)
	return nil
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}

func (b *BankAccount) BeforeCreate(tx *gorm.DB) error {
	newID(&b.ID)
	return nil
}
