package repository

import (
	"time"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"gorm.io/gorm"
)

type KYCRepository interface {
	CreateSubmission(sub *domain.KYCSubmission) error

	FindLatestByMemberID(memberID string) (*domain.KYCSubmission, error)
	FindByID(kycID string) (*domain.KYCSubmission, error)
	ListPending(limit, offset int) ([]domain.KYCSubmission, error)

	Review(kycID string, adminID string, decision domain.KYCDecision, note string) (*domain.KYCSubmission, error)
}

type kycRepository struct {
	db *gorm.DB
}

func NewKYCRepository(db *gorm.DB) KYCRepository {
	return &kycRepository{db: db}
}

func (k *kycRepository) CreateSubmission(sub *domain.KYCSubmission) error {
	return k.db.Transaction(func(tx *gorm.DB) error {
		subs := []domain.KYCSubmission{*sub}
		if err := createPendingKYC(tx, sub.MemberID, subs); err != nil {
			return err
		}
		*sub = subs[0]
		return tx.Model(&domain.Member{}).
			Where("id = ?", sub.MemberID).
			Update("version", gorm.Expr("version + 1")).Error
	})
}

func (k *kycRepository) FindLatestByMemberID(memberID string) (*domain.KYCSubmission, error) {
	var sub domain.KYCSubmission
	err := k.db.
		Where("member_id = ?", memberID).
		Order("submitted_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (k *kycRepository) FindByID(kycID string) (*domain.KYCSubmission, error) {
	var sub domain.KYCSubmission
	if err := k.db.First(&sub, "id = ?", kycID).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (k *kycRepository) ListPending(limit, offset int) ([]domain.KYCSubmission, error) {
	var subs []domain.KYCSubmission

	q := k.db.Where("status = ?", domain.KYCStatusPending).Order("submitted_at ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// Review moves a pending submission to approved or rejected and records
// the decision in the audit log.
func (k *kycRepository) Review(kycID string, adminID string, decision domain.KYCDecision, note string) (*domain.KYCSubmission, error) {
	now := time.Now()

	var out domain.KYCSubmission
	err := k.db.Transaction(func(tx *gorm.DB) error {
		var sub domain.KYCSubmission
		if err := tx.First(&sub, "id = ?", kycID).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"status":      decision.Status(),
			"reviewed_by": adminID,
			"reviewed_at": now,
		}
		if note != "" {
			updates["review_note"] = note
		}

		res := tx.Model(&domain.KYCSubmission{}).
			Where("id = ? AND status = ?", kycID, domain.KYCStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}

		if err := tx.Model(&domain.Member{}).
			Where("id = ?", sub.MemberID).
			Update("version", gorm.Expr("version + 1")).Error; err != nil {
			return err
		}

		var auditNote *string
		if note != "" {
			auditNote = &note
		}
		if err := tx.Create(&domain.AuditLog{
			ActorID:  adminID,
			Action:   domain.AuditActionKYCReview + "." + string(decision),
			Entity:   "kyc_submission",
			EntityID: kycID,
			Note:     auditNote,
		}).Error; err != nil {
			return err
		}

		return tx.First(&out, "id = ?", kycID).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
