package repository

import (
	"errors"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/helper"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MemberRepository interface {
	CreateMember(member *domain.Member) error
	FindMemberByEmail(email string) (*domain.Member, error)
	FindMemberByID(id string) (*domain.Member, error)
	ListMembers(limit, offset int) ([]domain.Member, error)

	// UpdateMember writes the profile columns and appends newKYC in one
	// transaction. When expectedVersion is set the write only applies if
	// the stored version still matches.
	UpdateMember(member *domain.Member, expectedVersion *int64, newKYC []domain.KYCSubmission) error
	UpdateStatus(id string, status domain.MemberStatus, actorID string, note *string) error
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) CreateMember(member *domain.Member) error {
	if member == nil {
		return errors.New("nil member")
	}
	if err := r.db.Create(member).Error; err != nil {
		if !helper.IsDuplicateKey(err) {
			logger.Error("create member failed", err, zap.String("email", member.Email))
		}
		return err
	}
	return nil
}

func (r *memberRepository) FindMemberByEmail(email string) (*domain.Member, error) {
	member := &domain.Member{}
	if err := r.withRelations().First(member, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepository) FindMemberByID(id string) (*domain.Member, error) {
	member := &domain.Member{}
	if err := r.withRelations().First(member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepository) ListMembers(limit, offset int) ([]domain.Member, error) {
	var members []domain.Member
	q := r.withRelations().Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) withRelations() *gorm.DB {
	return r.db.
		Preload("KYCSubmissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("submitted_at ASC")
		}).
		Preload("Loans", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		})
}

func (r *memberRepository) UpdateMember(member *domain.Member, expectedVersion *int64, newKYC []domain.KYCSubmission) error {
	if member == nil {
		return errors.New("nil member")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var current domain.Member
		if err := tx.Select("id", "version").First(&current, "id = ?", member.ID).Error; err != nil {
			return err
		}

		q := tx.Model(&domain.Member{}).Where("id = ?", member.ID)
		if expectedVersion != nil {
			q = q.Where("version = ?", *expectedVersion)
		}
		res := q.Updates(map[string]any{
			"name":             member.Name,
			"phone":            member.Phone,
			"status":           member.Status,
			"role":             member.Role,
			"occupation":       member.Occupation,
			"salary":           member.Salary,
			"loan_limit":       member.LoanLimit,
			"family_card_file": member.FamilyCardFile,
			"salary_slip_file": member.SalarySlipFile,
			"version":          gorm.Expr("version + 1"),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}

		if len(newKYC) > 0 {
			if err := createPendingKYC(tx, member.ID, newKYC); err != nil {
				return err
			}
		}

		return tx.Select("version", "updated_at").First(member, "id = ?", member.ID).Error
	})
}

func (r *memberRepository) UpdateStatus(id string, status domain.MemberStatus, actorID string, note *string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Member{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"status":  status,
				"version": gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Create(&domain.AuditLog{
			ActorID:  actorID,
			Action:   domain.AuditActionSetStatus,
			Entity:   "member",
			EntityID: id,
			Note:     note,
		}).Error
	})
}

// createPendingKYC refuses to add a submission while one is pending. The
// partial unique index catches writers that race past the count.
func createPendingKYC(tx *gorm.DB, memberID string, subs []domain.KYCSubmission) error {
	var pending int64
	if err := tx.Model(&domain.KYCSubmission{}).
		Where("member_id = ? AND status = ?", memberID, domain.KYCStatusPending).
		Count(&pending).Error; err != nil {
		return err
	}
	if pending > 0 || len(subs) > 1 {
		return ErrKYCPending
	}

	for i := range subs {
		subs[i].MemberID = memberID
		subs[i].Status = domain.KYCStatusPending
	}
	if err := tx.Create(&subs).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return ErrKYCPending
		}
		return err
	}
	return nil
}
