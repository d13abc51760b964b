package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/interfaces"
	"github.com/SundayYogurt/lending_portal/internal/repository"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type KYCService interface {
	// Prepare validates one new submission and resolves its images. It
	// does not persist anything.
	Prepare(ctx context.Context, memberID string, input dto.KYCSubmissionInput) (domain.KYCSubmission, error)
	Submit(ctx context.Context, memberID string, input dto.KYCSubmissionInput) (*domain.KYCSubmission, error)
	Latest(memberID string) (*domain.KYCSubmission, error)

	// reviewer
	ListPending(limit, offset int) ([]domain.KYCSubmission, error)
	Review(adminID, kycID string, decision domain.KYCDecision, note string) (*domain.KYCSubmission, error)
}

type kycService struct {
	kycRepo    repository.KYCRepository
	memberRepo repository.MemberRepository
	files      attachmentPolicy
	producer   interfaces.ProducerHandler
}

func NewKYCService(
	kycRepo repository.KYCRepository,
	memberRepo repository.MemberRepository,
	uploader interfaces.Uploader,
	producer interfaces.ProducerHandler,
	maxFileBytes int64,
) KYCService {
	return &kycService{
		kycRepo:    kycRepo,
		memberRepo: memberRepo,
		files:      attachmentPolicy{maxBytes: maxFileBytes, uploader: uploader},
		producer:   producer,
	}
}

func (k *kycService) Prepare(ctx context.Context, memberID string, input dto.KYCSubmissionInput) (domain.KYCSubmission, error) {
	input.NationalID = strings.TrimSpace(input.NationalID)
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	input.Phone = strings.TrimSpace(input.Phone)

	if err := utils.ValidateStruct(input); err != nil {
		return domain.KYCSubmission{}, validationErr(err.Error())
	}
	if !helper.IsNationalID(input.NationalID) {
		return domain.KYCSubmission{}, validationErr("nik must be exactly 16 digits")
	}

	idCard, idMIME, err := k.files.check("ktp_file", input.IDCardFile, true)
	if err != nil {
		return domain.KYCSubmission{}, err
	}
	selfie, selfieMIME, err := k.files.check("selfie_file", input.SelfieFile, true)
	if err != nil {
		return domain.KYCSubmission{}, err
	}

	sub := domain.KYCSubmission{
		ID:          uuid.NewString(),
		MemberID:    memberID,
		NationalID:  input.NationalID,
		Name:        input.Name,
		Address:     input.Address,
		Phone:       input.Phone,
		Status:      domain.KYCStatusPending,
		SubmittedAt: time.Now(),
	}

	folder := "kyc/" + memberID
	sub.IDCardFile = k.files.store(ctx, folder, sub.ID+"_ktp", idCard, idMIME)
	sub.SelfieFile = k.files.store(ctx, folder, sub.ID+"_selfie", selfie, selfieMIME)
	return sub, nil
}

func (k *kycService) Submit(ctx context.Context, memberID string, input dto.KYCSubmissionInput) (*domain.KYCSubmission, error) {
	member, err := k.memberRepo.FindMemberByID(memberID)
	if err != nil {
		return nil, fromRepo(err, "member")
	}

	// fail before touching storage when a review is still open
	if latest := member.LatestKYC(); latest != nil && latest.Status == domain.KYCStatusPending {
		return nil, conflictErr("kyc already pending admin review")
	}

	sub, err := k.Prepare(ctx, memberID, input)
	if err != nil {
		return nil, err
	}
	if err := k.kycRepo.CreateSubmission(&sub); err != nil {
		return nil, fromRepo(err, "kyc submission")
	}

	ev := memberEvent(dto.EventKYCSubmitted, member)
	ev.Reference = sub.ID
	ev.Status = string(sub.Status)
	publish(k.producer, ev)

	return &sub, nil
}

func (k *kycService) Latest(memberID string) (*domain.KYCSubmission, error) {
	sub, err := k.kycRepo.FindLatestByMemberID(memberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErr("no kyc submission")
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (k *kycService) ListPending(limit, offset int) ([]domain.KYCSubmission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return k.kycRepo.ListPending(limit, offset)
}

func (k *kycService) Review(adminID, kycID string, decision domain.KYCDecision, note string) (*domain.KYCSubmission, error) {
	note = strings.TrimSpace(note)
	if decision == domain.KYCDecisionRejected && note == "" {
		return nil, validationErr("a rejection needs a note")
	}

	sub, err := k.kycRepo.Review(kycID, adminID, decision, note)
	if err != nil {
		return nil, fromRepo(err, "kyc submission")
	}

	logger.Info("kyc reviewed",
		zap.String("kyc_id", kycID),
		zap.String("admin_id", adminID),
		zap.String("decision", string(decision)),
	)

	if member, err := k.memberRepo.FindMemberByID(sub.MemberID); err == nil {
		ev := memberEvent(dto.EventKYCReviewed, member)
		ev.Reference = sub.ID
		ev.Status = string(sub.Status)
		ev.Note = note
		publish(k.producer, ev)
	}
	return sub, nil
}
