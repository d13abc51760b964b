package services

import (
	"context"
	"errors"
	"strings"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
	"github.com/SundayYogurt/lending_portal/internal/interfaces"
	"github.com/SundayYogurt/lending_portal/internal/repository"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MemberService interface {
	// Auth
	Register(input dto.RegisterRequest) (*domain.Member, error)
	Login(ctx context.Context, input dto.UserLogin) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error

	// Collection
	FindByEmail(email string) ([]dto.MemberSummary, error)
	List(actor dto.AuthResponse) ([]domain.Member, error)
	Get(memberID string) (*domain.Member, error)

	// Profile
	Patch(ctx context.Context, actor dto.AuthResponse, memberID string, input dto.MemberPatch) (*domain.Member, error)
	Replace(actor dto.AuthResponse, memberID string, input dto.MemberReplace) (*domain.Member, error)

	// Admin
	SetStatus(ctx context.Context, actor dto.AuthResponse, memberID string, status string) (*domain.Member, error)
}

type memberService struct {
	repo     repository.MemberRepository
	kyc      KYCService
	auth     helper.Auth
	sessions interfaces.SessionStore
	files    attachmentPolicy
	producer interfaces.ProducerHandler
}

func NewMemberService(
	repo repository.MemberRepository,
	kyc KYCService,
	auth helper.Auth,
	sessions interfaces.SessionStore,
	producer interfaces.ProducerHandler,
	maxFileBytes int64,
) MemberService {
	return &memberService{
		repo:     repo,
		kyc:      kyc,
		auth:     auth,
		sessions: sessions,
		files:    attachmentPolicy{maxBytes: maxFileBytes},
		producer: producer,
	}
}

// AUTH
func (s *memberService) Register(input dto.RegisterRequest) (*domain.Member, error) {
	input.Email = utils.NormalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)

	if err := utils.ValidateStruct(input); err != nil {
		return nil, validationErr(err.Error())
	}
	if input.PasswordConfirmation != "" && input.PasswordConfirmation != input.Password {
		return nil, validationErr("password confirmation does not match")
	}

	if existing, err := s.repo.FindMemberByEmail(input.Email); err == nil && existing != nil {
		return nil, conflictErr("email already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	member := &domain.Member{
		ID:           uuid.NewString(),
		Email:        input.Email,
		Name:         input.Name,
		Phone:        input.Phone,
		PasswordHash: hashed,
		Status:       domain.MemberStatusActive,
		Role:         domain.RoleMember,
		Salary:       decimal.Zero,
		LoanLimit:    decimal.Zero,
		Version:      1,
	}
	if err := s.repo.CreateMember(member); err != nil {
		// lost the race against a concurrent registration
		return nil, fromRepo(err, "email")
	}

	logger.Info("member registered", zap.String("member_id", member.ID))
	publish(s.producer, memberEvent(dto.EventMemberRegistered, member))

	return member, nil
}

func (s *memberService) Login(ctx context.Context, input dto.UserLogin) (*dto.LoginResponse, error) {
	email := utils.NormalizeEmail(input.Email)
	// compared exactly as it was hashed at registration
	password := input.Password
	if email == "" || password == "" {
		return nil, unauthorizedErr("invalid email or password")
	}

	member, err := s.repo.FindMemberByEmail(email)
	if err != nil || member == nil {
		return nil, unauthorizedErr("invalid email or password")
	}
	if err := s.auth.VerifyPassword(password, member.PasswordHash); err != nil {
		return nil, unauthorizedErr("invalid email or password")
	}
	if member.Status != domain.MemberStatusActive {
		return nil, forbiddenErr("account is not active")
	}

	sid := uuid.NewString()
	token, exp, err := s.auth.GenerateToken(helper.TokenClaims{
		MemberID:  member.ID,
		Email:     member.Email,
		Role:      string(member.Role),
		SessionID: sid,
	})
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, sid, member.ID, exp); err != nil {
		logger.Error("create session failed", err, zap.String("member_id", member.ID))
		return nil, errors.New("unable to start session")
	}

	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		Member:    dto.NewMemberResponse(member),
	}, nil
}

func (s *memberService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return unauthorizedErr("missing session")
	}
	return s.sessions.Revoke(ctx, sessionID)
}

// COLLECTION
func (s *memberService) FindByEmail(email string) ([]dto.MemberSummary, error) {
	email = utils.NormalizeEmail(email)
	out := []dto.MemberSummary{}
	if email == "" {
		return out, nil
	}

	member, err := s.repo.FindMemberByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	return append(out, dto.NewMemberSummary(member)), nil
}

func (s *memberService) List(actor dto.AuthResponse) ([]domain.Member, error) {
	if actor.IsAdmin() {
		return s.repo.ListMembers(0, 0)
	}

	self, err := s.repo.FindMemberByID(actor.MemberID)
	if err != nil {
		return nil, fromRepo(err, "member")
	}
	return []domain.Member{*self}, nil
}

func (s *memberService) Get(memberID string) (*domain.Member, error) {
	member, err := s.repo.FindMemberByID(memberID)
	if err != nil {
		return nil, fromRepo(err, "member")
	}
	return member, nil
}

// PROFILE

// Patch applies the non-nil fields. New KYC entries (no id) are validated
// and appended in the same write as the profile change.
func (s *memberService) Patch(ctx context.Context, actor dto.AuthResponse, memberID string, input dto.MemberPatch) (*domain.Member, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, validationErr(err.Error())
	}
	if !actor.IsAdmin() && (input.Status != nil || input.Role != nil || input.LoanLimit != nil) {
		return nil, forbiddenErr("only admins can change status, role or loan_limit")
	}

	member, err := s.repo.FindMemberByID(memberID)
	if err != nil {
		return nil, fromRepo(err, "member")
	}

	prevRole, prevStatus := member.Role, member.Status

	if input.Name != nil {
		member.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		member.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Occupation != nil {
		member.Occupation = strings.TrimSpace(*input.Occupation)
	}
	if input.Salary != nil {
		if input.Salary.IsNegative() {
			return nil, validationErr("salary must not be negative")
		}
		member.Salary = *input.Salary
	}
	if input.FamilyCardFile != nil {
		if err := s.files.optional("kk_file", *input.FamilyCardFile); err != nil {
			return nil, err
		}
		member.FamilyCardFile = *input.FamilyCardFile
	}
	if input.SalarySlipFile != nil {
		if err := s.files.optional("salary_slip_file", *input.SalarySlipFile); err != nil {
			return nil, err
		}
		member.SalarySlipFile = *input.SalarySlipFile
	}
	if input.Status != nil {
		member.Status = domain.MemberStatus(*input.Status)
	}
	if input.Role != nil {
		member.Role = domain.MemberRole(*input.Role)
	}
	if input.LoanLimit != nil {
		if input.LoanLimit.IsNegative() {
			return nil, validationErr("loan_limit must not be negative")
		}
		member.LoanLimit = *input.LoanLimit
	}

	newKYC, err := s.newSubmissions(ctx, member, input.KYCSubmissions)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateMember(member, input.Version, newKYC); err != nil {
		return nil, fromRepo(err, "member")
	}

	// tokens carry the role, so a role or status change ends old sessions
	if member.Role != prevRole || (member.Status != prevStatus && member.Status != domain.MemberStatusActive) {
		if err := s.sessions.RevokeAll(ctx, member.ID); err != nil {
			logger.Warn("revoke sessions failed", zap.String("member_id", member.ID), zap.Error(err))
		}
	}

	for i := range newKYC {
		ev := memberEvent(dto.EventKYCSubmitted, member)
		ev.Reference = newKYC[i].ID
		ev.Status = string(newKYC[i].Status)
		publish(s.producer, ev)
	}

	return s.Get(memberID)
}

// newSubmissions picks the entries the caller added to kyc_submissions.
// Entries carrying an id must already belong to the member.
func (s *memberService) newSubmissions(ctx context.Context, member *domain.Member, entries []dto.KYCSubmissionInput) ([]domain.KYCSubmission, error) {
	known := make(map[string]struct{}, len(member.KYCSubmissions))
	for _, k := range member.KYCSubmissions {
		known[k.ID] = struct{}{}
	}

	var fresh []dto.KYCSubmissionInput
	for _, e := range entries {
		if e.ID == "" {
			fresh = append(fresh, e)
			continue
		}
		if _, ok := known[e.ID]; !ok {
			return nil, validationErr("unknown kyc submission id " + e.ID)
		}
	}
	if len(fresh) == 0 {
		return nil, nil
	}
	if len(fresh) > 1 {
		return nil, validationErr("only one new kyc submission can be added at a time")
	}
	if latest := member.LatestKYC(); latest != nil && latest.Status == domain.KYCStatusPending {
		return nil, conflictErr("kyc already pending admin review")
	}

	sub, err := s.kyc.Prepare(ctx, member.ID, fresh[0])
	if err != nil {
		return nil, err
	}
	return []domain.KYCSubmission{sub}, nil
}

func (s *memberService) Replace(actor dto.AuthResponse, memberID string, input dto.MemberReplace) (*domain.Member, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Occupation = strings.TrimSpace(input.Occupation)

	if err := utils.ValidateStruct(input); err != nil {
		return nil, validationErr(err.Error())
	}
	if input.Salary.IsNegative() {
		return nil, validationErr("salary must not be negative")
	}
	if err := s.files.optional("kk_file", input.FamilyCardFile); err != nil {
		return nil, err
	}
	if err := s.files.optional("salary_slip_file", input.SalarySlipFile); err != nil {
		return nil, err
	}

	member, err := s.repo.FindMemberByID(memberID)
	if err != nil {
		return nil, fromRepo(err, "member")
	}
	if input.Email != "" && utils.NormalizeEmail(input.Email) != member.Email {
		return nil, validationErr("email cannot be changed")
	}

	member.Name = input.Name
	member.Phone = input.Phone
	member.Occupation = input.Occupation
	member.Salary = input.Salary
	member.FamilyCardFile = input.FamilyCardFile
	member.SalarySlipFile = input.SalarySlipFile

	if err := s.repo.UpdateMember(member, input.Version, nil); err != nil {
		return nil, fromRepo(err, "member")
	}

	logger.Debug("member replaced", zap.String("member_id", memberID), zap.String("actor", actor.MemberID))
	return s.Get(memberID)
}

// ADMIN
func (s *memberService) SetStatus(ctx context.Context, actor dto.AuthResponse, memberID string, status string) (*domain.Member, error) {
	if !actor.IsAdmin() {
		return nil, forbiddenErr("admin only")
	}

	st := domain.MemberStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, validationErr("invalid status")
	}
	if memberID == actor.MemberID && st != domain.MemberStatusActive {
		return nil, validationErr("admins cannot deactivate themselves")
	}

	note := "status set to " + string(st)
	if err := s.repo.UpdateStatus(memberID, st, actor.MemberID, &note); err != nil {
		return nil, fromRepo(err, "member")
	}

	if st != domain.MemberStatusActive {
		if err := s.sessions.RevokeAll(ctx, memberID); err != nil {
			logger.Warn("revoke sessions failed", zap.String("member_id", memberID), zap.Error(err))
		}
	}

	return s.Get(memberID)
}
