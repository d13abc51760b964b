package portal

import (
	"context"
	"sync"

	"github.com/SundayYogurt/lending_portal/internal/dto"
)

// ProfileEditor loads the member's own record, edits a draft and saves it
// as a full replace.
type ProfileEditor struct {
	session *Session
	guard   submitGuard

	mu     sync.Mutex
	loaded *dto.MemberResponse
	draft  dto.MemberReplace
}

func NewProfileEditor(session *Session) *ProfileEditor {
	return &ProfileEditor{session: session}
}

func (p *ProfileEditor) Load(ctx context.Context) (dto.MemberResponse, error) {
	m, err := p.session.Self(ctx)
	if err != nil {
		return dto.MemberResponse{}, err
	}

	p.mu.Lock()
	p.adopt(m)
	p.mu.Unlock()
	return m, nil
}

func (p *ProfileEditor) adopt(m dto.MemberResponse) {
	p.loaded = &m
	p.draft = dto.MemberReplace{
		Name:           m.Name,
		Phone:          m.Phone,
		Occupation:     m.Occupation,
		Salary:         m.Salary,
		FamilyCardFile: m.FamilyCardFile,
		SalarySlipFile: m.SalarySlipFile,
	}
}

func (p *ProfileEditor) Edit(fn func(*dto.MemberReplace)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.draft)
}

func (p *ProfileEditor) Draft() dto.MemberReplace {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

// Save replaces the profile. It carries the version that was loaded, so a
// concurrent edit made elsewhere surfaces as a ConflictError.
func (p *ProfileEditor) Save(ctx context.Context) (dto.MemberResponse, error) {
	done, err := p.guard.begin()
	if err != nil {
		return dto.MemberResponse{}, err
	}
	defer done()

	p.mu.Lock()
	if p.loaded == nil {
		p.mu.Unlock()
		return dto.MemberResponse{}, invalid("", "profile is not loaded")
	}
	draft := p.draft
	version := p.loaded.Version
	memberID := p.loaded.ID
	p.mu.Unlock()

	if draft.Name == "" {
		return dto.MemberResponse{}, invalid("name", "is required")
	}
	draft.Version = &version

	c, err := p.session.Client()
	if err != nil {
		return dto.MemberResponse{}, err
	}
	saved, err := c.Replace(ctx, memberID, draft)
	if err != nil {
		return dto.MemberResponse{}, err
	}

	p.mu.Lock()
	p.adopt(saved)
	p.mu.Unlock()
	return saved, nil
}
