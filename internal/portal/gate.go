package portal

import (
	"context"
	"sync"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
)

type GateState string

const (
	NoSubmission  GateState = "NO_SUBMISSION"
	PendingReview GateState = "PENDING_REVIEW"
	JustSubmitted GateState = "JUST_SUBMITTED"
	Verified      GateState = "VERIFIED"
	Unavailable   GateState = "UNAVAILABLE"
)

// ShowForm reports whether the KYC form may be offered.
func (s GateState) ShowForm() bool {
	return s == NoSubmission
}

// FailurePolicy decides what the gate shows when the member record cannot
// be read.
type FailurePolicy int

const (
	// FailOpen shows the form and surfaces the error.
	FailOpen FailurePolicy = iota
	// FailClosed hides the form until the record can be read.
	FailClosed
)

// MemberSource is the read side of the members API.
type MemberSource interface {
	FetchAll(ctx context.Context) ([]dto.MemberResponse, error)
}

type GateResult struct {
	State  GateState
	Member *dto.MemberResponse
	Latest *dto.KYCSubmissionResponse
	Err    error
}

// Gate decides whether to show the KYC form, a pending notice or a
// success notice for one signed-in member.
type Gate struct {
	source MemberSource
	policy FailurePolicy

	mu            sync.Mutex
	justSubmitted bool
}

func NewGate(source MemberSource, policy FailurePolicy) *Gate {
	return &Gate{source: source, policy: policy}
}

// DeriveState applies the precedence JUST_SUBMITTED > PENDING_REVIEW >
// VERIFIED > NO_SUBMISSION. A rejected latest submission allows a new one.
func DeriveState(latest *dto.KYCSubmissionResponse, justSubmitted bool) GateState {
	if justSubmitted {
		return JustSubmitted
	}
	if latest == nil {
		return NoSubmission
	}
	switch domain.KYCStatus(latest.Status) {
	case domain.KYCStatusPending:
		return PendingReview
	case domain.KYCStatusApproved:
		return Verified
	}
	return NoSubmission
}

// Evaluate fetches the collection, finds the record for email and derives
// the render state. An unknown email yields NO_SUBMISSION.
func (g *Gate) Evaluate(ctx context.Context, email string) GateResult {
	g.mu.Lock()
	just := g.justSubmitted
	g.mu.Unlock()

	members, err := g.source.FetchAll(ctx)
	if err != nil {
		state := NoSubmission
		if g.policy == FailClosed {
			state = Unavailable
		}
		if just {
			state = JustSubmitted
		}
		return GateResult{State: state, Err: err}
	}

	m, ok := findByEmail(members, email)
	if !ok {
		return GateResult{State: DeriveState(nil, just)}
	}

	latest := m.LatestKYC()
	return GateResult{
		State:  DeriveState(latest, just),
		Member: &m,
		Latest: latest,
	}
}

// MarkSubmitted sets the client-only flag after a successful submit.
func (g *Gate) MarkSubmitted() {
	g.mu.Lock()
	g.justSubmitted = true
	g.mu.Unlock()
}

// Clear drops the flag so the next Evaluate reflects server state only.
func (g *Gate) Clear() {
	g.mu.Lock()
	g.justSubmitted = false
	g.mu.Unlock()
}
