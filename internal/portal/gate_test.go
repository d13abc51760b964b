package portal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	members []dto.MemberResponse
	err     error
}

func (s stubSource) FetchAll(context.Context) ([]dto.MemberResponse, error) {
	return s.members, s.err
}

func memberWithKYC(email string, statuses ...string) dto.MemberResponse {
	m := dto.MemberResponse{ID: "m-1", Email: email}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, st := range statuses {
		m.KYCSubmissions = append(m.KYCSubmissions, dto.KYCSubmissionResponse{
			ID:          "k-" + st,
			Status:      st,
			SubmittedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return m
}

func TestDeriveState(t *testing.T) {
	pending := &dto.KYCSubmissionResponse{Status: "pending"}
	approved := &dto.KYCSubmissionResponse{Status: "approved"}
	rejected := &dto.KYCSubmissionResponse{Status: "rejected"}

	tests := []struct {
		name   string
		latest *dto.KYCSubmissionResponse
		just   bool
		want   GateState
	}{
		{"no submission", nil, false, NoSubmission},
		{"pending", pending, false, PendingReview},
		{"approved", approved, false, Verified},
		{"rejected may resubmit", rejected, false, NoSubmission},
		{"just submitted beats pending", pending, true, JustSubmitted},
		{"just submitted beats nothing", nil, true, JustSubmitted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveState(tt.latest, tt.just))
		})
	}
}

func TestGateEvaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("latest pending hides the form", func(t *testing.T) {
		g := NewGate(stubSource{members: []dto.MemberResponse{
			memberWithKYC("other@example.com"),
			memberWithKYC("rina@example.com", "rejected", "pending"),
		}}, FailOpen)

		res := g.Evaluate(ctx, "Rina@Example.com")
		assert.Equal(t, PendingReview, res.State)
		assert.False(t, res.State.ShowForm())
		require.NotNil(t, res.Latest)
		assert.Equal(t, "pending", res.Latest.Status)
	})

	t.Run("no submissions shows the form", func(t *testing.T) {
		g := NewGate(stubSource{members: []dto.MemberResponse{memberWithKYC("rina@example.com")}}, FailOpen)
		res := g.Evaluate(ctx, "rina@example.com")
		assert.Equal(t, NoSubmission, res.State)
		assert.True(t, res.State.ShowForm())
		assert.NoError(t, res.Err)
	})

	t.Run("unknown identity", func(t *testing.T) {
		g := NewGate(stubSource{}, FailClosed)
		res := g.Evaluate(ctx, "ghost@example.com")
		assert.Equal(t, NoSubmission, res.State)
		assert.Nil(t, res.Member)
	})

	t.Run("just submitted until cleared", func(t *testing.T) {
		g := NewGate(stubSource{members: []dto.MemberResponse{memberWithKYC("rina@example.com", "pending")}}, FailOpen)
		g.MarkSubmitted()
		assert.Equal(t, JustSubmitted, g.Evaluate(ctx, "rina@example.com").State)
		g.Clear()
		assert.Equal(t, PendingReview, g.Evaluate(ctx, "rina@example.com").State)
	})
}

func TestGateFailurePolicy(t *testing.T) {
	boom := errors.New("collaborator down")
	ctx := context.Background()

	open := NewGate(stubSource{err: boom}, FailOpen).Evaluate(ctx, "rina@example.com")
	assert.Equal(t, NoSubmission, open.State)
	assert.ErrorIs(t, open.Err, boom)

	closed := NewGate(stubSource{err: boom}, FailClosed).Evaluate(ctx, "rina@example.com")
	assert.Equal(t, Unavailable, closed.State)
	assert.False(t, closed.State.ShowForm())
	assert.ErrorIs(t, closed.Err, boom)
}
