package portal

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t)
	m := h.register(t, "rina@example.com")

	s := h.login(t, "RINA@example.com")
	assert.Equal(t, m.ID, s.MemberID)
	assert.Equal(t, "rina@example.com", s.Email)
	assert.NotEmpty(t, s.Token())
	assert.True(t, s.ExpiresAt.After(time.Now()))

	self, err := s.Self(context.Background())
	require.NoError(t, err)
	assert.Equal(t, m.ID, self.ID)

	require.NoError(t, s.Close(context.Background()))
	require.NoError(t, s.Close(context.Background()), "second close is a no-op")

	_, err = s.Client()
	assert.ErrorIs(t, err, ErrSessionClosed)

	// the revoked token is refused server side too
	revoked := h.client.withToken(s.Token())
	_, err = revoked.FetchAll(context.Background())
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, http.StatusUnauthorized, ne.Status)
}

func TestSessionExpiry(t *testing.T) {
	h := newHarness(t)
	h.register(t, "rina@example.com")
	s := h.login(t, "rina@example.com")

	s.now = func() time.Time { return s.ExpiresAt.Add(time.Second) }
	_, err := s.Client()
	assert.True(t, errors.Is(err, ErrSessionClosed))
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)
	h.register(t, "rina@example.com")

	_, err := Login(context.Background(), h.client, "rina@example.com", "wrong-password")
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, http.StatusUnauthorized, ne.Status)

	_, err = Login(context.Background(), h.client, "", "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}
