package portal

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper/utils"
)

// Session is the signed-in identity. It is created by Login, passed to
// every form that acts for the member, and ended by Close.
type Session struct {
	MemberID  string
	Email     string
	Role      string
	ExpiresAt time.Time

	client *Client

	mu     sync.Mutex
	closed bool
	now    func() time.Time
}

func Login(ctx context.Context, c *Client, email, password string) (*Session, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("email", "email and password are required")
	}

	res, err := call[dto.LoginResponse](ctx, c, "login", http.MethodPost, "/auth/login",
		dto.UserLogin{Email: email, Password: password}, nil)
	if err != nil {
		return nil, err
	}

	return &Session{
		MemberID:  res.Member.ID,
		Email:     res.Member.Email,
		Role:      res.Member.Role,
		ExpiresAt: res.ExpiresAt,
		client:    c.withToken(res.Token),
		now:       time.Now,
	}, nil
}

// Client returns the authenticated client, or ErrSessionClosed once the
// session was closed or has expired.
func (s *Session) Client() (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || (!s.ExpiresAt.IsZero() && !s.now().Before(s.ExpiresAt)) {
		return nil, ErrSessionClosed
	}
	return s.client, nil
}

func (s *Session) Token() string {
	return s.client.token
}

// Close revokes the token on the server. The session is unusable
// afterwards even if the revoke call fails.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	_, err := call[string](ctx, s.client, "logout", http.MethodPost, "/auth/logout", nil, nil)
	return err
}

// Self locates the session's own record in the member collection.
func (s *Session) Self(ctx context.Context) (dto.MemberResponse, error) {
	c, err := s.Client()
	if err != nil {
		return dto.MemberResponse{}, err
	}

	members, err := c.FetchAll(ctx)
	if err != nil {
		return dto.MemberResponse{}, err
	}
	if m, ok := findByEmail(members, s.Email); ok {
		return m, nil
	}
	return dto.MemberResponse{}, &NotFoundError{Op: "fetch members", Msg: "no member with email " + s.Email}
}

func findByEmail(members []dto.MemberResponse, email string) (dto.MemberResponse, bool) {
	for _, m := range members {
		if strings.EqualFold(m.Email, email) {
			return m, true
		}
	}
	return dto.MemberResponse{}, false
}
