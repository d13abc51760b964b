package interfaces

import (
	"context"
	"time"
)

type SessionStore interface {
	Create(ctx context.Context, sid, memberID string, expiresAt time.Time) error
	Active(ctx context.Context, sid, memberID string) (bool, error)
	Revoke(ctx context.Context, sid string) error
	RevokeAll(ctx context.Context, memberID string) error
}
