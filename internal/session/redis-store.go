package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Record is what the store keeps per login.
type Record struct {
	SessionID string    `json:"sid"`
	MemberID  string    `json:"member_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "portal:session:",
	}
}

func (s *RedisStore) key(sid string) string {
	return fmt.Sprintf("%s%s", s.prefix, sid)
}

func (s *RedisStore) memberKey(memberID string) string {
	return fmt.Sprintf("%smember:%s", s.prefix, memberID)
}

func (s *RedisStore) Create(ctx context.Context, sid, memberID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	data, err := json.Marshal(Record{SessionID: sid, MemberID: memberID, ExpiresAt: expiresAt})
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(sid), data, ttl)
	pipe.SAdd(ctx, s.memberKey(memberID), sid)
	pipe.Expire(ctx, s.memberKey(memberID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Active reports whether sid is live and belongs to memberID.
func (s *RedisStore) Active(ctx context.Context, sid, memberID string) (bool, error) {
	data, err := s.client.Get(ctx, s.key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return false, err
	}
	return rec.MemberID == memberID, nil
}

func (s *RedisStore) Revoke(ctx context.Context, sid string) error {
	data, err := s.client.Get(ctx, s.key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(sid))
	pipe.SRem(ctx, s.memberKey(rec.MemberID), sid)
	_, err = pipe.Exec(ctx)
	return err
}

// RevokeAll drops every session of a member, used when an account stops
// being active.
func (s *RedisStore) RevokeAll(ctx context.Context, memberID string) error {
	sids, err := s.client.SMembers(ctx, s.memberKey(memberID)).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(sids)+1)
	for _, sid := range sids {
		keys = append(keys, s.key(sid))
	}
	keys = append(keys, s.memberKey(memberID))
	return s.client.Del(ctx, keys...).Err()
}

// Connect opens a client and checks it with PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}
