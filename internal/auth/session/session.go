// Package session keeps login sessions and failed-login counters in redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/festy23/ctf_platform/internal/auth/model"
)

// ErrNotFound is returned for unknown, expired or revoked sessions.
var ErrNotFound = errors.New("session not found")

// Store persists live sessions.
type Store interface {
	// Create opens a session for role and id and returns its principal.
	Create(ctx context.Context, role model.Role, id uint, ttl time.Duration) (model.Principal, error)

	// Get returns the principal of a live session.
	Get(ctx context.Context, sessionID string) (model.Principal, error)

	// Delete revokes a session. Revoking an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error
}

// Throttle counts failed logins per client address.
type Throttle interface {
	// Blocked reports whether addr has reached the failure limit.
	Blocked(ctx context.Context, addr string) (bool, error)

	// Fail records a failed login for addr.
	Fail(ctx context.Context, addr string) error
}

type redisStore struct {
	client redis.UniversalClient
}

// NewStore creates a session store backed by redis.
func NewStore(client redis.UniversalClient) Store {
	return &redisStore{client: client}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *redisStore) Create(ctx context.Context, role model.Role, id uint, ttl time.Duration) (model.Principal, error) {
	p := model.Principal{Role: role, ID: id, SessionID: uuid.NewString()}
	raw, err := json.Marshal(p)
	if err != nil {
		return model.Principal{}, err
	}

	if err := s.client.Set(ctx, sessionKey(p.SessionID), raw, ttl).Err(); err != nil {
		return model.Principal{}, fmt.Errorf("store session: %w", err)
	}
	return p, nil
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (model.Principal, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Principal{}, ErrNotFound
	}
	if err != nil {
		return model.Principal{}, fmt.Errorf("load session: %w", err)
	}

	var p model.Principal
	if err := json.Unmarshal(raw, &p); err != nil || !p.Role.Valid() {
		return model.Principal{}, ErrNotFound
	}
	return p, nil
}

func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type redisThrottle struct {
	client      redis.UniversalClient
	maxFailures int
	forbidTime  time.Duration
}

// NewThrottle creates a throttle that blocks an address after maxFailures
// failures until forbidTime has passed since the last one.
func NewThrottle(client redis.UniversalClient, maxFailures int, forbidTime time.Duration) Throttle {
	return &redisThrottle{client: client, maxFailures: maxFailures, forbidTime: forbidTime}
}

func throttleKey(addr string) string {
	return "access_num_" + addr
}

func (t *redisThrottle) Blocked(ctx context.Context, addr string) (bool, error) {
	n, err := t.client.Get(ctx, throttleKey(addr)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= t.maxFailures, nil
}

func (t *redisThrottle) Fail(ctx context.Context, addr string) error {
	key := throttleKey(addr)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.forbidTime)
	_, err := pipe.Exec(ctx)
	return err
}
