// Package sessions keeps login sessions in Redis. A session lives in the
// hash session:<token> and is indexed per user in the set
// user_sessions:<user_id>.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"selfcheck/models"
	"selfcheck/utils"
)

const (
	CookieName = "session_token"

	tokenBytes = 32
	opTimeout  = 5 * time.Second
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// Store is the capability handlers and the session gate need.
type Store interface {
	Create(ctx context.Context, userID, userAgent, ip string) (*models.Session, error)
	Get(ctx context.Context, token string) (*models.Session, error)
	Touch(ctx context.Context, token string) error
	Delete(ctx context.Context, token string) error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func (s *RedisStore) TTL() time.Duration {
	return s.ttl
}

func sessionKey(token string) string { return "session:" + token }

func userIndexKey(userID string) string { return "user_sessions:" + userID }

func (s *RedisStore) Create(ctx context.Context, userID, userAgent, ip string) (*models.Session, error) {
	token, err := utils.GenerateToken(tokenBytes)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := &models.Session{
		SessionToken: token,
		UserID:       userID,
		CreatedAt:    now.Format(time.RFC3339),
		ExpiresAt:    now.Add(s.ttl).Format(time.RFC3339),
		LastActivity: now.Format(time.RFC3339),
		UserAgent:    userAgent,
		IPAddress:    ip,
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	key := sessionKey(token)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			"user_id":       session.UserID,
			"created_at":    session.CreatedAt,
			"expires_at":    session.ExpiresAt,
			"last_activity": session.LastActivity,
			"user_agent":    session.UserAgent,
			"ip_address":    session.IPAddress,
		})
		pipe.Expire(ctx, key, s.ttl)
		pipe.SAdd(ctx, userIndexKey(userID), key)
		pipe.Expire(ctx, userIndexKey(userID), s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return session, nil
}

// Get loads a session. An expired session is removed and reported as
// ErrExpired.
func (s *RedisStore) Get(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := s.client.HGetAll(opCtx, sessionKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}

	session := &models.Session{
		SessionToken: token,
		UserID:       data["user_id"],
		CreatedAt:    data["created_at"],
		ExpiresAt:    data["expires_at"],
		LastActivity: data["last_activity"],
		UserAgent:    data["user_agent"],
		IPAddress:    data["ip_address"],
	}

	if session.Expired(s.now()) {
		_ = s.Delete(ctx, token)
		return nil, ErrExpired
	}
	return session, nil
}

// Touch records activity on the session.
func (s *RedisStore) Touch(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.client.HSet(ctx, sessionKey(token), "last_activity", s.now().UTC().Format(time.RFC3339)).Err()
}

// Delete removes the session and its entry in the user index. Deleting an
// unknown token is not an error.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	key := sessionKey(token)
	userID, err := s.client.HGet(ctx, key, "user_id").Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session owner: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, userIndexKey(userID), key)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
