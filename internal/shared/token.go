package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Token is the resolved identity behind an Authorization: Bearer header.
// It is passed explicitly into services that guard protected mutations, so
// tests can inject fake credentials instead of reading ambient state.
type Token struct {
	ID       string    `json:"-"`
	UserID   int64     `json:"user_id"`
	Email    string    `json:"email"`
	Admin    bool      `json:"admin"`
	IssuedAt time.Time `json:"issued_at"`
}

// TokenStore keeps issued bearer tokens in Redis with a sliding TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Issue mints an opaque token for the user and persists it.
func (s *TokenStore) Issue(ctx context.Context, userID int64, email string, admin bool) (*Token, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("shared: token entropy: %w", err)
	}
	tok := &Token{
		ID:       base64.RawURLEncoding.EncodeToString(raw),
		UserID:   userID,
		Email:    email,
		Admin:    admin,
		IssuedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(tok)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, s.key(tok.ID), payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("shared: store token: %w", err)
	}
	return tok, nil
}

// Lookup resolves a presented token value. Unknown or expired tokens return
// ErrTokenRequired.
func (s *TokenStore) Lookup(ctx context.Context, id string) (*Token, error) {
	if id == "" {
		return nil, ErrTokenRequired
	}
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenRequired
		}
		return nil, fmt.Errorf("shared: lookup token: %w", err)
	}
	var tok Token
	if err := json.Unmarshal(payload, &tok); err != nil {
		return nil, err
	}
	tok.ID = id
	// Sliding expiry: activity keeps the session alive.
	_ = s.client.Expire(ctx, s.key(id), s.ttl).Err()
	return &tok, nil
}

// Revoke deletes a token, logging the holder out everywhere.
func (s *TokenStore) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("shared: revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) key(id string) string {
	return "token:" + id
}
