package phoneauth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// CooldownStore persists request timestamps and spent challenge assertions.
type CooldownStore interface {
	// LastRequest returns when a code was last sent to phone.
	LastRequest(ctx context.Context, phone string) (time.Time, bool, error)
	// RecordRequest stores a send time that is forgotten after ttl.
	RecordRequest(ctx context.Context, phone string, at time.Time, ttl time.Duration) error
	// GlobalUntil returns the end of the client's global cooldown.
	GlobalUntil(ctx context.Context, clientKey string) (time.Time, bool, error)
	// SetGlobal blocks every request from clientKey until the given time.
	SetGlobal(ctx context.Context, clientKey string, until time.Time) error
	// ClaimAssertion marks an assertion as spent; false means it was spent before.
	ClaimAssertion(ctx context.Context, assertion string, ttl time.Duration) (bool, error)
}

const (
	numberKeyPrefix    = "otp:number:"
	globalKeyPrefix    = "otp:global:"
	assertionKeyPrefix = "otp:assertion:"
)

func assertionDigest(assertion string) string {
	sum := sha256.Sum256([]byte(assertion))
	return hex.EncodeToString(sum[:])
}

// RedisCooldownStore keeps cooldowns in Redis so they hold across API instances.
type RedisCooldownStore struct {
	client *redis.Client
}

// NewRedisCooldownStore creates a CooldownStore on the given client.
func NewRedisCooldownStore(client *redis.Client) *RedisCooldownStore {
	return &RedisCooldownStore{client: client}
}

func (s *RedisCooldownStore) getTime(ctx context.Context, key string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms), true, nil
}

func (s *RedisCooldownStore) LastRequest(ctx context.Context, phone string) (time.Time, bool, error) {
	return s.getTime(ctx, numberKeyPrefix+phone)
}

func (s *RedisCooldownStore) RecordRequest(ctx context.Context, phone string, at time.Time, ttl time.Duration) error {
	return s.client.Set(ctx, numberKeyPrefix+phone, at.UnixMilli(), ttl).Err()
}

func (s *RedisCooldownStore) GlobalUntil(ctx context.Context, clientKey string) (time.Time, bool, error) {
	return s.getTime(ctx, globalKeyPrefix+clientKey)
}

func (s *RedisCooldownStore) SetGlobal(ctx context.Context, clientKey string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, globalKeyPrefix+clientKey, until.UnixMilli(), ttl).Err()
}

func (s *RedisCooldownStore) ClaimAssertion(ctx context.Context, assertion string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, assertionKeyPrefix+assertionDigest(assertion), 1, ttl).Result()
}

// MemoryCooldownStore is a single-process CooldownStore.
type MemoryCooldownStore struct {
	now func() time.Time

	mu         sync.Mutex
	numbers    map[string]expiring
	globals    map[string]time.Time
	assertions map[string]time.Time
}

type expiring struct {
	at        time.Time
	expiresAt time.Time
}

// NewMemoryCooldownStore creates an empty MemoryCooldownStore.
func NewMemoryCooldownStore() *MemoryCooldownStore {
	return &MemoryCooldownStore{
		now:        time.Now,
		numbers:    make(map[string]expiring),
		globals:    make(map[string]time.Time),
		assertions: make(map[string]time.Time),
	}
}

func (s *MemoryCooldownStore) LastRequest(_ context.Context, phone string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.numbers[phone]
	if !ok || !s.now().Before(e.expiresAt) {
		return time.Time{}, false, nil
	}
	return e.at, true, nil
}

func (s *MemoryCooldownStore) RecordRequest(_ context.Context, phone string, at time.Time, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numbers[phone] = expiring{at: at, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryCooldownStore) GlobalUntil(_ context.Context, clientKey string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.globals[clientKey]
	if !ok || !s.now().Before(until) {
		return time.Time{}, false, nil
	}
	return until, true, nil
}

func (s *MemoryCooldownStore) SetGlobal(_ context.Context, clientKey string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globals[clientKey] = until
	return nil
}

func (s *MemoryCooldownStore) ClaimAssertion(_ context.Context, assertion string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := assertionDigest(assertion)
	now := s.now()
	if exp, ok := s.assertions[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.assertions[key] = now.Add(ttl)
	return true, nil
}
