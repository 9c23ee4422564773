package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"travel-planner/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore guarda las sesiones activas indexadas por token.
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, token string) (domain.Session, error)
	// Delete es idempotente: borrar un token inexistente no es error.
	Delete(ctx context.Context, token string) error
	DeleteUser(ctx context.Context, userID int64) error
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	byUser   map[int64]map[string]struct{}
	now      func() time.Time
	// lastSweep limita el barrido de sesiones caducadas a uno por sessionSweepInterval.
	lastSweep time.Time
}

const sessionSweepInterval = time.Minute

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]domain.Session),
		byUser:   make(map[int64]map[string]struct{}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *memorySessionStore) Create(_ context.Context, session domain.Session) error {
	if strings.TrimSpace(session.Token) == "" {
		return errors.New("session token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if now := s.now(); now.Sub(s.lastSweep) >= sessionSweepInterval {
		for token, existing := range s.sessions {
			if existing.Expired(now) {
				s.deleteLocked(token)
			}
		}
		s.lastSweep = now
	}
	s.sessions[session.Token] = session
	tokens, ok := s.byUser[session.UserID]
	if !ok {
		tokens = make(map[string]struct{})
		s.byUser[session.UserID] = tokens
	}
	tokens[session.Token] = struct{}{}
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, token string) (domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		s.mu.Lock()
		s.deleteLocked(token)
		s.mu.Unlock()
		return domain.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *memorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(token)
	return nil
}

func (s *memorySessionStore) DeleteUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.byUser[userID] {
		delete(s.sessions, token)
	}
	delete(s.byUser, userID)
	return nil
}

func (s *memorySessionStore) deleteLocked(token string) {
	session, ok := s.sessions[token]
	if !ok {
		return
	}
	delete(s.sessions, token)
	if tokens, ok := s.byUser[session.UserID]; ok {
		delete(tokens, token)
		if len(tokens) == 0 {
			delete(s.byUser, session.UserID)
		}
	}
}

type redisSessionStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewRedisSessionStore(client redis.Cmdable) SessionStore {
	if client == nil {
		return nil
	}
	return &redisSessionStore{
		client: client,
		prefix: "auth:session:",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *redisSessionStore) sessionKey(token string) string {
	return s.prefix + token
}

func (s *redisSessionStore) userKey(userID int64) string {
	return s.prefix + "user:" + strconv.FormatInt(userID, 10)
}

func (s *redisSessionStore) Create(ctx context.Context, session domain.Session) error {
	if strings.TrimSpace(session.Token) == "" {
		return errors.New("session token is required")
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	userKey := s.userKey(session.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(session.Token), payload, ttl)
		pipe.SAdd(ctx, userKey, session.Token)
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	return err
}

func (s *redisSessionStore) Get(ctx context.Context, token string) (domain.Session, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Session{}, ErrSessionNotFound
	}
	payload, err := s.client.Get(ctx, s.sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, err
	}
	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return domain.Session{}, err
	}
	if session.Expired(s.now()) {
		return domain.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	session, err := s.Get(ctx, token)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.sessionKey(token))
		if session.Token != "" {
			pipe.SRem(ctx, s.userKey(session.UserID), token)
		}
		return nil
	})
	return err
}

func (s *redisSessionStore) DeleteUser(ctx context.Context, userID int64) error {
	userKey := s.userKey(userID)
	tokens, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, s.sessionKey(token))
	}
	keys = append(keys, userKey)
	return s.client.Del(ctx, keys...).Err()
}
