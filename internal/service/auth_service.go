package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"travel-planner/internal/domain"
	"travel-planner/internal/repository"
)

// AuthService valida credenciales y gestiona el ciclo de vida de las sesiones.
type AuthService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	hasher   PasswordHasher
	sessions SessionStore
	signer   *SessionTokenSigner
	limiter  RateLimiter
	ttl      time.Duration
	now      func() time.Time

	// dummyHash iguala el coste de un email inexistente con el de una contraseña errónea.
	dummyHash string
}

type AuthConfig struct {
	SessionTTL time.Duration
}

// LoginResult contiene el usuario y el valor firmado de la cookie.
type LoginResult struct {
	User      domain.UserSummary
	Cookie    string
	ExpiresAt time.Time
}

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	hasher PasswordHasher,
	sessions SessionStore,
	signer *SessionTokenSigner,
	limiter RateLimiter,
	cfg AuthConfig,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		logger.Warn("dummy hash generation failed", zap.Error(err))
	}
	return &AuthService{
		logger:    logger,
		users:     users,
		hasher:    hasher,
		sessions:  sessions,
		signer:    signer,
		limiter:   limiter,
		ttl:       cfg.SessionTTL,
		now:       func() time.Time { return time.Now().UTC() },
		dummyHash: dummy,
	}
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.ttl
}

func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (LoginResult, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return LoginResult{}, validationError("email and password are required")
	}
	if s.limiter != nil && !s.limiter.Allow(ctx, emailAddr) {
		return LoginResult{}, &Error{Kind: ErrRateLimited, Message: "too many login attempts, try again later"}
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if s.dummyHash != "" {
				_ = s.hasher.Compare(s.dummyHash, password)
			}
			s.logger.Info("login rejected", zap.String("email", emailAddr), zap.String("reason", "unknown email"))
			return LoginResult{}, authError(MsgInvalidCredentials)
		}
		return LoginResult{}, internalError(err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", zap.String("email", emailAddr), zap.String("reason", "password mismatch"))
		return LoginResult{}, authError(MsgInvalidCredentials)
	}

	now := s.now()
	session := domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	cookie, err := s.signer.Sign(session.Token, user.ID, now, session.ExpiresAt)
	if err != nil {
		return LoginResult{}, internalError(err)
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return LoginResult{}, internalError(err)
	}
	if err := s.users.Touch(ctx, user.ID, now); err != nil {
		if delErr := s.sessions.Delete(ctx, session.Token); delErr != nil {
			s.logger.Warn("session rollback failed", zap.Error(delErr))
		}
		return LoginResult{}, internalError(err)
	}

	s.logger.Info("login succeeded", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return LoginResult{
		User:      user.Summary(),
		Cookie:    cookie,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout destruye la sesión referenciada por la cookie; sin sesión no hay nada que hacer.
func (s *AuthService) Logout(ctx context.Context, cookie string) error {
	sid, err := s.signer.Parse(cookie)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sid); err != nil {
		return internalError(err)
	}
	return nil
}

// Authenticate resuelve la sesión activa a partir del valor de la cookie.
func (s *AuthService) Authenticate(ctx context.Context, cookie string) (domain.Session, error) {
	sid, err := s.signer.Parse(cookie)
	if err != nil {
		return domain.Session{}, authError(MsgAuthRequired)
	}
	session, err := s.sessions.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return domain.Session{}, authError(MsgAuthRequired)
		}
		return domain.Session{}, internalError(err)
	}
	return session, nil
}

// RevokeUser cierra todas las sesiones de un usuario.
func (s *AuthService) RevokeUser(ctx context.Context, userID int64) error {
	return s.sessions.DeleteUser(ctx, userID)
}
