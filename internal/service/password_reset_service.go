package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"travel-planner/internal/domain"
	"travel-planner/internal/email"
	"travel-planner/internal/repository"
)

const (
	MsgResetRequested    = "if the email is registered, a password reset link has been sent"
	MsgResetTokenInvalid = "invalid or expired token"

	minPasswordLength = 8
	resetTokenBytes   = 32
)

// PasswordResetService emite y consume tokens de restablecimiento de contraseña.
type PasswordResetService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	tokens   repository.ResetTokenRepository
	hasher   PasswordHasher
	sessions SessionStore
	sender   email.Sender
	limiter  RateLimiter
	baseURL  string
	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
}

type PasswordResetConfig struct {
	BaseURL  string
	TokenTTL time.Duration
}

func NewPasswordResetService(
	logger *zap.Logger,
	users repository.UserRepository,
	tokens repository.ResetTokenRepository,
	hasher PasswordHasher,
	sessions SessionStore,
	sender email.Sender,
	limiter RateLimiter,
	cfg PasswordResetConfig,
) *PasswordResetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = email.NewDisabledSender("")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &PasswordResetService{
		logger:   logger,
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		sessions: sessions,
		sender:   sender,
		limiter:  limiter,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		ttl:      cfg.TokenTTL,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: generateResetToken,
	}
}

// RequestReset responde igual exista o no el email; los fallos de envío solo se registran.
func (s *PasswordResetService) RequestReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return validationError("email is required")
	}
	if s.limiter != nil && !s.limiter.Allow(ctx, "reset:"+emailAddr) {
		return &Error{Kind: ErrRateLimited, Message: "too many reset requests, try again later"}
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("password reset for unknown email", zap.String("email", emailAddr))
			return nil
		}
		return internalError(err)
	}

	token, err := s.newToken()
	if err != nil {
		return internalError(err)
	}
	now := s.now()
	record := domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.tokens.Replace(ctx, record); err != nil {
		return internalError(err)
	}

	err = s.sender.SendPasswordReset(ctx, email.PasswordResetMessage{
		To:        user.Email,
		UserName:  user.Name,
		ResetURL:  s.resetURL(token),
		ExpiresAt: record.ExpiresAt,
	})
	if err != nil {
		s.logger.Warn("password reset email failed", zap.String("email", user.Email), zap.Error(err))
		return nil
	}
	s.logger.Info("password reset email sent", zap.String("email", user.Email))
	return nil
}

// VerifyToken indica si el token existe, no ha caducado y no se ha usado.
func (s *PasswordResetService) VerifyToken(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, validationError("token is required")
	}
	if _, err := s.tokens.FindValid(ctx, token, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, internalError(err)
	}
	return true, nil
}

// ResetPassword cambia la contraseña, consume el token y cierra las sesiones del usuario.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return validationError("token and new password are required")
	}
	if len([]rune(newPassword)) < minPasswordLength {
		return validationError("password must be at least 8 characters")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return internalError(err)
	}
	userID, err := s.tokens.Consume(ctx, token, hash, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return validationError(MsgResetTokenInvalid)
		}
		return internalError(err)
	}

	if s.sessions != nil {
		if err := s.sessions.DeleteUser(ctx, userID); err != nil {
			s.logger.Warn("session revocation after reset failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	s.logger.Info("password reset completed", zap.Int64("user_id", userID))
	return nil
}

func (s *PasswordResetService) resetURL(token string) string {
	return s.baseURL + "/reset-password.html?token=" + url.QueryEscape(token)
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
