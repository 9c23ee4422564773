package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"travel-planner/internal/domain"
	"travel-planner/internal/repository"
)

// UserService coordina registro, consulta y actualización de usuarios.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
	hasher PasswordHasher
	now    func() time.Time
	// loc es la zona horaria del calendario con el que se calcula la edad.
	loc *time.Location
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, hasher PasswordHasher) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		logger: logger,
		users:  users,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
		loc:    time.Local,
	}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FullName  string
	Birthdate string
	// Gender se acepta por compatibilidad con el formulario pero no se persiste.
	Gender string
}

type UpdateUserInput struct {
	ID       int64
	Name     string
	Email    string
	Age      *int
	Password string
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.UserSummary, error) {
	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return domain.UserSummary{}, validationError("username, email and password are required")
	}

	now := s.now()
	var age *int
	if strings.TrimSpace(input.Birthdate) != "" {
		birth, err := ParseBirthdate(input.Birthdate)
		if err != nil {
			return domain.UserSummary{}, validationError("birthdate must be in YYYY-MM-DD format")
		}
		local := now.In(s.loc)
		today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		if birth.After(today) {
			return domain.UserSummary{}, validationError("birthdate must not be in the future")
		}
		a := AgeAt(birth, today)
		age = &a
	}

	name := strings.TrimSpace(input.FullName)
	if name == "" {
		name = username
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.UserSummary{}, internalError(err)
	}

	created, err := s.users.Create(ctx, domain.User{
		Username:     username,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Age:          age,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return domain.UserSummary{}, conflictError("email already registered", err)
		case errors.Is(err, repository.ErrDuplicateUsername):
			return domain.UserSummary{}, conflictError("username already taken", err)
		default:
			return domain.UserSummary{}, internalError(err)
		}
	}

	s.logger.Info("user registered", zap.Int64("user_id", created.ID), zap.String("email", created.Email))
	return created.Summary(), nil
}

// Profile devuelve los campos públicos del usuario autenticado.
func (s *UserService) Profile(ctx context.Context, userID int64) (domain.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Profile{}, notFoundError(MsgUserNotFound, err)
		}
		return domain.Profile{}, internalError(err)
	}
	return user.Profile(), nil
}

// Update solo permite que un usuario modifique su propia cuenta.
func (s *UserService) Update(ctx context.Context, actorID int64, input UpdateUserInput) (domain.Profile, error) {
	if actorID != input.ID {
		return domain.Profile{}, &Error{Kind: ErrForbidden, Message: "cannot modify another user"}
	}
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" {
		return domain.Profile{}, validationError("name and email are required")
	}
	if input.Age != nil && (*input.Age < 0 || *input.Age > 150) {
		return domain.Profile{}, validationError("age is out of range")
	}

	var hash string
	if input.Password != "" {
		h, err := s.hasher.Hash(input.Password)
		if err != nil {
			return domain.Profile{}, internalError(err)
		}
		hash = h
	}

	updated, err := s.users.Update(ctx, domain.User{
		ID:           input.ID,
		Name:         name,
		Email:        email,
		Age:          input.Age,
		PasswordHash: hash,
		UpdatedAt:    s.now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.Profile{}, notFoundError(MsgUserNotFound, err)
		case errors.Is(err, repository.ErrDuplicateEmail):
			return domain.Profile{}, conflictError("email already in use", err)
		default:
			return domain.Profile{}, internalError(err)
		}
	}

	s.logger.Info("user updated", zap.Int64("user_id", updated.ID))
	return updated.Profile(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
