package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
)

const (
	pgUniqueViolation = "23505"

	usersEmailConstraint    = "users_email_key"
	usersUsernameConstraint = "users_user_id_key"
)

// mapUserWriteError traduce violaciones de unicidad de users a errores del dominio.
func mapUserWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case usersEmailConstraint:
			return ErrDuplicateEmail
		case usersUsernameConstraint:
			return ErrDuplicateUsername
		}
	}
	return mapNoRows(err)
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
