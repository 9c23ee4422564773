package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travel-planner/internal/domain"
)

// ResetTokenRepository persiste los tokens de restablecimiento de contraseña.
type ResetTokenRepository interface {
	// Replace invalida los tokens pendientes del usuario y guarda el nuevo.
	Replace(ctx context.Context, token domain.PasswordResetToken) error
	FindValid(ctx context.Context, token string, now time.Time) (domain.PasswordResetToken, error)
	// Consume cambia la contraseña y marca el token como usado en una sola transacción.
	Consume(ctx context.Context, token string, passwordHash string, now time.Time) (int64, error)
}

type PgResetTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgResetTokenRepository(pool *pgxpool.Pool) *PgResetTokenRepository {
	return &PgResetTokenRepository{pool: pool}
}

func (r *PgResetTokenRepository) Replace(ctx context.Context, token domain.PasswordResetToken) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE password_reset_tokens SET used = TRUE WHERE user_id = $1 AND used = FALSE`,
			token.UserID,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO password_reset_tokens (user_id, token, expires_at, created_at)
			VALUES ($1, $2, $3, $4)`,
			token.UserID,
			token.Token,
			token.ExpiresAt,
			token.CreatedAt,
		)
		return err
	})
}

func (r *PgResetTokenRepository) FindValid(ctx context.Context, token string, now time.Time) (domain.PasswordResetToken, error) {
	const query = `
		SELECT id, user_id, token, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token = $1 AND expires_at > $2 AND used = FALSE
	`
	var t domain.PasswordResetToken
	err := r.pool.QueryRow(ctx, query, token, now).Scan(
		&t.ID,
		&t.UserID,
		&t.Token,
		&t.ExpiresAt,
		&t.Used,
		&t.CreatedAt,
	)
	if err != nil {
		return domain.PasswordResetToken{}, mapNoRows(err)
	}
	return t, nil
}

func (r *PgResetTokenRepository) Consume(ctx context.Context, token string, passwordHash string, now time.Time) (int64, error) {
	var userID int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// El UPDATE condicional evita que dos peticiones consuman el mismo token.
		err := tx.QueryRow(ctx, `
			UPDATE password_reset_tokens
			SET used = TRUE
			WHERE token = $1 AND expires_at > $2 AND used = FALSE
			RETURNING user_id`,
			token, now,
		).Scan(&userID)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`,
			userID, passwordHash, now,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, mapNoRows(err)
	}
	return userID, nil
}
