package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travel-planner/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	// Create inserta el usuario si email y username están libres y devuelve la fila creada.
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Touch(ctx context.Context, id int64, at time.Time) error
	Update(ctx context.Context, user domain.User) (domain.User, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, user_id, name, email, password, age, created_at, updated_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Age,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	var created domain.User
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var taken bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, user.Email).Scan(&taken); err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, user.Username).Scan(&taken); err != nil {
			return err
		}
		if taken {
			return ErrDuplicateUsername
		}

		const query = `
			INSERT INTO users (user_id, password, name, email, age, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING ` + userColumns
		row := tx.QueryRow(ctx, query,
			user.Username,
			user.PasswordHash,
			user.Name,
			user.Email,
			user.Age,
			user.CreatedAt,
			user.UpdatedAt,
		)
		u, err := scanUser(row)
		if err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return domain.User{}, mapUserWriteError(err)
	}
	return created, nil
}

func (r *PgUserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return domain.User{}, mapNoRows(err)
	}
	return u, nil
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		return domain.User{}, mapNoRows(err)
	}
	return u, nil
}

func (r *PgUserRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Update reescribe nombre, email y edad; el hash solo cambia si viene informado.
func (r *PgUserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	var updated domain.User
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var taken bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
			user.Email, user.ID,
		).Scan(&taken); err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}

		const query = `
			UPDATE users
			SET name = $2,
			    email = $3,
			    age = $4,
			    password = COALESCE(NULLIF($5, ''), password),
			    updated_at = $6
			WHERE id = $1
			RETURNING ` + userColumns
		row := tx.QueryRow(ctx, query,
			user.ID,
			user.Name,
			user.Email,
			user.Age,
			user.PasswordHash,
			user.UpdatedAt,
		)
		u, err := scanUser(row)
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return domain.User{}, mapUserWriteError(err)
	}
	return updated, nil
}
