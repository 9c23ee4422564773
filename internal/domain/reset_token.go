package domain

import "time"

// PasswordResetToken es un token de un solo uso para restablecer la contraseña.
type PasswordResetToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
