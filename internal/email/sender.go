package email

import (
	"context"
	"errors"
	"time"
)

// Sender define la interfaz para el envío de correos de restablecimiento de contraseña.
type Sender interface {
	SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error
}

// PasswordResetMessage son los datos que necesita la plantilla del correo.
type PasswordResetMessage struct {
	To        string
	UserName  string
	ResetURL  string
	ExpiresAt time.Time
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendPasswordReset(_ context.Context, _ PasswordResetMessage) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
