package service

import "errors"

// Clases de error que la capa HTTP traduce a códigos de estado.
var (
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrAuth        = errors.New("authentication error")
	ErrForbidden   = errors.New("forbidden")
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
	ErrUpstream    = errors.New("upstream unavailable")
	ErrTimeout     = errors.New("upstream timeout")
	ErrInternal    = errors.New("internal error")
)

// Mensajes visibles por el cliente.
const (
	MsgInvalidCredentials = "invalid credentials"
	MsgAuthRequired       = "authentication required"
	MsgUserNotFound       = "user not found"
	MsgInternal           = "internal server error"
)

// Error lleva la clase, un mensaje apto para el cliente y la causa interna.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func conflictError(msg string, cause error) error {
	return &Error{Kind: ErrConflict, Message: msg, Err: cause}
}

func authError(msg string) error {
	return &Error{Kind: ErrAuth, Message: msg}
}

func notFoundError(msg string, cause error) error {
	return &Error{Kind: ErrNotFound, Message: msg, Err: cause}
}

// internalError oculta la causa detrás de un mensaje genérico.
func internalError(cause error) error {
	return &Error{Kind: ErrInternal, Message: MsgInternal, Err: cause}
}

// PublicMessage devuelve el mensaje que puede enviarse al cliente.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return MsgInternal
}
