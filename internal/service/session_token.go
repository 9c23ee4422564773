package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenSigner firma el valor de la cookie de sesión para que no pueda falsificarse.
type SessionTokenSigner struct {
	secret []byte
	issuer string
}

type sessionClaims struct {
	UserID    int64  `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid = errors.New("session token invalid")
	ErrTokenExpired = errors.New("session token expired")
)

const sessionTokenType = "session"

func NewSessionTokenSigner(secret string) *SessionTokenSigner {
	return &SessionTokenSigner{
		secret: []byte(secret),
		issuer: "travel-planner",
	}
}

// Sign produce el valor de cookie que referencia la sesión sid.
func (s *SessionTokenSigner) Sign(sid string, userID int64, issuedAt, expiresAt time.Time) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(sid) == "" {
		return "", ErrTokenInvalid
	}
	claims := sessionClaims{
		UserID:    userID,
		TokenType: sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse valida la firma y devuelve el identificador de sesión.
func (s *SessionTokenSigner) Parse(value string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(value) == "" {
		return "", ErrTokenInvalid
	}
	var claims sessionClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	_, err := parser.ParseWithClaims(value, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if claims.TokenType != sessionTokenType || strings.TrimSpace(claims.ID) == "" {
		return "", ErrTokenInvalid
	}
	return claims.ID, nil
}
