package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel-planner/internal/domain"
	"travel-planner/internal/service"
)

const authSessionKey = "auth_session"

// SessionAuthMiddleware exige una cookie de sesión válida y guarda la sesión en el contexto.
func SessionAuthMiddleware(logger *zap.Logger, auth *service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(cookieName)
		if err != nil || value == "" {
			respondMessage(c, http.StatusUnauthorized, service.MsgAuthRequired)
			c.Abort()
			return
		}
		session, err := auth.Authenticate(c.Request.Context(), value)
		if err != nil {
			respondError(c, logger, "authenticate", err)
			c.Abort()
			return
		}
		c.Set(authSessionKey, session)
		c.Next()
	}
}

// GetSession obtiene la sesión autenticada desde el contexto.
func GetSession(c *gin.Context) (domain.Session, bool) {
	val, ok := c.Get(authSessionKey)
	if !ok {
		return domain.Session{}, false
	}
	session, ok := val.(domain.Session)
	return session, ok
}
