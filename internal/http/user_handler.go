package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel-planner/internal/service"
)

// CookieConfig describe la cookie que transporta la sesión.
type CookieConfig struct {
	Name   string
	Secure bool
}

// UserHandler mantiene dependencias para endpoints de usuarios y sesión.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	authServ *service.AuthService
	cookie   CookieConfig
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, authServ *service.AuthService, cookie CookieConfig) *UserHandler {
	if cookie.Name == "" {
		cookie.Name = "session"
	}
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		authServ: authServ,
		cookie:   cookie,
	}
}

// Register maneja POST /api/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Username  string `json:"username" binding:"max=50"`
		Email     string `json:"email" binding:"max=255"`
		Password  string `json:"password" binding:"pwbytes"`
		FullName  string `json:"fullname" binding:"max=100"`
		Birthdate string `json:"birthdate" binding:"birthdate"`
		Gender    string `json:"gender"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		respondMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	user, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		Birthdate: req.Birthdate,
		Gender:    req.Gender,
	})
	if err != nil {
		respondError(c, h.logger, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "registration successful",
		"user":    user,
	})
}

// Login maneja POST /api/login y emite la cookie de sesión.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password" binding:"pwbytes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		respondMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	res, err := h.authServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}

	h.setSessionCookie(c, res.Cookie, time.Until(res.ExpiresAt))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "login successful",
		"user":    res.User,
	})
}

// Logout maneja POST /api/logout; sin cookie también responde 200.
func (h *UserHandler) Logout(c *gin.Context) {
	value, _ := c.Cookie(h.cookie.Name)
	if value != "" {
		if err := h.authServ.Logout(c.Request.Context(), value); err != nil {
			respondError(c, h.logger, "logout", err)
			return
		}
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "logged out",
	})
}

// Me maneja GET /api/user para el usuario autenticado.
func (h *UserHandler) Me(c *gin.Context) {
	session, ok := GetSession(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, service.MsgAuthRequired)
		return
	}
	profile, err := h.userServ.Profile(c.Request.Context(), session.UserID)
	if err != nil {
		respondError(c, h.logger, "get current user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": profile})
}

// GetUser maneja GET /api/users/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.userIDParam(c)
	if !ok {
		return
	}
	profile, err := h.userServ.Profile(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": profile})
}

// UpdateUser maneja PUT /api/users/:id; solo el propio usuario puede modificarse.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	session, ok := GetSession(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, service.MsgAuthRequired)
		return
	}
	id, ok := h.userIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Name     string `json:"name" binding:"max=100"`
		Email    string `json:"email" binding:"max=255"`
		Age      *int   `json:"age" binding:"omitempty,min=0,max=150"`
		Password string `json:"password" binding:"pwbytes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update user request", zap.Error(err))
		respondMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	profile, err := h.userServ.Update(c.Request.Context(), session.UserID, service.UpdateUserInput{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Age:      req.Age,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, "update user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "user updated",
		"user":    profile,
	})
}

func (h *UserHandler) userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondMessage(c, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func (h *UserHandler) setSessionCookie(c *gin.Context, value string, ttl time.Duration) {
	maxAge := -1
	if ttl > 0 {
		maxAge = int(ttl.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
