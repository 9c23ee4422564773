package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel-planner/internal/service"
)

// PasswordHandler expone el flujo de restablecimiento de contraseña.
type PasswordHandler struct {
	logger    *zap.Logger
	resetServ *service.PasswordResetService
}

func NewPasswordHandler(logger *zap.Logger, resetServ *service.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{logger: logger, resetServ: resetServ}
}

// ForgotPassword maneja POST /api/forgot-password.
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	if err := h.resetServ.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, "forgot password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": service.MsgResetRequested})
}

// VerifyResetToken maneja POST /api/verify-reset-token.
func (h *PasswordHandler) VerifyResetToken(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	valid, err := h.resetServ.VerifyToken(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, h.logger, "verify reset token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "valid": valid})
}

// ResetPassword maneja POST /api/reset-password.
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword" binding:"pwbytes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	if err := h.resetServ.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, h.logger, "reset password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "password has been reset"})
}
