package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookshelf/internal/config"
	"bookshelf/internal/dto"
	"bookshelf/internal/middleware"
	"bookshelf/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

// RegisterRoutes mounts the credential endpoints under the user group.
// The rate limiter guards everything that accepts a password.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	limited := middleware.LoginRateLimit(h.cfg.LoginRateLimit, h.cfg.LoginRateBurst)

	rg.POST("", limited, h.Signup)
	rg.POST("/login", limited, h.Login)
	rg.POST("/logout", h.Logout)
	rg.POST("/changePassword", limited, h.ChangePassword)
	rg.POST("/forgetPassword", limited, h.ForgetPassword)
}

// Signup creates the account and hands the session over via cookies: the
// token as HTTP-only, plus plain id/email/name cookies for client
// convenience. The plain ones must never carry anything sensitive.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, token, err := h.authService.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	maxAge := int(h.cfg.TokenTTL.Seconds())
	secure := h.cfg.IsProduction()
	c.SetCookie("userId", user.ID, maxAge, "/", "", secure, false)
	c.SetCookie("email", user.Email, maxAge, "/", "", secure, false)
	c.SetCookie("name", user.Name, maxAge, "/", "", secure, false)

	c.JSON(http.StatusCreated, gin.H{"data": user})
}

// Login issues a fresh session token. Unknown email and wrong password are
// indistinguishable in both status and message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	_, token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

// Logout clears the session cookie. It needs no prior state and is
// idempotent; expiry of the token itself is purely time-based.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.cfg.IsProduction(), true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.ChangePassword(ctx, req.Email, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req dto.ForgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Mail delivery rides on the request context too; 10s leaves room for
	// a slow SMTP handshake.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.authService.ResetPassword(ctx, req.Email, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully and email sent"})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.TokenCookie, token, int(h.cfg.TokenTTL.Seconds()), "/", "", h.cfg.IsProduction(), true)
}
