package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/satriadika/go-auth-service/internal/application"
	"github.com/satriadika/go-auth-service/internal/interface/middleware"
	"github.com/satriadika/go-auth-service/pkg/helpers"
	"github.com/satriadika/go-auth-service/pkg/response"
	"github.com/satriadika/go-auth-service/pkg/validation"
)

// Messages are stable: login failures and reset requests never vary with the
// reason.
const (
	msgRegistered     = "check your email to verify your account"
	msgResetRequested = "if an account exists, a reset link was sent"
)

type AuthHandler struct {
	Registration *application.RegistrationService
	Sessions     *application.SessionService
	Resets       *application.PasswordResetService
	Logger       *logrus.Logger
	Cookies      *helpers.CookieManager
}

func NewAuthHandler(reg *application.RegistrationService, sessions *application.SessionService, resets *application.PasswordResetService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		Registration: reg,
		Sessions:     sessions,
		Resets:       resets,
		Logger:       logger,
		Cookies:      helpers.NewCookie(cookieDomain, cookieSecure),
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// Register POST /auth/register {email, password, name}
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,pwd"`
		Name     string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Registration.Register(c.Request.Context(), application.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
	})
	switch {
	case errors.Is(err, application.ErrConflict):
		response.Error(c, http.StatusConflict, "an account with this email already exists", nil)
	case err != nil:
		response.Error(c, http.StatusInternalServerError, "registration failed, please retry", nil)
	default:
		response.Success[any](c, http.StatusCreated, nil, msgRegistered)
	}
}

// VerifyEmail GET /auth/verify-email?token=
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}

	u, err := h.Registration.VerifyEmail(c.Request.Context(), token)
	switch {
	case errors.Is(err, application.ErrInvalidOrExpired):
		response.Error(c, http.StatusBadRequest, "invalid or expired token", nil)
	case err != nil:
		response.Error(c, http.StatusInternalServerError, "verification failed, please retry", nil)
	default:
		response.Success(c, http.StatusOK, gin.H{"email": u.Email, "verified": true}, "email verified")
	}
}

// Login POST /auth/login {email, password, device_id, device_label}
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required"`
		DeviceID    string `json:"device_id" binding:"required"`
		DeviceLabel string `json:"device_label"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, pair, err := h.Sessions.Login(c.Request.Context(), application.LoginInput{
		Email:       req.Email,
		Password:    req.Password,
		DeviceID:    req.DeviceID,
		DeviceLabel: req.DeviceLabel,
		IP:          clientIP(c),
		UserAgent:   c.GetHeader("User-Agent"),
	})
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
	case err != nil:
		response.Error(c, http.StatusInternalServerError, "login failed, please retry", nil)
	default:
		h.Cookies.SetPair(c, pair.AccessToken, pair.AccessExpiresAt, pair.RefreshToken, pair.RefreshExpiresAt)
		response.Success(c, http.StatusOK, gin.H{
			"user_id":       u.ID,
			"email":         u.Email,
			"name":          u.Name,
			"access_token":  pair.AccessToken,
			"expires_in":    pair.ExpiresIn,
			"refresh_token": pair.RefreshToken,
		}, "login successful")
	}
}

// Refresh POST /auth/refresh {refresh_token, device_id}
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
		DeviceID     string `json:"device_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	raw := req.RefreshToken
	if raw == "" {
		raw, _ = c.Cookie("refresh_token")
	}
	if raw == "" {
		response.Error(c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}

	pair, err := h.Sessions.Refresh(c.Request.Context(), application.RefreshInput{
		RawToken:  raw,
		DeviceID:  req.DeviceID,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
	})
	switch {
	case errors.Is(err, application.ErrTooSoon):
		response.Error(c, http.StatusTooManyRequests, "token was rotated too recently", nil)
	case errors.Is(err, application.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "invalid refresh token", nil)
	case err != nil:
		response.Error(c, http.StatusInternalServerError, "refresh failed, please retry", nil)
	default:
		h.Cookies.SetPair(c, pair.AccessToken, pair.AccessExpiresAt, pair.RefreshToken, pair.RefreshExpiresAt)
		response.Success(c, http.StatusOK, gin.H{
			"access_token":  pair.AccessToken,
			"expires_in":    pair.ExpiresIn,
			"refresh_token": pair.RefreshToken,
		}, "token refreshed")
	}
}

// Logout POST /auth/logout {refresh_token}
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req)
	raw := req.RefreshToken
	if raw == "" {
		raw, _ = c.Cookie("refresh_token")
	}
	if raw == "" {
		response.Error(c, http.StatusNotFound, "token not found", nil)
		return
	}

	err := h.Sessions.Logout(c.Request.Context(), raw, clientIP(c), c.GetHeader("User-Agent"))
	switch {
	case errors.Is(err, application.ErrNotFound):
		response.Error(c, http.StatusNotFound, "token not found", nil)
	case err != nil:
		response.Error(c, http.StatusInternalServerError, "logout failed, please retry", nil)
	default:
		h.Cookies.Clear(c)
		response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
	}
}

// LogoutAll POST /auth/logout-all (requires valid access token)
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if uid == "" {
		response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := h.Sessions.LogoutAll(c.Request.Context(), uid, clientIP(c), c.GetHeader("User-Agent")); err != nil {
		response.Error(c, http.StatusInternalServerError, "logout failed, please retry", nil)
		return
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out from all devices")
}

// RequestPasswordReset POST /auth/request-password-reset {email}
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	h.Resets.RequestReset(c.Request.Context(), req.Email, clientIP(c), c.GetHeader("User-Agent"))

	// Identical body whether or not the account exists.
	response.Success[any](c, http.StatusOK, nil, msgResetRequested)
}

// VerifyResetToken GET /auth/verify-reset?token=
func (h *AuthHandler) VerifyResetToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
		return
	}

	masked, err := h.Resets.VerifyResetToken(c.Request.Context(), token)
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
	case err != nil:
		response.Error(c, http.StatusInternalServerError, "verification failed, please retry", nil)
	default:
		response.Success(c, http.StatusOK, gin.H{"email": masked}, "token valid")
	}
}

// ResetPassword POST /auth/reset-password {token, new_password}
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,pwd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Resets.ResetPassword(c.Request.Context(), req.Token, req.NewPassword, clientIP(c), c.GetHeader("User-Agent"))
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
	case err != nil:
		response.Error(c, http.StatusInternalServerError, "reset failed, please retry", nil)
	default:
		response.Success(c, http.StatusOK, gin.H{"reset": true}, "password updated")
	}
}
