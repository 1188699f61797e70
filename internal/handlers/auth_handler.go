package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/services"
	"github.com/gin-gonic/gin"
)

// SessionCookie describes the cookie carrying the auth token
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// AuthHandler handles authentication related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	cookie      SessionCookie
	log         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, cookie SessionCookie, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cookie:      cookie,
		log:         log,
	}
}

// CheckUser handles POST /auth/check-user
func (h *AuthHandler) CheckUser(c *gin.Context) {
	var req models.CheckUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.authService.CheckUser(c.Request.Context(), req.Handle)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	resp, err := h.authService.Signup(c.Request.Context(), req.Handle, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.setSession(c, resp.Token)
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Handle, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.setSession(c, resp.Token)
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /auth/me, returning the stored user behind the token
func (h *AuthHandler) Me(c *gin.Context) {
	_, id, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)
}
