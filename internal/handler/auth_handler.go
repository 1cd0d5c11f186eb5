package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_storefront/internal/middleware"
	"github.com/GTDGit/bakery_storefront/internal/service"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// AuthHandler handles admin authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	rateLimiter *middleware.InvalidAuthRateLimiter
}

// NewAuthHandler creates a new AuthHandler. rl may be nil.
func NewAuthHandler(authService *service.AuthService, rl *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, rateLimiter: rl}
}

// Login handles POST /v1/admin/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ip := c.ClientIP()
	if h.rateLimiter != nil && h.rateLimiter.Blocked(ip) {
		utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many failed login attempts")
		return
	}

	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) && h.rateLimiter != nil {
			h.rateLimiter.Allow(ip)
		}
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, "Login successful", resp)
}

// Me handles GET /v1/admin/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	admin := middleware.GetAdmin(c)
	if admin == nil {
		utils.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
		return
	}
	utils.Success(c, http.StatusOK, "Admin retrieved", admin)
}
