package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"scavnger-backend/internal/dto"
	"scavnger-backend/internal/services"
)

// AdminAuthHandler issues operator tokens for the manual-review surface.
type AdminAuthHandler struct {
	auth   *services.AdminAuthService
	logger *logrus.Logger
}

func NewAdminAuthHandler(auth *services.AdminAuthService, logger *logrus.Logger) *AdminAuthHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &AdminAuthHandler{
		auth:   auth,
		logger: logger,
	}
}

// Login handles POST /api/admin/login.
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "username and code are required",
		})
		return
	}

	token, expiresAt, err := h.auth.Login(req.Username, req.Code)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid credentials",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Login failed",
		})
		return
	}

	c.JSON(http.StatusOK, dto.AdminLoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	})
}
