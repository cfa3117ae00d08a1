package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"scavnger-backend/internal/dto"
	"scavnger-backend/internal/models"
	"scavnger-backend/internal/repository"
	"scavnger-backend/internal/utils"
)

// ProfileHandler is the wallet-profile surface.
type ProfileHandler struct {
	profiles repository.ProfileRepository
	logger   *logrus.Logger
}

func NewProfileHandler(profiles repository.ProfileRepository, logger *logrus.Logger) *ProfileHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger,
	}
}

// Get handles GET /api/profiles/:address.
func (h *ProfileHandler) Get(c *gin.Context) {
	address := c.Param("address")
	if !utils.IsAccountAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "address must be a valid account address",
		})
		return
	}

	profile, err := h.profiles.GetByAddress(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Profile not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": profile,
	})
}

// Upsert handles PUT /api/profiles/:address.
func (h *ProfileHandler) Upsert(c *gin.Context) {
	address := c.Param("address")
	if !utils.IsAccountAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "address must be a valid account address",
		})
		return
	}

	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	profile := &models.Profile{
		WalletAddress: address,
		Username:      req.Username,
		Bio:           req.Bio,
		LastLogin:     time.Now().UTC(),
	}
	if err := h.profiles.Upsert(c.Request.Context(), profile); err != nil {
		h.logger.WithError(err).WithField("address", address).Error("Failed to upsert profile")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to save profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": profile,
	})
}

// Login handles POST /api/profiles/:address/login, touching last_login.
func (h *ProfileHandler) Login(c *gin.Context) {
	address := c.Param("address")
	if !utils.IsAccountAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "address must be a valid account address",
		})
		return
	}

	if err := h.profiles.TouchLastLogin(c.Request.Context(), address); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to record login",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
