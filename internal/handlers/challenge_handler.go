package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"scavnger-backend/internal/dto"
	"scavnger-backend/internal/pipeline"
	"scavnger-backend/internal/services"
)

// ChallengeHandler is the challenge CRUD surface.
type ChallengeHandler struct {
	challenges *services.ChallengeService
	logger     *logrus.Logger
}

func NewChallengeHandler(challenges *services.ChallengeService, logger *logrus.Logger) *ChallengeHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ChallengeHandler{
		challenges: challenges,
		logger:     logger,
	}
}

// Create handles POST /api/challenges.
func (h *ChallengeHandler) Create(c *gin.Context) {
	var req dto.CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	challenge, err := h.challenges.Create(c.Request.Context(), &req)
	if err != nil {
		c.JSON(pipeline.HTTPStatus(err), gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"challenge": challenge,
	})
}

// List handles GET /api/challenges. With a participant query param it
// returns that wallet's challenges instead of the paged listing.
func (h *ChallengeHandler) List(c *gin.Context) {
	if participant := c.Query("participant"); participant != "" {
		challenges, err := h.challenges.ListByParticipant(c.Request.Context(), participant)
		if err != nil {
			c.JSON(pipeline.HTTPStatus(err), gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"challenges": challenges,
		})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	challenges, total, err := h.challenges.List(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list challenges",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"challenges": challenges,
		"total":      total,
		"page":       page,
	})
}

// Get handles GET /api/challenges/:id.
func (h *ChallengeHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	challenge, err := h.challenges.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrChallengeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Challenge not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load challenge",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"challenge": challenge,
	})
}

// Join handles POST /api/challenges/:id/join.
func (h *ChallengeHandler) Join(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req dto.JoinChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	participants, err := h.challenges.Join(c.Request.Context(), id, req.WalletAddress, req.TxHash)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChallengeNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Challenge not found",
			})
		case errors.Is(err, services.ErrNotOnchain):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "Challenge is not on chain yet",
			})
		default:
			c.JSON(pipeline.HTTPStatus(err), gin.H{
				"success": false,
				"error":   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"participants": participants,
	})
}

// AssignOnchain handles POST /api/challenges/:id/onchain, recording the
// on-chain index after the creation transaction confirms.
func (h *ChallengeHandler) AssignOnchain(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req dto.AssignOnchainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	challenge, err := h.challenges.AssignOnchain(c.Request.Context(), id, req.OnchainID, req.TxHash)
	if err != nil {
		if errors.Is(err, services.ErrChallengeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Challenge not found",
			})
			return
		}
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"challenge": challenge,
	})
}

func (h *ChallengeHandler) pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "id must be a valid number",
		})
		return 0, false
	}
	return uint(id), true
}
