package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"scavnger-backend/internal/dto"
	"scavnger-backend/internal/services"
)

// ReviewHandler is the admin manual-review surface.
type ReviewHandler struct {
	reviews *services.ReviewService
	logger  *logrus.Logger
}

func NewReviewHandler(reviews *services.ReviewService, logger *logrus.Logger) *ReviewHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// ListPending handles GET /api/admin/reviews.
func (h *ReviewHandler) ListPending(c *gin.Context) {
	tasks, err := h.reviews.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load review queue",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
	})
}

// Decide handles POST /api/admin/reviews/:id.
func (h *ReviewHandler) Decide(c *gin.Context) {
	taskID := c.Param("id")

	var req dto.ReviewDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	reviewer := c.GetString("admin_username")
	if reviewer == "" {
		reviewer = "admin"
	}

	task, result, err := h.reviews.Decide(c.Request.Context(), taskID, req.Approve, reviewer, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReviewNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Review task not found",
			})
		case errors.Is(err, services.ErrReviewAlreadyDecided):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "Review task already decided",
			})
		default:
			h.logger.WithError(err).Error("❌ Review decision failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   err.Error(),
			})
		}
		return
	}

	response := gin.H{
		"success": true,
		"task":    task,
	}
	if result != nil {
		response["stage"] = result.Stage
		response["txHash"] = result.TxHash
	}
	c.JSON(http.StatusOK, response)
}
