package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"scavnger-backend/internal/dto"
	"scavnger-backend/internal/pipeline"
	"scavnger-backend/internal/services"
)

// ProofHandler is the application server's proof-submission surface. It
// records the attempt and relays automated submissions to the verifier
// oracle service.
type ProofHandler struct {
	checkins *services.CheckinService
	logger   *logrus.Logger
}

func NewProofHandler(checkins *services.CheckinService, logger *logrus.Logger) *ProofHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ProofHandler{
		checkins: checkins,
		logger:   logger,
	}
}

// SubmitProof handles POST /api/submit-proof.
func (h *ProofHandler) SubmitProof(c *gin.Context) {
	var req dto.VerifyCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}
	if req.UserAddress == "" || req.ChallengeID.String() == "" || req.ProofType == "" || req.ProofData == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "userAddress, challengeId, proofType and proofData are required",
		})
		return
	}

	resp, status, err := h.checkins.SubmitProof(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"user":      req.UserAddress,
			"challenge": req.ChallengeID.String(),
		}).Error("❌ Proof submission failed")
		c.JSON(status, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(status, resp)
}

// VerifierHealth handles GET /api/verifier/health, relaying the oracle
// service's health envelope.
func (h *ProofHandler) VerifierHealth(c *gin.Context) {
	health, err := h.checkins.VerifierHealth(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "Verifier oracle is unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, health)
}

// History handles GET /api/checkins. Query params: address (required),
// challengeId (optional off-chain id filter).
func (h *ProofHandler) History(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "address query parameter is required",
		})
		return
	}

	var challengeID uint
	if raw := c.Query("challengeId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "challengeId must be a valid number",
			})
			return
		}
		challengeID = uint(parsed)
	}

	records, err := h.checkins.History(c.Request.Context(), address, challengeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load check-in history",
		})
		return
	}

	verified := 0
	for _, record := range records {
		if record.Stage == string(pipeline.StageSynced) || record.Stage == string(pipeline.StageConfirmed) {
			verified++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"checkins": records,
		"verified": verified,
	})
}
