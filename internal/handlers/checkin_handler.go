package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"scavnger-backend/internal/dto"
	"scavnger-backend/internal/pipeline"
)

// CheckinHandler is the verifier oracle's HTTP surface. It validates the
// submission, runs the check-in pipeline, and maps the terminal stage onto a
// response envelope.
type CheckinHandler struct {
	pipe   *pipeline.CheckinPipeline
	signer pipeline.Signer
	logger *logrus.Logger
}

func NewCheckinHandler(pipe *pipeline.CheckinPipeline, signer pipeline.Signer, logger *logrus.Logger) *CheckinHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &CheckinHandler{
		pipe:   pipe,
		signer: signer,
		logger: logger,
	}
}

// VerifyCheckin handles POST /api/verify-checkin.
func (h *CheckinHandler) VerifyCheckin(c *gin.Context) {
	var req dto.VerifyCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	// All input validation happens before any chain interaction.
	var missing []string
	if req.UserAddress == "" {
		missing = append(missing, "userAddress")
	}
	if req.ChallengeID.String() == "" {
		missing = append(missing, "challengeId")
	}
	if req.ProofType == "" {
		missing = append(missing, "proofType")
	}
	if req.ProofData == "" {
		missing = append(missing, "proofData")
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Missing required fields: " + strings.Join(missing, ", "),
		})
		return
	}

	challengeID, err := pipeline.ParseChallengeID(req.ChallengeID.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	proofKind := pipeline.ProofKind(req.ProofType)
	if proofKind != pipeline.ProofKindImage && proofKind != pipeline.ProofKindText {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "proofType must be \"image\" or \"text\"",
		})
		return
	}

	pipelineReq := pipeline.CheckinRequest{
		UserAddress:     req.UserAddress,
		ChallengeID:     challengeID,
		ChallengeTitle:  req.ChallengeTitle,
		TaskDescription: req.TaskDescription,
		Proof: pipeline.ProofSubmission{
			Kind:        proofKind,
			Content:     req.ProofData,
			ContentType: req.ProofMimeType,
		},
	}

	result, runErr := h.pipe.Run(c.Request.Context(), pipelineReq, nil)

	var perr *pipeline.PersistenceError
	if errors.As(runErr, &perr) {
		// The transaction confirmed; only the off-chain record lagged.
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"verified": true,
			"txHash":   result.TxHash,
			"message":  "Check-in verified on blockchain, off-chain record pending",
		})
		return
	}

	switch result.Stage {
	case pipeline.StageRejected:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Proof verification failed",
			"reason":  result.Decision.Reason,
		})

	case pipeline.StageConfirmed, pipeline.StageSynced:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"verified": true,
			"txHash":   result.TxHash,
			"message":  "Check-in submitted and verified on blockchain",
		})

	case pipeline.StageIndeterminate:
		c.JSON(http.StatusAccepted, gin.H{
			"success":  true,
			"verified": true,
			"pending":  true,
			"txHash":   result.TxHash,
			"message":  "Transaction submitted but confirmation timed out, check the explorer",
		})

	default:
		status := http.StatusInternalServerError
		message := "Check-in submission failed"
		if runErr != nil {
			status = pipeline.HTTPStatus(runErr)
			message = runErr.Error()
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   message,
		})
	}
}

// Health handles GET /api/health, reporting the verifier account so
// operators can confirm the service signs with the expected key.
func (h *CheckinHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   "ok",
		Verifier: h.signer.Address(),
	})
}
