package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"scavnger-backend/internal/clients"
	"scavnger-backend/internal/dto"
)

// SponsorHandler relays a user-signed transaction to the gas-sponsoring
// relay. Used for the join flow, where the user signs the join call in their
// wallet and the backend pays the gas.
type SponsorHandler struct {
	sponsor *clients.SponsorClient
	logger  *logrus.Logger
}

func NewSponsorHandler(sponsor *clients.SponsorClient, logger *logrus.Logger) *SponsorHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &SponsorHandler{
		sponsor: sponsor,
		logger:  logger,
	}
}

// SponsorChallenge handles POST /api/sponsor-challenge.
func (h *SponsorHandler) SponsorChallenge(c *gin.Context) {
	var req dto.SponsorChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Request body is required",
		})
		return
	}
	if req.TransactionHex == "" || req.SignatureHex == "" || req.PublicKeyHex == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "transactionHex, signatureHex and publicKeyHex are required",
		})
		return
	}

	hash, err := h.sponsor.SponsorAndSubmit(c.Request.Context(), req.TransactionHex, req.SignatureHex, req.PublicKeyHex)
	if err != nil {
		h.logger.WithError(err).Error("❌ Sponsorship relay failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.SponsorChallengeResponse{Hash: hash})
}
