package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"scavnger-backend/internal/clients"
	"scavnger-backend/internal/dto"
	"scavnger-backend/internal/pipeline"
	"scavnger-backend/internal/utils"
)

// TransactionHandler builds unsigned challenge_factory transactions for
// wallets that sign client-side. Check-in submission never comes through
// here; that transaction is built and signed by the verifier.
type TransactionHandler struct {
	builder *clients.TxnBuilder
	logger  *logrus.Logger
}

func NewTransactionHandler(builder *clients.TxnBuilder, logger *logrus.Logger) *TransactionHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &TransactionHandler{
		builder: builder,
		logger:  logger,
	}
}

// BuildJoin handles POST /api/transactions/build-join.
func (h *TransactionHandler) BuildJoin(c *gin.Context) {
	var req dto.BuildJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	tx, err := h.builder.BuildJoin(c.Request.Context(), req.SenderAddress, req.ChallengeID)
	if err != nil {
		h.logger.WithError(err).Error("❌ Failed to build join transaction")
		c.JSON(pipeline.HTTPStatus(err), gin.H{
			"success": false,
			"error":   "Failed to build transaction: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"function":       h.builder.EntryFunctionID(clients.EntryJoinChallenge),
		"sender":         tx.Sender,
		"transaction":    tx.BCSHex,
		"signingMessage": hexutil.Encode(tx.SigningMessage),
	})
}

// BuildCreate handles POST /api/transactions/build-create.
func (h *TransactionHandler) BuildCreate(c *gin.Context) {
	var req dto.BuildCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	tx, err := h.builder.BuildCreate(c.Request.Context(), req.SenderAddress, req.Title, req.DurationDays, req.BuyIn)
	if err != nil {
		h.logger.WithError(err).Error("❌ Failed to build create transaction")
		c.JSON(pipeline.HTTPStatus(err), gin.H{
			"success": false,
			"error":   "Failed to build transaction: " + err.Error(),
		})
		return
	}

	octas := utils.UnitsToOctas(req.BuyIn)
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"function":       h.builder.EntryFunctionID(clients.EntryCreateChall),
		"sender":         tx.Sender,
		"transaction":    tx.BCSHex,
		"signingMessage": hexutil.Encode(tx.SigningMessage),
		"buyInOctas":     octas,
		"buyInUnits":     utils.OctasToUnits(octas),
	})
}
