package handler

import (
	"errors"
	"log"
	"net/http"

	"omnimood-oracle/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type triggerRequest struct {
	Chains []domain.ChainRef `json:"chains"`
}

// GetChains godoc
// @Summary      List supported chains
// @Description  Returns the static chain registry without RPC endpoints or token addresses
// @Tags         oracle
// @Produce      json
// @Success      200  {array}  domain.ChainSummary
// @Router       /get-chains [get]
func (h *Handler) GetChains(c *gin.Context) {
	c.JSON(http.StatusOK, h.oracle.Chains())
}

// GetCurrentScore godoc
// @Summary      Read the published sentiment score
// @Description  Calls getOracleData() on the oracle contract
// @Tags         oracle
// @Produce      json
// @Success      200  {object}  domain.PublishedScore
// @Failure      500  {object}  map[string]string
// @Router       /get-current-score [get]
func (h *Handler) GetCurrentScore(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-current-score")
	defer span.End()

	score, err := h.scores.GetCurrentScore(ctx)
	if err != nil {
		span.RecordError(err)
		log.Printf("Error fetching from oracle contract: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch data from the oracle contract."})
		return
	}
	c.JSON(http.StatusOK, score)
}

// TriggerOracleUpdate godoc
// @Summary      Start an oracle update cycle
// @Description  Validates 1-5 registry chains and starts fetch, analyze and publish in the background
// @Tags         oracle
// @Accept       json
// @Produce      json
// @Param        request  body  triggerRequest  true  "Selected chains"
// @Success      202  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /trigger-oracle-update [post]
func (h *Handler) TriggerOracleUpdate(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-oracle-update")
	defer span.End()

	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid selection. Please select between 1 and 5 chains."})
		return
	}
	span.SetAttributes(attribute.Int("chains.requested", len(req.Chains)))

	err := h.oracle.Trigger(ctx, req.Chains)
	var verr *domain.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"message": "Oracle update triggered!"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Message})
	case errors.Is(err, domain.ErrBusy):
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Update already in progress."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

// GetStatus godoc
// @Summary      Current cycle status
// @Description  Returns the status record of the running or most recent cycle
// @Tags         oracle
// @Produce      json
// @Success      200  {object}  domain.OracleState
// @Router       /status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.oracle.Status())
}
