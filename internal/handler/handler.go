package handler

import (
	"context"

	"omnimood-oracle/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type OracleRunner interface {
	Chains() []domain.ChainSummary
	Status() domain.OracleState
	Trigger(ctx context.Context, chains []domain.ChainRef) error
}

type ScoreQuerier interface {
	GetCurrentScore(ctx context.Context) (*domain.PublishedScore, error)
}

type Handler struct {
	tracer        trace.Tracer
	oracle        OracleRunner
	scores        ScoreQuerier
	triggerAPIKey string
}

func New(tracer trace.Tracer, oracle OracleRunner, scores ScoreQuerier, triggerAPIKey string) *Handler {
	return &Handler{
		tracer:        tracer,
		oracle:        oracle,
		scores:        scores,
		triggerAPIKey: triggerAPIKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/get-chains", h.GetChains)
	r.GET("/get-current-score", h.GetCurrentScore)
	r.GET("/status", h.GetStatus)
	r.POST("/trigger-oracle-update", APIKeyAuth(h.triggerAPIKey), h.TriggerOracleUpdate)
}
