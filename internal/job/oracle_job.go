package job

import (
	"context"
	"errors"
	"log"
	"time"

	"omnimood-oracle/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type OracleCycleRunner interface {
	RunCycle(ctx context.Context, chains []domain.ChainRef) error
}

// OracleJob runs oracle cycles on a fixed interval. Ticks that land while a
// cycle is in flight are skipped.
type OracleJob struct {
	tracer       trace.Tracer
	runner       OracleCycleRunner
	chains       []domain.ChainRef
	pollInterval time.Duration
}

func NewOracleJob(tracer trace.Tracer, runner OracleCycleRunner, chains []domain.ChainRef, pollInterval time.Duration) *OracleJob {
	if pollInterval <= 0 {
		pollInterval = 15 * time.Minute
	}
	return &OracleJob{tracer: tracer, runner: runner, chains: chains, pollInterval: pollInterval}
}

// Start blocks until ctx is cancelled.
func (j *OracleJob) Start(ctx context.Context) {
	if j.runner == nil || len(j.chains) == 0 {
		log.Println("Oracle job disabled: no runner or chains")
		<-ctx.Done()
		return
	}

	log.Printf("Oracle job starting: every %s on %d chain(s)", j.pollInterval, len(j.chains))
	j.runOnce(ctx)
	ticker := time.NewTicker(j.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Oracle job stopped")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *OracleJob) runOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "oracle-job.run-once")
	defer span.End()

	err := j.runner.RunCycle(ctx, j.chains)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrBusy):
		log.Println("Oracle job tick skipped: update already in progress")
	default:
		span.RecordError(err)
		log.Printf("Oracle job cycle rejected: %v", err)
	}
}
