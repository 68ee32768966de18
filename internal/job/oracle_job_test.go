package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"omnimood-oracle/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type cycleRunnerStub struct {
	calls atomic.Int32
	err   error
}

func (s *cycleRunnerStub) RunCycle(ctx context.Context, chains []domain.ChainRef) error {
	s.calls.Add(1)
	return s.err
}

func runJobBriefly(job *OracleJob, d time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	time.Sleep(d)
	cancel()
	<-done
}

func TestOracleJobRunsAtLeastOnce(t *testing.T) {
	runner := &cycleRunnerStub{}
	job := NewOracleJob(trace.NewNoopTracerProvider().Tracer("test"), runner,
		[]domain.ChainRef{{ChainID: 84532, Name: "Base Sepolia"}}, 50*time.Millisecond)

	runJobBriefly(job, 20*time.Millisecond)

	if runner.calls.Load() == 0 {
		t.Fatal("expected at least one oracle cycle")
	}
}

func TestOracleJobKeepsTickingWhenBusy(t *testing.T) {
	runner := &cycleRunnerStub{err: domain.ErrBusy}
	job := NewOracleJob(trace.NewNoopTracerProvider().Tracer("test"), runner,
		[]domain.ChainRef{{ChainID: 84532}}, 10*time.Millisecond)

	runJobBriefly(job, 55*time.Millisecond)

	if runner.calls.Load() < 2 {
		t.Fatalf("expected repeated attempts, got %d", runner.calls.Load())
	}
}

func TestOracleJobDisabledWithoutChains(t *testing.T) {
	runner := &cycleRunnerStub{}
	job := NewOracleJob(trace.NewNoopTracerProvider().Tracer("test"), runner, nil, 0)
	if job.pollInterval != 15*time.Minute {
		t.Fatalf("expected default interval, got %s", job.pollInterval)
	}

	runJobBriefly(job, 10*time.Millisecond)

	if runner.calls.Load() != 0 {
		t.Fatal("expected no cycles without chains")
	}
}
