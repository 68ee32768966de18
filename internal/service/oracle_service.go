package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"omnimood-oracle/internal/domain"
	"omnimood-oracle/internal/sentiment"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type TransferFetcher interface {
	Fetch(ctx context.Context, chains []domain.ChainRef) (domain.FetchResult, error)
}

type SentimentAnalyzer interface {
	Analyze(ctx context.Context, systemPrompt, userPrompt string) (domain.SentimentResult, error)
}

type OraclePublisher interface {
	Publish(ctx context.Context, score int, summary string) (string, error)
}

// ScoreInvalidator drops any cached copy of the published score.
type ScoreInvalidator interface {
	Invalidate(ctx context.Context)
}

// OracleService runs fetch -> analyze -> publish cycles. At most one cycle is
// in flight; the busy flag is claimed atomically before the status record is
// reset and released only after cleanup.
type OracleService struct {
	tracer      trace.Tracer
	registry    *domain.ChainRegistry
	fetcher     TransferFetcher
	analyzer    SentimentAnalyzer
	publisher   OraclePublisher
	invalidator ScoreInvalidator
	state       *StateStore

	busy atomic.Bool
	wg   sync.WaitGroup
}

func NewOracleService(
	tracer trace.Tracer,
	registry *domain.ChainRegistry,
	fetcher TransferFetcher,
	analyzer SentimentAnalyzer,
	publisher OraclePublisher,
	state *StateStore,
) *OracleService {
	if state == nil {
		state = NewStateStore()
	}
	return &OracleService{
		tracer:    tracer,
		registry:  registry,
		fetcher:   fetcher,
		analyzer:  analyzer,
		publisher: publisher,
		state:     state,
	}
}

// SetScoreInvalidator registers a cache to clear after each successful publish.
func (s *OracleService) SetScoreInvalidator(inv ScoreInvalidator) {
	s.invalidator = inv
}

func (s *OracleService) Chains() []domain.ChainSummary {
	return s.registry.Public()
}

func (s *OracleService) Status() domain.OracleState {
	return s.state.Snapshot()
}

func (s *OracleService) IsUpdating() bool {
	return s.busy.Load()
}

// Trigger validates the selection, claims the cycle slot and runs the cycle
// in the background. It returns *domain.ValidationError or domain.ErrBusy
// without touching the status record.
func (s *OracleService) Trigger(ctx context.Context, chains []domain.ChainRef) error {
	if err := s.registry.Validate(chains); err != nil {
		return err
	}
	chains = s.withRegistryNames(chains)
	if !s.begin(chains) {
		return domain.ErrBusy
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(context.WithoutCancel(ctx), chains)
	}()
	return nil
}

// RunCycle is Trigger without the goroutine: it returns once the cycle has
// finished. The outcome is reported through the status record.
func (s *OracleService) RunCycle(ctx context.Context, chains []domain.ChainRef) error {
	if err := s.registry.Validate(chains); err != nil {
		return err
	}
	chains = s.withRegistryNames(chains)
	if !s.begin(chains) {
		return domain.ErrBusy
	}

	s.wg.Add(1)
	defer s.wg.Done()
	s.execute(ctx, chains)
	return nil
}

// Wait blocks until no cycle is running or ctx is done.
func (s *OracleService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *OracleService) withRegistryNames(chains []domain.ChainRef) []domain.ChainRef {
	out := make([]domain.ChainRef, len(chains))
	for i, c := range chains {
		out[i] = c
		if c.Name == "" {
			if cfg, ok := s.registry.Lookup(c.ChainID); ok {
				out[i].Name = cfg.Name
			}
		}
	}
	return out
}

func (s *OracleService) begin(chains []domain.ChainRef) bool {
	if !s.busy.CompareAndSwap(false, true) {
		return false
	}
	s.state.Reset(domain.NewRunState(chains))
	return true
}

func (s *OracleService) execute(ctx context.Context, chains []domain.ChainRef) {
	ctx, span := s.tracer.Start(ctx, "oracle-service.cycle")
	defer span.End()
	span.SetAttributes(attribute.Int("chains.count", len(chains)))

	defer s.finish()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("oracle cycle panic: %v", r)
			s.recordFailure(fmt.Errorf("unexpected failure"))
		}
	}()

	score, err := s.runSteps(ctx, chains)
	if err != nil {
		span.RecordError(err)
		log.Printf("oracle cycle failed: %v", err)
		s.recordFailure(err)
		return
	}

	msg := domain.CompletionMessage(score)
	s.state.Update(func(st *domain.OracleState) { st.FinalMessage = &msg })
	log.Printf("oracle cycle complete: score=%d", score)
}

func (s *OracleService) runSteps(ctx context.Context, chains []domain.ChainRef) (int, error) {
	s.setStep(domain.StepFetching(len(chains)))
	fetched, err := s.fetcher.Fetch(ctx, chains)
	if err != nil {
		return 0, err
	}
	summary := fetched.Summary
	s.state.Update(func(st *domain.OracleState) {
		st.FetchedDataSummary = &summary
		st.RawEventsData = fetched.RawEvents
	})

	s.setStep(domain.StepAnalyzing)
	systemPrompt := sentiment.BuildSystemPrompt()
	userPrompt := sentiment.BuildUserPrompt(summary)
	s.state.Update(func(st *domain.OracleState) {
		st.AISystemPrompt = &systemPrompt
		st.AIUserPrompt = &userPrompt
	})
	result, err := s.analyzer.Analyze(ctx, systemPrompt, userPrompt)
	if err != nil {
		return 0, err
	}
	score, raw := result.Score, result.RawResponse
	s.state.Update(func(st *domain.OracleState) {
		st.AIScore = &score
		st.AIRawResponse = &raw
	})

	s.setStep(domain.StepPublishing)
	txHash, err := s.publisher.Publish(ctx, score, summary)
	if err != nil {
		return 0, err
	}
	s.state.Update(func(st *domain.OracleState) { st.TransactionHash = &txHash })
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
	return score, nil
}

func (s *OracleService) setStep(step string) {
	s.state.Update(func(st *domain.OracleState) { st.CurrentStep = step })
}

func (s *OracleService) recordFailure(err error) {
	msg := domain.FailureMessage(err)
	s.state.Update(func(st *domain.OracleState) { st.FinalMessage = &msg })
}

// finish releases the slot under the state lock, so a reader that sees
// isUpdating=false can always start the next cycle.
func (s *OracleService) finish() {
	s.state.Update(func(st *domain.OracleState) {
		st.CurrentStep = domain.StepIdle
		st.IsUpdating = false
		s.busy.Store(false)
	})
}
