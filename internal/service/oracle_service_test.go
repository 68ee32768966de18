package service

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"omnimood-oracle/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func testRegistry() *domain.ChainRegistry {
	return domain.NewChainRegistry([]domain.ChainConfig{
		{Name: "Ethereum Sepolia", ChainID: 11155111, TokenDecimals: 6},
		{Name: "Base Sepolia", ChainID: 84532, TokenDecimals: 6},
		{Name: "Monad Testnet", ChainID: 10143, TokenDecimals: 18},
	})
}

type stubFetcher struct {
	result  domain.FetchResult
	err     error
	release chan struct{}
	started chan struct{}
	panics  bool
}

func (s *stubFetcher) Fetch(ctx context.Context, chains []domain.ChainRef) (domain.FetchResult, error) {
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	if s.panics {
		panic("boom")
	}
	return s.result, s.err
}

type stubAnalyzer struct {
	result     domain.SentimentResult
	err        error
	userPrompt string
}

func (s *stubAnalyzer) Analyze(ctx context.Context, systemPrompt, userPrompt string) (domain.SentimentResult, error) {
	s.userPrompt = userPrompt
	return s.result, s.err
}

type stubPublisher struct {
	hash    string
	err     error
	calls   int
	score   int
	summary string
}

func (s *stubPublisher) Publish(ctx context.Context, score int, summary string) (string, error) {
	s.calls++
	s.score, s.summary = score, summary
	return s.hash, s.err
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

var twoChains = []domain.ChainRef{
	{ChainID: 11155111, Name: "Ethereum Sepolia"},
	{ChainID: 84532, Name: "Base Sepolia"},
}

func assertIdle(t *testing.T, st domain.OracleState) {
	t.Helper()
	if st.IsUpdating || st.CurrentStep != domain.StepIdle {
		t.Fatalf("expected idle state, got isUpdating=%v step=%q", st.IsUpdating, st.CurrentStep)
	}
}

func TestRunCycleSuccess(t *testing.T) {
	fetcher := &stubFetcher{result: domain.FetchResult{
		Summary:   "Found 2 total transfers",
		RawEvents: []domain.TransferEvent{{Chain: "Base Sepolia", Value: "1"}, {Chain: "Base Sepolia", Value: "2"}},
	}}
	analyzer := &stubAnalyzer{result: domain.SentimentResult{Score: 4, RawResponse: "4"}}
	publisher := &stubPublisher{hash: "0xfeed"}
	inv := &countingInvalidator{}
	svc := NewOracleService(testTracer, testRegistry(), fetcher, analyzer, publisher, nil)
	svc.SetScoreInvalidator(inv)

	if err := svc.RunCycle(context.Background(), twoChains); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := svc.Status()
	assertIdle(t, st)
	if st.FinalMessage == nil || *st.FinalMessage != "Cycle Complete! New sentiment score is 4." {
		t.Fatalf("unexpected final message: %v", st.FinalMessage)
	}
	if st.AIScore == nil || *st.AIScore != 4 || st.TransactionHash == nil || *st.TransactionHash != "0xfeed" {
		t.Fatalf("unexpected results: %+v", st)
	}
	if len(st.ChainsQueried) != 2 || st.ChainsQueried[0] != "Ethereum Sepolia" {
		t.Fatalf("unexpected chains: %v", st.ChainsQueried)
	}
	if len(st.RawEventsData) != 2 || st.FetchedDataSummary == nil {
		t.Fatalf("expected fetch results in status: %+v", st)
	}
	if analyzer.userPrompt != `Data: "Found 2 total transfers"` {
		t.Fatalf("unexpected user prompt: %q", analyzer.userPrompt)
	}
	if st.AISystemPrompt == nil || !strings.Contains(*st.AISystemPrompt, "-10 (very bearish) to 10 (very bullish)") {
		t.Fatalf("unexpected system prompt: %v", st.AISystemPrompt)
	}
	if publisher.score != 4 || publisher.summary != "Found 2 total transfers" {
		t.Fatalf("unexpected publish args: %d %q", publisher.score, publisher.summary)
	}
	if inv.calls != 1 {
		t.Fatalf("expected cache invalidation, got %d", inv.calls)
	}
}

func TestRunCycleAnalysisFailure(t *testing.T) {
	publisher := &stubPublisher{}
	svc := NewOracleService(testTracer, testRegistry(),
		&stubFetcher{result: domain.FetchResult{Summary: "x"}},
		&stubAnalyzer{err: &domain.AnalysisError{Err: errors.New("timeout")}},
		publisher, nil)

	_ = svc.RunCycle(context.Background(), twoChains)

	st := svc.Status()
	assertIdle(t, st)
	if st.FinalMessage == nil || *st.FinalMessage != "Error: AI analysis failed." {
		t.Fatalf("unexpected final message: %v", st.FinalMessage)
	}
	if publisher.calls != 0 {
		t.Fatal("publish must be skipped after analysis failure")
	}
	if st.TransactionHash != nil {
		t.Fatal("expected no transaction hash")
	}
}

func TestRunCyclePublishFailure(t *testing.T) {
	svc := NewOracleService(testTracer, testRegistry(),
		&stubFetcher{result: domain.FetchResult{Summary: "x"}},
		&stubAnalyzer{result: domain.SentimentResult{Score: -2, RawResponse: "-2"}},
		&stubPublisher{err: &domain.PublishError{Err: errors.New("reverted")}}, nil)

	_ = svc.RunCycle(context.Background(), twoChains)

	st := svc.Status()
	assertIdle(t, st)
	if st.FinalMessage == nil || *st.FinalMessage != "Error: Failed to write to settlement chain." {
		t.Fatalf("unexpected final message: %v", st.FinalMessage)
	}
	if st.AIScore == nil || *st.AIScore != -2 {
		t.Fatal("expected analysis results to remain recorded")
	}
}

func TestRunCycleFetchErrorAndPanic(t *testing.T) {
	for name, fetcher := range map[string]*stubFetcher{
		"error": {err: errors.New("unexpected")},
		"panic": {panics: true},
	} {
		svc := NewOracleService(testTracer, testRegistry(), fetcher, &stubAnalyzer{}, &stubPublisher{}, nil)
		_ = svc.RunCycle(context.Background(), twoChains)

		st := svc.Status()
		assertIdle(t, st)
		if st.FinalMessage == nil || !strings.HasPrefix(*st.FinalMessage, "Error: ") {
			t.Fatalf("%s: unexpected final message: %v", name, st.FinalMessage)
		}
		if svc.IsUpdating() {
			t.Fatalf("%s: busy flag not released", name)
		}
	}
}

func TestRunCycleNoActivityStillPublishes(t *testing.T) {
	publisher := &stubPublisher{hash: "0x1"}
	svc := NewOracleService(testTracer, testRegistry(),
		&stubFetcher{result: domain.FetchResult{Summary: "No recent transfer activity observed on selected chains.", RawEvents: []domain.TransferEvent{}}},
		&stubAnalyzer{result: domain.SentimentResult{Score: 0, RawResponse: "0"}},
		publisher, nil)

	_ = svc.RunCycle(context.Background(), twoChains)
	if publisher.calls != 1 {
		t.Fatal("expected empty activity to proceed to publishing")
	}
}

func TestTriggerRejectsInvalidSelection(t *testing.T) {
	svc := NewOracleService(testTracer, testRegistry(), &stubFetcher{}, &stubAnalyzer{}, &stubPublisher{}, nil)
	before := svc.Status()

	err := svc.Trigger(context.Background(), []domain.ChainRef{{ChainID: 1}})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := svc.Trigger(context.Background(), nil); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty selection, got %v", err)
	}
	if after := svc.Status(); *after.FinalMessage != *before.FinalMessage || after.IsUpdating {
		t.Fatal("validation failure must not touch the status record")
	}
}

func TestTriggerBusyDoesNotResetInFlightRecord(t *testing.T) {
	fetcher := &stubFetcher{
		result:  domain.FetchResult{Summary: "s"},
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	svc := NewOracleService(testTracer, testRegistry(), fetcher,
		&stubAnalyzer{result: domain.SentimentResult{Score: 1, RawResponse: "1"}},
		&stubPublisher{hash: "0x2"}, nil)

	if err := svc.Trigger(context.Background(), twoChains[:1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-fetcher.started

	st := svc.Status()
	if !st.IsUpdating || st.CurrentStep != domain.StepFetching(1) {
		t.Fatalf("expected in-flight fetch, got %+v", st)
	}

	if err := svc.Trigger(context.Background(), twoChains); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := svc.RunCycle(context.Background(), twoChains); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy from RunCycle, got %v", err)
	}
	if st := svc.Status(); len(st.ChainsQueried) != 1 || !st.IsUpdating {
		t.Fatalf("in-flight record was replaced: %+v", st)
	}

	close(fetcher.release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := svc.Wait(ctx); err != nil {
		t.Fatalf("cycle did not finish: %v", err)
	}
	assertIdle(t, svc.Status())
}

func TestTriggerSurvivesRequestCancellation(t *testing.T) {
	publisher := &stubPublisher{hash: "0x3"}
	svc := NewOracleService(testTracer, testRegistry(),
		&stubFetcher{result: domain.FetchResult{Summary: "s"}},
		&stubAnalyzer{result: domain.SentimentResult{Score: 2, RawResponse: "2"}},
		publisher, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := svc.Trigger(ctx, twoChains); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if err := svc.Wait(waitCtx); err != nil {
		t.Fatalf("cycle did not finish: %v", err)
	}
	if st := svc.Status(); st.TransactionHash == nil || *st.TransactionHash != "0x3" {
		t.Fatalf("expected completed cycle, got %+v", st)
	}
}

func TestTriggerFillsMissingNames(t *testing.T) {
	svc := NewOracleService(testTracer, testRegistry(),
		&stubFetcher{result: domain.FetchResult{Summary: "s"}},
		&stubAnalyzer{}, &stubPublisher{}, nil)

	_ = svc.RunCycle(context.Background(), []domain.ChainRef{{ChainID: 10143}})
	if st := svc.Status(); len(st.ChainsQueried) != 1 || st.ChainsQueried[0] != "Monad Testnet" {
		t.Fatalf("unexpected chains: %v", st.ChainsQueried)
	}
}

func TestInitialStatus(t *testing.T) {
	svc := NewOracleService(testTracer, testRegistry(), &stubFetcher{}, &stubAnalyzer{}, &stubPublisher{}, nil)
	st := svc.Status()
	assertIdle(t, st)
	if st.FinalMessage == nil || *st.FinalMessage != domain.InitialMessage {
		t.Fatalf("unexpected initial message: %v", st.FinalMessage)
	}
	if len(svc.Chains()) != 3 {
		t.Fatalf("expected 3 chains, got %d", len(svc.Chains()))
	}
}

func TestIdleStatusAlwaysAcceptsNextTrigger(t *testing.T) {
	svc := NewOracleService(testTracer, testRegistry(),
		&stubFetcher{result: domain.FetchResult{Summary: "s"}},
		&stubAnalyzer{result: domain.SentimentResult{Score: 1, RawResponse: "1"}},
		&stubPublisher{hash: "0x4"}, nil)

	deadline := time.Now().Add(2 * time.Second)
	for i := 0; i < 200; i++ {
		if err := svc.Trigger(context.Background(), twoChains); err != nil {
			t.Fatalf("cycle %d: trigger after idle status returned %v", i, err)
		}
		for svc.Status().IsUpdating {
			if time.Now().After(deadline) {
				t.Fatal("cycle did not finish")
			}
			runtime.Gosched()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := svc.Wait(ctx); err != nil {
		t.Fatalf("cycle did not finish: %v", err)
	}
}
