package domain

import "fmt"

// TransferEvent is one decoded token transfer; Value is decimal-adjusted.
type TransferEvent struct {
	Chain string `json:"chain"`
	Value string `json:"value"`
}

type FetchResult struct {
	Summary   string
	RawEvents []TransferEvent
}

type SentimentResult struct {
	Score       int
	RawResponse string
}

// PublishedScore is the oracle contract's current view.
type PublishedScore struct {
	Score     int64  `json:"score"`
	Summary   string `json:"summary"`
	Timestamp int64  `json:"timestamp"`
}

const (
	MinSentimentScore = -10
	MaxSentimentScore = 10
)

const (
	StepIdle       = "Idle"
	StepStarting   = "Starting..."
	StepAnalyzing  = "2/3: Analyzing sentiment with AI..."
	StepPublishing = "3/3: Broadcasting score to settlement chain..."

	InitialMessage = "Ready to start. Select chains and run analysis."
)

func StepFetching(chainCount int) string {
	return fmt.Sprintf("1/3: Fetching data from %d chain(s)...", chainCount)
}

func CompletionMessage(score int) string {
	return fmt.Sprintf("Cycle Complete! New sentiment score is %d.", score)
}

func FailureMessage(err error) string {
	return fmt.Sprintf("Error: %s.", err.Error())
}

// OracleState is the status record of the current or most recent cycle.
// Nil fields serialize as null until the cycle populates them.
type OracleState struct {
	IsUpdating         bool            `json:"isUpdating"`
	CurrentStep        string          `json:"currentStep"`
	ChainsQueried      []string        `json:"chainsQueried"`
	FetchedDataSummary *string         `json:"fetchedDataSummary"`
	RawEventsData      []TransferEvent `json:"rawEventsData"`
	AISystemPrompt     *string         `json:"aiSystemPrompt"`
	AIUserPrompt       *string         `json:"aiUserPrompt"`
	AIRawResponse      *string         `json:"aiRawResponse"`
	AIScore            *int            `json:"aiScore"`
	TransactionHash    *string         `json:"transactionHash"`
	FinalMessage       *string         `json:"finalMessage"`
}

func InitialOracleState() OracleState {
	msg := InitialMessage
	return OracleState{
		CurrentStep:  StepIdle,
		FinalMessage: &msg,
	}
}

// NewRunState is the fresh record installed at the start of a cycle.
func NewRunState(chains []ChainRef) OracleState {
	names := make([]string, 0, len(chains))
	for _, c := range chains {
		names = append(names, c.Name)
	}
	return OracleState{
		IsUpdating:    true,
		CurrentStep:   StepStarting,
		ChainsQueried: names,
	}
}
