package sentiment

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"omnimood-oracle/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultModel = "gpt-3.5-turbo"

	maxCompletionTokens = 50
	temperature         = 0.1
)

var scorePattern = regexp.MustCompile(`-?\d+`)

// LLMClient abstracts the OpenAI-compatible chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type Analyzer struct {
	tracer trace.Tracer
	llm    LLMClient
	model  string
}

func NewAnalyzer(tracer trace.Tracer, llm LLMClient, model string) *Analyzer {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Analyzer{tracer: tracer, llm: llm, model: model}
}

// Analyze sends one completion request and turns the reply into a score in
// [-10, 10]. Unparseable replies score 0; only transport or provider failures
// return an error, as *domain.AnalysisError.
func (a *Analyzer) Analyze(ctx context.Context, systemPrompt, userPrompt string) (domain.SentimentResult, error) {
	ctx, span := a.tracer.Start(ctx, "sentiment.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", a.model))

	log.Println("Asking the language model for a sentiment score...")

	if a.llm == nil {
		return domain.SentimentResult{}, &domain.AnalysisError{Err: fmt.Errorf("llm client not configured")}
	}

	completion, err := a.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens:   openai.Int(maxCompletionTokens),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		span.RecordError(err)
		log.Printf("AI analysis error: %v", err)
		return domain.SentimentResult{}, &domain.AnalysisError{Err: err}
	}
	if len(completion.Choices) == 0 {
		err := fmt.Errorf("no choices in LLM response")
		log.Printf("AI analysis error: %v", err)
		return domain.SentimentResult{}, &domain.AnalysisError{Err: err}
	}

	result := ParseScore(completion.Choices[0].Message.Content)
	span.SetAttributes(attribute.Int("sentiment.score", result.Score))
	return result, nil
}

// ParseScore extracts the first signed integer from a model reply and clamps
// it to the sentiment range.
func ParseScore(reply string) domain.SentimentResult {
	raw := strings.TrimSpace(reply)
	match := scorePattern.FindString(raw)
	if match == "" {
		return domain.SentimentResult{
			Score:       0,
			RawResponse: fmt.Sprintf(`Could not parse score. AI said: "%s"`, raw),
		}
	}

	score, err := strconv.Atoi(match)
	if err != nil {
		// Too many digits for an int; only the sign matters once clamped.
		if strings.HasPrefix(match, "-") {
			score = domain.MinSentimentScore
		} else {
			score = domain.MaxSentimentScore
		}
	}
	return domain.SentimentResult{Score: clamp(score), RawResponse: raw}
}

func clamp(score int) int {
	if score < domain.MinSentimentScore {
		return domain.MinSentimentScore
	}
	if score > domain.MaxSentimentScore {
		return domain.MaxSentimentScore
	}
	return score
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

// NewOpenAIClient targets any OpenAI-compatible endpoint; an empty baseURL
// uses the SDK default.
func NewOpenAIClient(apiKey, baseURL string) LLMClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &openaiClient{client: openai.NewClient(opts...)}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
