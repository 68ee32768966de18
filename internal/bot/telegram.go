package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"omnimood-oracle/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type OracleController interface {
	Chains() []domain.ChainSummary
	Status() domain.OracleState
	Trigger(ctx context.Context, chains []domain.ChainRef) error
}

type ScoreQuerier interface {
	GetCurrentScore(ctx context.Context) (*domain.PublishedScore, error)
}

func StartTelegramBot(oracle OracleController, scores ScoreQuerier) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	runChats := parseChatIDs(os.Getenv("TELEGRAM_RUN_CHAT_IDS"))
	if len(runChats) == 0 {
		log.Println("TELEGRAM_RUN_CHAT_IDS not set, /run is disabled")
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/chains", func(c tele.Context) error {
		return c.Send(formatChains(oracle.Chains()))
	})

	b.Handle("/status", func(c tele.Context) error {
		return c.Send(formatStatus(oracle.Status()))
	})

	b.Handle("/score", func(c tele.Context) error {
		score, err := scores.GetCurrentScore(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error reading oracle contract: %v", err))
		}
		return c.Send(formatScore(score))
	})

	b.Handle("/run", func(c tele.Context) error {
		var chatID int64
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		return c.Send(runCommand(oracle, runChats, chatID, c.Args()))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

// runCommand starts a signed publish cycle, so only allowlisted chats may use it.
func runCommand(oracle OracleController, allowed map[int64]bool, chatID int64, args []string) string {
	if len(allowed) == 0 {
		return "Running updates from Telegram is disabled."
	}
	if !allowed[chatID] {
		log.Printf("rejected /run from chat %d", chatID)
		return "This chat is not allowed to run oracle updates."
	}
	if len(args) == 0 {
		return "Usage: /run <chainId> [chainId...]\n" + formatChains(oracle.Chains())
	}
	refs := make([]domain.ChainRef, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil {
			return fmt.Sprintf("Invalid chain id: %s", a)
		}
		refs = append(refs, domain.ChainRef{ChainID: id})
	}

	err := oracle.Trigger(context.Background(), refs)
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return "Oracle update triggered! Use /status to follow it."
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, domain.ErrBusy):
		return "Update already in progress."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// parseChatIDs reads a comma list of chat ids; group chats are negative.
func parseChatIDs(v string) map[int64]bool {
	ids := make(map[int64]bool)
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id == 0 {
			log.Printf("Warning: ignoring invalid chat id %q in TELEGRAM_RUN_CHAT_IDS", part)
			continue
		}
		ids[id] = true
	}
	return ids
}

func formatChains(chains []domain.ChainSummary) string {
	var sb strings.Builder
	sb.WriteString("Supported chains:\n")
	for _, c := range chains {
		sb.WriteString(fmt.Sprintf("  %d  %s\n", c.ChainID, c.Name))
	}
	return sb.String()
}

func formatStatus(st domain.OracleState) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Step: %s\n", st.CurrentStep))
	if len(st.ChainsQueried) > 0 {
		sb.WriteString(fmt.Sprintf("Chains: %s\n", strings.Join(st.ChainsQueried, ", ")))
	}
	if st.FetchedDataSummary != nil {
		sb.WriteString(fmt.Sprintf("Data: %s\n", *st.FetchedDataSummary))
	}
	if st.AIScore != nil {
		sb.WriteString(fmt.Sprintf("Score: %d\n", *st.AIScore))
	}
	if st.TransactionHash != nil {
		sb.WriteString(fmt.Sprintf("Tx: %s\n", *st.TransactionHash))
	}
	if st.FinalMessage != nil {
		sb.WriteString(*st.FinalMessage)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatScore(s *domain.PublishedScore) string {
	updated := time.Unix(s.Timestamp, 0).UTC().Format(time.RFC822)
	return fmt.Sprintf("Sentiment: %d\nUpdated: %s\n%s", s.Score, updated, s.Summary)
}
