package oracle

import (
	"context"
	"fmt"
	"log"
	"math/big"

	"omnimood-oracle/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PendingTx is a submitted settlement transaction.
type PendingTx interface {
	Hash() string
	// Wait blocks until the transaction is confirmed and fails if it reverted.
	Wait(ctx context.Context) error
}

// UniversalSender signs and submits a contract call on the settlement chain.
type UniversalSender interface {
	SendTransaction(ctx context.Context, to common.Address, data []byte, value *big.Int) (PendingTx, error)
}

type Publisher struct {
	tracer   trace.Tracer
	sender   UniversalSender
	contract string
}

func NewPublisher(tracer trace.Tracer, sender UniversalSender, contractAddress string) *Publisher {
	return &Publisher{tracer: tracer, sender: sender, contract: contractAddress}
}

// Publish writes score and summary to the oracle contract and returns the
// confirmed transaction hash. Every failure is a *domain.PublishError.
func (p *Publisher) Publish(ctx context.Context, score int, summary string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "oracle.publish")
	defer span.End()
	span.SetAttributes(attribute.Int("sentiment.score", score))

	hash, err := p.publish(ctx, score, summary)
	if err != nil {
		span.RecordError(err)
		log.Printf("settlement update error: %v", err)
		return "", &domain.PublishError{Err: err}
	}
	span.SetAttributes(attribute.String("tx.hash", hash))
	return hash, nil
}

func (p *Publisher) publish(ctx context.Context, score int, summary string) (string, error) {
	if p.sender == nil {
		return "", fmt.Errorf("settlement signer not configured")
	}
	if !common.IsHexAddress(p.contract) {
		return "", fmt.Errorf("invalid oracle contract address %q", p.contract)
	}

	data, err := EncodeUpdate(score, summary)
	if err != nil {
		return "", err
	}

	tx, err := p.sender.SendTransaction(ctx, common.HexToAddress(p.contract), data, big.NewInt(0))
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	if err := tx.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for %s: %w", tx.Hash(), err)
	}
	return tx.Hash(), nil
}

// EncodeUpdate builds the calldata for updateSentiment(int256,string).
func EncodeUpdate(score int, summary string) ([]byte, error) {
	data, err := parsedOracleABI.Pack(updateMethod, big.NewInt(int64(score)), summary)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", updateMethod, err)
	}
	return data, nil
}
