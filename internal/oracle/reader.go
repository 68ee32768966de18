package oracle

import (
	"context"
	"fmt"
	"math/big"

	"omnimood-oracle/internal/domain"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/trace"
)

// ContractCaller is the read-only subset of ethclient.Client.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type Reader struct {
	tracer   trace.Tracer
	caller   ContractCaller
	contract string
}

func NewReader(tracer trace.Tracer, caller ContractCaller, contractAddress string) *Reader {
	return &Reader{tracer: tracer, caller: caller, contract: contractAddress}
}

// ReadScore calls getOracleData() at the latest block.
func (r *Reader) ReadScore(ctx context.Context) (*domain.PublishedScore, error) {
	ctx, span := r.tracer.Start(ctx, "oracle.read-score")
	defer span.End()

	if r.caller == nil {
		return nil, fmt.Errorf("settlement rpc not configured")
	}
	if !common.IsHexAddress(r.contract) {
		return nil, fmt.Errorf("invalid oracle contract address %q", r.contract)
	}

	input, err := parsedOracleABI.Pack(readMethod)
	if err != nil {
		return nil, err
	}
	to := common.HexToAddress(r.contract)
	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("call %s: %w", readMethod, err)
	}
	return DecodeOracleData(out)
}

func DecodeOracleData(out []byte) (*domain.PublishedScore, error) {
	values, err := parsedOracleABI.Unpack(readMethod, out)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", readMethod, err)
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("decode %s: expected 3 values, got %d", readMethod, len(values))
	}
	score, ok1 := values[0].(*big.Int)
	summary, ok2 := values[1].(string)
	ts, ok3 := values[2].(*big.Int)
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("decode %s: unexpected value types", readMethod)
	}
	return &domain.PublishedScore{
		Score:     score.Int64(),
		Summary:   summary,
		Timestamp: ts.Int64(),
	}, nil
}
