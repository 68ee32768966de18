package provider

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"strings"

	"omnimood-oracle/internal/domain"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	// TransferBlockWindow is how many trailing blocks each fetch covers.
	TransferBlockWindow = 100
	// DefaultTokenDecimals scales the cross-chain total.
	DefaultTokenDecimals = 6

	NoActivitySummary = "No recent transfer activity observed on selected chains."
)

const erc20TransferABI = `[{"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"value","type":"uint256"}],"name":"Transfer","type":"event"}]`

// LogClient is the subset of ethclient.Client the fetcher needs.
type LogClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

var dialLogClient = func(ctx context.Context, rpcURL string) (LogClient, error) {
	return ethclient.DialContext(ctx, rpcURL)
}

// chainOutcome is one chain's contribution; degraded chains carry no events.
type chainOutcome struct {
	chain    string
	values   []*big.Int
	decimals int
	degraded bool
	reason   string
}

type TransferFetcher struct {
	tracer   trace.Tracer
	registry *domain.ChainRegistry
	clients  map[int64]LogClient
	throttle *RPCThrottle
	erc20    abi.ABI
}

// NewTransferFetcher dials every registry chain up front. Chains that cannot
// be dialed stay without a client and degrade to zero events on fetch.
func NewTransferFetcher(ctx context.Context, tracer trace.Tracer, registry *domain.ChainRegistry) *TransferFetcher {
	clients := make(map[int64]LogClient)
	for _, c := range registry.Chains() {
		if strings.TrimSpace(c.RPCURL) == "" {
			log.Printf("Warning: no RPC URL for %s, transfers will be skipped", c.Name)
			continue
		}
		client, err := dialLogClient(ctx, c.RPCURL)
		if err != nil {
			log.Printf("failed to dial %s: %v", c.Name, err)
			continue
		}
		clients[c.ChainID] = client
	}
	return NewTransferFetcherWithClients(tracer, registry, clients)
}

func NewTransferFetcherWithClients(tracer trace.Tracer, registry *domain.ChainRegistry, clients map[int64]LogClient) *TransferFetcher {
	parsed, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		panic(fmt.Sprintf("parse erc20 abi: %v", err))
	}
	return &TransferFetcher{
		tracer:   tracer,
		registry: registry,
		clients:  clients,
		throttle: NewRPCThrottle(DefaultRPCBurst, DefaultRPCRefill),
		erc20:    parsed,
	}
}

// Fetch queries recent transfers on every requested chain concurrently and
// summarizes them. It never fails: per-chain problems contribute no events.
func (f *TransferFetcher) Fetch(ctx context.Context, chains []domain.ChainRef) (domain.FetchResult, error) {
	ctx, span := f.tracer.Start(ctx, "transfer-fetcher.fetch")
	defer span.End()
	span.SetAttributes(attribute.Int("chains.requested", len(chains)))

	log.Printf("Fetching data from %d chains...", len(chains))

	outcomes := make([]chainOutcome, len(chains))
	var g errgroup.Group
	g.SetLimit(domain.MaxSelectedChains)
	for i, ref := range chains {
		g.Go(func() error {
			outcomes[i] = f.fetchChain(ctx, ref)
			return nil
		})
	}
	g.Wait()

	return summarize(outcomes), nil
}

func (f *TransferFetcher) fetchChain(ctx context.Context, ref domain.ChainRef) chainOutcome {
	ctx, span := f.tracer.Start(ctx, "transfer-fetcher.fetch-chain")
	defer span.End()
	span.SetAttributes(attribute.Int64("chain.id", ref.ChainID))

	cfg, ok := f.registry.Lookup(ref.ChainID)
	if !ok {
		log.Printf("Chain %d not supported.", ref.ChainID)
		return chainOutcome{chain: ref.Name, degraded: true, reason: "unsupported chain"}
	}
	name := ref.Name
	if name == "" {
		name = cfg.Name
	}

	client, ok := f.clients[cfg.ChainID]
	if !ok || client == nil {
		log.Printf("Failed to fetch from %s: no RPC client", name)
		return chainOutcome{chain: name, degraded: true, reason: "no rpc client"}
	}

	values, err := f.queryTransfers(ctx, client, cfg)
	if err != nil {
		span.RecordError(err)
		log.Printf("Failed to fetch from %s: %v", name, err)
		return chainOutcome{chain: name, degraded: true, reason: err.Error()}
	}
	span.SetAttributes(attribute.Int("transfers", len(values)))
	return chainOutcome{chain: name, values: values, decimals: cfg.TokenDecimals}
}

func (f *TransferFetcher) queryTransfers(ctx context.Context, client LogClient, cfg domain.ChainConfig) ([]*big.Int, error) {
	if !common.IsHexAddress(cfg.TokenAddress) {
		return nil, fmt.Errorf("invalid token address %q", cfg.TokenAddress)
	}

	if err := f.throttle.Wait(ctx, cfg.ChainID); err != nil {
		return nil, fmt.Errorf("rpc throttle: %w", err)
	}
	head, err := client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	from := uint64(0)
	if head > TransferBlockWindow {
		from = head - TransferBlockWindow
	}

	if err := f.throttle.Wait(ctx, cfg.ChainID); err != nil {
		return nil, fmt.Errorf("rpc throttle: %w", err)
	}
	logs, err := client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(head),
		Addresses: []common.Address{common.HexToAddress(cfg.TokenAddress)},
		Topics:    [][]common.Hash{{f.erc20.Events["Transfer"].ID}},
	})
	if err != nil {
		return nil, fmt.Errorf("filter logs: %w", err)
	}

	values := make([]*big.Int, 0, len(logs))
	for _, l := range logs {
		out, err := f.erc20.Unpack("Transfer", l.Data)
		if err != nil || len(out) == 0 {
			continue
		}
		v, ok := out[0].(*big.Int)
		if !ok {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// summarize merges chain outcomes in request order. The total adds raw values
// across different tokens and scales them with DefaultTokenDecimals, so it is
// only an approximate activity measure.
func summarize(outcomes []chainOutcome) domain.FetchResult {
	var events []domain.TransferEvent
	total := new(big.Int)
	for _, o := range outcomes {
		if o.degraded {
			continue
		}
		decimals := o.decimals
		if decimals <= 0 {
			decimals = DefaultTokenDecimals
		}
		for _, v := range o.values {
			total.Add(total, v)
			events = append(events, domain.TransferEvent{
				Chain: o.chain,
				Value: FormatUnits(v, decimals),
			})
		}
	}

	if len(events) == 0 {
		return domain.FetchResult{Summary: NoActivitySummary, RawEvents: []domain.TransferEvent{}}
	}

	summary := fmt.Sprintf(
		"Found %d total transfers across selected chains. Total value: %s (aggregated across different tokens/chains).",
		len(events), FormatUnits(total, DefaultTokenDecimals),
	)
	return domain.FetchResult{Summary: summary, RawEvents: events}
}

// FormatUnits renders a raw token amount with the given number of decimals.
// Whole amounts keep one fractional digit ("1.0").
func FormatUnits(v *big.Int, decimals int) string {
	s := decimal.NewFromBigInt(v, -int32(decimals)).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
