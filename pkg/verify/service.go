// Package verify runs a hash verification end to end: the pure engine,
// the transaction fetch, calldata decoding and result publishing.
package verify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/luxfi/safehash/pkg/decoder"
	"github.com/luxfi/safehash/pkg/event"
	"github.com/luxfi/safehash/pkg/logger"
	"github.com/luxfi/safehash/pkg/messaging"
	"github.com/luxfi/safehash/pkg/metrics"
	"github.com/luxfi/safehash/pkg/safe"
	"github.com/luxfi/safehash/pkg/safeapi"
	"github.com/luxfi/safehash/pkg/types"
)

// NativeSymbol labels native transfer amounts.
const NativeSymbol = "ETH"

const publishTimeout = 5 * time.Second

// ABIFetcher is satisfied by *safeapi.ABIClient.
type ABIFetcher interface {
	Supports(network types.NetworkCode) bool
	FetchABI(ctx context.Context, network types.NetworkCode, address string) (*safeapi.ContractABI, error)
}

// Report is a Result plus everything derived from it for display.
type Report struct {
	RequestID string `json:"requestId"`
	*safe.Result
	Decoded        *decoder.Call           `json:"decoded,omitempty"`
	NativeTransfer *decoder.NativeTransfer `json:"nativeTransfer,omitempty"`
	// ABISource is the address whose ABI decoded the call; it differs from
	// the target when the target is a proxy.
	ABISource string `json:"abiSource,omitempty"`
}

// Service is safe for concurrent use.
type Service struct {
	calc      *safe.Calculator
	abis      ABIFetcher
	publisher messaging.Publisher
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithABIFetcher(f ABIFetcher) Option { return func(s *Service) { s.abis = f } }

func WithPublisher(p messaging.Publisher) Option { return func(s *Service) { s.publisher = p } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func NewService(calc *safe.Calculator, opts ...Option) *Service {
	s := &Service{calc: calc, publisher: messaging.NopPublisher{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify computes the hashes for opts. Only engine errors fail the call;
// decoding and publishing problems are logged.
func (s *Service) Verify(ctx context.Context, opts safe.Options) (*Report, error) {
	requestID := uuid.NewString()
	kind := event.KindOf(opts)
	start := time.Now()

	result, err := s.calc.CalculateSafeHashes(ctx, opts)
	if err != nil {
		s.metrics.RecordHash(string(kind), opts.Network, event.ErrorCodeOf(err), time.Since(start))
		logger.Warn("Hash calculation failed",
			"request_id", requestID,
			"network", opts.Network,
			"safe", opts.Address,
			"error", err.Error(),
		)
		s.publish(ctx, event.CreateHashFailure(requestID, opts, err))
		return nil, err
	}
	s.metrics.RecordHash(string(kind), opts.Network, "ok", time.Since(start))

	report := &Report{RequestID: requestID, Result: result}
	if result.TransactionData != nil {
		s.describe(ctx, types.NetworkCode(opts.Network), report)
	}

	logger.Info("Calculated Safe hashes",
		"request_id", requestID,
		"kind", string(kind),
		"network", opts.Network,
		"safe", opts.Address,
		"safe_tx_hash", result.SafeTxHash.Hex(),
		"warnings", len(result.Warnings),
	)
	s.publish(ctx, event.CreateHashSuccess(requestID, opts, result))
	return report, nil
}

func (s *Service) describe(ctx context.Context, network types.NetworkCode, report *Report) {
	tx := *report.TransactionData
	if tx.IsNativeTransfer() {
		nt, err := decoder.DescribeNativeTransfer(tx, NativeSymbol)
		if err != nil {
			logger.Warn("Failed to format native transfer", "request_id", report.RequestID, "error", err.Error())
			return
		}
		report.NativeTransfer = nt
		return
	}

	if s.abis == nil || !s.abis.Supports(network) {
		return
	}
	contract, err := s.abis.FetchABI(ctx, network, tx.To)
	if err != nil {
		logger.Warn("ABI lookup failed, skipping decode", "request_id", report.RequestID, "to", tx.To, "error", err.Error())
		return
	}
	call, err := decoder.DecodeTransaction(contract.ABI, tx)
	if err != nil {
		logger.Warn("Failed to decode calldata", "request_id", report.RequestID, "to", tx.To, "error", err.Error())
		return
	}
	report.Decoded = call
	report.ABISource = contract.Address
	if contract.Implementation != "" {
		report.ABISource = contract.Implementation
	}
}

func (s *Service) publish(ctx context.Context, e *event.HashResultEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishResult(ctx, e); err != nil {
		logger.Error("Failed to publish hash result", err, "request_id", e.RequestID)
	}
}
