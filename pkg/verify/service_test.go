package verify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/safehash/pkg/event"
	"github.com/luxfi/safehash/pkg/messaging"
	"github.com/luxfi/safehash/pkg/metrics"
	"github.com/luxfi/safehash/pkg/safe"
	"github.com/luxfi/safehash/pkg/safeapi"
	"github.com/luxfi/safehash/pkg/types"
)

const (
	testSafe  = "0x0275E1208A4973bDC8D557C35637577b3447458A"
	testToken = "0x13613fb95931D7cC2F1ae3E30e5090220f818032"
	testImpl  = "0x5aFE3855358E112B5647B952709E6165e1c1eEEe"
	erc20ABI  = `[{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}]`

	knownSafeTxHash = "0x0e4989c785bbef4f0e00a144f700bf1350f9e8556f9342286d71219bc9045914"
)

type stubABIs struct {
	contract *safeapi.ContractABI
	err      error
	calls    int
}

func (s *stubABIs) Supports(network types.NetworkCode) bool { return network == types.NetworkSepolia }

func (s *stubABIs) FetchABI(ctx context.Context, network types.NetworkCode, address string) (*safeapi.ContractABI, error) {
	s.calls++
	return s.contract, s.err
}

func knownTransaction() *safe.SafeTransaction {
	return &safe.SafeTransaction{
		To:        testToken,
		Value:     "0",
		Data:      "0xa9059cbb00000000000000000000000092714591205ab6956a2738a208b074bd8043182d0000000000000000000000000000000000000000000000000de0b6b3a7640000",
		Operation: safe.OperationCall,
		Nonce:     1,
	}
}

func newService(abis ABIFetcher) (*Service, *messaging.MockPublisher) {
	pub := messaging.NewMockPublisher()
	opts := []Option{WithPublisher(pub), WithMetrics(metrics.NewMetrics(prometheus.NewRegistry()))}
	if abis != nil {
		opts = append(opts, WithABIFetcher(abis))
	}
	return NewService(safe.NewCalculator(nil), opts...), pub
}

func TestVerify_DecodesThroughProxy(t *testing.T) {
	abis := &stubABIs{contract: &safeapi.ContractABI{Address: testToken, Implementation: testImpl, ABI: erc20ABI}}
	svc, pub := newService(abis)

	report, err := svc.Verify(context.Background(), safe.Options{
		Network:         "sepolia",
		Address:         testSafe,
		TransactionData: knownTransaction(),
	})
	require.NoError(t, err)

	assert.Equal(t, knownSafeTxHash, report.SafeTxHash.Hex())
	_, err = uuid.Parse(report.RequestID)
	assert.NoError(t, err)
	require.NotNil(t, report.Decoded)
	assert.Equal(t, "transfer(address,uint256)", report.Decoded.Signature)
	assert.Equal(t, testImpl, report.ABISource)
	assert.Nil(t, report.NativeTransfer)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, event.ResultTypeSuccess, events[0].ResultType)
	assert.Equal(t, report.RequestID, events[0].RequestID)
	assert.Equal(t, knownSafeTxHash, events[0].SafeTransactionHash)
}

func TestVerify_DecodeFailureIsNotFatal(t *testing.T) {
	abis := &stubABIs{err: errors.New("explorer down")}
	svc, _ := newService(abis)

	report, err := svc.Verify(context.Background(), safe.Options{
		Network:         "sepolia",
		Address:         testSafe,
		TransactionData: knownTransaction(),
	})
	require.NoError(t, err)
	assert.Nil(t, report.Decoded)
	assert.Equal(t, 1, abis.calls)
	assert.Equal(t, knownSafeTxHash, report.SafeTxHash.Hex())
}

func TestVerify_UnsupportedExplorerSkipsLookup(t *testing.T) {
	abis := &stubABIs{}
	svc, _ := newService(abis)

	report, err := svc.Verify(context.Background(), safe.Options{
		Network:         "ethereum",
		Address:         testSafe,
		TransactionData: knownTransaction(),
	})
	require.NoError(t, err)
	assert.Nil(t, report.Decoded)
	assert.Zero(t, abis.calls)
}

func TestVerify_NativeTransfer(t *testing.T) {
	svc, _ := newService(&stubABIs{})

	report, err := svc.Verify(context.Background(), safe.Options{
		Network: "sepolia",
		Address: testSafe,
		TransactionData: &safe.SafeTransaction{
			To:    "0x5afe3855358e112b5647b952709e6165e1c1eeee",
			Value: "1000000000000000000",
			Data:  "0x",
			Nonce: 3,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, report.NativeTransfer)
	assert.Equal(t, "1.0 ETH", report.NativeTransfer.Amount)
	assert.Nil(t, report.Decoded)
}

func TestVerify_Message(t *testing.T) {
	svc, pub := newService(nil)

	report, err := svc.Verify(context.Background(), safe.Options{
		Network:        "sepolia",
		Address:        testSafe,
		MessageContent: "Hello, Safe!",
	})
	require.NoError(t, err)
	assert.Nil(t, report.TransactionData)
	require.Len(t, pub.Events(), 1)
	assert.Equal(t, event.KindMessage, pub.Events()[0].Kind)
}

func TestVerify_FailurePublished(t *testing.T) {
	svc, pub := newService(nil)

	_, err := svc.Verify(context.Background(), safe.Options{Network: "nope", Address: testSafe})
	var vErr *safe.ValidationError
	require.True(t, errors.As(err, &vErr))

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, event.ResultTypeError, events[0].ResultType)
	assert.Equal(t, safe.CodeValidation, events[0].ErrorCode)
}

func TestVerify_PublishErrorIgnored(t *testing.T) {
	svc, pub := newService(nil)
	pub.SetPublishError(errors.New("nats down"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	report, err := svc.Verify(ctx, safe.Options{
		Network:         "sepolia",
		Address:         testSafe,
		TransactionData: knownTransaction(),
	})
	require.NoError(t, err)
	assert.Equal(t, knownSafeTxHash, report.SafeTxHash.Hex())
}
