package safe

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/safehash/pkg/types"
)

type stubFetcher struct {
	record *TransactionRecord
	err    error

	calls   int
	network types.NetworkCode
	address string
	nonce   uint64
}

func (f *stubFetcher) FetchTransaction(_ context.Context, network types.NetworkCode, safeAddress string, nonce uint64) (*TransactionRecord, error) {
	f.calls++
	f.network, f.address, f.nonce = network, safeAddress, nonce
	return f.record, f.err
}

func knownRecord() *TransactionRecord {
	tx := knownTransaction()
	op := int(tx.Operation)
	value, safeTxGas, baseGas, gasPrice := Quantity(tx.Value), Quantity(tx.SafeTxGas), Quantity(tx.BaseGas), Quantity(tx.GasPrice)
	nonce := Quantity("1")
	return &TransactionRecord{
		To:             &tx.To,
		Value:          &value,
		Data:           &tx.Data,
		Operation:      &op,
		SafeTxGas:      &safeTxGas,
		BaseGas:        &baseGas,
		GasPrice:       &gasPrice,
		GasToken:       &tx.GasToken,
		RefundReceiver: &tx.RefundReceiver,
		Nonce:          &nonce,
	}
}

func u64(n uint64) *uint64 { return &n }

func TestCalculateSafeHashes_FetchedTransaction(t *testing.T) {
	fetcher := &stubFetcher{record: knownRecord()}
	calc := NewCalculator(fetcher)

	result, err := calc.CalculateSafeHashes(context.Background(), Options{
		Network: "sepolia",
		Address: testSafe,
		Nonce:   u64(1),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, types.NetworkSepolia, fetcher.network)
	assert.Equal(t, testSafe, fetcher.address)
	assert.Equal(t, uint64(1), fetcher.nonce)

	assert.Equal(t, h("0x8b904e3c3a6a2b7e0114d2ddbe01c1ab143e30077110a771cf2b431b10ffc4d4"), result.DomainHash)
	assert.Equal(t, h("0x407ca9e30e4fb3c2adf9fde72ba03e4ebafbe573b11e1eb0b8c4a8373209d210"), result.MessageHash)
	assert.Equal(t, h("0x0e4989c785bbef4f0e00a144f700bf1350f9e8556f9342286d71219bc9045914"), result.SafeTxHash)
	assert.Empty(t, result.Warnings)
	assert.NotNil(t, result.Warnings)
	assert.Nil(t, result.NestedSafe)
	require.NotNil(t, result.TransactionData)
	assert.Equal(t, knownTransaction(), *result.TransactionData)
}

func TestCalculateSafeHashes_SuppliedTransaction(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("should not be called")}
	calc := NewCalculator(fetcher)
	tx := knownTransaction()

	result, err := calc.CalculateSafeHashes(context.Background(), Options{
		Network:         "sepolia",
		Address:         testSafe,
		TransactionData: &tx,
		Version:         "1.2.0",
	})
	require.NoError(t, err)
	assert.Zero(t, fetcher.calls)
	assert.Equal(t, h("0x301b81a8758bc6a3694eec554b34a1823b02383402ef1e66bfc0ebb9e6c9b3db"), result.SafeTxHash)

	// a matching nonce is accepted
	_, err = calc.CalculateSafeHashes(context.Background(), Options{
		Network:         "sepolia",
		Address:         testSafe,
		Nonce:           u64(1),
		TransactionData: &tx,
	})
	require.NoError(t, err)
}

func TestCalculateSafeHashes_Nested(t *testing.T) {
	calc := NewCalculator(&stubFetcher{record: knownRecord()})

	result, err := calc.CalculateSafeHashes(context.Background(), Options{
		Network:           "sepolia",
		Address:           testSafe,
		Nonce:             u64(1),
		NestedSafeAddress: testNestedSafe,
		NestedSafeNonce:   u64(5),
	})
	require.NoError(t, err)
	require.NotNil(t, result.NestedSafe)
	assert.Equal(t, HashTriple{
		DomainHash:  h("0xbdc1cacb7449d1a2fcbfeedc180ad05c4c9e4c2dab001fa1b73641fb1dfa0f89"),
		MessageHash: h("0xda59dd904011edd5b39c0d3c06d194c4c7889108c6b362f5c1647cfb07083dda"),
		SafeTxHash:  h("0x9f89cad74f00163137ac32711af7370341f2f054dd7d6e84a61d21de3fabc0e3"),
	}, *result.NestedSafe)

	// without a nested nonce no nested hashes are produced
	result, err = calc.CalculateSafeHashes(context.Background(), Options{
		Network:           "sepolia",
		Address:           testSafe,
		Nonce:             u64(1),
		NestedSafeAddress: testNestedSafe,
	})
	require.NoError(t, err)
	assert.Nil(t, result.NestedSafe)
}

func TestCalculateSafeHashes_Message(t *testing.T) {
	fetcher := &stubFetcher{}
	calc := NewCalculator(fetcher)

	result, err := calc.CalculateSafeHashes(context.Background(), Options{
		Network:           "sepolia",
		Address:           testSafe,
		Nonce:             u64(99),
		MessageContent:    "Hello, Safe!",
		NestedSafeAddress: testNestedSafe,
	})
	require.NoError(t, err)
	assert.Zero(t, fetcher.calls)
	assert.Nil(t, result.TransactionData)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, h("0x68518b7412b05cb185c5ac3351d0c6ce7e2ff2f7c2617af824ccbfc5bcf50500"), result.SafeTxHash)
	require.NotNil(t, result.NestedSafe)
	assert.Equal(t, h("0xb0859e2e60f921ea0a4acc1712551835b740bf624dc6feaccb508f49d9f8d172"), result.NestedSafe.MessageHash)
	assert.Equal(t, h("0x9043a98a0c08f0458819abdaced48469b29c69bcec4cc55fbf4c0db5fadd847c"), result.NestedSafe.SafeTxHash)
}

func TestCalculateSafeHashes_Warnings(t *testing.T) {
	tx := knownTransaction()
	tx.Operation = OperationDelegateCall
	tx.GasToken = customToken

	result, err := NewCalculator(nil).CalculateSafeHashes(context.Background(), Options{
		Network:         "sepolia",
		Address:         testSafe,
		TransactionData: &tx,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{UntrustedDelegateCallWarning(tx.To), WarnGasToken}, result.Warnings)

	// a custom trusted set silences the delegate call warning
	calc := NewCalculator(nil, WithTrustedTargets(NewAddressSet(common.HexToAddress(tx.To))))
	result, err = calc.CalculateSafeHashes(context.Background(), Options{
		Network:         "sepolia",
		Address:         testSafe,
		TransactionData: &tx,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{WarnGasToken}, result.Warnings)
}

func TestCalculateSafeHashes_ValidationErrors(t *testing.T) {
	tx := knownTransaction()

	testCases := []struct {
		name string
		opts Options
	}{
		{"missing network", Options{Address: testSafe, Nonce: u64(1)}},
		{"missing address", Options{Network: "sepolia", Nonce: u64(1)}},
		{"unknown network", Options{Network: "mainnet", Address: testSafe, Nonce: u64(1)}},
		{"malformed address", Options{Network: "sepolia", Address: "0x1234", Nonce: u64(1)}},
		{"bad checksum", Options{Network: "sepolia", Address: "0x0275e1208A4973bDC8D557C35637577b3447458A", Nonce: u64(1)}},
		{"malformed nested address", Options{Network: "sepolia", Address: testSafe, Nonce: u64(1), NestedSafeAddress: "0xnope"}},
		{"no nonce or transaction", Options{Network: "sepolia", Address: testSafe}},
		{"conflicting nonce", Options{Network: "sepolia", Address: testSafe, Nonce: u64(2), TransactionData: &tx}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := &stubFetcher{record: knownRecord()}
			_, err := NewCalculator(fetcher).CalculateSafeHashes(context.Background(), tc.opts)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, CodeValidation, vErr.Code())
			assert.Zero(t, fetcher.calls)
		})
	}
}

func TestCalculateSafeHashes_ResolutionErrors(t *testing.T) {
	empty := &TransactionRecord{}
	wrongNonce := knownRecord()
	seven := Quantity("7")
	wrongNonce.Nonce = &seven

	testCases := []struct {
		name    string
		fetcher TransactionFetcher
	}{
		{"no fetcher", nil},
		{"fetch failure", &stubFetcher{err: errors.New("connection refused")}},
		{"nil record", &stubFetcher{}},
		{"record without nonce", &stubFetcher{record: empty}},
		{"nonce mismatch", &stubFetcher{record: wrongNonce}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCalculator(tc.fetcher).CalculateSafeHashes(context.Background(), Options{
				Network: "sepolia",
				Address: testSafe,
				Nonce:   u64(1),
			})
			var resErr *TransactionResolutionError
			require.True(t, errors.As(err, &resErr), "got %v", err)
			assert.Equal(t, CodeTransaction, resErr.Code())
		})
	}
}

func TestCalculateSafeHashes_FetchErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	_, err := NewCalculator(&stubFetcher{err: cause}).CalculateSafeHashes(context.Background(), Options{
		Network: "sepolia",
		Address: testSafe,
		Nonce:   u64(1),
	})
	assert.True(t, errors.Is(err, cause))
}

func TestCalculateSafeHashes_CreateRejected(t *testing.T) {
	tx := knownTransaction()
	tx.Operation = OperationCreate

	_, err := NewCalculator(nil).CalculateSafeHashes(context.Background(), Options{
		Network:         "sepolia",
		Address:         testSafe,
		TransactionData: &tx,
	})
	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr), "got %v", err)
}
