package safe

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRecord_Resolve(t *testing.T) {
	raw := `{
		"safeTxHash": "0x0e4989c785bbef4f0e00a144f700bf1350f9e8556f9342286d71219bc9045914",
		"to": "0x13613fb95931D7cC2F1ae3E30e5090220f818032",
		"value": "0",
		"data": "0xa9059cbb00000000000000000000000092714591205ab6956a2738a208b074bd8043182d0000000000000000000000000000000000000000000000000de0b6b3a7640000",
		"operation": 0,
		"safeTxGas": 0,
		"baseGas": "0",
		"gasPrice": "0",
		"gasToken": "0x0000000000000000000000000000000000000000",
		"refundReceiver": "0x0000000000000000000000000000000000000000",
		"nonce": 1
	}`

	var record TransactionRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &record))

	tx, err := record.Resolve()
	require.NoError(t, err)
	assert.Equal(t, knownTransaction(), tx)
}

func TestTransactionRecord_ResolveDefaults(t *testing.T) {
	var record TransactionRecord
	require.NoError(t, json.Unmarshal([]byte(`{"nonce": "3", "data": null, "to": null}`), &record))

	tx, err := record.Resolve()
	require.NoError(t, err)
	assert.Equal(t, SafeTransaction{
		To:             ZeroAddress,
		Value:          "0",
		Data:           "0x",
		Operation:      OperationCall,
		SafeTxGas:      "0",
		BaseGas:        "0",
		GasPrice:       "0",
		GasToken:       ZeroAddress,
		RefundReceiver: ZeroAddress,
		Nonce:          3,
	}, tx)
	assert.True(t, tx.IsNativeTransfer())
}

func TestTransactionRecord_ResolveErrors(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{"no nonce", `{"to": "0x13613fb95931D7cC2F1ae3E30e5090220f818032"}`},
		{"empty nonce", `{"nonce": ""}`},
		{"negative nonce", `{"nonce": "-1"}`},
		{"bad to", `{"nonce": 1, "to": "0x1234"}`},
		{"bad gas token", `{"nonce": 1, "gasToken": "nope"}`},
		{"bad value", `{"nonce": 1, "value": "ten"}`},
		{"bad data", `{"nonce": 1, "data": "0xabc"}`},
		{"bad operation", `{"nonce": 1, "operation": 300}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var record TransactionRecord
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &record))
			_, err := record.Resolve()
			var resErr *TransactionResolutionError
			require.True(t, errors.As(err, &resErr), "got %v", err)
			assert.Equal(t, CodeTransaction, resErr.Code())
		})
	}

	t.Run("nil record", func(t *testing.T) {
		var record *TransactionRecord
		_, err := record.Resolve()
		var resErr *TransactionResolutionError
		assert.True(t, errors.As(err, &resErr))
	})
}

func TestQuantity_UnmarshalJSON(t *testing.T) {
	var v struct {
		A Quantity `json:"a"`
		B Quantity `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1000000000000000000, "b": "42"}`), &v))
	assert.Equal(t, Quantity("1000000000000000000"), v.A)
	assert.Equal(t, Quantity("42"), v.B)

	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &v))
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "Call", OperationCall.String())
	assert.Equal(t, "DelegateCall", OperationDelegateCall.String())
	assert.Equal(t, "Create", OperationCreate.String())
	assert.Equal(t, "Operation(9)", Operation(9).String())
	assert.False(t, OperationCreate.Hashable())
}

func TestSafeTransaction_DataBytes(t *testing.T) {
	b, err := SafeTransaction{Data: "0x"}.DataBytes()
	require.NoError(t, err)
	assert.Empty(t, b)

	b, err = SafeTransaction{Data: "0xd4d9bdcd"}.DataBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xd4, 0xd9, 0xbd, 0xcd}, b)

	_, err = SafeTransaction{Data: "d4d9"}.DataBytes()
	assert.Error(t, err)
}
