package safe

import (
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeccak256(t *testing.T) {
	// Legacy Keccak, not SHA3-256 (which would be a7ffc6f8...).
	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(Keccak256()),
	)
	assert.Equal(t, Keccak256([]byte("ab")), Keccak256([]byte("a"), []byte("b")))
}

func TestTypehashConstants(t *testing.T) {
	testCases := []struct {
		name     string
		typeStr  string
		expected common.Hash
	}{
		{"domain", "EIP712Domain(uint256 chainId,address verifyingContract)", DomainSeparatorTypehash},
		{"domain legacy", "EIP712Domain(address verifyingContract)", DomainSeparatorTypehashLegacy},
		{"safe tx", "SafeTx(address to,uint256 value,bytes data,uint8 operation,uint256 safeTxGas,uint256 baseGas,uint256 gasPrice,address gasToken,address refundReceiver,uint256 nonce)", SafeTxTypehash},
		{"safe tx legacy", "SafeTx(address to,uint256 value,bytes data,uint8 operation,uint256 safeTxGas,uint256 dataGas,uint256 gasPrice,address gasToken,address refundReceiver,uint256 nonce)", SafeTxTypehashLegacy},
		{"safe message", "SafeMessage(bytes message)", SafeMessageTypehash},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Keccak256Hash([]byte(tc.typeStr)))
		})
	}
}

func TestApproveHashSelector(t *testing.T) {
	assert.Equal(t, "d4d9bdcd", hex.EncodeToString(approveHashSelector))
}

func TestEncode(t *testing.T) {
	h := common.HexToHash("0x47e79534a245952e8b16893a336b85a3d9ea9fa8c573f3d803afb92a79469218")

	enc, err := Encode(
		Bytes32Arg(h),
		Uint256Arg(uint64(11155111)),
		AddressArg("0x0275E1208A4973bDC8D557C35637577b3447458A"),
		Uint8Arg(OperationDelegateCall),
	)
	require.NoError(t, err)
	require.Len(t, enc, 4*32)

	assert.Equal(t, h.Bytes(), enc[:32])
	assert.Equal(t, strings.Repeat("00", 29)+"aa36a7", hex.EncodeToString(enc[32:64]))
	assert.Equal(t, strings.Repeat("00", 12)+"0275e1208a4973bdc8d557c35637577b3447458a", hex.EncodeToString(enc[64:96]))
	assert.Equal(t, strings.Repeat("00", 31)+"01", hex.EncodeToString(enc[96:]))
}

func TestEncode_ValueForms(t *testing.T) {
	want, err := Encode(Uint256Arg(big.NewInt(255)))
	require.NoError(t, err)

	for _, v := range []interface{}{"255", "0xff", uint64(255), 255, int64(255), uint8(255)} {
		got, err := Encode(Uint256Arg(v))
		require.NoError(t, err, "%T %v", v, v)
		assert.Equal(t, want, got, "%T %v", v, v)
	}

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	got, err := Encode(Uint256Arg(max))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ff", 32), hex.EncodeToString(got))

	b32 := strings.Repeat("ab", 32)
	got, err = Encode(Bytes32Arg("0x" + b32))
	require.NoError(t, err)
	assert.Equal(t, b32, hex.EncodeToString(got))
}

func TestEncode_Errors(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)

	testCases := []struct {
		name string
		arg  Arg
	}{
		{"address without prefix", AddressArg("0275E1208A4973bDC8D557C35637577b3447458A")},
		{"address too short", AddressArg("0x0275E1208A4973bDC8D557C35637577b344745")},
		{"address not hex", AddressArg("0x0275E1208A4973bDC8D557C35637577b3447458Z")},
		{"address bad checksum", AddressArg("0x0275e1208A4973bDC8D557C35637577b3447458A")},
		{"address wrong go type", AddressArg(42)},
		{"uint256 overflow", Uint256Arg(tooBig)},
		{"uint256 negative", Uint256Arg(int64(-1))},
		{"uint256 not a number", Uint256Arg("12abc")},
		{"uint256 empty", Uint256Arg("")},
		{"uint8 overflow", Uint8Arg(256)},
		{"bytes32 short", Bytes32Arg([]byte{1, 2, 3})},
		{"bytes32 bad hex", Bytes32Arg("0xzz")},
		{"unknown type", Arg{Type: "string", Value: "x"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Encode(tc.arg)
			require.Error(t, err)
			var encErr *EncodingError
			assert.True(t, errors.As(err, &encErr), "got %T", err)
			assert.Equal(t, CodeEncoding, encErr.Code())
		})
	}
}

func TestParseAddress_CaseForms(t *testing.T) {
	for _, s := range []string{
		"0x0275E1208A4973bDC8D557C35637577b3447458A",
		"0x0275e1208a4973bdc8d557c35637577b3447458a",
		"0x0275E1208A4973BDC8D557C35637577B3447458A",
	} {
		addr, err := ParseAddress(s)
		require.NoError(t, err, s)
		assert.Equal(t, "0x0275E1208A4973bDC8D557C35637577b3447458A", addr.Hex())
	}
}

func TestEncodeEIP712(t *testing.T) {
	domain := common.HexToHash("0x01")
	structHash := common.HexToHash("0x02")

	packed := EncodeEIP712(domain, structHash)
	require.Len(t, packed, 66)
	assert.Equal(t, byte(0x19), packed[0])
	assert.Equal(t, byte(0x01), packed[1])
	assert.Equal(t, domain.Bytes(), packed[2:34])
	assert.Equal(t, structHash.Bytes(), packed[34:])
	assert.Equal(t, Keccak256Hash(packed), TypedDataHash(domain, structHash))
}
