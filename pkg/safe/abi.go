package safe

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ABIType is one of the static ABI types the struct encoder understands.
type ABIType string

const (
	TypeAddress ABIType = "address"
	TypeUint256 ABIType = "uint256"
	TypeUint8   ABIType = "uint8"
	TypeBytes32 ABIType = "bytes32"
)

var (
	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	maxUint8   = big.NewInt(255)
)

// Arg is a single (type, value) pair of an ABI tuple.
//
// Accepted values per type:
//
//	address  common.Address, string (0x-prefixed hex, EIP-55 checked when mixed case)
//	uint256  *big.Int, uint64, int, int64, Operation, string (decimal or 0x-hex)
//	uint8    same as uint256, bounded to 255
//	bytes32  common.Hash, [32]byte, []byte of length 32, string (0x + 64 hex)
type Arg struct {
	Type  ABIType
	Value interface{}
}

func AddressArg(v interface{}) Arg { return Arg{Type: TypeAddress, Value: v} }
func Uint256Arg(v interface{}) Arg { return Arg{Type: TypeUint256, Value: v} }
func Uint8Arg(v interface{}) Arg   { return Arg{Type: TypeUint8, Value: v} }
func Bytes32Arg(v interface{}) Arg { return Arg{Type: TypeBytes32, Value: v} }

// Encode ABI-encodes a tuple of static values: one 32-byte word per argument,
// addresses and integers right-aligned, bytes32 passed through.
func Encode(args ...Arg) ([]byte, error) {
	out := make([]byte, 0, 32*len(args))
	for _, a := range args {
		word, err := encodeWord(a)
		if err != nil {
			return nil, err
		}
		out = append(out, word...)
	}
	return out, nil
}

// HashStruct is keccak256(Encode(args...)).
func HashStruct(args ...Arg) (common.Hash, error) {
	enc, err := Encode(args...)
	if err != nil {
		return common.Hash{}, err
	}
	return Keccak256Hash(enc), nil
}

// EncodeEIP712 packs 0x19 ‖ 0x01 ‖ domainSeparator ‖ structHash without padding.
func EncodeEIP712(domainSeparator, structHash common.Hash) []byte {
	packed := make([]byte, 0, 2+2*common.HashLength)
	packed = append(packed, 0x19, 0x01)
	packed = append(packed, domainSeparator.Bytes()...)
	packed = append(packed, structHash.Bytes()...)
	return packed
}

// TypedDataHash is the EIP-712 signable hash of structHash under domainSeparator.
func TypedDataHash(domainSeparator, structHash common.Hash) common.Hash {
	return Keccak256Hash(EncodeEIP712(domainSeparator, structHash))
}

// ParseAddress parses a 0x-prefixed 20-byte hex address. Mixed-case input
// must carry a valid EIP-55 checksum; all-lower and all-upper are accepted.
func ParseAddress(s string) (common.Address, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return common.Address{}, &EncodingError{Type: TypeAddress, Value: s, Msg: "missing 0x prefix"}
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, &EncodingError{Type: TypeAddress, Value: s, Msg: "not a 20-byte hex address"}
	}
	addr := common.HexToAddress(s)
	body := s[2:]
	if strings.ToLower(body) != body && strings.ToUpper(body) != body {
		if addr.Hex()[2:] != body {
			return common.Address{}, &EncodingError{Type: TypeAddress, Value: s, Msg: "bad EIP-55 checksum"}
		}
	}
	return addr, nil
}

// IsAddress reports whether s passes ParseAddress.
func IsAddress(s string) bool {
	_, err := ParseAddress(s)
	return err == nil
}

// ParseUint256 parses a decimal or 0x-hex unsigned integer below 2^256.
func ParseUint256(s string) (*big.Int, error) {
	return parseUint(TypeUint256, s, maxUint256)
}

func parseUint(t ABIType, s string, max *big.Int) (*big.Int, error) {
	n := new(big.Int)
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		_, ok = n.SetString(s[2:], 16)
	} else {
		_, ok = n.SetString(s, 10)
	}
	if !ok || s == "" {
		return nil, &EncodingError{Type: t, Value: s, Msg: "not an integer"}
	}
	return checkRange(t, n, max)
}

func checkRange(t ABIType, n, max *big.Int) (*big.Int, error) {
	if n.Sign() < 0 {
		return nil, &EncodingError{Type: t, Value: n.String(), Msg: "negative"}
	}
	if n.Cmp(max) > 0 {
		return nil, &EncodingError{Type: t, Value: n.String(), Msg: "out of range"}
	}
	return n, nil
}

func encodeWord(a Arg) ([]byte, error) {
	switch a.Type {
	case TypeAddress:
		addr, err := toAddress(a.Value)
		if err != nil {
			return nil, err
		}
		return abi32(addr.Bytes()), nil
	case TypeUint256:
		n, err := toUint(a.Type, a.Value, maxUint256)
		if err != nil {
			return nil, err
		}
		return abiUint256(n), nil
	case TypeUint8:
		n, err := toUint(a.Type, a.Value, maxUint8)
		if err != nil {
			return nil, err
		}
		return abiUint256(n), nil
	case TypeBytes32:
		h, err := toBytes32(a.Value)
		if err != nil {
			return nil, err
		}
		return h.Bytes(), nil
	}
	return nil, &EncodingError{Type: a.Type, Value: fmt.Sprint(a.Value), Msg: "unsupported type"}
}

func toAddress(v interface{}) (common.Address, error) {
	switch x := v.(type) {
	case common.Address:
		return x, nil
	case *common.Address:
		if x == nil {
			break
		}
		return *x, nil
	case string:
		return ParseAddress(x)
	}
	return common.Address{}, &EncodingError{Type: TypeAddress, Value: fmt.Sprint(v), Msg: fmt.Sprintf("unsupported Go type %T", v)}
}

func toUint(t ABIType, v interface{}, max *big.Int) (*big.Int, error) {
	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			break
		}
		return checkRange(t, new(big.Int).Set(x), max)
	case uint64:
		return checkRange(t, new(big.Int).SetUint64(x), max)
	case uint8:
		return checkRange(t, new(big.Int).SetUint64(uint64(x)), max)
	case Operation:
		return checkRange(t, new(big.Int).SetUint64(uint64(x)), max)
	case int:
		return checkRange(t, big.NewInt(int64(x)), max)
	case int64:
		return checkRange(t, big.NewInt(x), max)
	case string:
		return parseUint(t, x, max)
	}
	return nil, &EncodingError{Type: t, Value: fmt.Sprint(v), Msg: fmt.Sprintf("unsupported Go type %T", v)}
}

func toBytes32(v interface{}) (common.Hash, error) {
	switch x := v.(type) {
	case common.Hash:
		return x, nil
	case [32]byte:
		return common.Hash(x), nil
	case []byte:
		if len(x) == common.HashLength {
			return common.BytesToHash(x), nil
		}
		return common.Hash{}, &EncodingError{Type: TypeBytes32, Value: hexutil.Encode(x), Msg: fmt.Sprintf("length %d, want 32", len(x))}
	case string:
		b, err := hexutil.Decode(x)
		if err != nil {
			return common.Hash{}, &EncodingError{Type: TypeBytes32, Value: x, Msg: err.Error()}
		}
		return toBytes32(b)
	}
	return common.Hash{}, &EncodingError{Type: TypeBytes32, Value: fmt.Sprint(v), Msg: fmt.Sprintf("unsupported Go type %T", v)}
}

// abi32 left-pads b to 32 bytes (Ethereum ABI fixed slot). Callers guarantee len(b) <= 32.
func abi32(b []byte) []byte {
	slot := make([]byte, 32)
	copy(slot[32-len(b):], b)
	return slot
}

// abiUint256 ABI-encodes a range-checked *big.Int as a 32-byte slot.
func abiUint256(n *big.Int) []byte {
	return abi32(n.Bytes())
}

// abiSelector returns the first 4 bytes of keccak256(signature).
func abiSelector(sig string) []byte {
	return Keccak256([]byte(sig))[:4]
}
