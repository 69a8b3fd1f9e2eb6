// Package decoder turns Safe transaction calldata into a readable call
// description using the target contract's ABI.
package decoder

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/luxfi/safehash/pkg/safe"
)

var ErrNoSelector = errors.New("calldata shorter than a function selector")

// Param is one decoded argument.
type Param struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Call is a decoded contract call.
type Call struct {
	Name      string  `json:"name"`
	Signature string  `json:"signature"`
	Selector  string  `json:"selector"`
	Params    []Param `json:"params"`
}

// NativeTransfer describes a plain value transfer.
type NativeTransfer struct {
	To     string `json:"to"`
	Wei    string `json:"wei"`
	Amount string `json:"amount"`
}

// DecodeCall decodes data against the JSON ABI abiJSON.
func DecodeCall(abiJSON string, data []byte) (*Call, error) {
	if len(data) < 4 {
		return nil, ErrNoSelector
	}
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	method, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("selector %s: %w", hexutil.Encode(data[:4]), err)
	}
	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method.Sig, err)
	}

	call := &Call{
		Name:      method.RawName,
		Signature: method.Sig,
		Selector:  hexutil.Encode(method.ID),
		Params:    make([]Param, len(method.Inputs)),
	}
	for i, input := range method.Inputs {
		call.Params[i] = Param{Name: input.Name, Type: input.Type.String()}
		if i < len(values) {
			call.Params[i].Value = formatValue(values[i])
		}
	}
	return call, nil
}

// DecodeTransaction decodes tx.Data against abiJSON. Native transfers
// carry no calldata and return (nil, nil).
func DecodeTransaction(abiJSON string, tx safe.SafeTransaction) (*Call, error) {
	if tx.IsNativeTransfer() {
		return nil, nil
	}
	data, err := tx.DataBytes()
	if err != nil {
		return nil, err
	}
	return DecodeCall(abiJSON, data)
}

// DescribeNativeTransfer summarises a transaction without calldata.
func DescribeNativeTransfer(tx safe.SafeTransaction, symbol string) (*NativeTransfer, error) {
	amount, err := FormatEther(tx.Value)
	if err != nil {
		return nil, err
	}
	wei := tx.Value
	if wei == "" {
		wei = "0"
	}
	return &NativeTransfer{To: tx.To, Wei: wei, Amount: amount + " " + symbol}, nil
}

// FormatEther renders a wei amount in ether, always with a fractional part
// ("1.0", "0.5", "0.000000000000000001").
func FormatEther(wei string) (string, error) {
	if wei == "" {
		wei = "0"
	}
	n, err := safe.ParseUint256(wei)
	if err != nil {
		return "", err
	}
	s := decimal.NewFromBigInt(n, -18).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case common.Address:
		return x.Hex()
	case *big.Int:
		return x.String()
	case []byte:
		return hexutil.Encode(x)
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return "0x" + hex.EncodeToString(b)
		}
		fallthrough
	case reflect.Slice:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = formatValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case reflect.Struct:
		parts := make([]string, rv.NumField())
		for i := range parts {
			parts[i] = formatValue(rv.Field(i).Interface())
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return fmt.Sprint(v)
}
