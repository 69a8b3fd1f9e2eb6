package safe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroAddress is the "native token / no receiver" sentinel.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Operation is the Safe call mode.
type Operation uint8

const (
	OperationCall         Operation = 0
	OperationDelegateCall Operation = 1
	// OperationCreate is a display label only; the hash engine rejects it.
	OperationCreate Operation = 2
)

func (o Operation) String() string {
	switch o {
	case OperationCall:
		return "Call"
	case OperationDelegateCall:
		return "DelegateCall"
	case OperationCreate:
		return "Create"
	}
	return fmt.Sprintf("Operation(%d)", uint8(o))
}

// Hashable reports whether the engine defines an encoding for o.
func (o Operation) Hashable() bool {
	return o == OperationCall || o == OperationDelegateCall
}

// SafeTransaction is a queued Safe multisig transaction (EIP-712 SafeTx).
// Integers are decimal strings, addresses 0x-hex, data 0x-hex calldata,
// matching the Safe Transaction Service representation.
type SafeTransaction struct {
	To             string    `json:"to"`
	Value          string    `json:"value"`
	Data           string    `json:"data"`
	Operation      Operation `json:"operation"`
	SafeTxGas      string    `json:"safeTxGas"`
	BaseGas        string    `json:"baseGas"`
	GasPrice       string    `json:"gasPrice"`
	GasToken       string    `json:"gasToken"`
	RefundReceiver string    `json:"refundReceiver"`
	Nonce          uint64    `json:"nonce"`
}

// withDefaults returns a copy with empty optional fields set to their zero values.
func (tx SafeTransaction) withDefaults() SafeTransaction {
	if tx.To == "" {
		tx.To = ZeroAddress
	}
	tx.Value = orDefault(tx.Value, "0")
	tx.Data = orDefault(tx.Data, "0x")
	tx.SafeTxGas = orDefault(tx.SafeTxGas, "0")
	tx.BaseGas = orDefault(tx.BaseGas, "0")
	tx.GasPrice = orDefault(tx.GasPrice, "0")
	tx.GasToken = orDefault(tx.GasToken, ZeroAddress)
	tx.RefundReceiver = orDefault(tx.RefundReceiver, ZeroAddress)
	return tx
}

// DataBytes decodes the calldata. "0x" and "" decode to an empty slice.
func (tx SafeTransaction) DataBytes() ([]byte, error) {
	if tx.Data == "" || tx.Data == "0x" {
		return []byte{}, nil
	}
	b, err := hexutil.Decode(tx.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid data hex: %w", err)
	}
	return b, nil
}

// IsNativeTransfer reports a plain value transfer without calldata.
func (tx SafeTransaction) IsNativeTransfer() bool {
	return tx.Data == "" || tx.Data == "0x"
}

// Quantity is an unsigned integer that arrives either as a JSON number or
// as a JSON string.
type Quantity string

func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	*q = Quantity(n.String())
	return nil
}

// TransactionRecord is a multisig transaction as delivered by an external
// source. Every field is optional on the wire; Resolve applies defaults.
type TransactionRecord struct {
	SafeTxHash     *string   `json:"safeTxHash,omitempty"`
	To             *string   `json:"to"`
	Value          *Quantity `json:"value"`
	Data           *string   `json:"data"`
	Operation      *int      `json:"operation"`
	SafeTxGas      *Quantity `json:"safeTxGas"`
	BaseGas        *Quantity `json:"baseGas"`
	GasPrice       *Quantity `json:"gasPrice"`
	GasToken       *string   `json:"gasToken"`
	RefundReceiver *string   `json:"refundReceiver"`
	Nonce          *Quantity `json:"nonce"`
}

// Resolve validates the record shape and converts it to a SafeTransaction,
// defaulting absent values to zero. Failures are TransactionResolutionErrors.
func (r *TransactionRecord) Resolve() (SafeTransaction, error) {
	if r == nil {
		return SafeTransaction{}, resolutionErrorf(nil, "no transaction record")
	}
	if r.Nonce == nil || *r.Nonce == "" {
		return SafeTransaction{}, resolutionErrorf(nil, "transaction record has no nonce")
	}
	nonce, err := strconv.ParseUint(string(*r.Nonce), 10, 64)
	if err != nil {
		return SafeTransaction{}, resolutionErrorf(err, "invalid nonce %q", *r.Nonce)
	}

	tx := SafeTransaction{
		To:             strOr(r.To, ZeroAddress),
		Value:          quantityOr(r.Value, "0"),
		Data:           strOr(r.Data, "0x"),
		SafeTxGas:      quantityOr(r.SafeTxGas, "0"),
		BaseGas:        quantityOr(r.BaseGas, "0"),
		GasPrice:       quantityOr(r.GasPrice, "0"),
		GasToken:       strOr(r.GasToken, ZeroAddress),
		RefundReceiver: strOr(r.RefundReceiver, ZeroAddress),
		Nonce:          nonce,
	}
	if r.Operation != nil {
		if *r.Operation < 0 || *r.Operation > 255 {
			return SafeTransaction{}, resolutionErrorf(nil, "invalid operation %d", *r.Operation)
		}
		tx.Operation = Operation(*r.Operation)
	}

	for _, f := range [][2]string{{"to", tx.To}, {"gasToken", tx.GasToken}, {"refundReceiver", tx.RefundReceiver}} {
		if _, err := ParseAddress(f[1]); err != nil {
			return SafeTransaction{}, resolutionErrorf(err, "invalid %s", f[0])
		}
	}
	for _, f := range [][2]string{{"value", tx.Value}, {"safeTxGas", tx.SafeTxGas}, {"baseGas", tx.BaseGas}, {"gasPrice", tx.GasPrice}} {
		if _, err := ParseUint256(f[1]); err != nil {
			return SafeTransaction{}, resolutionErrorf(err, "invalid %s", f[0])
		}
	}
	if _, err := tx.DataBytes(); err != nil {
		return SafeTransaction{}, resolutionErrorf(err, "invalid data")
	}
	return tx, nil
}

func isZeroAddress(s string) bool {
	return s == "" || (common.IsHexAddress(s) && common.HexToAddress(s) == common.Address{})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func strOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return orDefault(*p, def)
}

func quantityOr(p *Quantity, def string) string {
	if p == nil {
		return def
	}
	return orDefault(string(*p), def)
}
