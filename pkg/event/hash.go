package event

import (
	"errors"
	"time"

	"github.com/luxfi/safehash/pkg/safe"
)

const (
	HashResultTopicBase = "safehash.results"
	HashResultTopic     = "safehash.results.*"
)

type ResultType string

const (
	ResultTypeSuccess ResultType = "success"
	ResultTypeError   ResultType = "error"
)

type Kind string

const (
	KindTransaction Kind = "transaction"
	KindMessage     Kind = "message"
)

// HashResultEvent is published once per hash request, whether it
// succeeded or not.
type HashResultEvent struct {
	RequestID   string     `json:"request_id"`
	Kind        Kind       `json:"kind"`
	Network     string     `json:"network"`
	SafeAddress string     `json:"safe_address"`
	Nonce       *uint64    `json:"nonce,omitempty"`
	ResultType  ResultType `json:"result_type"`
	ErrorCode   string     `json:"error_code,omitempty"`
	ErrorReason string     `json:"error_reason,omitempty"`

	DomainHash          string `json:"domain_hash,omitempty"`
	MessageHash         string `json:"message_hash,omitempty"`
	SafeTransactionHash string `json:"safe_transaction_hash,omitempty"`
	NestedSafeTxHash    string `json:"nested_safe_tx_hash,omitempty"`

	Warnings    []string  `json:"warnings,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Subject is the NATS subject the event goes to under base.
func (e *HashResultEvent) Subject(base string) string {
	return base + "." + e.Network
}

func KindOf(opts safe.Options) Kind {
	if opts.MessageContent != "" {
		return KindMessage
	}
	return KindTransaction
}

// CreateHashSuccess creates a successful hash event
func CreateHashSuccess(requestID string, opts safe.Options, result *safe.Result) *HashResultEvent {
	e := newEvent(requestID, opts)
	e.ResultType = ResultTypeSuccess
	e.DomainHash = result.DomainHash.Hex()
	e.MessageHash = result.MessageHash.Hex()
	e.SafeTransactionHash = result.SafeTxHash.Hex()
	if result.NestedSafe != nil {
		e.NestedSafeTxHash = result.NestedSafe.SafeTxHash.Hex()
	}
	if result.TransactionData != nil {
		n := result.TransactionData.Nonce
		e.Nonce = &n
	}
	e.Warnings = result.Warnings
	return e
}

// CreateHashFailure creates a failed hash event
func CreateHashFailure(requestID string, opts safe.Options, err error) *HashResultEvent {
	e := newEvent(requestID, opts)
	e.ResultType = ResultTypeError
	e.ErrorReason = err.Error()
	e.ErrorCode = ErrorCodeOf(err)
	return e
}

// ErrorCodeOf returns the stable code carried by err, or "INTERNAL_ERROR".
func ErrorCodeOf(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return "INTERNAL_ERROR"
}

func newEvent(requestID string, opts safe.Options) *HashResultEvent {
	return &HashResultEvent{
		RequestID:   requestID,
		Kind:        KindOf(opts),
		Network:     opts.Network,
		SafeAddress: opts.Address,
		Nonce:       opts.Nonce,
		PublishedAt: time.Now().UTC(),
	}
}
