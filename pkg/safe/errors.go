package safe

import "fmt"

// Error codes shared with the HTTP and CLI surfaces.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeEncoding    = "ENCODING_ERROR"
	CodeTransaction = "TRANSACTION_ERROR"
)

// ValidationError reports bad or missing caller input: unknown network,
// malformed address, missing field, conflicting nonce and transaction.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Code returns the stable error code.
func (e *ValidationError) Code() string { return CodeValidation }

// EncodingError reports a value that cannot be represented in its ABI type.
type EncodingError struct {
	Type  ABIType
	Value string
	Msg   string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %q as %s: %s", e.Value, e.Type, e.Msg)
}

// Code returns the stable error code.
func (e *EncodingError) Code() string { return CodeEncoding }

// TransactionResolutionError reports a missing or malformed transaction
// record handed to the engine, including failures of the fetcher producing it.
type TransactionResolutionError struct {
	Msg string
	Err error
}

func (e *TransactionResolutionError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *TransactionResolutionError) Unwrap() error { return e.Err }

// Code returns the stable error code.
func (e *TransactionResolutionError) Code() string { return CodeTransaction }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func resolutionErrorf(err error, format string, args ...interface{}) error {
	return &TransactionResolutionError{Msg: fmt.Sprintf(format, args...), Err: err}
}
