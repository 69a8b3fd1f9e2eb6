package encoding

import (
	"github.com/fxamacker/cbor/v2"
)

// Core deterministic encoding keeps stored and published bytes stable for
// equal values.
var cborEncMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// StructToCborBytes converts a struct to deterministic CBOR bytes
func StructToCborBytes(v interface{}) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

// CborBytesToStruct converts CBOR bytes to a struct
func CborBytesToStruct(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}
