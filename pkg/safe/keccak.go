package safe

import (
	"hash"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// newKeccak256 returns a new legacy Keccak-256 hasher (Ethereum-compatible,
// not the finalized SHA3-256 padding).
func newKeccak256() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// Keccak256 hashes the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	h := newKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// Keccak256Hash is Keccak256 returning a common.Hash.
func Keccak256Hash(data ...[]byte) common.Hash {
	return common.BytesToHash(Keccak256(data...))
}
