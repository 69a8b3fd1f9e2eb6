// Package safe computes the EIP-712 hashes a Safe (Gnosis Safe) owner signs:
// the domain separator, the SafeTx / SafeMessage struct hash and the final
// signable hash, for every published Safe version and for nested Safes.
//
// Everything in this package is a pure function of its arguments. Data that
// has to be fetched arrives through TransactionFetcher.
package safe

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Context identifies the Safe a hash is bound to.
type Context struct {
	ChainID     uint64 `json:"chainId"`
	SafeAddress string `json:"safeAddress"`
	// Version is the Safe contract version, e.g. "1.3.0" or "1.3.0+L2".
	Version string `json:"version"`
}

func (c Context) version() string {
	if c.Version == "" {
		return DefaultVersion
	}
	return c.Version
}

// HashTriple is the result of hashing one transaction or message.
// MessageHash is the EIP-712 struct hash; SafeTxHash is what owners sign.
type HashTriple struct {
	DomainHash  common.Hash `json:"domainHash"`
	MessageHash common.Hash `json:"messageHash"`
	SafeTxHash  common.Hash `json:"safeTransactionHash"`
}

// DomainTypehash returns the EIP712Domain typehash used by version.
func DomainTypehash(version string) common.Hash {
	return profileFor(version).domainTypehash
}

// DomainSeparator computes the Safe's EIP-712 domain separator. Versions up
// to 1.2.0 omit the chain id.
func DomainSeparator(c Context) (common.Hash, error) {
	return domainSeparator(c, profileFor(c.version()))
}

func domainSeparator(c Context, p versionProfile) (common.Hash, error) {
	if p.legacyDomain {
		return HashStruct(
			Bytes32Arg(p.domainTypehash),
			AddressArg(c.SafeAddress),
		)
	}
	return HashStruct(
		Bytes32Arg(p.domainTypehash),
		Uint256Arg(c.ChainID),
		AddressArg(c.SafeAddress),
	)
}

// ComputeTransactionHashes computes the SafeTx hashes of tx for the Safe in c.
//
//	safeTxHash = keccak256(0x19 ‖ 0x01 ‖ domainSeparator ‖
//	    keccak256(abi.encode(SAFE_TX_TYPEHASH, to, value, keccak256(data),
//	        operation, safeTxGas, baseGas, gasPrice, gasToken, refundReceiver, nonce)))
func ComputeTransactionHashes(c Context, tx SafeTransaction) (HashTriple, error) {
	if !tx.Operation.Hashable() {
		return HashTriple{}, validationErrorf("unsupported operation %s", tx.Operation)
	}
	tx = tx.withDefaults()
	p := profileFor(c.version())

	domainHash, err := domainSeparator(c, p)
	if err != nil {
		return HashTriple{}, err
	}

	data, err := tx.DataBytes()
	if err != nil {
		return HashTriple{}, &EncodingError{Type: "bytes", Value: tx.Data, Msg: err.Error()}
	}

	structHash, err := HashStruct(
		Bytes32Arg(p.txTypehash),
		AddressArg(tx.To),
		Uint256Arg(tx.Value),
		Bytes32Arg(Keccak256Hash(data)),
		Uint8Arg(tx.Operation),
		Uint256Arg(tx.SafeTxGas),
		Uint256Arg(tx.BaseGas),
		Uint256Arg(tx.GasPrice),
		AddressArg(tx.GasToken),
		AddressArg(tx.RefundReceiver),
		Uint256Arg(tx.Nonce),
	)
	if err != nil {
		return HashTriple{}, err
	}

	return HashTriple{
		DomainHash:  domainHash,
		MessageHash: structHash,
		SafeTxHash:  TypedDataHash(domainHash, structHash),
	}, nil
}

// PersonalMessageHash is the EIP-191 hash of message:
// keccak256("\x19Ethereum Signed Message:\n" + len(message) + message).
func PersonalMessageHash(message []byte) common.Hash {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return Keccak256Hash([]byte(prefix), message)
}

// safeMessageStructHash is the SafeMessage(bytes message) struct hash where
// the message bytes are the 32-byte hash h.
func safeMessageStructHash(h common.Hash) (common.Hash, error) {
	inner, err := HashStruct(Bytes32Arg(h))
	if err != nil {
		return common.Hash{}, err
	}
	return HashStruct(Bytes32Arg(SafeMessageTypehash), Bytes32Arg(inner))
}

// ComputeMessageHashes computes the SafeMessage hashes of an off-chain
// message (UTF-8) for the Safe in c.
func ComputeMessageHashes(c Context, message string) (HashTriple, error) {
	domainHash, err := DomainSeparator(c)
	if err != nil {
		return HashTriple{}, err
	}
	structHash, err := safeMessageStructHash(PersonalMessageHash([]byte(message)))
	if err != nil {
		return HashTriple{}, err
	}
	return HashTriple{
		DomainHash:  domainHash,
		MessageHash: structHash,
		SafeTxHash:  TypedDataHash(domainHash, structHash),
	}, nil
}
