package safe

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// approveHashSelector is approveHash(bytes32), 0xd4d9bdcd.
var approveHashSelector = abiSelector("approveHash(bytes32)")

// ApproveHashData is the calldata of approveHash(h).
func ApproveHashData(h common.Hash) string {
	data := make([]byte, 0, len(approveHashSelector)+common.HashLength)
	data = append(data, approveHashSelector...)
	data = append(data, h.Bytes()...)
	return hexutil.Encode(data)
}

// ApproveHashTransaction is the call a nested Safe executes to approve
// parentHash on parentSafe on-chain.
func ApproveHashTransaction(parentSafe string, parentHash common.Hash, nonce uint64) SafeTransaction {
	return SafeTransaction{
		To:             parentSafe,
		Value:          "0",
		Data:           ApproveHashData(parentHash),
		Operation:      OperationCall,
		SafeTxGas:      "0",
		BaseGas:        "0",
		GasPrice:       "0",
		GasToken:       ZeroAddress,
		RefundReceiver: ZeroAddress,
		Nonce:          nonce,
	}
}

// ComputeNestedApproval hashes the approveHash transaction the nested Safe
// must sign so that it approves parentHash on the parent Safe. The result's
// SafeTxHash can be fed back in to walk further up an ownership chain.
func ComputeNestedApproval(parent Context, parentHash common.Hash, nested Context, nestedNonce uint64) (HashTriple, error) {
	return ComputeTransactionHashes(nested, ApproveHashTransaction(parent.SafeAddress, parentHash, nestedNonce))
}

// ComputeNestedMessageApproval hashes the SafeMessage a nested Safe signs to
// co-sign an off-chain message of the parent Safe. parentMessageHash is the
// EIP-191 hash of the original message.
//
// The parent's SafeMessage hash is rebuilt under the parent domain, then
// wrapped as a SafeMessage of the nested Safe. The order of the two EIP-712
// layers is significant.
func ComputeNestedMessageApproval(parent Context, parentMessageHash, parentDomainTypehash common.Hash, nested Context) (HashTriple, error) {
	nestedDomain, err := DomainSeparator(nested)
	if err != nil {
		return HashTriple{}, err
	}

	var parentDomain common.Hash
	if parentDomainTypehash == DomainSeparatorTypehashLegacy {
		parentDomain, err = HashStruct(Bytes32Arg(parentDomainTypehash), AddressArg(parent.SafeAddress))
	} else {
		parentDomain, err = HashStruct(Bytes32Arg(parentDomainTypehash), Uint256Arg(parent.ChainID), AddressArg(parent.SafeAddress))
	}
	if err != nil {
		return HashTriple{}, err
	}

	parentStruct, err := safeMessageStructHash(parentMessageHash)
	if err != nil {
		return HashTriple{}, err
	}
	parentSafeMessage := TypedDataHash(parentDomain, parentStruct)

	nestedStruct, err := safeMessageStructHash(parentSafeMessage)
	if err != nil {
		return HashTriple{}, err
	}
	return HashTriple{
		DomainHash:  nestedDomain,
		MessageHash: nestedStruct,
		SafeTxHash:  TypedDataHash(nestedDomain, nestedStruct),
	}, nil
}
