package safe

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultVersion is assumed when the caller does not name a Safe version.
const DefaultVersion = "1.3.0"

// SupportedVersions lists the published Safe contract versions.
var SupportedVersions = []string{"1.0.0", "1.1.1", "1.2.0", "1.3.0", "1.4.1"}

// EIP-712 type hashes used by the Safe contracts.
var (
	// keccak256("EIP712Domain(uint256 chainId,address verifyingContract)")
	DomainSeparatorTypehash = common.HexToHash("0x47e79534a245952e8b16893a336b85a3d9ea9fa8c573f3d803afb92a79469218")
	// keccak256("EIP712Domain(address verifyingContract)")
	DomainSeparatorTypehashLegacy = common.HexToHash("0x035aff83d86937d35b32e04f0ddc6ff469290eef2f1b692d8a815c89404d4749")
	// keccak256("SafeTx(address to,uint256 value,bytes data,uint8 operation,uint256 safeTxGas,uint256 baseGas,uint256 gasPrice,address gasToken,address refundReceiver,uint256 nonce)")
	SafeTxTypehash = common.HexToHash("0xbb8310d486368db6bd6f849402fdd73ad53d316b5a4b2644ad6efe0f941286d8")
	// keccak256("SafeTx(address to,uint256 value,bytes data,uint8 operation,uint256 safeTxGas,uint256 dataGas,uint256 gasPrice,address gasToken,address refundReceiver,uint256 nonce)")
	SafeTxTypehashLegacy = common.HexToHash("0x14d461bc7412367e924637b363c7bf29b8f47e2f84869f4426e5633d8af47b20")
	// keccak256("SafeMessage(bytes message)")
	SafeMessageTypehash = common.HexToHash("0x60b3cbf8b4a223d68d641b3b6ddf9a298e7f33710cf3d3a9d1146b5a6150fbca")
)

// CleanVersion strips a build suffix such as "+L2".
func CleanVersion(version string) string {
	v, _, _ := strings.Cut(strings.TrimSpace(version), "+")
	return v
}

// CompareVersions orders two dotted versions component-wise and returns
// -1, 0 or 1. Missing trailing components count as 0, and so does any
// component that is not an unsigned decimal integer.
func CompareVersions(a, b string) int {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	n := len(pa)
	if len(pb) > n {
		n = len(pb)
	}
	for i := 0; i < n; i++ {
		x, y := versionPart(pa, i), versionPart(pb, i)
		if x < y {
			return -1
		}
		if x > y {
			return 1
		}
	}
	return 0
}

func versionPart(parts []string, i int) uint64 {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// versionProfile is everything the hash engine derives from a Safe version.
type versionProfile struct {
	domainTypehash common.Hash
	// legacyDomain omits chainId from the domain separator (<= 1.2.0).
	legacyDomain bool
	txTypehash   common.Hash
}

// profileFor is the only place that maps versions to hashing constants.
func profileFor(version string) versionProfile {
	v := CleanVersion(version)
	p := versionProfile{
		domainTypehash: DomainSeparatorTypehash,
		txTypehash:     SafeTxTypehash,
	}
	if CompareVersions(v, "1.2.0") <= 0 {
		p.domainTypehash = DomainSeparatorTypehashLegacy
		p.legacyDomain = true
	}
	if CompareVersions(v, "1.0.0") < 0 {
		p.txTypehash = SafeTxTypehashLegacy
	}
	return p
}
