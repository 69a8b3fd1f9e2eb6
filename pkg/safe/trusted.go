package safe

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

// TrustedTarget is a Safe library deployment that is expected to be the
// target of delegate calls.
type TrustedTarget struct {
	Contract string
	Version  string
	// Variant is the deployment flavour: canonical, eip155 or zksync.
	Variant string
	Address common.Address
}

// trustedDelegateTargets is the published Safe deployment set. Extend it here
// when new library versions ship.
var trustedDelegateTargets = []TrustedTarget{
	{"MultiSend", "1.1.1", "canonical", common.HexToAddress("0x8D29bE29923b68abfDD21e541b9374737B49cdAD")},
	{"MultiSend", "1.3.0", "canonical", common.HexToAddress("0xA238CBeb142c10Ef7Ad8442C6D1f9E89e07e7761")},
	{"MultiSend", "1.3.0", "eip155", common.HexToAddress("0x998739BFdAAdde7C933B942a68053933098f9EDa")},
	{"MultiSend", "1.3.0", "zksync", common.HexToAddress("0x0dFcccB95225ffB03c6FBB2559B530C2B7C8A912")},
	{"MultiSend", "1.4.1", "canonical", common.HexToAddress("0x38869bf66a61cF6bDB996A6aE40D5853Fd43B526")},

	{"MultiSendCallOnly", "1.3.0", "canonical", common.HexToAddress("0x40A2aCCbd92BCA938b02010E17A5b8929b49130D")},
	{"MultiSendCallOnly", "1.3.0", "eip155", common.HexToAddress("0xA1dabEF33b3B82c7814B6D82A79e50F4AC44102B")},
	{"MultiSendCallOnly", "1.3.0", "zksync", common.HexToAddress("0xf220D3b4DFb23C4ade8C88E526C1353AbAcbC38F")},
	{"MultiSendCallOnly", "1.4.1", "canonical", common.HexToAddress("0x9641d764fc13c8B624c04430C7356C1C7C8102e2")},

	{"SafeMigration", "1.4.1", "canonical", common.HexToAddress("0x526643F69b81B008F46d95CD5ced5eC0edFFDaC6")},

	{"SafeToL2Migration", "1.4.1", "canonical", common.HexToAddress("0xfF83F6335d8930cBad1c0D439A841f01888D9f69")},

	{"SignMessageLib", "1.3.0", "canonical", common.HexToAddress("0xA65387F16B013cf2Af4605Ad8aA5ec25a2cbA3a2")},
	{"SignMessageLib", "1.3.0", "eip155", common.HexToAddress("0x98FFBBF51bb33A056B08ddf711f289936AafF717")},
	{"SignMessageLib", "1.3.0", "zksync", common.HexToAddress("0x357147caf9C0cCa67DfA0CF5369318d8193c8407")},
	{"SignMessageLib", "1.4.1", "canonical", common.HexToAddress("0xd53cd0aB83D845Ac265BE939c57F53AD838012c9")},
}

// TrustedTargets returns a copy of the trusted delegate-call deployments,
// optionally restricted to the named contracts.
func TrustedTargets(contracts ...string) []TrustedTarget {
	if len(contracts) == 0 {
		return append([]TrustedTarget(nil), trustedDelegateTargets...)
	}
	return lo.Filter(trustedDelegateTargets, func(t TrustedTarget, _ int) bool {
		return lo.Contains(contracts, t.Contract)
	})
}

// AddressSet is an immutable set of addresses compared case-insensitively.
type AddressSet map[common.Address]struct{}

// NewAddressSet builds a set from addresses.
func NewAddressSet(addrs ...common.Address) AddressSet {
	return lo.SliceToMap(addrs, func(a common.Address) (common.Address, struct{}) {
		return a, struct{}{}
	})
}

// Contains reports whether the hex address s is in the set. Strings that are
// not addresses are never members.
func (s AddressSet) Contains(addr string) bool {
	if !common.IsHexAddress(addr) {
		return false
	}
	_, ok := s[common.HexToAddress(addr)]
	return ok
}

var defaultTrusted = NewAddressSet(lo.Map(trustedDelegateTargets, func(t TrustedTarget, _ int) common.Address {
	return t.Address
})...)

// TrustedDelegateCallTargets is the compiled-in trusted delegate-call set.
// The returned set must not be modified.
func TrustedDelegateCallTargets() AddressSet {
	return defaultTrusted
}
