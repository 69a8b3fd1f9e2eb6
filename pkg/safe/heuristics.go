package safe

import (
	"fmt"
	"math/big"
)

// Warning texts emitted by Annotate.
const (
	WarnGasTokenAndRefundReceiver = "WARNING: This transaction uses a custom gas token and a custom refund receiver. " +
		"This combination can be used to hide a rerouting of funds through gas refunds."
	WarnNonZeroGasPrice = "Furthermore, the gas price is non-zero, which increases the potential for hidden value transfers."
	WarnGasToken        = "WARNING: This transaction uses a custom gas token. Please verify that this is intended."
	WarnRefundReceiver  = "WARNING: This transaction uses a custom refund receiver. Please verify that this is intended."
)

// UntrustedDelegateCallWarning is the warning for a delegate call to target.
func UntrustedDelegateCallWarning(target string) string {
	return fmt.Sprintf("WARNING: The transaction includes an untrusted delegate call to address %s", target)
}

// Annotate inspects tx and returns advisory warnings in rule order. It never
// fails and never modifies tx. A nil trusted set trusts nothing.
func Annotate(tx SafeTransaction, trusted AddressSet) []string {
	warnings := []string{}

	if tx.Operation == OperationDelegateCall && !trusted.Contains(tx.To) {
		warnings = append(warnings, UntrustedDelegateCallWarning(tx.To))
	}

	customGasToken := !isZeroAddress(tx.GasToken)
	customRefundReceiver := !isZeroAddress(tx.RefundReceiver)
	switch {
	case customGasToken && customRefundReceiver:
		warnings = append(warnings, WarnGasTokenAndRefundReceiver)
		if !isZeroQuantity(tx.GasPrice) {
			warnings = append(warnings, WarnNonZeroGasPrice)
		}
	case customGasToken:
		warnings = append(warnings, WarnGasToken)
	case customRefundReceiver:
		warnings = append(warnings, WarnRefundReceiver)
	}
	return warnings
}

// isZeroQuantity treats empty as zero and anything unparsable as non-zero.
func isZeroQuantity(s string) bool {
	if s == "" {
		return true
	}
	n, err := ParseUint256(s)
	if err != nil {
		return false
	}
	return n.Cmp(big.NewInt(0)) == 0
}
