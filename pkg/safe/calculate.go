package safe

import (
	"context"

	"github.com/luxfi/safehash/pkg/types"
)

// TransactionFetcher resolves the queued multisig transaction of a Safe by
// nonce, typically from the Safe Transaction Service.
type TransactionFetcher interface {
	FetchTransaction(ctx context.Context, network types.NetworkCode, safeAddress string, nonce uint64) (*TransactionRecord, error)
}

// Options selects what CalculateSafeHashes computes. A non-empty
// MessageContent selects the off-chain message path; otherwise a transaction
// is hashed, taken from TransactionData or fetched by Nonce.
type Options struct {
	Network           string           `json:"network"`
	Address           string           `json:"address"`
	Nonce             *uint64          `json:"nonce,omitempty"`
	NestedSafeAddress string           `json:"nestedSafeAddress,omitempty"`
	NestedSafeNonce   *uint64          `json:"nestedSafeNonce,omitempty"`
	MessageContent    string           `json:"messageContent,omitempty"`
	TransactionData   *SafeTransaction `json:"transactionData,omitempty"`
	Version           string           `json:"version,omitempty"`
	NestedSafeVersion string           `json:"nestedSafeVersion,omitempty"`
}

// Result bundles the primary hashes with the optional nested-Safe hashes, the
// transaction that was hashed and the heuristic warnings.
type Result struct {
	HashTriple
	NestedSafe      *HashTriple      `json:"nestedSafe,omitempty"`
	Warnings        []string         `json:"warnings"`
	TransactionData *SafeTransaction `json:"transactionData,omitempty"`
}

// Calculator is the entry point tying validation, transaction resolution,
// heuristics and hashing together. It is safe for concurrent use.
type Calculator struct {
	fetcher TransactionFetcher
	trusted AddressSet
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithTrustedTargets replaces the compiled-in trusted delegate-call set.
func WithTrustedTargets(set AddressSet) CalculatorOption {
	return func(c *Calculator) { c.trusted = set }
}

// NewCalculator creates a Calculator. fetcher may be nil, in which case only
// caller-supplied transactions and messages can be hashed.
func NewCalculator(fetcher TransactionFetcher, opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		fetcher: fetcher,
		trusted: TrustedDelegateCallTargets(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CalculateSafeHashes validates opts and computes the Safe hashes. It either
// returns a complete Result or an error; there are no partial results.
func (c *Calculator) CalculateSafeHashes(ctx context.Context, opts Options) (*Result, error) {
	network, err := validateOptions(opts)
	if err != nil {
		return nil, err
	}

	primary := Context{
		ChainID:     network.ChainID,
		SafeAddress: opts.Address,
		Version:     orDefault(opts.Version, DefaultVersion),
	}
	nestedVersion := orDefault(opts.NestedSafeVersion, DefaultVersion)

	if opts.MessageContent != "" {
		return calculateMessage(primary, opts.MessageContent, opts.NestedSafeAddress, nestedVersion)
	}

	tx, err := c.resolveTransaction(ctx, network, opts)
	if err != nil {
		return nil, err
	}

	warnings := Annotate(tx, c.trusted)

	hashes, err := ComputeTransactionHashes(primary, tx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		HashTriple:      hashes,
		Warnings:        warnings,
		TransactionData: &tx,
	}

	if opts.NestedSafeAddress != "" && opts.NestedSafeNonce != nil {
		nested := Context{
			ChainID:     network.ChainID,
			SafeAddress: opts.NestedSafeAddress,
			Version:     nestedVersion,
		}
		nestedHashes, err := ComputeNestedApproval(primary, hashes.SafeTxHash, nested, *opts.NestedSafeNonce)
		if err != nil {
			return nil, err
		}
		result.NestedSafe = &nestedHashes
	}
	return result, nil
}

func validateOptions(opts Options) (types.Network, error) {
	if opts.Network == "" || opts.Address == "" {
		return types.Network{}, validationErrorf("network and address parameters are required")
	}
	network, ok := types.LookupNetwork(opts.Network)
	if !ok {
		return types.Network{}, validationErrorf("invalid network: %s", opts.Network)
	}
	if !IsAddress(opts.Address) {
		return types.Network{}, validationErrorf("invalid address: %s", opts.Address)
	}
	if opts.NestedSafeAddress != "" && !IsAddress(opts.NestedSafeAddress) {
		return types.Network{}, validationErrorf("invalid nested Safe address: %s", opts.NestedSafeAddress)
	}
	return network, nil
}

func (c *Calculator) resolveTransaction(ctx context.Context, network types.Network, opts Options) (SafeTransaction, error) {
	if opts.TransactionData != nil {
		if opts.Nonce != nil && *opts.Nonce != opts.TransactionData.Nonce {
			return SafeTransaction{}, validationErrorf("nonce %d conflicts with transaction nonce %d", *opts.Nonce, opts.TransactionData.Nonce)
		}
		return opts.TransactionData.withDefaults(), nil
	}
	if opts.Nonce == nil {
		return SafeTransaction{}, validationErrorf("either nonce or transactionData must be provided for transaction hashing")
	}
	if c.fetcher == nil {
		return SafeTransaction{}, resolutionErrorf(nil, "no transaction source configured for nonce %d", *opts.Nonce)
	}

	record, err := c.fetcher.FetchTransaction(ctx, network.Code, opts.Address, *opts.Nonce)
	if err != nil {
		return SafeTransaction{}, resolutionErrorf(err, "failed to fetch transaction data")
	}
	tx, err := record.Resolve()
	if err != nil {
		return SafeTransaction{}, err
	}
	if tx.Nonce != *opts.Nonce {
		return SafeTransaction{}, resolutionErrorf(nil, "fetched transaction has nonce %d, requested %d", tx.Nonce, *opts.Nonce)
	}
	return tx, nil
}

func calculateMessage(primary Context, message, nestedSafeAddress, nestedVersion string) (*Result, error) {
	hashes, err := ComputeMessageHashes(primary, message)
	if err != nil {
		return nil, err
	}
	result := &Result{HashTriple: hashes, Warnings: []string{}}

	if nestedSafeAddress != "" {
		nested := Context{
			ChainID:     primary.ChainID,
			SafeAddress: nestedSafeAddress,
			Version:     nestedVersion,
		}
		nestedHashes, err := ComputeNestedMessageApproval(
			primary,
			PersonalMessageHash([]byte(message)),
			DomainTypehash(primary.Version),
			nested,
		)
		if err != nil {
			return nil, err
		}
		result.NestedSafe = &nestedHashes
	}
	return result, nil
}
