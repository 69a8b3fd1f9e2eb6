package safeapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/luxfi/safehash/pkg/kvstore"
	"github.com/luxfi/safehash/pkg/logger"
	"github.com/luxfi/safehash/pkg/types"
)

const serviceExplorer = "explorer"

// ImplementationSlot is the EIP-1967 storage slot holding a proxy's
// implementation address.
const ImplementationSlot = "0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc"

// ContractABI is the verified ABI of a contract, resolved through its
// EIP-1967 proxy when there is one.
type ContractABI struct {
	Address string `json:"address" cbor:"1,keyasint"`
	// Implementation is set when Address is a proxy.
	Implementation string    `json:"implementation,omitempty" cbor:"2,keyasint,omitempty"`
	ABI            string    `json:"abi" cbor:"3,keyasint"`
	FetchedAt      time.Time `json:"fetchedAt" cbor:"4,keyasint"`
}

// ABIClient looks up verified contract ABIs on Etherscan-compatible
// explorers, caching results in a KVStore when one is configured.
type ABIClient struct {
	getter
	apiKeys  map[types.NetworkCode]string
	baseURLs map[types.NetworkCode]string
	cache    kvstore.KVStore
}

// NewABIClient creates an ABIClient. apiKeys maps network codes to explorer
// API keys; cache may be nil.
func NewABIClient(apiKeys map[string]string, cache kvstore.KVStore, opts ...Option) *ABIClient {
	o := buildOptions(opts)
	keys := make(map[types.NetworkCode]string, len(apiKeys))
	for k, v := range apiKeys {
		keys[types.NetworkCode(k)] = v
	}
	return &ABIClient{
		getter: getter{
			service:    serviceExplorer,
			httpClient: o.httpClient,
			retry:      o.retry,
			metrics:    o.metrics,
		},
		apiKeys:  keys,
		baseURLs: o.baseURLs,
		cache:    cache,
	}
}

// Supports reports whether ABI lookups are available for network.
func (c *ABIClient) Supports(network types.NetworkCode) bool {
	_, err := c.baseURL(network)
	return err == nil
}

func (c *ABIClient) baseURL(network types.NetworkCode) (string, error) {
	if u, ok := c.baseURLs[network]; ok {
		return u, nil
	}
	n, ok := types.LookupNetwork(string(network))
	if !ok || n.ExplorerAPIHost == "" {
		return "", &NetworkError{Service: serviceExplorer, Msg: fmt.Sprintf("ABI lookups are not supported on %s", network)}
	}
	return "https://" + n.ExplorerAPIHost, nil
}

func cacheKey(network types.NetworkCode, address string) string {
	return "abi:" + string(network) + ":" + strings.ToLower(address)
}

// FetchABI returns the ABI of address on network.
func (c *ABIClient) FetchABI(ctx context.Context, network types.NetworkCode, address string) (*ContractABI, error) {
	if !common.IsHexAddress(address) {
		return nil, &NetworkError{Service: serviceExplorer, Msg: fmt.Sprintf("invalid address: %s", address)}
	}
	base, err := c.baseURL(network)
	if err != nil {
		return nil, err
	}

	key := cacheKey(network, address)
	if c.cache != nil {
		var cached ContractABI
		err := kvstore.GetObject(c.cache, key, &cached)
		c.metrics.RecordCacheLookup(err == nil)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, kvstore.ErrNotFound) {
			logger.Warn("Ignoring unreadable ABI cache entry", "key", key, "error", err.Error())
		}
	}

	result := &ContractABI{Address: address, FetchedAt: time.Now().UTC()}
	target := address
	impl, err := c.implementation(ctx, network, base, address)
	if err != nil {
		return nil, err
	}
	if impl != "" {
		logger.Debug("Resolved proxy implementation", "proxy", address, "implementation", impl)
		result.Implementation = impl
		target = impl
	}

	abiJSON, err := c.getABI(ctx, network, base, target)
	if err != nil {
		return nil, err
	}
	result.ABI = abiJSON

	if c.cache != nil {
		if err := kvstore.PutObject(c.cache, key, result); err != nil {
			logger.Warn("Failed to cache ABI", "key", key, "error", err.Error())
		}
	}
	return result, nil
}

type explorerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

func (c *ABIClient) query(base string, network types.NetworkCode, params url.Values) string {
	if key := c.apiKeys[network]; key != "" {
		params.Set("apikey", key)
	}
	return base + "/api?" + params.Encode()
}

// implementation reads the EIP-1967 slot of address. It returns "" when
// the slot is empty.
func (c *ABIClient) implementation(ctx context.Context, network types.NetworkCode, base, address string) (string, error) {
	params := url.Values{}
	params.Set("module", "proxy")
	params.Set("action", "eth_getStorageAt")
	params.Set("address", address)
	params.Set("position", ImplementationSlot)
	params.Set("tag", "latest")

	var resp explorerResponse
	if err := c.getJSON(ctx, string(network), c.query(base, network, params), &resp); err != nil {
		return "", err
	}
	return implementationFromSlot(resp.Result), nil
}

func implementationFromSlot(word string) string {
	word = strings.TrimPrefix(strings.ToLower(word), "0x")
	if len(word) < 40 {
		return ""
	}
	addr := common.HexToAddress(word[len(word)-40:])
	if addr == (common.Address{}) {
		return ""
	}
	return addr.Hex()
}

func (c *ABIClient) getABI(ctx context.Context, network types.NetworkCode, base, address string) (string, error) {
	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getabi")
	params.Set("address", address)

	var resp explorerResponse
	if err := c.getJSON(ctx, string(network), c.query(base, network, params), &resp); err != nil {
		return "", err
	}
	if resp.Status != "1" {
		msg := resp.Result
		if msg == "" {
			msg = resp.Message
		}
		return "", &NetworkError{Service: serviceExplorer, Msg: fmt.Sprintf("failed to fetch ABI for %s: %s", address, msg)}
	}
	return resp.Result, nil
}
