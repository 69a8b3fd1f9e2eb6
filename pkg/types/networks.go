package types

import (
	"slices"

	"github.com/samber/lo"
)

// NetworkCode identifies a supported EVM network, e.g. "ethereum" or "sepolia".
type NetworkCode string

const (
	NetworkArbitrum     NetworkCode = "arbitrum"
	NetworkAurora       NetworkCode = "aurora"
	NetworkAvalanche    NetworkCode = "avalanche"
	NetworkBase         NetworkCode = "base"
	NetworkBaseSepolia  NetworkCode = "base-sepolia"
	NetworkBerachain    NetworkCode = "berachain"
	NetworkBlast        NetworkCode = "blast"
	NetworkBSC          NetworkCode = "bsc"
	NetworkCelo         NetworkCode = "celo"
	NetworkEthereum     NetworkCode = "ethereum"
	NetworkGnosis       NetworkCode = "gnosis"
	NetworkGnosisChiado NetworkCode = "gnosis-chiado"
	NetworkInk          NetworkCode = "ink"
	NetworkLinea        NetworkCode = "linea"
	NetworkMantle       NetworkCode = "mantle"
	NetworkOptimism     NetworkCode = "optimism"
	NetworkPolygon      NetworkCode = "polygon"
	NetworkPolygonZkEVM NetworkCode = "polygon-zkevm"
	NetworkScroll       NetworkCode = "scroll"
	NetworkSepolia      NetworkCode = "sepolia"
	NetworkSonic        NetworkCode = "sonic"
	NetworkUnichain     NetworkCode = "unichain"
	NetworkWorldchain   NetworkCode = "worldchain"
	NetworkXLayer       NetworkCode = "xlayer"
	NetworkZkSync       NetworkCode = "zksync"
)

// Network is the static description of one supported chain.
type Network struct {
	Code    NetworkCode `json:"network"`
	ChainID uint64      `json:"chainId"`
	// ShortName is the EIP-3770 chain prefix used in Safe app URLs ("sep:0x...").
	ShortName string `json:"shortName"`
	// TxServiceURL is the Safe Transaction Service base URL.
	TxServiceURL string `json:"txServiceUrl"`
	// ExplorerAPIHost is the Etherscan-compatible API host, empty when ABI
	// lookups are not available for the network.
	ExplorerAPIHost string `json:"explorerApiHost,omitempty"`
}

var networks = map[NetworkCode]Network{
	NetworkArbitrum:     {NetworkArbitrum, 42161, "arb1", "https://safe-transaction-arbitrum.safe.global", "api.arbiscan.io"},
	NetworkAurora:       {NetworkAurora, 1313161554, "aurora", "https://safe-transaction-aurora.safe.global", ""},
	NetworkAvalanche:    {NetworkAvalanche, 43114, "avax", "https://safe-transaction-avalanche.safe.global", ""},
	NetworkBase:         {NetworkBase, 8453, "base", "https://safe-transaction-base.safe.global", "api.basescan.org"},
	NetworkBaseSepolia:  {NetworkBaseSepolia, 84532, "basesep", "https://safe-transaction-base-sepolia.safe.global", ""},
	NetworkBerachain:    {NetworkBerachain, 80094, "berachain", "https://safe-transaction-berachain.safe.global", ""},
	NetworkBlast:        {NetworkBlast, 81457, "blastmainnet", "https://safe-transaction-blast.safe.global", ""},
	NetworkBSC:          {NetworkBSC, 56, "bnb", "https://safe-transaction-bsc.safe.global", ""},
	NetworkCelo:         {NetworkCelo, 42220, "celo", "https://safe-transaction-celo.safe.global", ""},
	NetworkEthereum:     {NetworkEthereum, 1, "eth", "https://safe-transaction-mainnet.safe.global", "api.etherscan.io"},
	NetworkGnosis:       {NetworkGnosis, 100, "gno", "https://safe-transaction-gnosis-chain.safe.global", ""},
	NetworkGnosisChiado: {NetworkGnosisChiado, 10200, "chi", "https://safe-transaction-chiado.safe.global", ""},
	NetworkInk:          {NetworkInk, 57073, "ink", "https://safe-transaction-ink.safe.global", ""},
	NetworkLinea:        {NetworkLinea, 59144, "linea", "https://safe-transaction-linea.safe.global", ""},
	NetworkMantle:       {NetworkMantle, 5000, "mantle", "https://safe-transaction-mantle.safe.global", ""},
	NetworkOptimism:     {NetworkOptimism, 10, "oeth", "https://safe-transaction-optimism.safe.global", ""},
	NetworkPolygon:      {NetworkPolygon, 137, "matic", "https://safe-transaction-polygon.safe.global", ""},
	NetworkPolygonZkEVM: {NetworkPolygonZkEVM, 1101, "zkevm", "https://safe-transaction-zkevm.safe.global", ""},
	NetworkScroll:       {NetworkScroll, 534352, "scr", "https://safe-transaction-scroll.safe.global", ""},
	NetworkSepolia:      {NetworkSepolia, 11155111, "sep", "https://safe-transaction-sepolia.safe.global", "api-sepolia.etherscan.io"},
	NetworkSonic:        {NetworkSonic, 146, "sonic", "https://safe-transaction-sonic.safe.global", ""},
	NetworkUnichain:     {NetworkUnichain, 130, "unichain", "https://safe-transaction-unichain.safe.global", ""},
	NetworkWorldchain:   {NetworkWorldchain, 480, "wc", "https://safe-transaction-worldchain.safe.global", ""},
	NetworkXLayer:       {NetworkXLayer, 196, "okb", "https://safe-transaction-xlayer.safe.global", ""},
	NetworkZkSync:       {NetworkZkSync, 324, "zksync", "https://safe-transaction-zksync.safe.global", ""},
}

var networksByShortName = lo.SliceToMap(lo.Values(networks), func(n Network) (string, Network) {
	return n.ShortName, n
})

// LookupNetwork returns the network registered under code.
func LookupNetwork(code string) (Network, bool) {
	n, ok := networks[NetworkCode(code)]
	return n, ok
}

// LookupShortName returns the network with the given EIP-3770 short name.
func LookupShortName(shortName string) (Network, bool) {
	n, ok := networksByShortName[shortName]
	return n, ok
}

// IsNetworkSupported checks if a network code is supported
func IsNetworkSupported(network string) bool {
	_, ok := networks[NetworkCode(network)]
	return ok
}

// SupportedNetworks returns every registered network ordered by code.
func SupportedNetworks() []Network {
	list := lo.Values(networks)
	slices.SortFunc(list, func(a, b Network) int {
		if a.Code < b.Code {
			return -1
		}
		if a.Code > b.Code {
			return 1
		}
		return 0
	})
	return list
}
