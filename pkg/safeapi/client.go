package safeapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/luxfi/safehash/pkg/logger"
	"github.com/luxfi/safehash/pkg/metrics"
	"github.com/luxfi/safehash/pkg/safe"
	"github.com/luxfi/safehash/pkg/types"
)

const serviceTxService = "tx_service"

// Client fetches queued multisig transactions from the Safe Transaction
// Service. It implements safe.TransactionFetcher.
type Client struct {
	getter
	baseURLs map[types.NetworkCode]string
}

var _ safe.TransactionFetcher = (*Client)(nil)

// Option configures a Client or an ABIClient.
type Option func(*options)

type options struct {
	httpClient *http.Client
	retry      retryPolicy
	metrics    *metrics.Metrics
	baseURLs   map[types.NetworkCode]string
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRetry sets the attempt count (at least one) and the initial backoff.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(o *options) {
		if attempts == 0 {
			attempts = 1
		}
		o.retry = retryPolicy{attempts: attempts, delay: delay}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithBaseURL overrides the service base URL for one network.
func WithBaseURL(network types.NetworkCode, baseURL string) Option {
	return func(o *options) { o.baseURLs[network] = strings.TrimRight(baseURL, "/") }
}

func buildOptions(opts []Option) options {
	o := options{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry:      defaultRetry,
		baseURLs:   map[types.NetworkCode]string{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewClient creates a Transaction Service client using the per-network
// service URLs unless overridden.
func NewClient(opts ...Option) *Client {
	o := buildOptions(opts)
	return &Client{
		getter: getter{
			service:    serviceTxService,
			httpClient: o.httpClient,
			retry:      o.retry,
			metrics:    o.metrics,
		},
		baseURLs: o.baseURLs,
	}
}

func (c *Client) baseURL(network types.NetworkCode) (string, error) {
	if u, ok := c.baseURLs[network]; ok {
		return u, nil
	}
	n, ok := types.LookupNetwork(string(network))
	if !ok {
		return "", &NetworkError{Service: serviceTxService, Msg: fmt.Sprintf("invalid network: %s", network)}
	}
	return n.TxServiceURL, nil
}

type multisigTransactionsResponse struct {
	Count   int                       `json:"count"`
	Results []*safe.TransactionRecord `json:"results"`
}

// FetchTransaction returns the first multisig transaction the service holds
// for safeAddress at nonce.
func (c *Client) FetchTransaction(ctx context.Context, network types.NetworkCode, safeAddress string, nonce uint64) (*safe.TransactionRecord, error) {
	base, err := c.baseURL(network)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/api/v2/safes/%s/multisig-transactions/?nonce=%d", base, url.PathEscape(safeAddress), nonce)

	var resp multisigTransactionsResponse
	if err := c.getJSON(ctx, string(network), u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 || resp.Results[0] == nil {
		return nil, &NetworkError{Service: serviceTxService, Status: http.StatusNotFound, Msg: fmt.Sprintf("No transaction found with nonce %d", nonce)}
	}
	if len(resp.Results) > 1 {
		logger.Warn("Multiple transactions share a nonce, using the first",
			"network", network, "safe", safeAddress, "nonce", nonce, "count", len(resp.Results))
	}
	return resp.Results[0], nil
}
