package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v3"

	"github.com/luxfi/safehash/pkg/config"
	"github.com/luxfi/safehash/pkg/kvstore"
	"github.com/luxfi/safehash/pkg/logger"
	"github.com/luxfi/safehash/pkg/messaging"
	"github.com/luxfi/safehash/pkg/metrics"
	"github.com/luxfi/safehash/pkg/safe"
	"github.com/luxfi/safehash/pkg/safeapi"
	"github.com/luxfi/safehash/pkg/types"
	"github.com/luxfi/safehash/pkg/verify"
)

// loadConfig reads config.yaml and SAFEHASH_* variables and initialises
// the logger. Logging goes to stderr so stdout stays parseable.
func loadConfig(c *cli.Command) (*config.Config, error) {
	config.InitViperConfig()
	logger.Init(viper.GetString("environment"), c.Bool("debug") || viper.GetString("log_level") == "debug")
	return config.Load()
}

type deps struct {
	service   *verify.Service
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	cache     *kvstore.BadgerKVStore
	publisher messaging.Publisher
}

func (d *deps) Close() {
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			logger.Warn("Failed to close publisher", "error", err.Error())
		}
	}
	if d.cache != nil {
		if err := d.cache.Close(); err != nil {
			logger.Warn("Failed to close ABI cache", "error", err.Error())
		}
	}
}

type depsOptions struct {
	offline bool
	decode  bool
	// memoryCache keeps an in-memory ABI cache when no cache.path is set.
	memoryCache bool
	publish     bool
}

func buildDeps(cfg *config.Config, o depsOptions) (*deps, error) {
	d := &deps{registry: prometheus.NewRegistry(), publisher: messaging.NopPublisher{}}
	d.metrics = metrics.NewMetrics(d.registry)

	httpClient := &http.Client{Timeout: cfg.SafeAPI.Timeout}
	clientOpts := []safeapi.Option{
		safeapi.WithHTTPClient(httpClient),
		safeapi.WithRetry(cfg.SafeAPI.Attempts, cfg.SafeAPI.RetryDelay),
		safeapi.WithMetrics(d.metrics),
	}
	for network, url := range cfg.SafeAPI.TxServiceURLs {
		clientOpts = append(clientOpts, safeapi.WithBaseURL(types.NetworkCode(network), url))
	}

	var fetcher safe.TransactionFetcher
	if !o.offline {
		fetcher = safeapi.NewClient(clientOpts...)
	}

	var svcOpts []verify.Option
	svcOpts = append(svcOpts, verify.WithMetrics(d.metrics))

	if o.decode && !o.offline {
		if cfg.Cache.Path != "" || o.memoryCache {
			cache, err := kvstore.NewBadgerKVStore(kvstore.BadgerConfig{DBPath: cfg.Cache.Path, TTL: cfg.Cache.TTL})
			if err != nil {
				return nil, fmt.Errorf("open ABI cache: %w", err)
			}
			d.cache = cache
		}
		var cache kvstore.KVStore
		if d.cache != nil {
			cache = d.cache
		}
		// Explorer base URLs come from the network table, not the tx
		// service overrides.
		abiOpts := []safeapi.Option{
			safeapi.WithHTTPClient(httpClient),
			safeapi.WithRetry(cfg.SafeAPI.Attempts, cfg.SafeAPI.RetryDelay),
			safeapi.WithMetrics(d.metrics),
		}
		svcOpts = append(svcOpts, verify.WithABIFetcher(safeapi.NewABIClient(cfg.Explorer.APIKeys, cache, abiOpts...)))
	}

	if o.publish && cfg.NATS.URL != "" {
		pub, err := messaging.Connect(messaging.NATSConfig{
			URL:      cfg.NATS.URL,
			Subject:  cfg.NATS.Subject,
			Username: cfg.NATS.Username,
			Password: cfg.NATS.Password,
		}, d.metrics)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.publisher = pub
		svcOpts = append(svcOpts, verify.WithPublisher(pub))
		logger.Info("Publishing hash results to NATS", "url", cfg.NATS.URL, "subject", cfg.NATS.Subject)
	}

	d.service = verify.NewService(safe.NewCalculator(fetcher), svcOpts...)
	return d, nil
}
