// Package messaging publishes hash result events to NATS.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/luxfi/safehash/pkg/encoding"
	"github.com/luxfi/safehash/pkg/event"
	"github.com/luxfi/safehash/pkg/logger"
	"github.com/luxfi/safehash/pkg/metrics"
)

// Publisher delivers hash result events to subscribers.
type Publisher interface {
	PublishResult(ctx context.Context, e *event.HashResultEvent) error
	Close() error
}

// NATSConfig configures a NATSPublisher.
type NATSConfig struct {
	URL      string
	Subject  string
	Username string
	Password string
}

// NATSPublisher publishes events as JSON on core NATS. The subject is
// "{Subject}.{network}" and the request ID travels as the Nats-Msg-Id
// header so JetStream consumers can deduplicate.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
	metrics *metrics.Metrics
}

// Connect dials NATS and returns a publisher.
func Connect(cfg NATSConfig, m *metrics.Metrics) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("safehash"),
		nats.Timeout(10 * time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("Disconnected from NATS", "error", fmt.Sprint(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewNATSPublisher(nc, cfg.Subject, m), nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(nc *nats.Conn, subject string, m *metrics.Metrics) *NATSPublisher {
	if subject == "" {
		subject = event.HashResultTopicBase
	}
	return &NATSPublisher{nc: nc, subject: subject, metrics: m}
}

func (p *NATSPublisher) PublishResult(ctx context.Context, e *event.HashResultEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := e.Subject(p.subject)

	data, err := encoding.StructToJsonBytes(e)
	if err != nil {
		return fmt.Errorf("failed to marshal hash result event: %w", err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, e.RequestID)

	err = p.nc.PublishMsg(msg)
	p.metrics.RecordNATSPublish(p.subject, err)
	if err != nil {
		return fmt.Errorf("failed to publish hash result: %w", err)
	}

	logger.Debug("Published hash result", "subject", subject, "request_id", e.RequestID)
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

// NopPublisher discards every event. It is used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishResult(context.Context, *event.HashResultEvent) error { return nil }
func (NopPublisher) Close() error { return nil }
