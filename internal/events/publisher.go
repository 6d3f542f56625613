// Package events publishes the protocol's append-only audit records:
// Deposited, Withdrawn and AuthorizationUsed. Events are an observable
// side channel only; nothing in the protocol reads them back.
package events

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/config"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/metrics"
)

// NATS subjects, one per event type.
const (
	SubjectDeposited         = "securevault.vault.Deposited"
	SubjectWithdrawn         = "securevault.vault.Withdrawn"
	SubjectAuthorizationUsed = "securevault.auth.AuthorizationUsed"
)

// Envelope wraps every published event.
type Envelope struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// DepositedEvent mirrors the Deposited audit record.
type DepositedEvent struct {
	From   string `json:"from"`
	Amount string `json:"amount"`
}

// WithdrawnEvent mirrors the Withdrawn audit record.
type WithdrawnEvent struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// AuthorizationUsedEvent mirrors the AuthorizationUsed audit record.
type AuthorizationUsedEvent struct {
	Digest    string `json:"digest"`
	Vault     string `json:"vault"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// Publisher fans audit events out to NATS and to the in-process stream
// consumed by websocket clients. With no NATS URL configured it
// degrades to stream-only operation.
type Publisher struct {
	conn   *nats.Conn
	stream *Stream
	logger *logrus.Logger
}

// NewPublisher connects to NATS per cfg. An empty URL is not an error;
// it disables bus publication.
func NewPublisher(cfg config.NATSConfig, stream *Stream, logger *logrus.Logger) (*Publisher, error) {
	p := &Publisher{stream: stream, logger: logger}
	if cfg.URL == "" {
		logger.Info("NATS not configured, audit events stay in-process")
		return p, nil
	}

	connectTimeout := 10 * time.Second
	if cfg.Timeout > 0 {
		connectTimeout = time.Duration(cfg.Timeout) * time.Second
	}
	reconnectWait := 5 * time.Second
	if cfg.ReconnectWait > 0 {
		reconnectWait = time.Duration(cfg.ReconnectWait) * time.Second
	}
	maxReconnects := -1
	if cfg.MaxReconnects != 0 {
		maxReconnects = cfg.MaxReconnects
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			metrics.NATSConnectionStatus.Set(0)
			logger.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			metrics.NATSConnectionStatus.Set(1)
			logger.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}
	metrics.NATSConnectionStatus.Set(1)
	logger.WithField("url", cfg.URL).Info("NATS connected")

	p.conn = conn
	return p, nil
}

// Close drains the NATS connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// PublishDeposited emits Deposited{from, amount}.
func (p *Publisher) PublishDeposited(ctx context.Context, from common.Address, amount *big.Int) {
	p.publish(SubjectDeposited, "Deposited", DepositedEvent{
		From:   from.Hex(),
		Amount: amount.String(),
	})
}

// PublishWithdrawn emits Withdrawn{to, amount}.
func (p *Publisher) PublishWithdrawn(ctx context.Context, recipient common.Address, amount *big.Int) {
	p.publish(SubjectWithdrawn, "Withdrawn", WithdrawnEvent{
		To:     recipient.Hex(),
		Amount: amount.String(),
	})
}

// PublishAuthorizationUsed emits AuthorizationUsed{digest, vault,
// recipient, amount}.
func (p *Publisher) PublishAuthorizationUsed(ctx context.Context, digest common.Hash, vault, recipient common.Address, amount *big.Int) {
	p.publish(SubjectAuthorizationUsed, "AuthorizationUsed", AuthorizationUsedEvent{
		Digest:    digest.Hex(),
		Vault:     vault.Hex(),
		Recipient: recipient.Hex(),
		Amount:    amount.String(),
	})
}

func (p *Publisher) publish(subject, eventType string, data interface{}) {
	payload, err := json.Marshal(Envelope{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		metrics.EventsPublishFailed.WithLabelValues(eventType).Inc()
		p.logger.WithError(err).WithField("event_type", eventType).Error("failed to encode audit event")
		return
	}

	if p.stream != nil {
		p.stream.Broadcast(payload)
	}

	if p.conn != nil {
		if err := p.conn.Publish(subject, payload); err != nil {
			metrics.EventsPublishFailed.WithLabelValues(eventType).Inc()
			p.logger.WithError(err).WithField("subject", subject).Error("failed to publish audit event")
			return
		}
	}
	metrics.EventsPublished.WithLabelValues(eventType).Inc()
}
