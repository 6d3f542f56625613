// Package metrics exposes the service's prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DepositsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vault_deposits_total",
		Help: "Total number of accepted deposits",
	})

	WithdrawalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vault_withdrawals_total",
		Help: "Total number of settled withdrawals",
	})

	WithdrawalFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_withdrawal_failures_total",
			Help: "Total number of rejected withdrawal attempts",
		},
		[]string{"reason"},
	)

	AuthorizationsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_authorizations_consumed_total",
		Help: "Total number of authorizations verified and consumed",
	})

	AuthorizationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_authorization_failures_total",
			Help: "Total number of rejected authorization attempts",
		},
		[]string{"reason"},
	)

	VaultBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vault_balance",
		Help: "Current custodied balance in smallest native units",
	})

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_events_published_total",
			Help: "Total number of audit events published",
		},
		[]string{"event_type"},
	)

	EventsPublishFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_events_publish_failed_total",
			Help: "Total number of audit events that failed to publish",
		},
		[]string{"event_type"},
	)

	NATSConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vault_nats_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vault_websocket_clients",
		Help: "Number of connected websocket event-stream clients",
	})
)
