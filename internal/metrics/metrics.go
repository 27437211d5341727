package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeploysTotal counts token deployments by outcome
	DeploysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viral_deploys_total",
			Help: "Total number of token deployment attempts",
		},
		[]string{"status"},
	)

	// DeployDuration tracks end-to-end deploy orchestration time
	DeployDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "viral_deploy_duration_seconds",
			Help:    "Deploy orchestration duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PaymentsTotal counts payment operations by provider and status
	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viral_payments_total",
			Help: "Total number of payment operations",
		},
		[]string{"provider", "status"},
	)

	// QuotaDenialsTotal counts quota check denials by reason
	QuotaDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viral_quota_denials_total",
			Help: "Total number of quota check denials",
		},
		[]string{"reason"},
	)

	// AttributionsTotal counts sponsorship attribution outcomes
	AttributionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viral_attributions_total",
			Help: "Total number of sponsorship attribution attempts",
		},
		[]string{"result"},
	)

	// GatewayRequestDuration tracks external gateway call latency
	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "viral_gateway_request_duration_seconds",
			Help:    "External gateway request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ReconcileSweepsTotal counts reconciliation sweeps by outcome
	ReconcileSweepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viral_reconcile_sweeps_total",
			Help: "Total number of pending-deploy reconciliation sweeps",
		},
		[]string{"status"},
	)
)
