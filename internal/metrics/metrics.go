package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// KYCSubmissionsTotal counts KYC submissions by verification method
	KYCSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gsdc_kyc_submissions_total",
			Help: "Total number of KYC submissions",
		},
		[]string{"method"},
	)

	// StatusLookupsTotal counts reconciled status reads by resolved source
	StatusLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gsdc_kyc_status_lookups_total",
			Help: "Total number of reconciled status lookups",
		},
		[]string{"source", "status"},
	)

	// ReviewsTotal counts admin review outcomes
	ReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gsdc_kyc_reviews_total",
			Help: "Total number of admin review decisions",
		},
		[]string{"decision", "status"},
	)

	// ReviewDuration tracks end-to-end review workflow time
	ReviewDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gsdc_kyc_review_duration_seconds",
			Help:    "Review workflow duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"decision"},
	)

	// TransactionsSent counts on-chain updateKYCStatus transactions
	TransactionsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gsdc_chain_transactions_total",
			Help: "Total number of on-chain transactions sent",
		},
		[]string{"status"},
	)

	// GasUsed tracks gas used by confirmed transactions
	GasUsed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gsdc_chain_gas_used",
			Help:    "Gas used by confirmed transactions",
			Buckets: []float64{21000, 50000, 100000, 150000, 200000, 300000, 500000},
		},
		[]string{"operation"},
	)

	// TxErrorsTotal counts classified transaction errors
	TxErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gsdc_chain_tx_errors_total",
			Help: "Total number of classified transaction errors",
		},
		[]string{"kind"},
	)

	// SideCallsTotal counts best-effort side calls by step and outcome
	SideCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gsdc_review_side_calls_total",
			Help: "Total number of best-effort side calls",
		},
		[]string{"step", "status"},
	)

	// WebhookEventsTotal counts inbound provider webhook events
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gsdc_provider_webhook_events_total",
			Help: "Total number of inbound provider webhook events",
		},
		[]string{"type", "status"},
	)

	// EmailsTotal counts notification delivery attempts
	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gsdc_emails_total",
			Help: "Total number of notification delivery attempts",
		},
		[]string{"type", "status"},
	)
)
