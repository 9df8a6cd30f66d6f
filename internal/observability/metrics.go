// Package observability registers the process-wide Prometheus collectors.
// Every front end exposes them on /metrics; the counters live here so the
// application layer does not depend on any HTTP adapter.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CreditsSpent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genius_credits_spent_total",
		Help: "Credits debited across all accounts.",
	})

	CreditsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genius_credits_granted_total",
		Help: "Credits granted across all accounts, rollbacks included.",
	})

	PurchasesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genius_purchase_requests_created_total",
		Help: "Purchase requests opened from any channel.",
	})

	PurchasesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genius_purchase_requests_resolved_total",
		Help: "Purchase requests moved to a terminal status.",
	}, []string{"status"})

	DownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genius_downloads_total",
		Help: "Download attempts by mode and outcome.",
	}, []string{"mode", "outcome"})

	NotificationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genius_notification_fallbacks_total",
		Help: "Notifications that degraded from the chat channel to the web queue.",
	})
)
