// Package metrics exposes Prometheus counters for the detection and
// escalation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchRuns counts orchestrator runs by outcome
	BatchRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crisis_engine_batch_runs_total",
		Help: "Batch orchestrator runs by outcome (completed, empty, locked, failed).",
	}, []string{"outcome"})

	// ReportsProcessed counts reports consumed into incidents
	ReportsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crisis_engine_reports_processed_total",
		Help: "Reports marked processed by the batch orchestrator.",
	})

	// IncidentsCreated counts incidents by source type
	IncidentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crisis_engine_incidents_created_total",
		Help: "Incidents created, labeled by source type.",
	}, []string{"source_type"})

	// AlertsEscalated counts alerts created from severe incidents
	AlertsEscalated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crisis_engine_alerts_escalated_total",
		Help: "Alerts created for incidents at severity 4 or above.",
	})

	// NotificationFailures counts best-effort collaborator deliveries that failed
	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crisis_engine_notification_failures_total",
		Help: "Failed collaborator deliveries, labeled by collaborator (emergency, dashboard, slack).",
	}, []string{"collaborator"})
)
