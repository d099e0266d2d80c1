package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/echo-project/crisis-engine/internal/database"
	"github.com/echo-project/crisis-engine/internal/detect"
	"github.com/echo-project/crisis-engine/internal/metrics"
	"github.com/echo-project/crisis-engine/internal/runlock"
	"github.com/echo-project/crisis-engine/internal/services"
	"github.com/echo-project/crisis-engine/internal/utils"
)

// Orchestrator defaults
const (
	DefaultWindowHours    = 24
	DefaultMinClusterSize = 3
)

// ReportProcessor is the periodic entry point of the engine: it pulls
// the unprocessed reports of a trailing window and drives the anomaly
// and geo-cluster passes over them.
type ReportProcessor struct {
	db             *gorm.DB
	detector       *detect.OutlierDetector
	incidents      *services.IncidentService
	lock           *runlock.Lock // nil disables locking
	windowHours    int
	maxDistanceKm  float64
	minClusterSize int
}

// NewReportProcessor creates a batch orchestrator
func NewReportProcessor(db *gorm.DB, detector *detect.OutlierDetector, incidents *services.IncidentService, lock *runlock.Lock, windowHours int, maxDistanceKm float64, minClusterSize int) *ReportProcessor {
	if windowHours <= 0 {
		windowHours = DefaultWindowHours
	}
	if maxDistanceKm <= 0 {
		maxDistanceKm = detect.DefaultMaxDistanceKm
	}
	if minClusterSize <= 0 {
		minClusterSize = DefaultMinClusterSize
	}
	return &ReportProcessor{
		db:             db,
		detector:       detector,
		incidents:      incidents,
		lock:           lock,
		windowHours:    windowHours,
		maxDistanceKm:  maxDistanceKm,
		minClusterSize: minClusterSize,
	}
}

// ProcessReports runs one batch: fetch, anomaly pass, geo-cluster pass.
// Both passes see the same original batch, so a report can become a
// member of an anomaly incident and a cluster incident in the same run;
// the two passes are independent signals. Incidents already created are
// never rolled back when a later step fails.
func (p *ReportProcessor) ProcessReports(ctx context.Context) error {
	acquired, err := p.lock.TryAcquire(ctx)
	if err != nil {
		metrics.BatchRuns.WithLabelValues("failed").Inc()
		return err
	}
	if !acquired {
		log.Printf("ReportProcessor: another run holds the lock, skipping")
		metrics.BatchRuns.WithLabelValues("locked").Inc()
		return nil
	}
	defer func() {
		if err := p.lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Printf("ReportProcessor: failed to release run lock: %v", err)
		}
	}()

	started := time.Now()
	log.Printf("ReportProcessor: starting batch run")

	batch, err := p.fetchRecentReports()
	if err != nil {
		metrics.BatchRuns.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to fetch unprocessed reports: %w", err)
	}
	if len(batch) == 0 {
		log.Printf("ReportProcessor: no recent reports to process")
		metrics.BatchRuns.WithLabelValues("empty").Inc()
		return nil
	}
	log.Printf("ReportProcessor: fetched %s unprocessed reports from the last %dh", utils.FormatNumber(len(batch)), p.windowHours)

	// Anomaly pass: one incident from the whole anomaly set.
	anomalies := p.detector.Detect(batch)
	if len(anomalies) > 0 {
		log.Printf("ReportProcessor: creating incident from %d anomalies", len(anomalies))
		if _, err := p.incidents.CreateIncident(ctx, anomalies, database.SourceTypeAnomaly); err != nil {
			metrics.BatchRuns.WithLabelValues("failed").Inc()
			return fmt.Errorf("anomaly incident creation failed: %w", err)
		}
		metrics.ReportsProcessed.Add(float64(len(anomalies)))
	}

	// Geo pass over the same original batch: one incident per cluster
	// that reaches the minimum size.
	for _, cluster := range detect.ClusterByLocation(batch, p.maxDistanceKm) {
		if len(cluster) < p.minClusterSize {
			continue
		}
		log.Printf("ReportProcessor: creating incident from a cluster of %d reports", len(cluster))
		if _, err := p.incidents.CreateIncident(ctx, cluster, database.SourceTypeGeoCluster); err != nil {
			metrics.BatchRuns.WithLabelValues("failed").Inc()
			return fmt.Errorf("geo-cluster incident creation failed: %w", err)
		}
		metrics.ReportsProcessed.Add(float64(len(cluster)))
	}

	metrics.BatchRuns.WithLabelValues("completed").Inc()
	log.Printf("ReportProcessor: batch run completed in %s", utils.FormatDuration(time.Since(started)))
	return nil
}

// fetchRecentReports pulls the unprocessed reports of the trailing
// window, oldest first.
func (p *ReportProcessor) fetchRecentReports() ([]database.Report, error) {
	cutoff := time.Now().Add(-time.Duration(p.windowHours) * time.Hour)

	var reports []database.Report
	err := p.db.
		Where("processed = ? AND reported_at >= ?", false, cutoff).
		Order("reported_at ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// Start begins periodic processing until stop is closed
func (p *ReportProcessor) Start(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.ProcessReports(context.Background()); err != nil {
				log.Printf("ReportProcessor: batch run failed: %v", err)
			}
		case <-stop:
			log.Println("ReportProcessor stopped")
			return
		}
	}
}
