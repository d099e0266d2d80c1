package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/echo-project/crisis-engine/internal/database"
	"github.com/echo-project/crisis-engine/internal/detect"
	"github.com/echo-project/crisis-engine/internal/metrics"
	"github.com/echo-project/crisis-engine/internal/utils"
)

// summaryMaxLen bounds the excerpt taken from the highest-priority report
const summaryMaxLen = 100

// IncidentService builds incident records from report sets and hands the
// severe ones to the escalation service.
type IncidentService struct {
	db        *gorm.DB
	scorer    *detect.SeverityScorer
	escalator *EscalationService
}

// NewIncidentService creates a new incident service
func NewIncidentService(db *gorm.DB, scorer *detect.SeverityScorer, escalator *EscalationService) *IncidentService {
	return &IncidentService{
		db:        db,
		scorer:    scorer,
		escalator: escalator,
	}
}

// CreateIncident persists a new incident aggregated from a non-empty set
// of reports, marks every member report processed and linked, and, when
// the computed severity reaches the urgence tier (>= 4), escalates an
// alert before returning. Escalation failures are logged, never
// propagated: the incident itself is already committed.
func (s *IncidentService) CreateIncident(ctx context.Context, reports []database.Report, sourceType database.IncidentSourceType) (string, error) {
	if len(reports) == 0 {
		return "", fmt.Errorf("cannot create an incident from zero reports")
	}

	severity, label := s.scorer.Score(reports)
	lat, lng := centroid(reports)

	incident := &database.Incident{
		ID:            uuid.New().String(),
		Summary:       deriveSummary(reports),
		Description:   fmt.Sprintf("Incident détecté via %s impliquant %d rapports", sourceType, len(reports)),
		Severity:      severity,
		SeverityLabel: label,
		Categories:    topCategories(reports, 3),
		Lat:           lat,
		Lng:           lng,
		Status:        database.IncidentStatusNew,
		ReportIDs:     reportIDs(reports),
		ReportCount:   len(reports),
		SourceType:    sourceType,
	}

	if err := s.db.Create(incident).Error; err != nil {
		return "", fmt.Errorf("failed to persist incident: %w", err)
	}
	log.Printf("IncidentService: created incident %s (severity %d, source %s, %d reports)", incident.ID, severity, sourceType, len(reports))
	metrics.IncidentsCreated.WithLabelValues(string(sourceType)).Inc()

	// Linking is idempotent: reapplying the same update is a no-op.
	err := s.db.Model(&database.Report{}).
		Where("id IN ?", []string(incident.ReportIDs)).
		Updates(map[string]interface{}{
			"processed":   true,
			"incident_id": incident.ID,
		}).Error
	if err != nil {
		return "", fmt.Errorf("failed to link reports to incident %s: %w", incident.ID, err)
	}

	if severity >= 4 {
		if _, err := s.escalator.EscalateIncident(ctx, incident); err != nil {
			log.Printf("IncidentService: escalation of incident %s failed: %v", incident.ID, err)
		}
	}

	return incident.ID, nil
}

// GetIncident retrieves an incident by ID
func (s *IncidentService) GetIncident(id string) (*database.Incident, error) {
	var incident database.Incident
	if err := s.db.First(&incident, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &incident, nil
}

// ListIncidents returns a page of incidents, newest first, optionally
// filtered by status, along with the total count.
func (s *IncidentService) ListIncidents(status database.IncidentStatus, offset, limit int) ([]database.Incident, int64, error) {
	query := s.db.Model(&database.Incident{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var incidents []database.Incident
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&incidents).Error; err != nil {
		return nil, 0, err
	}
	return incidents, total, nil
}

// ReportsByIDs loads the reports for a manual incident request. Every
// requested ID must exist.
func (s *IncidentService) ReportsByIDs(ids []string) ([]database.Report, error) {
	var reports []database.Report
	if err := s.db.Where("id IN ?", ids).Find(&reports).Error; err != nil {
		return nil, err
	}
	if len(reports) != len(ids) {
		return nil, fmt.Errorf("unknown report ids: found %d of %d", len(reports), len(ids))
	}
	return reports, nil
}

// deriveSummary excerpts the text of the highest-priority member report
func deriveSummary(reports []database.Report) string {
	best := reports[0]
	for _, r := range reports[1:] {
		if r.Priority > best.Priority {
			best = r
		}
	}
	return utils.TruncateText(best.Text, summaryMaxLen)
}

// topCategories tallies category tags across all reports and keeps the
// max most frequent, breaking ties by first-encountered order.
func topCategories(reports []database.Report, max int) database.StringList {
	counts := make(map[string]int)
	var order []string
	for _, r := range reports {
		for _, category := range r.Categories {
			if counts[category] == 0 {
				order = append(order, category)
			}
			counts[category]++
		}
	}

	// Stable selection sort over first-encounter order keeps ties fair.
	top := database.StringList{}
	for len(top) < max && len(order) > 0 {
		bestIdx := 0
		for i := range order {
			if counts[order[i]] > counts[order[bestIdx]] {
				bestIdx = i
			}
		}
		top = append(top, order[bestIdx])
		order = append(order[:bestIdx], order[bestIdx+1:]...)
	}
	return top
}

// centroid averages the coordinates of all geotagged members, or returns
// nils when none carry a location.
func centroid(reports []database.Report) (*float64, *float64) {
	var latSum, lngSum float64
	count := 0
	for _, r := range reports {
		if r.HasLocation() {
			latSum += *r.Lat
			lngSum += *r.Lng
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}
	lat := latSum / float64(count)
	lng := lngSum / float64(count)
	return &lat, &lng
}

func reportIDs(reports []database.Report) database.StringList {
	ids := make(database.StringList, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
	}
	return ids
}
