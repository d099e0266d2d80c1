package notify

import (
	"context"
	"time"

	"github.com/echo-project/crisis-engine/internal/database"
)

// DashboardPayload is posted to the dashboard-update collaborator
type DashboardPayload struct {
	Type       string    `json:"type"`
	AlertID    string    `json:"alert_id"`
	IncidentID string    `json:"incident_id"`
	Severity   int       `json:"severity"`
	Summary    string    `json:"summary"`
	Location   *Location `json:"location"`
	Categories []string  `json:"categories"`
	Timestamp  string    `json:"timestamp"`
}

// DashboardPublisher pushes alert updates to the dashboard service
type DashboardPublisher struct {
	poster *httpPoster
}

// NewDashboardPublisher creates a publisher for the given base URL
func NewDashboardPublisher(baseURL string, timeout time.Duration) *DashboardPublisher {
	return &DashboardPublisher{poster: newHTTPPoster(baseURL+"/updates", timeout)}
}

// PublishNewAlert sends a new_alert update for the alert and its incident
func (p *DashboardPublisher) PublishNewAlert(ctx context.Context, alert *database.Alert, incident *database.Incident) error {
	payload := DashboardPayload{
		Type:       "new_alert",
		AlertID:    alert.ID,
		IncidentID: incident.ID,
		Severity:   alert.Severity,
		Summary:    alert.Summary,
		Location:   LocationFrom(alert.Lat, alert.Lng),
		Categories: incident.Categories,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
	return p.poster.postJSON(ctx, payload)
}
