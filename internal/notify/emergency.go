package notify

import (
	"context"
	"time"

	"github.com/echo-project/crisis-engine/internal/database"
)

// EmergencyPayload is posted to the emergency-notification collaborator
type EmergencyPayload struct {
	AlertID   string                      `json:"alert_id"`
	Severity  int                         `json:"severity"`
	Summary   string                      `json:"summary"`
	Location  *Location                   `json:"location"`
	Contacts  []database.EmergencyContact `json:"contacts"`
	Timestamp string                      `json:"timestamp"`
}

// EmergencyNotifier posts alert payloads to the notification service
type EmergencyNotifier struct {
	poster *httpPoster
}

// NewEmergencyNotifier creates a notifier for the given base URL
func NewEmergencyNotifier(baseURL string, timeout time.Duration) *EmergencyNotifier {
	return &EmergencyNotifier{poster: newHTTPPoster(baseURL+"/emergency", timeout)}
}

// NotifyAlert sends the alert to the emergency-notification collaborator.
// Any non-2xx response or transport failure is returned as an error.
func (n *EmergencyNotifier) NotifyAlert(ctx context.Context, alert *database.Alert) error {
	payload := EmergencyPayload{
		AlertID:   alert.ID,
		Severity:  alert.Severity,
		Summary:   alert.Summary,
		Location:  LocationFrom(alert.Lat, alert.Lng),
		Contacts:  alert.Contacts,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	return n.poster.postJSON(ctx, payload)
}
