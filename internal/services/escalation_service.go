package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/echo-project/crisis-engine/internal/database"
	"github.com/echo-project/crisis-engine/internal/directory"
	"github.com/echo-project/crisis-engine/internal/metrics"
)

// EmergencyNotifier delivers an alert to the emergency-notification
// collaborator. A 2xx response is success.
type EmergencyNotifier interface {
	NotifyAlert(ctx context.Context, alert *database.Alert) error
}

// DashboardPublisher pushes alert updates to the dashboard collaborator
type DashboardPublisher interface {
	PublishNewAlert(ctx context.Context, alert *database.Alert, incident *database.Incident) error
}

// AlertBroadcaster fans an escalated alert out to live feed subscribers
type AlertBroadcaster interface {
	BroadcastNewAlert(alert *database.Alert, incident *database.Incident)
}

// SlackPoster mirrors an alert to a chat channel
type SlackPoster interface {
	PostAlert(alert *database.Alert, incident *database.Incident) error
}

// EscalationService turns severe incidents into alerts and notifies the
// external collaborators. All outbound deliveries are best-effort and
// independent of each other: a failed notification never rolls back the
// alert and never reaches the aggregation caller.
type EscalationService struct {
	db          *gorm.DB
	directory   *directory.Directory
	emergency   EmergencyNotifier
	dashboard   DashboardPublisher
	slack       SlackPoster
	broadcaster AlertBroadcaster
}

// NewEscalationService creates an escalation service. The emergency,
// dashboard, slack and broadcaster collaborators may each be nil, which
// disables that channel.
func NewEscalationService(db *gorm.DB, dir *directory.Directory, emergency EmergencyNotifier, dashboard DashboardPublisher, slack SlackPoster, broadcaster AlertBroadcaster) *EscalationService {
	return &EscalationService{
		db:          db,
		directory:   dir,
		emergency:   emergency,
		dashboard:   dashboard,
		slack:       slack,
		broadcaster: broadcaster,
	}
}

// EscalateIncident creates an alert for a freshly created severe incident,
// resolves the emergency contacts for its categories, and performs the
// best-effort notifications. It returns the new alert ID.
func (s *EscalationService) EscalateIncident(ctx context.Context, incident *database.Incident) (string, error) {
	contacts := s.directory.ContactsFor(incident.Categories)

	alert := &database.Alert{
		ID:         uuid.New().String(),
		IncidentID: incident.ID,
		Severity:   incident.Severity,
		Summary:    incident.Summary,
		Lat:        incident.Lat,
		Lng:        incident.Lng,
		Contacts:   contacts,
		Status:     database.AlertStatusCreated,
	}

	if err := s.db.Create(alert).Error; err != nil {
		return "", fmt.Errorf("failed to persist alert for incident %s: %w", incident.ID, err)
	}
	log.Printf("EscalationService: created alert %s for incident %s (severity %d, %d contacts)", alert.ID, incident.ID, alert.Severity, len(contacts))
	metrics.AlertsEscalated.Inc()

	// Emergency notification: on success the alert becomes notified; on
	// failure it stays created, with no retry.
	if s.emergency != nil {
		if err := s.emergency.NotifyAlert(ctx, alert); err != nil {
			log.Printf("EscalationService: emergency notification for alert %s failed: %v", alert.ID, err)
			metrics.NotificationFailures.WithLabelValues("emergency").Inc()
		} else {
			if err := s.db.Model(alert).Update("status", database.AlertStatusNotified).Error; err != nil {
				log.Printf("EscalationService: failed to mark alert %s notified: %v", alert.ID, err)
			} else {
				alert.Status = database.AlertStatusNotified
			}
		}
	}

	// Dashboard update: failures are logged only, status is untouched.
	if s.dashboard != nil {
		if err := s.dashboard.PublishNewAlert(ctx, alert, incident); err != nil {
			log.Printf("EscalationService: dashboard update for alert %s failed: %v", alert.ID, err)
			metrics.NotificationFailures.WithLabelValues("dashboard").Inc()
		}
	}

	if s.slack != nil {
		if err := s.slack.PostAlert(alert, incident); err != nil {
			log.Printf("EscalationService: slack post for alert %s failed: %v", alert.ID, err)
			metrics.NotificationFailures.WithLabelValues("slack").Inc()
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastNewAlert(alert, incident)
	}

	return alert.ID, nil
}
