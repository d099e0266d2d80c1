package testhelpers

import (
	"time"

	"github.com/echo-project/crisis-engine/internal/database"
	"github.com/google/uuid"
)

// ReportBuilder builds Report instances for testing
type ReportBuilder struct {
	report database.Report
}

// NewReportBuilder creates a new report builder with defaults
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{
		report: database.Report{
			ID:             uuid.New().String(),
			Text:           "Signalement de test",
			ReportedAt:     time.Now(),
			Priority:       1,
			Categories:     database.StringList{},
			SentimentLabel: database.SentimentNeutral,
		},
	}
}

// WithID sets the report ID
func (b *ReportBuilder) WithID(id string) *ReportBuilder {
	b.report.ID = id
	return b
}

// WithText sets the report text
func (b *ReportBuilder) WithText(text string) *ReportBuilder {
	b.report.Text = text
	return b
}

// WithPriority sets the priority
func (b *ReportBuilder) WithPriority(priority int) *ReportBuilder {
	b.report.Priority = priority
	return b
}

// WithCategories sets the categories
func (b *ReportBuilder) WithCategories(categories ...string) *ReportBuilder {
	b.report.Categories = categories
	return b
}

// WithSentiment sets the sentiment label and score
func (b *ReportBuilder) WithSentiment(label database.SentimentLabel, score float64) *ReportBuilder {
	b.report.SentimentLabel = label
	b.report.SentimentScore = score
	return b
}

// WithLocation sets the report coordinates
func (b *ReportBuilder) WithLocation(lat, lng float64) *ReportBuilder {
	b.report.Lat = &lat
	b.report.Lng = &lng
	return b
}

// WithReportedAt sets the report timestamp
func (b *ReportBuilder) WithReportedAt(ts time.Time) *ReportBuilder {
	b.report.ReportedAt = ts
	return b
}

// Processed marks the report as already processed
func (b *ReportBuilder) Processed() *ReportBuilder {
	b.report.Processed = true
	return b
}

// Build returns the constructed report
func (b *ReportBuilder) Build() database.Report {
	return b.report
}

// IncidentBuilder builds Incident instances for testing
type IncidentBuilder struct {
	incident database.Incident
}

// NewIncidentBuilder creates a new incident builder with defaults
func NewIncidentBuilder() *IncidentBuilder {
	return &IncidentBuilder{
		incident: database.Incident{
			ID:            uuid.New().String(),
			Summary:       "Incident de test",
			Severity:      2,
			SeverityLabel: "Attention",
			Categories:    database.StringList{},
			Status:        database.IncidentStatusNew,
			SourceType:    database.SourceTypeManual,
			ReportIDs:     database.StringList{},
		},
	}
}

// WithID sets the incident ID
func (b *IncidentBuilder) WithID(id string) *IncidentBuilder {
	b.incident.ID = id
	return b
}

// WithSummary sets the summary
func (b *IncidentBuilder) WithSummary(summary string) *IncidentBuilder {
	b.incident.Summary = summary
	return b
}

// WithSeverity sets the severity level and label
func (b *IncidentBuilder) WithSeverity(level int, label string) *IncidentBuilder {
	b.incident.Severity = level
	b.incident.SeverityLabel = label
	return b
}

// WithCategories sets the categories
func (b *IncidentBuilder) WithCategories(categories ...string) *IncidentBuilder {
	b.incident.Categories = categories
	return b
}

// WithLocation sets the incident centroid
func (b *IncidentBuilder) WithLocation(lat, lng float64) *IncidentBuilder {
	b.incident.Lat = &lat
	b.incident.Lng = &lng
	return b
}

// WithSourceType sets how the incident was derived
func (b *IncidentBuilder) WithSourceType(st database.IncidentSourceType) *IncidentBuilder {
	b.incident.SourceType = st
	return b
}

// WithReports sets the member report IDs and count
func (b *IncidentBuilder) WithReports(ids ...string) *IncidentBuilder {
	b.incident.ReportIDs = ids
	b.incident.ReportCount = len(ids)
	return b
}

// Resolved marks the incident as resolved
func (b *IncidentBuilder) Resolved() *IncidentBuilder {
	b.incident.Status = database.IncidentStatusResolved
	return b
}

// Build returns the constructed incident
func (b *IncidentBuilder) Build() database.Incident {
	return b.incident
}

// AlertBuilder builds Alert instances for testing
type AlertBuilder struct {
	alert database.Alert
}

// NewAlertBuilder creates a new alert builder with defaults
func NewAlertBuilder() *AlertBuilder {
	return &AlertBuilder{
		alert: database.Alert{
			ID:         uuid.New().String(),
			IncidentID: uuid.New().String(),
			Severity:   4,
			Summary:    "Alerte de test",
			Contacts:   database.ContactList{},
			Status:     database.AlertStatusCreated,
		},
	}
}

// WithID sets the alert ID
func (b *AlertBuilder) WithID(id string) *AlertBuilder {
	b.alert.ID = id
	return b
}

// WithIncidentID sets the source incident
func (b *AlertBuilder) WithIncidentID(id string) *AlertBuilder {
	b.alert.IncidentID = id
	return b
}

// WithSeverity sets the severity level
func (b *AlertBuilder) WithSeverity(severity int) *AlertBuilder {
	b.alert.Severity = severity
	return b
}

// WithSummary sets the summary
func (b *AlertBuilder) WithSummary(summary string) *AlertBuilder {
	b.alert.Summary = summary
	return b
}

// WithStatus sets the lifecycle status
func (b *AlertBuilder) WithStatus(status database.AlertStatus) *AlertBuilder {
	b.alert.Status = status
	return b
}

// WithContacts sets the notified contacts
func (b *AlertBuilder) WithContacts(contacts ...database.EmergencyContact) *AlertBuilder {
	b.alert.Contacts = contacts
	return b
}

// Build returns the constructed alert
func (b *AlertBuilder) Build() database.Alert {
	return b.alert
}
