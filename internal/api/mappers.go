package api

import "github.com/echo-project/crisis-engine/internal/database"

// AlertToListItem converts a database Alert to a compact list representation.
func AlertToListItem(a database.Alert) AlertListItem {
	return AlertListItem{
		ID:         a.ID,
		IncidentID: a.IncidentID,
		Severity:   a.Severity,
		Summary:    a.Summary,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
	}
}

// AlertsToListItems converts a slice of database Alerts to list items.
func AlertsToListItems(alerts []database.Alert) []AlertListItem {
	items := make([]AlertListItem, len(alerts))
	for i, a := range alerts {
		items[i] = AlertToListItem(a)
	}
	return items
}

// IncidentToListItem converts a database Incident to a compact list representation.
func IncidentToListItem(in database.Incident) IncidentListItem {
	return IncidentListItem{
		ID:            in.ID,
		Summary:       in.Summary,
		Severity:      in.Severity,
		SeverityLabel: in.SeverityLabel,
		Categories:    in.Categories,
		Status:        in.Status,
		SourceType:    in.SourceType,
		ReportCount:   in.ReportCount,
		CreatedAt:     in.CreatedAt,
	}
}

// IncidentsToListItems converts a slice of database Incidents to list items.
func IncidentsToListItems(incidents []database.Incident) []IncidentListItem {
	items := make([]IncidentListItem, len(incidents))
	for i, in := range incidents {
		items[i] = IncidentToListItem(in)
	}
	return items
}
