package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// StringList is a custom type for JSON-encoded string array columns
type StringList []string

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, sok := value.(string)
		if !sok {
			return errors.New("type assertion to []byte failed")
		}
		bytes = []byte(s)
	}
	if len(bytes) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

// EmergencyContact is a single entry of the emergency-services directory
type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ContactList is a custom type for JSON-encoded contact array columns
type ContactList []EmergencyContact

// Scan implements the sql.Scanner interface
func (l *ContactList) Scan(value interface{}) error {
	if value == nil {
		*l = ContactList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, sok := value.(string)
		if !sok {
			return errors.New("type assertion to []byte failed")
		}
		bytes = []byte(s)
	}
	if len(bytes) == 0 {
		*l = ContactList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Value implements the driver.Valuer interface
func (l ContactList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]EmergencyContact{})
	}
	return json.Marshal(l)
}

// SentimentLabel is the sentiment classification attached to a report upstream
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// Report is a raw citizen report delivered by the ingestion pipeline.
// The engine only ever flips Processed and sets IncidentID; reports are
// never created or deleted here.
type Report struct {
	ID             string         `gorm:"primaryKey;size:36" json:"report_id"`
	Text           string         `gorm:"type:text" json:"text"`
	ReportedAt     time.Time      `gorm:"not null;index" json:"reported_at"`
	Priority       int            `gorm:"not null;default:1" json:"priority"` // 1-5, assigned upstream
	Categories     StringList     `gorm:"type:jsonb" json:"categories"`
	SentimentLabel SentimentLabel `gorm:"type:varchar(20)" json:"sentiment_label"`
	SentimentScore float64        `json:"sentiment_score"`
	Lat            *float64       `json:"lat,omitempty"`
	Lng            *float64       `json:"lng,omitempty"`
	Processed      bool           `gorm:"not null;default:false;index" json:"processed"`
	IncidentID     *string        `gorm:"size:36;index" json:"incident_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// HasLocation reports whether the report carries usable coordinates
func (r *Report) HasLocation() bool {
	return r.Lat != nil && r.Lng != nil
}

// BeforeCreate defaults missing fields instead of rejecting the record
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.Priority < 1 {
		r.Priority = 1
	}
	if r.Categories == nil {
		r.Categories = StringList{}
	}
	if r.ReportedAt.IsZero() {
		r.ReportedAt = time.Now()
	}
	return nil
}

// IncidentStatus represents the status of an incident
type IncidentStatus string

const (
	IncidentStatusNew      IncidentStatus = "new"
	IncidentStatusResolved IncidentStatus = "resolved"
)

// IncidentSourceType tags how an incident was derived
type IncidentSourceType string

const (
	SourceTypeAnomaly    IncidentSourceType = "anomaly"
	SourceTypeGeoCluster IncidentSourceType = "geo_cluster"
	SourceTypeManual     IncidentSourceType = "manual"
)

// Incident is a grouped crisis candidate built from one or more reports
type Incident struct {
	ID            string             `gorm:"primaryKey;size:36" json:"incident_id"`
	Summary       string             `gorm:"type:text" json:"summary"`
	Description   string             `gorm:"type:text" json:"description"`
	Severity      int                `gorm:"not null" json:"severity"` // 1-5
	SeverityLabel string             `gorm:"type:varchar(20)" json:"severity_label"`
	Categories    StringList         `gorm:"type:jsonb" json:"categories"` // top 3 by frequency
	Lat           *float64           `json:"lat,omitempty"`                // centroid of member coordinates
	Lng           *float64           `json:"lng,omitempty"`
	Status        IncidentStatus     `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	AssignedTo    *string            `gorm:"size:36" json:"assigned_to,omitempty"`
	Resolution    *string            `gorm:"type:text" json:"resolution,omitempty"`
	ReportIDs     StringList         `gorm:"type:jsonb" json:"reports"`
	ReportCount   int                `gorm:"not null" json:"report_count"`
	SourceType    IncidentSourceType `gorm:"type:varchar(20);not null;index" json:"source_type"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// AlertStatus represents the lifecycle state of an alert
type AlertStatus string

const (
	AlertStatusCreated      AlertStatus = "created"
	AlertStatusNotified     AlertStatus = "notified"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// Alert is the escalation record for a severe incident (severity >= 4).
// An alert always references an existing incident; an incident has at
// most one alert.
type Alert struct {
	ID              string      `gorm:"primaryKey;size:36" json:"alert_id"`
	IncidentID      string      `gorm:"size:36;not null;uniqueIndex" json:"incident_id"`
	Severity        int         `gorm:"not null" json:"severity"` // copied from the incident at creation
	Summary         string      `gorm:"type:text" json:"summary"`
	Lat             *float64    `json:"lat,omitempty"`
	Lng             *float64    `json:"lng,omitempty"`
	Contacts        ContactList `gorm:"type:jsonb" json:"emergency_contacts"`
	Status          AlertStatus `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	AcknowledgedAt  *time.Time  `json:"acknowledged_at,omitempty"`
	AcknowledgedBy  *string     `gorm:"size:36" json:"acknowledged_by,omitempty"`
	ResolvedAt      *time.Time  `json:"resolved_at,omitempty"`
	ResolutionNotes *string     `gorm:"type:text" json:"resolution_notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName overrides for explicit table naming
func (Report) TableName() string {
	return "reports"
}

func (Incident) TableName() string {
	return "incidents"
}

func (Alert) TableName() string {
	return "alerts"
}
