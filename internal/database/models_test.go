package database

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestStringList_ScanValue(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  int
	}{
		{"nil value", nil, 0},
		{"empty bytes", []byte{}, 0},
		{"json bytes", []byte(`["securite","sante"]`), 2},
		{"json string", `["incendie"]`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l StringList
			if err := l.Scan(tt.input); err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			if len(l) != tt.want {
				t.Errorf("expected %d elements, got %d", tt.want, len(l))
			}
		})
	}
}

func TestStringList_ValueNilEncodesEmptyArray(t *testing.T) {
	var l StringList
	v, err := l.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if string(v.([]byte)) != "[]" {
		t.Errorf("expected [], got %s", v)
	}
}

func TestContactList_RoundTrip(t *testing.T) {
	contacts := ContactList{
		{Name: "Police Nationale", Phone: "17", Email: "contact@police.fr"},
		{Name: "SAMU", Phone: "15", Email: "contact@samu.fr"},
	}

	v, err := contacts.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var decoded ContactList
	if err := decoded.Scan(v); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(decoded) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(decoded))
	}
	if decoded[0].Name != "Police Nationale" || decoded[0].Phone != "17" {
		t.Errorf("unexpected first contact: %+v", decoded[0])
	}
}

func TestReport_HasLocation(t *testing.T) {
	lat, lng := 45.7578, 4.8320

	r := Report{}
	if r.HasLocation() {
		t.Error("report without coordinates should not have a location")
	}

	r.Lat = &lat
	if r.HasLocation() {
		t.Error("report with only a latitude should not have a location")
	}

	r.Lng = &lng
	if !r.HasLocation() {
		t.Error("report with both coordinates should have a location")
	}
}

func TestReport_BeforeCreateDefaults(t *testing.T) {
	db := setupTestDB(t)

	r := Report{
		ID:       "report-defaults",
		Text:     "Coupure d'eau dans le quartier",
		Priority: 0,
	}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("failed to create report: %v", err)
	}

	var saved Report
	if err := db.First(&saved, "id = ?", "report-defaults").Error; err != nil {
		t.Fatalf("failed to reload report: %v", err)
	}

	if saved.Priority != 1 {
		t.Errorf("expected priority defaulted to 1, got %d", saved.Priority)
	}
	if saved.Categories == nil {
		t.Error("expected categories defaulted to empty list")
	}
	if saved.ReportedAt.IsZero() {
		t.Error("expected reported_at defaulted to now")
	}
	if time.Since(saved.ReportedAt) > time.Minute {
		t.Errorf("defaulted reported_at too far in the past: %v", saved.ReportedAt)
	}
}

func TestIncident_Persistence(t *testing.T) {
	db := setupTestDB(t)

	lat, lng := 45.7578, 4.8320
	incident := Incident{
		ID:            "incident-1",
		Summary:       "Incendie signalé rue de la République",
		Severity:      4,
		SeverityLabel: "Urgence",
		Categories:    StringList{"incendie", "securite"},
		Lat:           &lat,
		Lng:           &lng,
		Status:        IncidentStatusNew,
		ReportIDs:     StringList{"r1", "r2", "r3"},
		ReportCount:   3,
		SourceType:    SourceTypeGeoCluster,
	}
	if err := db.Create(&incident).Error; err != nil {
		t.Fatalf("failed to create incident: %v", err)
	}

	var saved Incident
	if err := db.First(&saved, "id = ?", "incident-1").Error; err != nil {
		t.Fatalf("failed to reload incident: %v", err)
	}

	if len(saved.Categories) != 2 || saved.Categories[0] != "incendie" {
		t.Errorf("categories not persisted correctly: %v", saved.Categories)
	}
	if len(saved.ReportIDs) != 3 {
		t.Errorf("expected 3 report IDs, got %d", len(saved.ReportIDs))
	}
	if saved.SourceType != SourceTypeGeoCluster {
		t.Errorf("expected source type geo_cluster, got %s", saved.SourceType)
	}
}

func TestAlert_IncidentUniqueness(t *testing.T) {
	db := setupTestDB(t)

	first := Alert{
		ID:         "alert-1",
		IncidentID: "incident-1",
		Severity:   4,
		Summary:    "Alerte test",
		Status:     AlertStatusCreated,
	}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("failed to create alert: %v", err)
	}

	duplicate := Alert{
		ID:         "alert-2",
		IncidentID: "incident-1",
		Severity:   5,
		Summary:    "Alerte doublon",
		Status:     AlertStatusCreated,
	}
	if err := db.Create(&duplicate).Error; err == nil {
		t.Error("expected unique index violation for second alert on same incident")
	}
}
