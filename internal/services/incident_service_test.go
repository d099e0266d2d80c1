package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/echo-project/crisis-engine/internal/database"
	"github.com/echo-project/crisis-engine/internal/detect"
	"github.com/echo-project/crisis-engine/internal/directory"
	"github.com/echo-project/crisis-engine/internal/testhelpers"
	"gorm.io/gorm"
)

func newIncidentService(db *gorm.DB) *IncidentService {
	escalator := NewEscalationService(db, directory.NewFromMap(nil), nil, nil, nil, nil)
	return NewIncidentService(db, detect.NewSeverityScorer(), escalator)
}

func seedReports(t *testing.T, db *gorm.DB, reports []database.Report) {
	t.Helper()
	for i := range reports {
		if err := db.Create(&reports[i]).Error; err != nil {
			t.Fatalf("failed to seed report %s: %v", reports[i].ID, err)
		}
	}
}

func TestCreateIncident_EmptySetRejected(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := newIncidentService(db)

	if _, err := svc.CreateIncident(context.Background(), nil, database.SourceTypeManual); err == nil {
		t.Error("expected an error for an empty report set")
	}
}

func TestCreateIncident_PersistsAndLinksReports(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := newIncidentService(db)

	now := time.Now()
	reports := []database.Report{
		testhelpers.NewReportBuilder().WithID("r1").
			WithText("Fuite d'eau importante rue Victor Hugo").
			WithPriority(3).
			WithCategories("infrastructure").
			WithLocation(45.7578, 4.8320).
			WithReportedAt(now.Add(-30 * time.Hour)).Build(),
		testhelpers.NewReportBuilder().WithID("r2").
			WithText("La chaussée est inondée").
			WithPriority(2).
			WithCategories("infrastructure", "environnement").
			WithLocation(45.7580, 4.8318).
			WithReportedAt(now.Add(-30 * time.Hour)).Build(),
	}
	seedReports(t, db, reports)

	id, err := svc.CreateIncident(context.Background(), reports, database.SourceTypeGeoCluster)
	if err != nil {
		t.Fatalf("CreateIncident failed: %v", err)
	}

	incident, err := svc.GetIncident(id)
	if err != nil {
		t.Fatalf("failed to reload incident: %v", err)
	}

	if incident.SourceType != database.SourceTypeGeoCluster {
		t.Errorf("expected source geo_cluster, got %s", incident.SourceType)
	}
	if incident.ReportCount != 2 || len(incident.ReportIDs) != 2 {
		t.Errorf("expected 2 member reports, got count=%d ids=%v", incident.ReportCount, incident.ReportIDs)
	}
	if incident.Status != database.IncidentStatusNew {
		t.Errorf("expected status new, got %s", incident.Status)
	}
	// Summary comes from the highest-priority report
	if !strings.Contains(incident.Summary, "Fuite d'eau") {
		t.Errorf("unexpected summary: %q", incident.Summary)
	}
	// Centroid of the two coordinates
	if incident.Lat == nil || *incident.Lat < 45.7578 || *incident.Lat > 45.7580 {
		t.Errorf("unexpected centroid latitude: %v", incident.Lat)
	}
	// infrastructure appears twice and must rank first
	if len(incident.Categories) == 0 || incident.Categories[0] != "infrastructure" {
		t.Errorf("unexpected categories: %v", incident.Categories)
	}

	var linked []database.Report
	if err := db.Where("incident_id = ?", id).Find(&linked).Error; err != nil {
		t.Fatalf("failed to load linked reports: %v", err)
	}
	if len(linked) != 2 {
		t.Fatalf("expected 2 linked reports, got %d", len(linked))
	}
	for _, r := range linked {
		if !r.Processed {
			t.Errorf("report %s not marked processed", r.ID)
		}
	}
}

func TestCreateIncident_SevereBatchEscalatesAlert(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := newIncidentService(db)

	now := time.Now()
	reports := []database.Report{
		testhelpers.NewReportBuilder().WithID("s1").
			WithText("URGENT incendie immeuble, danger immédiat, blessés").
			WithPriority(5).
			WithCategories("incendie").
			WithSentiment(database.SentimentNegative, -0.9).
			WithReportedAt(now).Build(),
		testhelpers.NewReportBuilder().WithID("s2").
			WithText("Feu visible, les secours sont demandés d'urgence").
			WithPriority(5).
			WithCategories("incendie", "securite").
			WithSentiment(database.SentimentNegative, -0.8).
			WithReportedAt(now).Build(),
		testhelpers.NewReportBuilder().WithID("s3").
			WithText("Accident et feu, plusieurs personnes en danger").
			WithPriority(4).
			WithCategories("incendie", "sante").
			WithSentiment(database.SentimentNegative, -0.7).
			WithReportedAt(now).Build(),
	}
	seedReports(t, db, reports)

	id, err := svc.CreateIncident(context.Background(), reports, database.SourceTypeAnomaly)
	if err != nil {
		t.Fatalf("CreateIncident failed: %v", err)
	}

	incident, err := svc.GetIncident(id)
	if err != nil {
		t.Fatalf("failed to reload incident: %v", err)
	}
	if incident.Severity < 4 {
		t.Fatalf("expected severity >= 4 for the severe batch, got %d", incident.Severity)
	}

	var alerts []database.Alert
	if err := db.Where("incident_id = ?", id).Find(&alerts).Error; err != nil {
		t.Fatalf("failed to load alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected exactly one alert, got %d", len(alerts))
	}
	if alerts[0].Severity != incident.Severity {
		t.Errorf("alert severity %d != incident severity %d", alerts[0].Severity, incident.Severity)
	}
	// Contacts resolved from the default directory for incendie
	foundPompiers := false
	for _, c := range alerts[0].Contacts {
		if c.Name == "Pompiers" {
			foundPompiers = true
		}
	}
	if !foundPompiers {
		t.Errorf("expected Pompiers among alert contacts, got %+v", alerts[0].Contacts)
	}
}

func TestCreateIncident_MildBatchDoesNotEscalate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := newIncidentService(db)

	reports := []database.Report{
		testhelpers.NewReportBuilder().WithID("m1").
			WithText("Lampadaire en panne").
			WithPriority(1).
			WithReportedAt(time.Now().Add(-23 * time.Hour)).Build(),
	}
	seedReports(t, db, reports)

	id, err := svc.CreateIncident(context.Background(), reports, database.SourceTypeManual)
	if err != nil {
		t.Fatalf("CreateIncident failed: %v", err)
	}

	var count int64
	db.Model(&database.Alert{}).Where("incident_id = ?", id).Count(&count)
	if count != 0 {
		t.Errorf("expected no alert for a mild incident, got %d", count)
	}
}

func TestListIncidents_FilterAndPagination(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := newIncidentService(db)

	for i := 0; i < 3; i++ {
		incident := testhelpers.NewIncidentBuilder().Build()
		if err := db.Create(&incident).Error; err != nil {
			t.Fatalf("failed to seed incident: %v", err)
		}
	}
	resolved := testhelpers.NewIncidentBuilder().Resolved().Build()
	if err := db.Create(&resolved).Error; err != nil {
		t.Fatalf("failed to seed resolved incident: %v", err)
	}

	all, total, err := svc.ListIncidents("", 0, 10)
	if err != nil {
		t.Fatalf("ListIncidents failed: %v", err)
	}
	if total != 4 || len(all) != 4 {
		t.Errorf("expected 4 incidents, got total=%d len=%d", total, len(all))
	}

	news, total, err := svc.ListIncidents(database.IncidentStatusNew, 0, 2)
	if err != nil {
		t.Fatalf("ListIncidents failed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3 new incidents, got %d", total)
	}
	if len(news) != 2 {
		t.Errorf("expected a page of 2, got %d", len(news))
	}
}

func TestReportsByIDs_UnknownIDRejected(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := newIncidentService(db)

	known := testhelpers.NewReportBuilder().WithID("known").Build()
	seedReports(t, db, []database.Report{known})

	if _, err := svc.ReportsByIDs([]string{"known", "missing"}); err == nil {
		t.Error("expected an error when a requested report does not exist")
	}

	reports, err := svc.ReportsByIDs([]string{"known"})
	if err != nil {
		t.Fatalf("ReportsByIDs failed: %v", err)
	}
	if len(reports) != 1 || reports[0].ID != "known" {
		t.Errorf("unexpected reports: %+v", reports)
	}
}

func TestTopCategories_FrequencyThenFirstEncounter(t *testing.T) {
	reports := []database.Report{
		testhelpers.NewReportBuilder().WithCategories("a", "b").Build(),
		testhelpers.NewReportBuilder().WithCategories("b", "c").Build(),
		testhelpers.NewReportBuilder().WithCategories("b", "d").Build(),
	}

	top := topCategories(reports, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(top))
	}
	if top[0] != "b" {
		t.Errorf("expected most frequent category first, got %v", top)
	}
	// a, c and d all appear once; a was encountered first
	if top[1] != "a" {
		t.Errorf("expected first-encounter tie-break, got %v", top)
	}
}

func TestCentroid(t *testing.T) {
	if lat, lng := centroid([]database.Report{testhelpers.NewReportBuilder().Build()}); lat != nil || lng != nil {
		t.Error("expected nil centroid without geotagged reports")
	}

	reports := []database.Report{
		testhelpers.NewReportBuilder().WithLocation(45.0, 4.0).Build(),
		testhelpers.NewReportBuilder().WithLocation(47.0, 6.0).Build(),
	}
	lat, lng := centroid(reports)
	if lat == nil || *lat != 46.0 || lng == nil || *lng != 5.0 {
		t.Errorf("unexpected centroid: %v, %v", lat, lng)
	}
}
