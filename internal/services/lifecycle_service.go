package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/echo-project/crisis-engine/internal/database"
)

// LifecycleService handles acknowledge and resolve operations on alerts
// and their linked incidents.
type LifecycleService struct {
	db *gorm.DB
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db}
}

// Acknowledge marks an alert as taken over by a user, stamping the time
// and actor. It reports whether a matching, previously-unacknowledged
// alert existed; an unknown ID or an already-acknowledged or resolved
// alert yields false without an error.
func (s *LifecycleService) Acknowledge(alertID, userID string) (bool, error) {
	now := time.Now()
	result := s.db.Model(&database.Alert{}).
		Where("id = ? AND status IN ?", alertID, []database.AlertStatus{
			database.AlertStatusCreated,
			database.AlertStatusNotified,
		}).
		Updates(map[string]interface{}{
			"status":          database.AlertStatusAcknowledged,
			"acknowledged_at": now,
			"acknowledged_by": userID,
		})
	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		log.Printf("LifecycleService: acknowledge failed, no acknowledgeable alert %s", alertID)
		return false, nil
	}
	log.Printf("LifecycleService: alert %s acknowledged by user %s", alertID, userID)
	return true, nil
}

// Resolve closes an alert and its linked incident with the given notes.
// Acknowledgement is not a prerequisite. Both mutations run in one
// transaction, so a failure on either side leaves the pair untouched.
// An unknown alert ID yields false without an error.
func (s *LifecycleService) Resolve(alertID, resolutionNotes string) (bool, error) {
	var alert database.Alert
	if err := s.db.First(&alert, "id = ?", alertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("LifecycleService: resolve failed, alert %s not found", alertID)
			return false, nil
		}
		return false, err
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		alertUpdate := tx.Model(&database.Alert{}).
			Where("id = ?", alertID).
			Updates(map[string]interface{}{
				"status":           database.AlertStatusResolved,
				"resolved_at":      now,
				"resolution_notes": resolutionNotes,
			})
		if alertUpdate.Error != nil {
			return alertUpdate.Error
		}
		if alertUpdate.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		incidentUpdate := tx.Model(&database.Incident{}).
			Where("id = ?", alert.IncidentID).
			Updates(map[string]interface{}{
				"status":     database.IncidentStatusResolved,
				"resolution": resolutionNotes,
				"updated_at": now,
			})
		if incidentUpdate.Error != nil {
			return incidentUpdate.Error
		}
		if incidentUpdate.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("LifecycleService: resolve of alert %s rolled back, linked incident %s missing", alertID, alert.IncidentID)
			return false, nil
		}
		return false, err
	}

	log.Printf("LifecycleService: alert %s and incident %s resolved", alertID, alert.IncidentID)
	return true, nil
}

// GetAlert retrieves an alert by ID
func (s *LifecycleService) GetAlert(id string) (*database.Alert, error) {
	var alert database.Alert
	if err := s.db.First(&alert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// ListAlerts returns a page of alerts, newest first, optionally filtered
// by status, along with the total count.
func (s *LifecycleService) ListAlerts(status database.AlertStatus, offset, limit int) ([]database.Alert, int64, error) {
	query := s.db.Model(&database.Alert{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []database.Alert
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&alerts).Error; err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}
