package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"alfredoptarigan/interview-analyzer/internal/models"
)

var ErrAnalysisLogNotFound = errors.New("analysis log not found")

type AnalysisLogRepository interface {
	Create(entry *models.AnalysisLog) error
	MarkCompleted(id uuid.UUID, duration time.Duration) error
	MarkFailed(id uuid.UUID, duration time.Duration, errorMsg string) error
}

type analysisLogRepository struct {
	db *gorm.DB
}

func NewAnalysisLogRepository(db *gorm.DB) AnalysisLogRepository {
	return &analysisLogRepository{db: db}
}

func (r *analysisLogRepository) Create(entry *models.AnalysisLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return errors.Wrap(err, "failed to create analysis log")
	}
	return nil
}

func (r *analysisLogRepository) MarkCompleted(id uuid.UUID, duration time.Duration) error {
	return r.finish(id, map[string]interface{}{
		"status":      models.StatusCompleted,
		"duration_ms": duration.Milliseconds(),
		"updated_at":  time.Now(),
	})
}

func (r *analysisLogRepository) MarkFailed(id uuid.UUID, duration time.Duration, errorMsg string) error {
	return r.finish(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
		"duration_ms":   duration.Milliseconds(),
		"updated_at":    time.Now(),
	})
}

func (r *analysisLogRepository) finish(id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.Model(&models.AnalysisLog{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update analysis log")
	}

	if result.RowsAffected == 0 {
		return errors.WithStack(ErrAnalysisLogNotFound)
	}

	return nil
}

// NewNoopAnalysisLogRepository is used when the audit database is disabled.
func NewNoopAnalysisLogRepository() AnalysisLogRepository {
	return noopAnalysisLogRepository{}
}

type noopAnalysisLogRepository struct{}

func (noopAnalysisLogRepository) Create(*models.AnalysisLog) error { return nil }

func (noopAnalysisLogRepository) MarkCompleted(uuid.UUID, time.Duration) error { return nil }

func (noopAnalysisLogRepository) MarkFailed(uuid.UUID, time.Duration, string) error { return nil }
