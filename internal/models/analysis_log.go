package models

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

// AnalysisLog records request metadata only. The feedback itself is never
// stored server-side.
type AnalysisLog struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Username     string         `gorm:"type:text" json:"username"`
	FileCount    int            `gorm:"not null" json:"file_count"`
	TotalBytes   int64          `gorm:"not null" json:"total_bytes"`
	Model        string         `gorm:"type:text" json:"model"`
	Status       AnalysisStatus `gorm:"not null;default:'processing'" json:"status"`
	ErrorMessage *string        `gorm:"type:text" json:"error_message,omitempty"`
	DurationMs   *int64         `json:"duration_ms,omitempty"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (AnalysisLog) TableName() string {
	return "analysis_logs"
}
