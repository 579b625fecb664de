package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadStatus represents the current status of a download
type DownloadStatus string

const (
	StatusProcessing DownloadStatus = "processing"
	StatusCompleted  DownloadStatus = "completed"
	StatusFailed     DownloadStatus = "failed"
)

// Download is the service-side history record of one clip download
type Download struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	URL          string         `json:"url" gorm:"not null;index"`
	Title        string         `json:"title"`
	Status       DownloadStatus `json:"status" gorm:"not null;index"`
	ErrorMessage string         `json:"error_message,omitempty"`
	FilePath     string         `json:"file_path,omitempty"`
	ProcessLog   string         `json:"process_log,omitempty" gorm:"type:text"` // yt-dlp stderr
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// NewDownload creates a history record for a request that is about to run
func NewDownload(req DownloadRequest) *Download {
	now := time.Now()
	return &Download{
		ID:        uuid.New().String(),
		URL:       req.URL,
		Title:     req.Title,
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkCompleted marks the download as completed
func (d *Download) MarkCompleted(filePath string) {
	d.Status = StatusCompleted
	d.FilePath = filePath
	now := time.Now()
	d.CompletedAt = &now
	d.UpdatedAt = now
}

// MarkFailed marks the download as failed
func (d *Download) MarkFailed(err error) {
	d.Status = StatusFailed
	d.ErrorMessage = err.Error()
	d.UpdatedAt = time.Now()
}

// IsTerminal checks if the download is in a terminal state
func (d *Download) IsTerminal() bool {
	return d.Status == StatusCompleted || d.Status == StatusFailed
}

// ValidateStatus checks if a status filter value is known
func ValidateStatus(status DownloadStatus) bool {
	return status == StatusProcessing || status == StatusCompleted || status == StatusFailed
}
