package domain

import "errors"

// ErrDownloadNotFound is returned when no history record has the given ID
var ErrDownloadNotFound = errors.New("download not found")

// FilterableColumns lists the history columns FindAll accepts as filter keys
var FilterableColumns = []string{"status", "url"}

// DownloadRepository defines the interface for download history persistence
type DownloadRepository interface {
	// Create creates a new download
	Create(download *Download) error

	// Update updates an existing download
	Update(download *Download) error

	// FindByID finds a download by ID
	FindByID(id string) (*Download, error)

	// FindAll finds all downloads with optional filters, newest first
	FindAll(filters map[string]interface{}) ([]*Download, error)

	// GetStats returns download statistics
	GetStats() (*DownloadStats, error)
}

// DownloadStats represents download statistics
type DownloadStats struct {
	Total      int64 `json:"total"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}
