package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/clip-extract-go/internal/domain"
)

// SQLiteDownloadRepository implements domain.DownloadRepository using SQLite
type SQLiteDownloadRepository struct {
	db *gorm.DB
}

// NewSQLiteDownloadRepository opens (and migrates) the history database
func NewSQLiteDownloadRepository(dbPath string) (*SQLiteDownloadRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Download{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteDownloadRepository{db: db}, nil
}

// Create creates a new download
func (r *SQLiteDownloadRepository) Create(download *domain.Download) error {
	return r.db.Create(download).Error
}

// Update updates an existing download
func (r *SQLiteDownloadRepository) Update(download *domain.Download) error {
	return r.db.Save(download).Error
}

// FindByID finds a download by ID
func (r *SQLiteDownloadRepository) FindByID(id string) (*domain.Download, error) {
	var download domain.Download
	err := r.db.First(&download, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDownloadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &download, nil
}

// FindAll returns downloads newest first. Only FilterableColumns are
// accepted as filter keys.
func (r *SQLiteDownloadRepository) FindAll(filters map[string]interface{}) ([]*domain.Download, error) {
	var downloads []*domain.Download
	query := r.db

	for key, value := range filters {
		if !isFilterable(key) {
			return nil, fmt.Errorf("unsupported filter: %s", key)
		}
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	err := query.Order("created_at DESC").Find(&downloads).Error
	return downloads, err
}

func isFilterable(key string) bool {
	for _, c := range domain.FilterableColumns {
		if c == key {
			return true
		}
	}
	return false
}

// GetStats returns download statistics
func (r *SQLiteDownloadRepository) GetStats() (*domain.DownloadStats, error) {
	stats := &domain.DownloadStats{}

	if err := r.db.Model(&domain.Download{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.DownloadStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.Download{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusProcessing:
			stats.Processing = sc.Count
		case domain.StatusCompleted:
			stats.Completed = sc.Count
		case domain.StatusFailed:
			stats.Failed = sc.Count
		}
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteDownloadRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
