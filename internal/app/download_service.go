package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/internal/domain"
	"github.com/yourusername/clip-extract-go/pkg/logger"
)

// ErrNoURL is returned for requests without a URL
var ErrNoURL = errors.New("No URL provided")

// Notifier is told about finished downloads
type Notifier interface {
	NotifyDownloadCompleted(ctx context.Context, title, filePath string)
	NotifyDownloadFailed(ctx context.Context, url string, err error)
}

// DownloadService runs clip downloads for the companion service and keeps
// their history.
type DownloadService struct {
	repo       domain.DownloadRepository
	downloader domain.Downloader
	notifier   Notifier
	logger     *zap.Logger
	sem        chan struct{} // one yt-dlp process at a time
}

// NewDownloadService creates a download service. repo and notifier may be nil.
func NewDownloadService(
	repo domain.DownloadRepository,
	downloader domain.Downloader,
	notifier Notifier,
	log *zap.Logger,
) *DownloadService {
	return &DownloadService{
		repo:       repo,
		downloader: downloader,
		notifier:   notifier,
		logger:     logger.OrNop(log),
		sem:        make(chan struct{}, 1),
	}
}

// Download fetches one clip. The returned result is always non-nil when the
// request got as far as running yt-dlp, so callers can answer with it.
func (s *DownloadService) Download(ctx context.Context, req domain.DownloadRequest) (*domain.DownloadResult, error) {
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return nil, ErrNoURL
	}
	if req.Title == "" {
		req.Title = domain.DefaultClipTitle
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	record := domain.NewDownload(req)
	s.save(record, true)

	s.logger.Info("Processing download",
		zap.String("id", record.ID),
		zap.String("url", req.URL),
		zap.String("title", req.Title))

	fetched, err := s.downloader.Download(ctx, req)
	if err != nil {
		if fetched != nil {
			record.ProcessLog = fetched.Output
		}
		record.MarkFailed(err)
		s.save(record, false)

		s.logger.Error("Download failed",
			zap.String("id", record.ID),
			zap.String("url", req.URL),
			zap.Error(err))
		if s.notifier != nil {
			s.notifier.NotifyDownloadFailed(ctx, req.URL, err)
		}
		return &domain.DownloadResult{Success: false, Error: err.Error()}, err
	}

	record.ProcessLog = fetched.Output
	record.MarkCompleted(fetched.FilePath)
	s.save(record, false)

	s.logger.Info("Download completed",
		zap.String("id", record.ID),
		zap.String("url", req.URL),
		zap.String("file", fetched.FilePath))
	if s.notifier != nil {
		s.notifier.NotifyDownloadCompleted(ctx, req.Title, fetched.FilePath)
	}

	return &domain.DownloadResult{
		Success:  true,
		Message:  "Download complete",
		FilePath: fetched.FilePath,
	}, nil
}

// save persists the history record. History is best effort and never
// fails a download.
func (s *DownloadService) save(record *domain.Download, create bool) {
	if s.repo == nil {
		return
	}
	var err error
	if create {
		err = s.repo.Create(record)
	} else {
		err = s.repo.Update(record)
	}
	if err != nil {
		s.logger.Warn("Failed to save download history", zap.String("id", record.ID), zap.Error(err))
	}
}

// Inspect returns clip metadata without downloading
func (s *DownloadService) Inspect(ctx context.Context, url string) (*domain.ClipMetadata, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrNoURL
	}
	return s.downloader.Inspect(ctx, url)
}

// GetDownload retrieves a history record by ID
func (s *DownloadService) GetDownload(id string) (*domain.Download, error) {
	if s.repo == nil {
		return nil, domain.ErrDownloadNotFound
	}
	return s.repo.FindByID(id)
}

// ListDownloads lists history records, newest first
func (s *DownloadService) ListDownloads(filters map[string]interface{}) ([]*domain.Download, error) {
	if s.repo == nil {
		return nil, nil
	}
	if status, ok := filters["status"]; ok {
		if !domain.ValidateStatus(domain.DownloadStatus(fmt.Sprint(status))) {
			return nil, fmt.Errorf("invalid status filter: %v", status)
		}
	}
	return s.repo.FindAll(filters)
}

// GetStats returns history statistics
func (s *DownloadService) GetStats() (*domain.DownloadStats, error) {
	if s.repo == nil {
		return &domain.DownloadStats{}, nil
	}
	return s.repo.GetStats()
}
