package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/internal/domain"
	"github.com/yourusername/clip-extract-go/pkg/logger"
)

// ClipFetcher downloads a clip once the monitor decides it is ready
type ClipFetcher interface {
	Download(ctx context.Context, req domain.DownloadRequest) (*domain.DownloadResult, error)
}

// StatusChecker reports the live status of a video
type StatusChecker interface {
	Inspect(ctx context.Context, url string) (*domain.ClipMetadata, error)
}

// StreamMonitor waits for a live stream to end, then downloads a clip of it.
// Clips of a running stream cannot be fetched until the archive exists.
type StreamMonitor struct {
	checker  StatusChecker
	fetcher  ClipFetcher
	interval time.Duration
	settle   time.Duration
	logger   *zap.Logger

	// OnCheck is called after every status check, for progress output
	OnCheck func(check int, meta *domain.ClipMetadata, err error)
}

// NewStreamMonitor creates a monitor
func NewStreamMonitor(checker StatusChecker, fetcher ClipFetcher, config *domain.MonitorConfig, log *zap.Logger) *StreamMonitor {
	return &StreamMonitor{
		checker:  checker,
		fetcher:  fetcher,
		interval: config.CheckInterval,
		settle:   config.SettleDelay,
		logger:   logger.OrNop(log),
	}
}

// Run blocks until the stream at videoURL is offline and clipURL has been
// downloaded, or ctx is done. Only the initial status check is fatal;
// later failed checks are skipped.
func (m *StreamMonitor) Run(ctx context.Context, videoURL, clipURL string) (*domain.DownloadResult, error) {
	meta, err := m.checker.Inspect(ctx, videoURL)
	m.report(0, meta, err)
	if err != nil {
		return nil, fmt.Errorf("could not check stream status: %w", err)
	}

	m.logger.Info("Monitoring stream",
		zap.String("title", meta.Title),
		zap.String("live_status", meta.LiveStatus),
		zap.Duration("interval", m.interval))

	if !meta.IsLive {
		m.logger.Info("Stream already offline, downloading clip", zap.String("clip", clipURL))
		return m.fetch(ctx, clipURL, meta.Title)
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for check := 1; ; check++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		meta, err := m.checker.Inspect(ctx, videoURL)
		m.report(check, meta, err)
		if err != nil {
			m.logger.Warn("Status check failed, retrying", zap.Int("check", check), zap.Error(err))
			continue
		}
		if meta.IsLive {
			m.logger.Debug("Stream still live", zap.Int("check", check))
			continue
		}

		m.logger.Info("Stream ended", zap.Int("check", check), zap.String("live_status", meta.LiveStatus), zap.Duration("settle", m.settle))
		select {
		case <-time.After(m.settle):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return m.fetch(ctx, clipURL, meta.Title)
	}
}

func (m *StreamMonitor) fetch(ctx context.Context, clipURL, title string) (*domain.DownloadResult, error) {
	return m.fetcher.Download(ctx, domain.DownloadRequest{URL: clipURL, Title: title})
}

func (m *StreamMonitor) report(check int, meta *domain.ClipMetadata, err error) {
	if m.OnCheck != nil {
		m.OnCheck(check, meta, err)
	}
}
