package infrastructure

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/internal/domain"
	"github.com/yourusername/clip-extract-go/pkg/logger"
)

// NotificationService sends desktop notifications about finished clips
type NotificationService struct {
	config *domain.NotificationConfig
	runner CommandRunner
	logger *zap.Logger
}

// NewNotificationService creates a notification service. A nil runner runs real processes.
func NewNotificationService(config *domain.NotificationConfig, runner CommandRunner, log *zap.Logger) *NotificationService {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &NotificationService{
		config: config,
		runner: runner,
		logger: logger.OrNop(log),
	}
}

// Send sends a notification with the configured method
func (n *NotificationService) Send(ctx context.Context, title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var name string
	var args []string
	switch n.config.Method {
	case "osascript":
		name = "osascript"
		args = []string{"-e", fmt.Sprintf(`display notification %s with title %s`, appleScriptString(message), appleScriptString(title))}
	case "notify-send":
		name = "notify-send"
		args = []string{title, message}
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if _, _, err := n.runner.Run(ctx, name, args...); err != nil {
		n.logger.Error("Failed to send notification", zap.String("method", name), zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent", zap.String("title", title), zap.String("message", message))
	return nil
}

// NotifyDownloadCompleted reports a saved clip
func (n *NotificationService) NotifyDownloadCompleted(ctx context.Context, title, filePath string) {
	n.Send(ctx, "Clip Downloaded", fmt.Sprintf("%s → %s", truncateString(title, 40), filePath))
}

// NotifyDownloadFailed reports a failed clip download
func (n *NotificationService) NotifyDownloadFailed(ctx context.Context, url string, err error) {
	n.Send(ctx, "Clip Download Failed", fmt.Sprintf("%s: %s", truncateString(url, 40), truncateString(err.Error(), 80)))
}

// NotifyStreamEnded reports that a monitored live stream went offline
func (n *NotificationService) NotifyStreamEnded(ctx context.Context, url string) {
	n.Send(ctx, "Stream Ended", "Downloading clip from "+truncateString(url, 40))
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
