package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/internal/domain"
	"github.com/yourusername/clip-extract-go/pkg/logger"
)

// YTDLPError carries yt-dlp's stderr when the process fails
type YTDLPError struct {
	Stderr string
	Err    error
}

func (e *YTDLPError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return "yt-dlp error: " + msg
}

func (e *YTDLPError) Unwrap() error {
	return e.Err
}

// YTDLPDownloader implements domain.Downloader with the yt-dlp binary
type YTDLPDownloader struct {
	binary    string
	outputDir string
	format    string
	logsDir   string
	runner    CommandRunner
	logger    *zap.Logger
}

// NewYTDLPDownloader creates a downloader. A nil runner runs real processes.
func NewYTDLPDownloader(config *domain.DownloadConfig, runner CommandRunner, log *zap.Logger) *YTDLPDownloader {
	if runner == nil {
		runner = ExecRunner{}
	}
	format := config.Format
	if format == "" {
		format = domain.DefaultFormat
	}
	return &YTDLPDownloader{
		binary:    config.YTDLPBinary,
		outputDir: config.Dir,
		format:    format,
		logsDir:   config.LogsDir,
		runner:    runner,
		logger:    logger.OrNop(log),
	}
}

// DownloadArgs builds the yt-dlp arguments for one clip
func (d *YTDLPDownloader) DownloadArgs(url string) []string {
	return []string{
		url,
		"-o", filepath.Join(d.outputDir, "%(title)s.%(ext)s"),
		"--restrict-filenames",
		"-f", d.format,
		"--merge-output-format", "mp4",
		"--no-playlist",
		"--print", "after_move:filepath",
	}
}

// Download implements domain.Downloader. The file path is the last line
// yt-dlp prints after moving the merged file into place.
func (d *YTDLPDownloader) Download(ctx context.Context, req domain.DownloadRequest) (*domain.FetchResult, error) {
	if err := os.MkdirAll(d.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	args := d.DownloadArgs(req.URL)
	cmdLine := ShellEscapeCommand(d.binary, args...)
	d.logger.Info("Running yt-dlp", zap.String("url", req.URL), zap.String("cmd", cmdLine))

	downloadLog := d.openLogFile()
	if downloadLog != nil {
		defer downloadLog.Close()
		writeLogHeader(downloadLog, req.URL, cmdLine)
	}

	stdout, stderr, err := d.runner.Run(ctx, d.binary, args...)
	output := string(stdout) + string(stderr)
	if downloadLog != nil {
		downloadLog.WriteString(output)
	}

	if err != nil {
		ytErr := &YTDLPError{Stderr: string(stderr), Err: err}
		if downloadLog != nil {
			writeLogFooter(downloadLog, false, ytErr.Error())
		}
		return &domain.FetchResult{Output: output}, ytErr
	}

	// a zero exit is a success even when no path was printed
	filePath := LastLine(stdout)
	if filePath == "" {
		d.logger.Warn("yt-dlp reported no file path", zap.String("url", req.URL))
	}

	if downloadLog != nil {
		writeLogFooter(downloadLog, true, "Downloaded: "+filePath)
	}
	return &domain.FetchResult{FilePath: filePath, Output: output}, nil
}

// ytdlpInfo is the part of `yt-dlp -j` output used for inspection
type ytdlpInfo struct {
	IsLive       bool     `json:"is_live"`
	LiveStatus   string   `json:"live_status"`
	SectionStart *float64 `json:"section_start"`
	SectionEnd   *float64 `json:"section_end"`
	Duration     *float64 `json:"duration"`
	Title        string   `json:"title"`
}

// Inspect implements domain.Downloader with `yt-dlp -j`
func (d *YTDLPDownloader) Inspect(ctx context.Context, url string) (*domain.ClipMetadata, error) {
	args := []string{"-j", "--no-playlist", url}
	d.logger.Debug("Inspecting clip", zap.String("cmd", ShellEscapeCommand(d.binary, args...)))

	stdout, stderr, err := d.runner.Run(ctx, d.binary, args...)
	if err != nil {
		return nil, &YTDLPError{Stderr: string(stderr), Err: err}
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}

	return &domain.ClipMetadata{
		Success:        true,
		IsLive:         info.IsLive || info.LiveStatus == "is_live",
		LiveStatus:     info.LiveStatus,
		HasClipSection: info.SectionStart != nil,
		SectionStart:   info.SectionStart,
		SectionEnd:     info.SectionEnd,
		Duration:       info.Duration,
		Title:          info.Title,
	}, nil
}

// openLogFile opens today's download log. Logging to file is best effort.
func (d *YTDLPDownloader) openLogFile() *os.File {
	if d.logsDir == "" {
		return nil
	}
	if err := os.MkdirAll(d.logsDir, 0755); err != nil {
		d.logger.Warn("Failed to create logs directory", zap.Error(err))
		return nil
	}

	path := filepath.Join(d.logsDir, "download-"+time.Now().Format("20060102")+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		d.logger.Warn("Failed to open download log", zap.Error(err))
		return nil
	}
	return f
}

func writeLogHeader(f *os.File, url, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "\n=== [%s] Download: %s ===\n$ %s\n", timestamp, url, cmdLine)
}

func writeLogFooter(f *os.File, success bool, message string) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(f, "[%s] %s: %s\n=== END ===\n\n", time.Now().Format("2006-01-02 15:04:05"), status, message)
}
