package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/clip-extract-go/internal/domain"
)

// scriptedChecker returns one scripted answer per status check
type scriptedChecker struct {
	mu      sync.Mutex
	answers []checkAnswer
	calls   int
}

type checkAnswer struct {
	live bool
	err  error
}

func (c *scriptedChecker) Inspect(_ context.Context, url string) (*domain.ClipMetadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a := c.answers[len(c.answers)-1]
	if c.calls < len(c.answers) {
		a = c.answers[c.calls]
	}
	c.calls++
	if a.err != nil {
		return nil, a.err
	}
	status := "was_live"
	if a.live {
		status = "is_live"
	}
	return &domain.ClipMetadata{Success: true, IsLive: a.live, LiveStatus: status, Title: "Stream"}, nil
}

type recordingFetcher struct {
	mu   sync.Mutex
	reqs []domain.DownloadRequest
}

func (f *recordingFetcher) Download(_ context.Context, req domain.DownloadRequest) (*domain.DownloadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return &domain.DownloadResult{Success: true, FilePath: "/tmp/Stream.mp4"}, nil
}

func testMonitorConfig() *domain.MonitorConfig {
	return &domain.MonitorConfig{CheckInterval: 5 * time.Millisecond, SettleDelay: time.Millisecond}
}

func TestStreamMonitor_AlreadyOffline(t *testing.T) {
	checker := &scriptedChecker{answers: []checkAnswer{{live: false}}}
	fetcher := &recordingFetcher{}
	m := NewStreamMonitor(checker, fetcher, testMonitorConfig(), nil)

	result, err := m.Run(context.Background(), "https://site/watch?v=x", "https://site/clip/UgkA")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, checker.calls)
	require.Len(t, fetcher.reqs, 1)
	assert.Equal(t, domain.DownloadRequest{URL: "https://site/clip/UgkA", Title: "Stream"}, fetcher.reqs[0])
}

func TestStreamMonitor_WaitsForEndSkippingFailedChecks(t *testing.T) {
	checker := &scriptedChecker{answers: []checkAnswer{
		{live: true},
		{live: true},
		{err: errors.New("network")},
		{live: false},
	}}
	fetcher := &recordingFetcher{}
	m := NewStreamMonitor(checker, fetcher, testMonitorConfig(), nil)

	var checks []int
	m.OnCheck = func(check int, _ *domain.ClipMetadata, _ error) { checks = append(checks, check) }

	_, err := m.Run(context.Background(), "https://site/watch?v=x", "https://site/clip/UgkA")
	require.NoError(t, err)
	assert.Equal(t, 4, checker.calls)
	assert.Equal(t, []int{0, 1, 2, 3}, checks)
	assert.Len(t, fetcher.reqs, 1)
}

func TestStreamMonitor_InitialCheckFailureIsFatal(t *testing.T) {
	checker := &scriptedChecker{answers: []checkAnswer{{err: errors.New("private video")}}}
	fetcher := &recordingFetcher{}
	m := NewStreamMonitor(checker, fetcher, testMonitorConfig(), nil)

	_, err := m.Run(context.Background(), "https://site/watch?v=x", "https://site/clip/UgkA")
	assert.ErrorContains(t, err, "private video")
	assert.Empty(t, fetcher.reqs)
}

func TestStreamMonitor_Cancel(t *testing.T) {
	checker := &scriptedChecker{answers: []checkAnswer{{live: true}}}
	fetcher := &recordingFetcher{}
	m := NewStreamMonitor(checker, fetcher, testMonitorConfig(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := m.Run(ctx, "https://site/watch?v=x", "https://site/clip/UgkA")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, fetcher.reqs)
}
