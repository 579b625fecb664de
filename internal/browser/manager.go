// Package browser drives a Chrome page through go-rod and exposes it to the
// page observer as a Document and MutationSource.
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/pkg/logger"
)

// Config configures the browser manager
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome.
	// Empty launches a local Chrome.
	RemoteURL string

	// Headless hides the launched browser window
	Headless bool

	Logger *zap.Logger
}

// Manager owns the Chrome process (or remote connection)
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
	logger  *zap.Logger
}

// NewManager creates a Manager. Call Start to launch or connect.
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg, logger: logger.OrNop(cfg.Logger)}
}

// Start launches Chrome or connects to the remote instance
func (m *Manager) Start(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("browser: manager is closed")
	}
	if m.browser != nil {
		return m.browser, nil
	}

	wsURL := m.cfg.RemoteURL
	if wsURL != "" {
		m.logger.Info("Connecting to remote browser", zap.String("url", wsURL))
	} else {
		l := launcher.New().
			Headless(m.cfg.Headless).
			Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		m.logger.Info("Launched local browser", zap.String("url", wsURL), zap.Bool("headless", m.cfg.Headless))
	}

	b := rod.New().Context(ctx).ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		m.cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	m.browser = b
	return b, nil
}

// Browser returns the connected browser or nil
func (m *Manager) Browser() *rod.Browser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browser
}

// Close disconnects and stops a launched Chrome
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.cleanup()
	return nil
}

func (m *Manager) cleanup() {
	// a remote Chrome belongs to the user; only drop the connection
	if m.browser != nil && m.lnch == nil {
		m.browser = nil
	}
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			m.logger.Debug("Browser close failed", zap.Error(err))
		}
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
}
