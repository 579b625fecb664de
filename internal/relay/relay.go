// Package relay bridges download requests from the page observer to the
// local companion service over HTTP. The observer never talks to the
// network itself; it only exchanges messages with a Relay.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/internal/domain"
	"github.com/yourusername/clip-extract-go/pkg/logger"
)

// ServerNotRunningMessage tells the user how to start the companion service
const ServerNotRunningMessage = "Download server not running. Please start the server:\nclip-extract-server"

// GenericFailureMessage is reported when the service gives no reason
const GenericFailureMessage = "Download failed"

// ErrServerNotRunning is returned when the health probe fails
var ErrServerNotRunning = errors.New(ServerNotRunningMessage)

// ServiceError carries the error text reported by the companion service
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Relay forwards clip download requests to the companion service
type Relay struct {
	serverURL     string
	client        *http.Client
	healthTimeout time.Duration
	logger        *zap.Logger
}

// New creates a relay from configuration. A zero request timeout means the
// download call waits as long as the network layer allows.
func New(config *domain.RelayConfig, log *zap.Logger) *Relay {
	return &Relay{
		serverURL:     strings.TrimRight(config.ServerURL, "/"),
		client:        &http.Client{Timeout: config.RequestTimeout},
		healthTimeout: config.HealthTimeout,
		logger:        logger.OrNop(log),
	}
}

// ServerURL returns the companion service base URL
func (r *Relay) ServerURL() string {
	return r.serverURL
}

// CheckHealth probes GET /health. Any transport error or non-2xx status
// means the service is down.
func (r *Relay) CheckHealth(ctx context.Context) error {
	if r.healthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.healthTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.serverURL+"/health", nil)
	if err != nil {
		return ErrServerNotRunning
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("Health probe failed", zap.Error(err))
		return ErrServerNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.logger.Debug("Health probe rejected", zap.Int("status", resp.StatusCode))
		return ErrServerNotRunning
	}
	return nil
}

// Download asks the companion service to fetch a clip. The health probe
// always runs first; POST /download is only issued when it succeeds.
func (r *Relay) Download(ctx context.Context, clip *domain.ClipDescriptor) (*domain.DownloadResult, error) {
	r.logger.Info("Sending download request to local server", zap.String("url", clip.URL))

	if err := r.CheckHealth(ctx); err != nil {
		r.logger.Warn("Download server not reachable", zap.String("server", r.serverURL))
		return nil, err
	}

	body, err := json.Marshal(domain.NewDownloadRequest(clip))
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.serverURL+"/download", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Download error", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	var result domain.DownloadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		r.logger.Error("Download error", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, fmt.Errorf("invalid response from download server: %w", err)
	}

	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = GenericFailureMessage
		}
		r.logger.Error("Download rejected", zap.String("url", clip.URL), zap.String("error", msg))
		return nil, &ServiceError{Message: msg}
	}

	r.logger.Info("Download completed", zap.String("filepath", result.FilePath))
	return &result, nil
}

// Handle answers one message from the page observer
func (r *Relay) Handle(ctx context.Context, msg domain.Message) domain.Reply {
	switch msg.Action {
	case domain.ActionDownloadClip:
		if msg.ClipInfo == nil {
			return domain.ReplyError(errors.New("missing clip info"))
		}
		if _, err := r.Download(ctx, msg.ClipInfo); err != nil {
			return domain.ReplyError(err)
		}
		return domain.ReplyOK()
	default:
		return domain.ReplyError(fmt.Errorf("unknown action: %s", msg.Action))
	}
}

// Serve handles envelopes from the inbox one at a time until ctx is done
// or the inbox is closed.
func (r *Relay) Serve(ctx context.Context, inbox <-chan Envelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-inbox:
			if !ok {
				return
			}
			env.Respond(r.Handle(ctx, env.Message))
		}
	}
}
