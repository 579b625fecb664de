package relay

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/clip-extract-go/internal/domain"
)

func TestBridge_RoundTrip(t *testing.T) {
	svc := &fakeService{healthStatus: http.StatusOK, downloadBody: `{"success":true,"filepath":"/tmp/x.mp4"}`}
	r := newTestRelay(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := NewBridge(1)
	go r.Serve(ctx, bridge.Inbox())

	call := bridge.Send(ctx, domain.NewDownloadClipMessage(testClip()))
	reply, err := call.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, reply.Success)
	assert.NotEmpty(t, call.ID)

	select {
	case <-call.Done():
	default:
		t.Fatal("call should be done after Wait returns")
	}
}

func TestBridge_ServerDownReplyCarriesMessage(t *testing.T) {
	svc := &fakeService{healthStatus: http.StatusBadGateway}
	r := newTestRelay(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := NewBridge(0)
	go r.Serve(ctx, bridge.Inbox())

	reply, err := bridge.Send(ctx, domain.NewDownloadClipMessage(testClip())).Reply()
	require.NoError(t, err)
	assert.False(t, reply.Success)
	assert.Equal(t, ServerNotRunningMessage, reply.Error)
}

func TestBridge_NoRelayContextCancelled(t *testing.T) {
	bridge := NewBridge(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := bridge.Send(ctx, domain.NewDownloadClipMessage(testClip())).Reply()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBridge_Closed(t *testing.T) {
	bridge := NewBridge(0)
	bridge.Close()
	bridge.Close()

	_, err := bridge.Send(context.Background(), domain.NewDownloadClipMessage(testClip())).Reply()
	assert.ErrorIs(t, err, ErrBridgeClosed)
}
