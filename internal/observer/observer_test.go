package observer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/clip-extract-go/internal/domain"
	"github.com/yourusername/clip-extract-go/internal/htmldom"
	"github.com/yourusername/clip-extract-go/internal/observer"
	"github.com/yourusername/clip-extract-go/internal/relay"
)

const (
	clipURL  = "https://site/clip/UgkAbc123_def"
	clipBody = `<div id="primary"><div id="below"></div>` +
		`<h1 class="ytd-watch-metadata"><yt-formatted-string> My Clip </yt-formatted-string></h1></div>`
	testDetectDelay = 20 * time.Millisecond
	testResetDelay  = 80 * time.Millisecond
	waitFor         = time.Second
	tick            = 5 * time.Millisecond
)

func page(body string) string {
	return `<html><head><meta itemprop="videoId" content="vid123"></head><body>` + body + `</body></html>`
}

// recorder collects observer callbacks
type recorder struct {
	mu          sync.Mutex
	transitions []observer.Transition
	inserted    int
}

func (r *recorder) onTransition(t observer.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, t)
}

func (r *recorder) onButton(_ *domain.ClipDescriptor, present bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if present {
		r.inserted++
	}
}

func (r *recorder) states() []domain.UIState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.UIState
	for _, t := range r.transitions {
		out = append(out, t.To)
	}
	return out
}

func (r *recorder) last() observer.Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.transitions) == 0 {
		return observer.Transition{}
	}
	return r.transitions[len(r.transitions)-1]
}

func (r *recorder) insertions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inserted
}

// fakeRelay answers bridge envelopes with a scripted reply
type fakeRelay struct {
	mu       sync.Mutex
	reply    domain.Reply
	hold     chan struct{}
	messages []domain.Message
}

func (f *fakeRelay) serve(ctx context.Context, inbox <-chan relay.Envelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-inbox:
			f.mu.Lock()
			f.messages = append(f.messages, env.Message)
			reply, hold := f.reply, f.hold
			f.mu.Unlock()
			if hold != nil {
				select {
				case <-hold:
				case <-ctx.Done():
					return
				}
			}
			env.Respond(reply)
		}
	}
}

func (f *fakeRelay) setReply(reply domain.Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
}

func (f *fakeRelay) holdReplies() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = make(chan struct{})
	return f.hold
}

func (f *fakeRelay) received() []domain.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Message(nil), f.messages...)
}

type harness struct {
	doc    *htmldom.Document
	rec    *recorder
	relay  *fakeRelay
	bridge *relay.Bridge
}

func start(t *testing.T, location, body string, reply domain.Reply) *harness {
	t.Helper()

	doc, err := htmldom.Parse(location, page(body))
	require.NoError(t, err)

	bridge := relay.NewBridge(1)
	h := &harness{doc: doc, rec: &recorder{}, relay: &fakeRelay{reply: reply}, bridge: bridge}
	ctx, cancel := context.WithCancel(context.Background())

	go h.relay.serve(ctx, bridge.Inbox())

	obs := observer.New(observer.Config{
		Document:     doc,
		Messenger:    bridge,
		DetectDelay:  testDetectDelay,
		ResetDelay:   testResetDelay,
		OnTransition: h.rec.onTransition,
		OnButton:     h.rec.onButton,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		obs.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		bridge.Close()
		<-done
	})
	return h
}

func (h *harness) button(t *testing.T) *htmldom.Button {
	t.Helper()
	var b *htmldom.Button
	require.Eventually(t, func() bool {
		var ok bool
		b, ok = h.doc.FindButton(observer.ButtonSelector)
		return ok
	}, waitFor, tick)
	return b
}

func TestObserver_InsertsButtonOnClipPage(t *testing.T) {
	h := start(t, clipURL, clipBody, domain.ReplyOK())

	b := h.button(t)
	assert.Equal(t, observer.LabelDownload, b.Label())
	assert.False(t, b.Disabled())
	assert.Equal(t, 1, h.doc.Count("#below div.clip-download-container "+observer.ButtonSelector))
}

func TestObserver_FallsBackToLaterAnchors(t *testing.T) {
	h := start(t, clipURL, `<div id="primary"></div>`, domain.ReplyOK())

	h.button(t)
	assert.Equal(t, 1, h.doc.Count("#primary div.clip-download-container"))
}

func TestObserver_NoAnchorIsSilent(t *testing.T) {
	h := start(t, clipURL, `<div id="elsewhere"></div>`, domain.ReplyOK())

	assert.Never(t, func() bool {
		return h.doc.Count(observer.ButtonSelector) > 0
	}, 5*testDetectDelay, tick)
}

func TestObserver_NonClipPageHasNoButton(t *testing.T) {
	for _, loc := range []string{
		"https://site/watch?v=abc",
		"https://site/clip/Abc123",
		"https://site/",
	} {
		t.Run(loc, func(t *testing.T) {
			h := start(t, loc, clipBody, domain.ReplyOK())

			assert.Never(t, func() bool {
				return h.doc.Count(observer.ButtonSelector) > 0
			}, 5*testDetectDelay, tick)
		})
	}
}

func TestObserver_RepeatedMutationsInsertOnce(t *testing.T) {
	h := start(t, clipURL, clipBody, domain.ReplyOK())
	h.button(t)

	for i := 0; i < 5; i++ {
		h.doc.Touch()
		time.Sleep(tick)
	}

	assert.Never(t, func() bool {
		return h.doc.Count(observer.ButtonSelector) != 1
	}, 5*testDetectDelay, tick)
	assert.Equal(t, 1, h.rec.insertions())
}

func TestObserver_ClickSuccessThenReset(t *testing.T) {
	h := start(t, clipURL, clipBody, domain.ReplyOK())
	b := h.button(t)

	require.True(t, b.Click())

	require.Eventually(t, func() bool {
		return b.Label() == observer.LabelSuccess
	}, waitFor, tick)
	assert.True(t, b.Disabled(), "stays disabled while showing success")
	assert.False(t, b.Click())

	require.Eventually(t, func() bool {
		return b.Label() == observer.LabelDownload && !b.Disabled()
	}, waitFor, tick)

	assert.Equal(t, []domain.UIState{domain.StateRequesting, domain.StateSuccess, domain.StateIdle}, h.rec.states())

	msgs := h.relay.received()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.ActionDownloadClip, msgs[0].Action)
	require.NotNil(t, msgs[0].ClipInfo)
	assert.Equal(t, "UgkAbc123_def", msgs[0].ClipInfo.ClipID)
	assert.Equal(t, clipURL, msgs[0].ClipInfo.URL)
	assert.Equal(t, "My Clip", msgs[0].ClipInfo.Title)
	require.NotNil(t, msgs[0].ClipInfo.VideoID)
	assert.Equal(t, "vid123", *msgs[0].ClipInfo.VideoID)
}

func TestObserver_RequestingDisablesButton(t *testing.T) {
	h := start(t, clipURL, clipBody, domain.ReplyOK())
	hold := h.relay.holdReplies()

	b := h.button(t)
	require.True(t, b.Click())

	require.Eventually(t, func() bool {
		return b.Label() == observer.LabelProgress
	}, waitFor, tick)
	assert.True(t, b.Disabled())
	assert.False(t, b.Click())

	close(hold)
	require.Eventually(t, func() bool {
		return b.Label() == observer.LabelSuccess
	}, waitFor, tick)
	assert.Len(t, h.relay.received(), 1)
}

func TestObserver_FailureReenablesImmediately(t *testing.T) {
	h := start(t, clipURL, clipBody, domain.Reply{Success: false, Error: "yt-dlp error: boom"})
	b := h.button(t)

	require.True(t, b.Click())
	require.Eventually(t, func() bool {
		return b.Label() == observer.LabelFailure && !b.Disabled()
	}, waitFor, tick)
	assert.Equal(t, "yt-dlp error: boom", h.rec.last().Err)

	// no auto-reset
	assert.Never(t, func() bool {
		return b.Label() != observer.LabelFailure
	}, 2*testResetDelay, tick)

	h.relay.setReply(domain.ReplyOK())
	require.True(t, b.Click())
	require.Eventually(t, func() bool {
		return b.Label() == observer.LabelSuccess
	}, waitFor, tick)

	assert.Equal(t, []domain.UIState{
		domain.StateRequesting, domain.StateFailure,
		domain.StateRequesting, domain.StateSuccess,
	}, h.rec.states()[:4])
	assert.Len(t, h.relay.received(), 2)
}

func TestObserver_EmptyErrorFallsBackToGeneric(t *testing.T) {
	h := start(t, clipURL, clipBody, domain.Reply{Success: false})
	b := h.button(t)

	require.True(t, b.Click())
	require.Eventually(t, func() bool {
		return h.rec.last().To == domain.StateFailure
	}, waitFor, tick)
	assert.Equal(t, relay.GenericFailureMessage, h.rec.last().Err)
}

func TestObserver_TransportErrorEndsInFailure(t *testing.T) {
	h := start(t, clipURL, clipBody, domain.ReplyOK())
	hold := h.relay.holdReplies()
	defer close(hold)

	b := h.button(t)
	require.True(t, b.Click())
	require.Eventually(t, func() bool {
		return b.Label() == observer.LabelProgress
	}, waitFor, tick)

	h.bridge.Close()

	require.Eventually(t, func() bool {
		return b.Label() == observer.LabelFailure && !b.Disabled()
	}, waitFor, tick)
	assert.Equal(t, []domain.UIState{domain.StateRequesting, domain.StateFailure}, h.rec.states())
	assert.Equal(t, relay.ErrBridgeClosed.Error(), h.rec.last().Err)
}

func TestObserver_NavigationDropsPendingReply(t *testing.T) {
	h := start(t, clipURL, clipBody, domain.ReplyOK())
	hold := h.relay.holdReplies()

	first := h.button(t)
	require.True(t, first.Click())
	require.Eventually(t, func() bool {
		return first.Label() == observer.LabelProgress
	}, waitFor, tick)

	require.NoError(t, h.doc.Navigate("https://site/clip/UgkSecond-1", clipBody))

	var second *htmldom.Button
	require.Eventually(t, func() bool {
		b, ok := h.doc.FindButton(observer.ButtonSelector)
		second = b
		return ok && b != first
	}, waitFor, tick)

	close(hold)

	assert.Never(t, func() bool {
		return second.Label() != observer.LabelDownload || second.Disabled()
	}, 2*testResetDelay, tick)
	assert.Equal(t, []domain.UIState{domain.StateRequesting}, h.rec.states())
}

func TestObserver_ReloadRestoresButton(t *testing.T) {
	h := start(t, clipURL, clipBody, domain.ReplyOK())
	first := h.button(t)

	require.NoError(t, h.doc.Reload(page(clipBody)))

	var second *htmldom.Button
	require.Eventually(t, func() bool {
		b, ok := h.doc.FindButton(observer.ButtonSelector)
		second = b
		return ok && b != first
	}, waitFor, tick)
	assert.False(t, first.Attached())
	assert.Equal(t, observer.LabelDownload, second.Label())
	assert.Equal(t, 2, h.rec.insertions())
	assert.Equal(t, 1, h.doc.Count(observer.ButtonSelector))
}

func TestObserver_NavigationAwayRemovesButton(t *testing.T) {
	h := start(t, clipURL, clipBody, domain.ReplyOK())
	b := h.button(t)

	h.doc.SetLocation("https://site/watch?v=other")

	require.Eventually(t, func() bool {
		return !b.Attached()
	}, waitFor, tick)
	assert.Equal(t, 0, h.doc.Count(observer.ButtonSelector))
}

func TestObserver_NavigationToAnotherClip(t *testing.T) {
	h := start(t, clipURL, clipBody, domain.ReplyOK())
	first := h.button(t)

	require.NoError(t, h.doc.Navigate("https://site/clip/UgkSecond-1", clipBody))

	var second *htmldom.Button
	require.Eventually(t, func() bool {
		b, ok := h.doc.FindButton(observer.ButtonSelector)
		second = b
		return ok && b != first
	}, waitFor, tick)
	assert.False(t, first.Attached())

	require.True(t, second.Click())
	require.Eventually(t, func() bool {
		return len(h.relay.received()) == 1
	}, waitFor, tick)
	assert.Equal(t, "UgkSecond-1", h.relay.received()[0].ClipInfo.ClipID)
}

func TestObserver_EndToEndThroughRelay(t *testing.T) {
	var health, downloads int
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		health++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		downloads++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"filepath":"/tmp/My_Clip.mp4"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	doc, err := htmldom.Parse(clipURL, page(clipBody))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := relay.NewBridge(1)
	defer bridge.Close()
	r := relay.New(&domain.RelayConfig{ServerURL: server.URL, HealthTimeout: time.Second}, nil)
	go r.Serve(ctx, bridge.Inbox())

	rec := &recorder{}
	obs := observer.New(observer.Config{
		Document:     doc,
		Messenger:    bridge,
		DetectDelay:  testDetectDelay,
		ResetDelay:   time.Minute,
		OnTransition: rec.onTransition,
	})
	go obs.Run(ctx)

	var b *htmldom.Button
	require.Eventually(t, func() bool {
		var ok bool
		b, ok = doc.FindButton(observer.ButtonSelector)
		return ok
	}, waitFor, tick)

	require.True(t, b.Click())
	require.Eventually(t, func() bool {
		return b.Label() == observer.LabelSuccess
	}, waitFor, tick)

	assert.Equal(t, []domain.UIState{domain.StateRequesting, domain.StateSuccess}, rec.states())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, health)
	assert.Equal(t, 1, downloads)
}
