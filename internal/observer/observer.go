// Package observer keeps a download button in sync with the clip page a
// host single-page application is currently showing.
//
// All page state is owned by one goroutine (Observer.Run). Navigation
// events, detection and reset timers, button clicks and relay replies are
// all funnelled into a single select loop, so UI transitions never race.
package observer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/internal/domain"
	"github.com/yourusername/clip-extract-go/internal/relay"
	"github.com/yourusername/clip-extract-go/pkg/logger"
)

// ErrNoAnchor is logged when none of the insertion anchors exist yet
var ErrNoAnchor = errors.New("no insertion anchor found")

// Messenger sends one message across the isolation boundary
type Messenger interface {
	Send(ctx context.Context, msg domain.Message) *relay.Call
}

// Transition describes a UI state change, reported for logging and tests
type Transition struct {
	From domain.UIState
	To   domain.UIState
	Clip *domain.ClipDescriptor
	Err  string
}

// Config configures an Observer
type Config struct {
	Document    Document
	Watcher     NavigationWatcher
	Messenger   Messenger
	Extractor   *Extractor
	Anchors     []string
	DetectDelay time.Duration
	ResetDelay  time.Duration
	Logger      *zap.Logger

	// OnTransition is called on the observer goroutine after every UI transition
	OnTransition func(Transition)

	// OnButton is called after a button was inserted (true) or discarded (false)
	OnButton func(clip *domain.ClipDescriptor, present bool)
}

// Observer reconciles the injected button with the current page
type Observer struct {
	doc          Document
	watcher      NavigationWatcher
	messenger    Messenger
	extractor    *Extractor
	anchors      []string
	detectDelay  time.Duration
	resetDelay   time.Duration
	onTransition func(Transition)
	onButton     func(*domain.ClipDescriptor, bool)
	logger       *zap.Logger

	sess *session
}

// New creates an Observer. Zero delays fall back to 1s detection and 2s reset.
func New(cfg Config) *Observer {
	if cfg.Extractor == nil {
		cfg.Extractor = DefaultExtractor()
	}
	if len(cfg.Anchors) == 0 {
		cfg.Anchors = DefaultAnchors
	}
	if cfg.DetectDelay <= 0 {
		cfg.DetectDelay = time.Second
	}
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = 2 * time.Second
	}
	if cfg.Watcher == nil {
		if src, ok := cfg.Document.(MutationSource); ok {
			cfg.Watcher = NewMutationWatcher(src, cfg.Document, cfg.Logger)
		}
	}

	return &Observer{
		doc:          cfg.Document,
		watcher:      cfg.Watcher,
		messenger:    cfg.Messenger,
		extractor:    cfg.Extractor,
		anchors:      cfg.Anchors,
		detectDelay:  cfg.DetectDelay,
		resetDelay:   cfg.ResetDelay,
		onTransition: cfg.OnTransition,
		onButton:     cfg.OnButton,
		logger:       logger.OrNop(cfg.Logger),
	}
}

// Run processes page events until ctx is done or the watcher stops
func (o *Observer) Run(ctx context.Context) error {
	if o.watcher == nil {
		return errors.New("observer: no navigation watcher")
	}

	events, err := o.watcher.Watch(ctx)
	if err != nil {
		return err
	}
	defer o.discard(context.Background())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			o.navigate(ctx, ev)

		case <-o.sess.detectC():
			o.sess.detectTimer = nil
			o.detect(ctx)

		case <-o.sess.clicks():
			o.click(ctx)

		case <-o.sess.replyC():
			o.resolve(ctx)

		case <-o.sess.resetC():
			o.sess.resetTimer = nil
			o.reset(ctx)
		}
	}
}

// navigate drops the current page view and schedules detection for the new one
func (o *Observer) navigate(ctx context.Context, ev NavigationEvent) {
	o.discard(ctx)
	o.sess = newSession(ev.URL)

	if !domain.IsClipURL(ev.URL) {
		o.logger.Debug("Not a clip page", zap.String("url", ev.URL))
		return
	}

	o.logger.Info("Clip page detected",
		zap.String("url", ev.URL),
		zap.Bool("initial", ev.Initial),
		zap.Bool("reload", ev.Reload))
	o.sess.detectTimer = time.NewTimer(o.detectDelay)
}

func (o *Observer) discard(ctx context.Context) {
	if o.sess == nil {
		return
	}
	o.sess.stop()
	if o.sess.button != nil {
		if err := o.sess.button.Remove(ctx); err != nil {
			o.logger.Debug("Failed to remove button", zap.Error(err))
		}
		if o.onButton != nil {
			o.onButton(o.sess.clip, false)
		}
	}
	o.sess = nil
}

// detect extracts the clip and inserts the button once. Every miss is
// silent: the next navigation is the only retry.
func (o *Observer) detect(ctx context.Context) {
	if o.sess.button != nil {
		return
	}

	clip, err := o.extractor.Extract(ctx, o.doc)
	if err != nil {
		o.logger.Debug("Clip extraction failed", zap.Error(err))
		return
	}
	if clip == nil {
		return
	}

	button, anchor, err := o.insert(ctx)
	if err != nil {
		o.logger.Debug("Button not inserted", zap.String("clip_id", clip.ClipID), zap.Error(err))
		return
	}
	if button == nil {
		return
	}

	o.sess.clip = clip
	o.sess.button = button
	o.logger.Info("Download button inserted",
		zap.String("clip_id", clip.ClipID),
		zap.String("title", clip.Title),
		zap.String("anchor", anchor))
	if o.onButton != nil {
		o.onButton(clip, true)
	}
}

// insert tries the anchors in priority order. A nil button without error
// means a button is already on the page.
func (o *Observer) insert(ctx context.Context) (Button, string, error) {
	exists, err := o.doc.Exists(ctx, ButtonSelector)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", nil
	}

	for _, anchor := range o.anchors {
		ok, err := o.doc.Exists(ctx, anchor)
		if err != nil || !ok {
			continue
		}
		button, err := o.doc.InsertButton(ctx, anchor, DefaultButtonSpec())
		if err != nil {
			return nil, anchor, err
		}
		return button, anchor, nil
	}
	return nil, "", ErrNoAnchor
}

func (o *Observer) click(ctx context.Context) {
	s := o.sess
	if s.state != domain.StateIdle && s.state != domain.StateFailure {
		return
	}

	o.transition(ctx, domain.StateRequesting, "")
	s.call = o.messenger.Send(ctx, domain.NewDownloadClipMessage(s.clip))
}

func (o *Observer) resolve(ctx context.Context) {
	s := o.sess
	reply, err := s.call.Reply()
	s.call = nil

	if err == nil && reply.Success {
		o.transition(ctx, domain.StateSuccess, "")
		s.resetTimer = time.NewTimer(o.resetDelay)
		return
	}

	msg := reply.Error
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = relay.GenericFailureMessage
	}
	o.logger.Error("Download error", zap.String("clip_id", s.clip.ClipID), zap.String("error", msg))
	o.transition(ctx, domain.StateFailure, msg)
}

func (o *Observer) reset(ctx context.Context) {
	if o.sess.state != domain.StateSuccess {
		return
	}
	o.transition(ctx, domain.StateIdle, "")
}

// transition applies the visuals of the target state to the button
func (o *Observer) transition(ctx context.Context, to domain.UIState, errMsg string) {
	s := o.sess
	from := s.state
	s.state = to

	var err error
	switch to {
	case domain.StateRequesting:
		err = errors.Join(
			s.button.SetDisabled(ctx, true),
			s.button.SetContent(ctx, GlyphProgress, LabelProgress))
	case domain.StateSuccess:
		err = s.button.SetContent(ctx, GlyphSuccess, LabelSuccess)
	case domain.StateFailure:
		err = errors.Join(
			s.button.SetContent(ctx, GlyphError, LabelFailure),
			s.button.SetDisabled(ctx, false))
	case domain.StateIdle:
		err = errors.Join(
			s.button.SetDisabled(ctx, false),
			s.button.SetContent(ctx, GlyphDownload, LabelDownload))
	}
	if err != nil {
		o.logger.Warn("Failed to update button", zap.Stringer("state", to), zap.Error(err))
	}

	o.logger.Debug("UI transition", zap.Stringer("from", from), zap.Stringer("to", to))
	if o.onTransition != nil {
		o.onTransition(Transition{From: from, To: to, Clip: s.clip, Err: errMsg})
	}
}
