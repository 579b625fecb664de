package observer

import (
	"time"

	"github.com/yourusername/clip-extract-go/internal/domain"
	"github.com/yourusername/clip-extract-go/internal/relay"
)

// session is the state of one page view. It is created on every
// navigation and dropped as a whole on the next one, so nothing leaks
// from one clip page into another.
type session struct {
	url    string
	clip   *domain.ClipDescriptor
	button Button
	state  domain.UIState

	detectTimer *time.Timer
	resetTimer  *time.Timer
	call        *relay.Call
}

func newSession(url string) *session {
	return &session{url: url, state: domain.StateIdle}
}

// stop cancels the session's timers. A pending call is simply abandoned.
func (s *session) stop() {
	if s.detectTimer != nil {
		s.detectTimer.Stop()
		s.detectTimer = nil
	}
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
	s.call = nil
}

// nil channels block forever, which keeps inactive cases out of the select

func (s *session) detectC() <-chan time.Time {
	if s == nil || s.detectTimer == nil {
		return nil
	}
	return s.detectTimer.C
}

func (s *session) resetC() <-chan time.Time {
	if s == nil || s.resetTimer == nil {
		return nil
	}
	return s.resetTimer.C
}

func (s *session) replyC() <-chan struct{} {
	if s == nil || s.call == nil {
		return nil
	}
	return s.call.Done()
}

func (s *session) clicks() <-chan struct{} {
	if s == nil || s.button == nil {
		return nil
	}
	return s.button.Clicks()
}
