package observer

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/pkg/logger"
)

// NavigationEvent reports that the page location changed
type NavigationEvent struct {
	URL     string
	Initial bool // first location seen when watching started
	Reload  bool // a new document at an unchanged location
}

// NavigationWatcher produces location changes of a page
type NavigationWatcher interface {
	Watch(ctx context.Context) (<-chan NavigationEvent, error)
}

// LocationReader reads the current page location
type LocationReader interface {
	Location(ctx context.Context) (string, error)
}

// MutationWatcher detects client-side route changes on hosts that fire no
// navigation event. Every mutation tick is used as a hint that something
// changed; the location is then re-read and diffed against the last one.
// When the source is also a LoadSource, every document load is reported,
// including reloads of the same location.
type MutationWatcher struct {
	source   MutationSource
	location LocationReader
	logger   *zap.Logger
}

// NewMutationWatcher creates a watcher over a mutation source
func NewMutationWatcher(source MutationSource, location LocationReader, log *zap.Logger) *MutationWatcher {
	return &MutationWatcher{
		source:   source,
		location: location,
		logger:   logger.OrNop(log),
	}
}

// Watch emits the initial location, then one event per location change or
// document load.
// The channel is closed when ctx is done or the mutation source closes.
func (w *MutationWatcher) Watch(ctx context.Context) (<-chan NavigationEvent, error) {
	last, err := w.location.Location(ctx)
	if err != nil {
		return nil, err
	}

	var loads <-chan struct{}
	if ls, ok := w.source.(LoadSource); ok {
		loads = ls.Loads()
		// the document being watched is already covered by the initial event
		select {
		case <-loads:
		default:
		}
	}

	events := make(chan NavigationEvent)
	go func() {
		defer close(events)

		if !w.emit(ctx, events, NavigationEvent{URL: last, Initial: true}) {
			return
		}

		mutations := w.source.Mutations()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-loads:
				if !ok {
					return
				}
				current, err := w.location.Location(ctx)
				if err != nil {
					w.logger.Debug("Failed to read location", zap.Error(err))
					continue
				}
				ev := NavigationEvent{URL: current, Reload: current == last}
				last = current
				if !w.emit(ctx, events, ev) {
					return
				}
			case _, ok := <-mutations:
				if !ok {
					return
				}
				current, err := w.location.Location(ctx)
				if err != nil {
					w.logger.Debug("Failed to read location", zap.Error(err))
					continue
				}
				if current == last {
					continue
				}
				last = current
				if !w.emit(ctx, events, NavigationEvent{URL: current}) {
					return
				}
			}
		}
	}()

	return events, nil
}

func (w *MutationWatcher) emit(ctx context.Context, events chan<- NavigationEvent, ev NavigationEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
