package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/clip-extract-go/internal/domain"
)

// ErrBridgeClosed is returned by calls sent after the bridge was closed
var ErrBridgeClosed = errors.New("relay bridge closed")

// Envelope carries one message to the relay together with its reply slot
type Envelope struct {
	ID      string
	Message domain.Message
	reply   chan domain.Reply
}

// NewEnvelope wraps a message with a fresh reply slot
func NewEnvelope(msg domain.Message) Envelope {
	return Envelope{ID: uuid.New().String(), Message: msg, reply: make(chan domain.Reply, 1)}
}

// Respond delivers the reply. Only the first reply is kept.
func (e Envelope) Respond(reply domain.Reply) {
	select {
	case e.reply <- reply:
	default:
	}
}

// Bridge is the only link between the page observer and the relay. The two
// sides share nothing but the messages passed through it.
type Bridge struct {
	inbox chan Envelope
	done  chan struct{}
	once  sync.Once
}

// NewBridge creates a bridge. Buffer is the number of envelopes that may
// wait for the relay.
func NewBridge(buffer int) *Bridge {
	return &Bridge{
		inbox: make(chan Envelope, buffer),
		done:  make(chan struct{}),
	}
}

// Inbox is the receiving end consumed by Relay.Serve
func (b *Bridge) Inbox() <-chan Envelope {
	return b.inbox
}

// Close stops accepting messages. Calls still waiting fail with ErrBridgeClosed.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// Send posts a message and returns a call that completes exactly once,
// either with the relay's reply or with a transport error.
func (b *Bridge) Send(ctx context.Context, msg domain.Message) *Call {
	env := NewEnvelope(msg)
	call := &Call{ID: env.ID, done: make(chan struct{})}

	go func() {
		select {
		case b.inbox <- env:
		case <-ctx.Done():
			call.complete(domain.Reply{}, ctx.Err())
			return
		case <-b.done:
			call.complete(domain.Reply{}, ErrBridgeClosed)
			return
		}

		select {
		case reply := <-env.reply:
			call.complete(reply, nil)
		case <-ctx.Done():
			call.complete(domain.Reply{}, ctx.Err())
		case <-b.done:
			call.complete(domain.Reply{}, ErrBridgeClosed)
		}
	}()

	return call
}

// Call is a single-shot request/response exchange
type Call struct {
	ID    string
	done  chan struct{}
	reply domain.Reply
	err   error
}

func (c *Call) complete(reply domain.Reply, err error) {
	c.reply = reply
	c.err = err
	close(c.done)
}

// Done is closed once the reply or an error is available
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Reply returns the outcome. Only valid after Done is closed.
func (c *Call) Reply() (domain.Reply, error) {
	<-c.done
	return c.reply, c.err
}

// Wait blocks until the call completes or ctx is done
func (c *Call) Wait(ctx context.Context) (domain.Reply, error) {
	select {
	case <-c.done:
		return c.reply, c.err
	case <-ctx.Done():
		return domain.Reply{}, ctx.Err()
	}
}
