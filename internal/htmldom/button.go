package htmldom

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/yourusername/clip-extract-go/internal/observer"
)

// Button is a button element inserted into a Document
type Button struct {
	doc       *Document
	node      *html.Node
	container *html.Node
	clicks    chan struct{}
}

// SetDisabled implements observer.Button
func (b *Button) SetDisabled(_ context.Context, disabled bool) error {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()

	if disabled {
		setAttr(b.node, "disabled", "")
	} else {
		removeAttr(b.node, "disabled")
	}
	return nil
}

// SetContent implements observer.Button
func (b *Button) SetContent(_ context.Context, glyph observer.Glyph, label string) error {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()

	if err := setContent(b.node, glyph, label); err != nil {
		return err
	}
	b.doc.signal()
	return nil
}

// Remove implements observer.Button
func (b *Button) Remove(_ context.Context) error {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()

	if b.container.Parent != nil {
		b.container.Parent.RemoveChild(b.container)
		b.doc.signal()
	}
	return nil
}

// Clicks implements observer.Button
func (b *Button) Clicks() <-chan struct{} {
	return b.clicks
}

// Click simulates a user click. Disabled or detached buttons do not
// react, and a click is dropped while the previous one is unconsumed.
func (b *Button) Click() bool {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()

	if !b.attached() {
		return false
	}
	if _, disabled := lookupAttr(b.node, "disabled"); disabled {
		return false
	}
	select {
	case b.clicks <- struct{}{}:
		return true
	default:
		return false
	}
}

// Disabled reports whether the button is disabled
func (b *Button) Disabled() bool {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	_, disabled := lookupAttr(b.node, "disabled")
	return disabled
}

// Label returns the visible text of the button
func (b *Button) Label() string {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	return strings.TrimSpace(collectText(b.node))
}

// Attached reports whether the button is still part of the document
func (b *Button) Attached() bool {
	b.doc.mu.Lock()
	defer b.doc.mu.Unlock()
	return b.attached()
}

func (b *Button) attached() bool {
	for p := b.node; p != nil; p = p.Parent {
		if p == b.doc.root {
			return true
		}
	}
	return false
}
