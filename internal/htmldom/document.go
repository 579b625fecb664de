// Package htmldom is an in-memory page backed by golang.org/x/net/html.
// It implements the observer's Document and MutationSource so the page
// logic can run against static captures and in tests without a browser.
package htmldom

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yourusername/clip-extract-go/internal/observer"
)

// ErrNotFound is returned when an anchor selector matches nothing
var ErrNotFound = errors.New("element not found")

// Document is a mutable HTML tree with a location. Every structural change
// produces a mutation signal.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	location  string
	buttons   []*Button
	mutations chan struct{}
	loads     chan struct{}
	closed    bool
}

// Parse builds a document from a full HTML page
func Parse(location, src string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Document{
		root:      root,
		location:  location,
		mutations: make(chan struct{}, 1),
		loads:     make(chan struct{}, 1),
	}, nil
}

// Navigate swaps the body and the location the way a single-page
// application does on a client-side route change.
func (d *Document) Navigate(location, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.replaceBody(body); err != nil {
		return err
	}
	d.location = location
	d.signal()
	return nil
}

// Reload replaces the whole document with a freshly parsed page at the
// same location, like a browser reload. Injected elements are lost.
func (d *Document) Reload(src string) error {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.root = root
	if !d.closed {
		select {
		case d.loads <- struct{}{}:
		default:
		}
	}
	d.signal()
	return nil
}

// SetLocation changes only the location, like history.pushState
func (d *Document) SetLocation(location string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.location = location
	d.signal()
}

// SetBody replaces the body content without touching the location
func (d *Document) SetBody(body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.replaceBody(body); err != nil {
		return err
	}
	d.signal()
	return nil
}

// Mutate runs fn against the tree and signals a mutation
func (d *Document) Mutate(fn func(root *html.Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fn(d.root)
	d.signal()
}

// Touch signals a mutation without changing anything
func (d *Document) Touch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.signal()
}

// Mutations implements observer.MutationSource. Ticks are coalesced.
func (d *Document) Mutations() <-chan struct{} {
	return d.mutations
}

// Loads implements observer.LoadSource
func (d *Document) Loads() <-chan struct{} {
	return d.loads
}

// Close ends the mutation and load streams
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.closed {
		d.closed = true
		close(d.mutations)
		close(d.loads)
	}
}

func (d *Document) signal() {
	if d.closed {
		return
	}
	select {
	case d.mutations <- struct{}{}:
	default:
	}
}

func (d *Document) replaceBody(src string) error {
	body := querySelector(d.root, "body")
	if body == nil {
		return fmt.Errorf("body: %w", ErrNotFound)
	}

	ctxNode := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctxNode)
	if err != nil {
		return fmt.Errorf("parse body: %w", err)
	}

	for c := body.FirstChild; c != nil; {
		next := c.NextSibling
		body.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return nil
}

// Location implements observer.Document
func (d *Document) Location(_ context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.location, nil
}

// QueryText implements observer.Document
func (d *Document) QueryText(_ context.Context, selector string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := querySelector(d.root, selector)
	if n == nil {
		return "", false, nil
	}
	return collectText(n), true, nil
}

// QueryAttr implements observer.Document
func (d *Document) QueryAttr(_ context.Context, selector, attr string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := querySelector(d.root, selector)
	if n == nil {
		return "", false, nil
	}
	v, ok := lookupAttr(n, strings.ToLower(attr))
	return v, ok, nil
}

// Exists implements observer.Document
func (d *Document) Exists(_ context.Context, selector string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return querySelector(d.root, selector) != nil, nil
}

// Count returns the number of elements matching selector
func (d *Document) Count(selector string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(querySelectorAll(d.root, selector))
}

// InsertButton implements observer.Document. The button is wrapped in a
// container and becomes the anchor's first child.
func (d *Document) InsertButton(_ context.Context, anchorSelector string, spec observer.ButtonSpec) (observer.Button, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	anchor := querySelector(d.root, anchorSelector)
	if anchor == nil {
		return nil, fmt.Errorf("%s: %w", anchorSelector, ErrNotFound)
	}

	container := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "class", Val: spec.ContainerClass}},
	}
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     "button",
		DataAtom: atom.Button,
		Attr: []html.Attribute{
			{Key: "id", Val: spec.ID},
			{Key: "class", Val: spec.ClassName},
		},
	}
	if err := setContent(node, spec.Glyph, spec.Label); err != nil {
		return nil, err
	}
	container.AppendChild(node)
	anchor.InsertBefore(container, anchor.FirstChild)

	b := &Button{doc: d, node: node, container: container, clicks: make(chan struct{}, 1)}
	d.buttons = append(d.buttons, b)
	d.signal()
	return b, nil
}

// FindButton returns the attached button matching selector
func (d *Document) FindButton(selector string) (*Button, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := querySelector(d.root, selector)
	if n == nil {
		return nil, false
	}
	for _, b := range d.buttons {
		if b.node == n {
			return b, true
		}
	}
	return nil, false
}

// HTML renders the whole document
func (d *Document) HTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var sb strings.Builder
	if err := html.Render(&sb, d.root); err != nil {
		return ""
	}
	return sb.String()
}

func setContent(n *html.Node, glyph observer.Glyph, label string) error {
	glyphNodes, err := html.ParseFragment(strings.NewReader(string(glyph)), n)
	if err != nil {
		return fmt.Errorf("parse glyph: %w", err)
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	for _, g := range glyphNodes {
		n.AppendChild(g)
	}

	span := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
	span.AppendChild(&html.Node{Type: html.TextNode, Data: label})
	n.AppendChild(span)
	return nil
}
