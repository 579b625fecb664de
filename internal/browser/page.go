package browser

import (
	"context"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/internal/observer"
	"github.com/yourusername/clip-extract-go/pkg/logger"
)

//go:embed page_observer.js
var observerJS string

const (
	mutationBinding = "__clip_mutation"
	clickBinding    = "__clip_click"
	loadBinding     = "__clip_load"
)

// buttonCSS is injected once per document next to the first button
const buttonCSS = `.clip-download-container{margin:12px 0;display:flex}` +
	`.clip-download-button{display:inline-flex;align-items:center;gap:8px;padding:10px 16px;` +
	`border:none;border-radius:18px;background:#065fd4;color:#fff;font-size:14px;font-weight:500;cursor:pointer}` +
	`.clip-download-button:disabled{opacity:.7;cursor:default}` +
	`.clip-download-button .spinner{animation:clip-spin 1s linear infinite}` +
	`@keyframes clip-spin{to{transform:rotate(360deg)}}`

// Page is a live browser tab observed for mutations and button clicks
type Page struct {
	page      *rod.Page
	logger    *zap.Logger
	mutations chan struct{}
	loads     chan struct{}

	mu      sync.Mutex
	buttons map[string]*Button
}

// OpenPage creates a stealth tab, installs the page hooks and navigates to
// pageURL. Events are delivered until ctx is done.
func OpenPage(ctx context.Context, b *rod.Browser, pageURL string, log *zap.Logger) (*Page, error) {
	rp, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	p := &Page{
		page:      rp,
		logger:    logger.OrNop(log),
		mutations: make(chan struct{}, 1),
		loads:     make(chan struct{}, 1),
		buttons:   make(map[string]*Button),
	}

	if err := p.install(ctx); err != nil {
		rp.Close()
		return nil, err
	}

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := rp.Context(navCtx).Navigate(pageURL); err != nil {
		rp.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := rp.Context(navCtx).WaitLoad(); err != nil {
		p.logger.Warn("Wait load timeout", zap.String("url", pageURL), zap.Error(err))
	}

	return p, nil
}

// install adds the bindings and the observer script, which survive full
// document reloads.
func (p *Page) install(ctx context.Context) error {
	for _, name := range []string{mutationBinding, clickBinding, loadBinding} {
		if err := (proto.RuntimeAddBinding{Name: name}).Call(p.page); err != nil {
			return fmt.Errorf("browser: add binding %s: %w", name, err)
		}
	}

	if _, err := p.page.EvalOnNewDocument(observerJS); err != nil {
		return fmt.Errorf("browser: inject observer: %w", err)
	}

	wait := p.page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		switch e.Name {
		case mutationBinding:
			tick(p.mutations)
		case loadBinding:
			p.logger.Debug("Document loaded", zap.String("url", e.Payload))
			tick(p.loads)
		case clickBinding:
			p.click(e.Payload)
		}
	})
	go func() {
		wait()
		close(p.mutations)
		close(p.loads)
	}()
	return nil
}

// tick does a coalescing send
func tick(c chan struct{}) {
	select {
	case c <- struct{}{}:
	default:
	}
}

func (p *Page) click(id string) {
	p.mu.Lock()
	b, ok := p.buttons[id]
	p.mu.Unlock()
	if !ok {
		return
	}
	select {
	case b.clicks <- struct{}{}:
	default:
	}
}

// Mutations implements observer.MutationSource
func (p *Page) Mutations() <-chan struct{} {
	return p.mutations
}

// Loads implements observer.LoadSource
func (p *Page) Loads() <-chan struct{} {
	return p.loads
}

// Close closes the tab
func (p *Page) Close() error {
	return p.page.Close()
}

func (p *Page) eval(ctx context.Context, js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return nil, fmt.Errorf("browser: eval: %w", err)
	}
	return res, nil
}

// Location implements observer.Document
func (p *Page) Location(ctx context.Context) (string, error) {
	res, err := p.eval(ctx, `() => location.href`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// QueryText implements observer.Document
func (p *Page) QueryText(ctx context.Context, selector string) (string, bool, error) {
	res, err := p.eval(ctx, `(sel) => {
		const el = document.querySelector(sel);
		return el ? el.textContent : null;
	}`, selector)
	if err != nil {
		return "", false, err
	}
	if res.Value.Nil() {
		return "", false, nil
	}
	return res.Value.Str(), true, nil
}

// QueryAttr implements observer.Document
func (p *Page) QueryAttr(ctx context.Context, selector, attr string) (string, bool, error) {
	res, err := p.eval(ctx, `(sel, attr) => {
		const el = document.querySelector(sel);
		return el && el.hasAttribute(attr) ? el.getAttribute(attr) : null;
	}`, selector, attr)
	if err != nil {
		return "", false, err
	}
	if res.Value.Nil() {
		return "", false, nil
	}
	return res.Value.Str(), true, nil
}

// Exists implements observer.Document
func (p *Page) Exists(ctx context.Context, selector string) (bool, error) {
	res, err := p.eval(ctx, `(sel) => document.querySelector(sel) !== null`, selector)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// InsertButton implements observer.Document
func (p *Page) InsertButton(ctx context.Context, anchorSelector string, spec observer.ButtonSpec) (observer.Button, error) {
	res, err := p.eval(ctx, `(anchorSel, id, cls, containerCls, glyph, label, css) => {
		const anchor = document.querySelector(anchorSel);
		if (!anchor) return false;
		if (!document.getElementById('clip-download-style')) {
			const style = document.createElement('style');
			style.id = 'clip-download-style';
			style.textContent = css;
			(document.head || document.documentElement).appendChild(style);
		}
		const container = document.createElement('div');
		container.className = containerCls;
		const btn = document.createElement('button');
		btn.id = id;
		btn.className = cls;
		btn.dataset.clipButton = '1';
		btn.innerHTML = glyph;
		const span = document.createElement('span');
		span.textContent = label;
		btn.appendChild(span);
		container.appendChild(btn);
		anchor.insertBefore(container, anchor.firstChild);
		return true;
	}`, anchorSelector, spec.ID, spec.ClassName, spec.ContainerClass, string(spec.Glyph), spec.Label, buttonCSS)
	if err != nil {
		return nil, err
	}
	if !res.Value.Bool() {
		return nil, fmt.Errorf("browser: anchor %s not found", anchorSelector)
	}

	b := &Button{page: p, id: spec.ID, containerClass: spec.ContainerClass, clicks: make(chan struct{}, 1)}
	p.mu.Lock()
	p.buttons[spec.ID] = b
	p.mu.Unlock()
	return b, nil
}
