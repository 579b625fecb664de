package browser

import (
	"context"

	"github.com/yourusername/clip-extract-go/internal/observer"
)

// Button is a button element living in a browser page
type Button struct {
	page           *Page
	id             string
	containerClass string
	clicks         chan struct{}
}

// SetDisabled implements observer.Button
func (b *Button) SetDisabled(ctx context.Context, disabled bool) error {
	_, err := b.page.eval(ctx, `(id, disabled) => {
		const btn = document.getElementById(id);
		if (btn) btn.disabled = disabled;
	}`, b.id, disabled)
	return err
}

// SetContent implements observer.Button
func (b *Button) SetContent(ctx context.Context, glyph observer.Glyph, label string) error {
	_, err := b.page.eval(ctx, `(id, glyph, label) => {
		const btn = document.getElementById(id);
		if (!btn) return;
		btn.innerHTML = glyph;
		const span = document.createElement('span');
		span.textContent = label;
		btn.appendChild(span);
	}`, b.id, string(glyph), label)
	return err
}

// Remove implements observer.Button
func (b *Button) Remove(ctx context.Context) error {
	b.page.mu.Lock()
	if b.page.buttons[b.id] == b {
		delete(b.page.buttons, b.id)
	}
	b.page.mu.Unlock()

	_, err := b.page.eval(ctx, `(id, containerCls) => {
		const btn = document.getElementById(id);
		if (!btn) return;
		const container = btn.parentElement;
		if (container && container.classList.contains(containerCls)) {
			container.remove();
		} else {
			btn.remove();
		}
	}`, b.id, b.containerClass)
	return err
}

// Clicks implements observer.Button
func (b *Button) Clicks() <-chan struct{} {
	return b.clicks
}
