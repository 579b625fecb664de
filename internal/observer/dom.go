package observer

import "context"

// Document is the part of a host page the observer reads and writes.
// Query methods report a miss with ok=false; err is reserved for a page
// that cannot be reached at all.
type Document interface {
	Location(ctx context.Context) (string, error)
	QueryText(ctx context.Context, selector string) (text string, ok bool, err error)
	QueryAttr(ctx context.Context, selector, attr string) (value string, ok bool, err error)
	Exists(ctx context.Context, selector string) (bool, error)
	InsertButton(ctx context.Context, anchorSelector string, spec ButtonSpec) (Button, error)
}

// Button is a download button injected into a Document
type Button interface {
	SetDisabled(ctx context.Context, disabled bool) error
	SetContent(ctx context.Context, glyph Glyph, label string) error
	Remove(ctx context.Context) error
	Clicks() <-chan struct{}
}

// MutationSource signals that the document's structure changed.
// Signals may be coalesced; one tick can stand for a whole batch.
type MutationSource interface {
	Mutations() <-chan struct{}
}

// LoadSource signals that a new document was loaded, which wipes every
// injected element even when the location stays the same (a reload).
type LoadSource interface {
	Loads() <-chan struct{}
}

// ButtonSpec describes the button to insert
type ButtonSpec struct {
	ID             string
	ClassName      string
	ContainerClass string
	Glyph          Glyph
	Label          string
}

// Glyph is the inline SVG shown next to the button label
type Glyph string

const (
	GlyphDownload Glyph = `<svg width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2"><path d="M21 15v4a2 2 0 0 1-2 2H5a2 2 0 0 1-2-2v-4"></path><polyline points="7 10 12 15 17 10"></polyline><line x1="12" y1="15" x2="12" y2="3"></line></svg>`
	GlyphProgress Glyph = `<svg class="spinner" width="20" height="20" viewBox="0 0 24 24"><circle cx="12" cy="12" r="10" stroke="currentColor" stroke-width="2" fill="none" opacity="0.25"></circle><path d="M12 2a10 10 0 0 1 10 10" stroke="currentColor" stroke-width="2" fill="none"></path></svg>`
	GlyphSuccess  Glyph = `<svg width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2"><polyline points="20 6 9 17 4 12"></polyline></svg>`
	GlyphError    Glyph = `<svg width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2"><circle cx="12" cy="12" r="10"></circle><line x1="15" y1="9" x2="9" y2="15"></line><line x1="9" y1="9" x2="15" y2="15"></line></svg>`
)

// Button labels per UI state
const (
	LabelDownload  = "Download Clip"
	LabelProgress  = "Downloading..."
	LabelSuccess   = "Downloaded!"
	LabelFailure   = "Failed - Try Again"
	ButtonID       = "clip-download-btn"
	ButtonClass    = "clip-download-button"
	ContainerClass = "clip-download-container"
	ButtonSelector = "#" + ButtonID
)

// DefaultButtonSpec is the button shown in the idle state
func DefaultButtonSpec() ButtonSpec {
	return ButtonSpec{
		ID:             ButtonID,
		ClassName:      ButtonClass,
		ContainerClass: ContainerClass,
		Glyph:          GlyphDownload,
		Label:          LabelDownload,
	}
}

// DefaultAnchors are the insertion points tried in order: below the
// player, the actions menu, then the primary column.
var DefaultAnchors = []string{"#below", "#menu-container", "#primary"}
