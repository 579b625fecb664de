package observer

import (
	"context"
	"strings"

	"github.com/yourusername/clip-extract-go/internal/domain"
)

// Strategy looks up one field of a clip. ok=false means "try the next one".
type Strategy func(ctx context.Context, doc Document, location string) (value string, ok bool)

// FirstMatch runs strategies in order and returns the first hit
func FirstMatch(ctx context.Context, doc Document, location string, strategies []Strategy) (string, bool) {
	for _, s := range strategies {
		if v, ok := s(ctx, doc, location); ok {
			return v, true
		}
	}
	return "", false
}

// FromQueryParam reads a non-empty query parameter of the location
func FromQueryParam(key string) Strategy {
	return func(_ context.Context, _ Document, location string) (string, bool) {
		return domain.QueryParam(location, key)
	}
}

// FromAttr reads a non-empty attribute of the first element matching selector
func FromAttr(selector, attr string) Strategy {
	return func(ctx context.Context, doc Document, _ string) (string, bool) {
		v, ok, err := doc.QueryAttr(ctx, selector, attr)
		if err != nil || !ok || v == "" {
			return "", false
		}
		return v, true
	}
}

// FromText reads the trimmed, non-empty text of the first element matching selector
func FromText(selector string) Strategy {
	return func(ctx context.Context, doc Document, _ string) (string, bool) {
		v, ok, err := doc.QueryText(ctx, selector)
		if err != nil || !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}
}

// Extractor builds a ClipDescriptor from the current page
type Extractor struct {
	VideoID      []Strategy
	Title        []Strategy
	DefaultTitle string
}

// DefaultExtractor reads the video id from ?v= or the videoId meta tag, and
// the title from the watch metadata heading or the legacy title heading.
func DefaultExtractor() *Extractor {
	return &Extractor{
		VideoID: []Strategy{
			FromQueryParam("v"),
			FromAttr(`meta[itemprop="videoId"]`, "content"),
		},
		Title: []Strategy{
			FromText("h1.ytd-watch-metadata yt-formatted-string"),
			FromText("h1.title"),
		},
		DefaultTitle: domain.DefaultClipTitle,
	}
}

// Extract returns nil without error when the page is not a clip page.
// Missing optional fields degrade to nil / the default title.
func (e *Extractor) Extract(ctx context.Context, doc Document) (*domain.ClipDescriptor, error) {
	location, err := doc.Location(ctx)
	if err != nil {
		return nil, err
	}

	clipID, ok := domain.ExtractClipID(location)
	if !ok {
		return nil, nil
	}

	clip := &domain.ClipDescriptor{
		ClipID: clipID,
		URL:    location,
		Title:  e.DefaultTitle,
	}
	if v, ok := FirstMatch(ctx, doc, location, e.VideoID); ok {
		clip.VideoID = &v
	}
	if t, ok := FirstMatch(ctx, doc, location, e.Title); ok {
		clip.Title = t
	}
	return clip, nil
}
