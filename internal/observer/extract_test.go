package observer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/clip-extract-go/internal/domain"
)

// stubDocument answers selector lookups from maps
type stubDocument struct {
	location    string
	locationErr error
	texts       map[string]string
	attrs       map[string]string // "selector@attr" -> value
}

func (d *stubDocument) Location(context.Context) (string, error) {
	return d.location, d.locationErr
}

func (d *stubDocument) QueryText(_ context.Context, selector string) (string, bool, error) {
	v, ok := d.texts[selector]
	return v, ok, nil
}

func (d *stubDocument) QueryAttr(_ context.Context, selector, attr string) (string, bool, error) {
	v, ok := d.attrs[selector+"@"+attr]
	return v, ok, nil
}

func (d *stubDocument) Exists(_ context.Context, selector string) (bool, error) {
	_, ok := d.texts[selector]
	return ok, nil
}

func (d *stubDocument) InsertButton(context.Context, string, ButtonSpec) (Button, error) {
	return nil, errors.New("not supported")
}

func TestExtractor_NonClipPage(t *testing.T) {
	for _, loc := range []string{
		"https://site/watch?v=abc",
		"https://site/clip/",
		"https://site/clip/XYZ123",
		"https://site/shorts/Ugkabc",
	} {
		t.Run(loc, func(t *testing.T) {
			clip, err := DefaultExtractor().Extract(context.Background(), &stubDocument{location: loc})
			require.NoError(t, err)
			assert.Nil(t, clip)
		})
	}
}

func TestExtractor_FieldPriority(t *testing.T) {
	tests := []struct {
		name      string
		doc       *stubDocument
		wantVideo *string
		wantTitle string
	}{
		{
			name: "query param beats meta tag",
			doc: &stubDocument{
				location: "https://site/clip/UgkX1?v=fromQuery",
				attrs:    map[string]string{`meta[itemprop="videoId"]@content`: "fromMeta"},
			},
			wantVideo: strPtr("fromQuery"),
			wantTitle: domain.DefaultClipTitle,
		},
		{
			name: "meta tag fallback",
			doc: &stubDocument{
				location: "https://site/clip/UgkX1",
				attrs:    map[string]string{`meta[itemprop="videoId"]@content`: "fromMeta"},
			},
			wantVideo: strPtr("fromMeta"),
			wantTitle: domain.DefaultClipTitle,
		},
		{
			name:      "no video id",
			doc:       &stubDocument{location: "https://site/clip/UgkX1?v="},
			wantTitle: domain.DefaultClipTitle,
		},
		{
			name: "modern heading wins",
			doc: &stubDocument{
				location: "https://site/clip/UgkX1",
				texts: map[string]string{
					"h1.ytd-watch-metadata yt-formatted-string": "  Modern  ",
					"h1.title": "Legacy",
				},
			},
			wantTitle: "Modern",
		},
		{
			name: "blank heading falls through",
			doc: &stubDocument{
				location: "https://site/clip/UgkX1",
				texts: map[string]string{
					"h1.ytd-watch-metadata yt-formatted-string": "   ",
					"h1.title": " Legacy ",
				},
			},
			wantTitle: "Legacy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip, err := DefaultExtractor().Extract(context.Background(), tt.doc)
			require.NoError(t, err)
			require.NotNil(t, clip)

			assert.Equal(t, "UgkX1", clip.ClipID)
			assert.Equal(t, tt.doc.location, clip.URL)
			assert.Equal(t, tt.wantVideo, clip.VideoID)
			assert.Equal(t, tt.wantTitle, clip.Title)
		})
	}
}

func TestExtractor_LocationError(t *testing.T) {
	_, err := DefaultExtractor().Extract(context.Background(), &stubDocument{locationErr: errors.New("page gone")})
	assert.EqualError(t, err, "page gone")
}

func strPtr(s string) *string {
	return &s
}
