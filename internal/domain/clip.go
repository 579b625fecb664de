package domain

import (
	"net/url"
	"regexp"
)

// ClipPathPattern matches the clip segment of a clip page URL and captures its token
var ClipPathPattern = regexp.MustCompile(`/clip/(Ugk[\w-]+)`)

// DefaultClipTitle is used when the page exposes no usable title
const DefaultClipTitle = "youtube_clip"

// ClipDescriptor describes the clip shown on the current page.
// It is derived on every navigation and never persisted.
type ClipDescriptor struct {
	ClipID  string  `json:"clipId"`
	VideoID *string `json:"videoId"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
}

// ExtractClipID returns the clip token captured from a page URL
func ExtractClipID(rawURL string) (string, bool) {
	m := ClipPathPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsClipURL reports whether the URL points at a clip page
func IsClipURL(rawURL string) bool {
	_, ok := ExtractClipID(rawURL)
	return ok
}

// QueryParam returns a non-empty query parameter of a URL
func QueryParam(rawURL, key string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	v := u.Query().Get(key)
	return v, v != ""
}

// HasVideoID reports whether a video id was found for the clip
func (c *ClipDescriptor) HasVideoID() bool {
	return c.VideoID != nil && *c.VideoID != ""
}

// DownloadRequest is the payload sent to the local service for one click
type DownloadRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// NewDownloadRequest builds the service payload from a clip descriptor
func NewDownloadRequest(clip *ClipDescriptor) DownloadRequest {
	return DownloadRequest{
		URL:   clip.URL,
		Title: clip.Title,
	}
}

// DownloadResult is the local service's answer to a download request
type DownloadResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	FilePath string `json:"filepath,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UIState is the visual state of the injected download button
type UIState int

const (
	StateIdle UIState = iota
	StateRequesting
	StateSuccess
	StateFailure
)

func (s UIState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ClipMetadata is the subset of yt-dlp's JSON dump used to inspect a clip
type ClipMetadata struct {
	Success        bool     `json:"success"`
	IsLive         bool     `json:"is_live"`
	LiveStatus     string   `json:"live_status,omitempty"`
	HasClipSection bool     `json:"has_clip_section"`
	SectionStart   *float64 `json:"section_start"`
	SectionEnd     *float64 `json:"section_end"`
	Duration       *float64 `json:"duration"`
	Title          string   `json:"title"`
}
