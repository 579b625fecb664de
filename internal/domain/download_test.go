package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDownload(t *testing.T) {
	req := DownloadRequest{URL: "https://www.youtube.com/clip/UgkxAbc", Title: "Goal"}

	download := NewDownload(req)

	assert.NotEmpty(t, download.ID)
	assert.Equal(t, req.URL, download.URL)
	assert.Equal(t, "Goal", download.Title)
	assert.Equal(t, StatusProcessing, download.Status)
	assert.False(t, download.IsTerminal())
}

func TestDownload_MarkCompleted(t *testing.T) {
	download := NewDownload(DownloadRequest{URL: "https://www.youtube.com/clip/UgkxAbc"})

	download.MarkCompleted("/tmp/x.mp4")

	assert.Equal(t, StatusCompleted, download.Status)
	assert.Equal(t, "/tmp/x.mp4", download.FilePath)
	assert.NotNil(t, download.CompletedAt)
	assert.True(t, download.IsTerminal())
}

func TestDownload_MarkFailed(t *testing.T) {
	download := NewDownload(DownloadRequest{URL: "https://www.youtube.com/clip/UgkxAbc"})

	download.MarkFailed(errors.New("yt-dlp error: boom"))

	assert.Equal(t, StatusFailed, download.Status)
	assert.Equal(t, "yt-dlp error: boom", download.ErrorMessage)
	assert.True(t, download.IsTerminal())
}

func TestValidateStatus(t *testing.T) {
	assert.True(t, ValidateStatus(StatusProcessing))
	assert.True(t, ValidateStatus(StatusCompleted))
	assert.True(t, ValidateStatus(StatusFailed))
	assert.False(t, ValidateStatus("queued"))
}

func TestExtractClipID(t *testing.T) {
	tests := []struct {
		url      string
		expected string
		ok       bool
	}{
		{"https://site/clip/UgkAbc123_def", "UgkAbc123_def", true},
		{"https://www.youtube.com/clip/Ugkx-9aZ?si=abc", "Ugkx-9aZ", true},
		{"https://www.youtube.com/clip/UgkxAbc/extra", "UgkxAbc", true},
		{"https://www.youtube.com/watch?v=abc", "", false},
		{"https://www.youtube.com/clip/", "", false},
		{"https://www.youtube.com/clip/Abc123", "", false},
		{"https://www.youtube.com/clips/UgkAbc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			id, ok := ExtractClipID(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, id)
			assert.Equal(t, tt.ok, IsClipURL(tt.url))
		})
	}
}

func TestQueryParam(t *testing.T) {
	v, ok := QueryParam("https://www.youtube.com/clip/UgkAbc?v=dQw4w9WgXcQ", "v")
	assert.True(t, ok)
	assert.Equal(t, "dQw4w9WgXcQ", v)

	_, ok = QueryParam("https://www.youtube.com/clip/UgkAbc?v=", "v")
	assert.False(t, ok)

	_, ok = QueryParam("://bad", "v")
	assert.False(t, ok)
}

func TestClipDescriptor_JSONShape(t *testing.T) {
	clip := &ClipDescriptor{ClipID: "UgkAbc", Title: "t", URL: "https://site/clip/UgkAbc"}

	data, err := json.Marshal(NewDownloadClipMessage(clip))
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "downloadClip", raw["action"])

	info := raw["clipInfo"].(map[string]interface{})
	assert.Equal(t, "UgkAbc", info["clipId"])
	assert.Contains(t, info, "videoId")
	assert.Nil(t, info["videoId"])
	assert.False(t, clip.HasVideoID())
}

func TestNewDownloadRequest(t *testing.T) {
	clip := &ClipDescriptor{ClipID: "UgkAbc", Title: "Best moment", URL: "https://site/clip/UgkAbc"}

	req := NewDownloadRequest(clip)

	assert.Equal(t, DownloadRequest{URL: "https://site/clip/UgkAbc", Title: "Best moment"}, req)
}

func TestUIState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "requesting", StateRequesting.String())
	assert.Equal(t, "success", StateSuccess.String())
	assert.Equal(t, "failure", StateFailure.String())
	assert.Equal(t, "unknown", UIState(42).String())
}

func TestReplyError(t *testing.T) {
	reply := ReplyError(errors.New("X"))
	assert.False(t, reply.Success)
	assert.Equal(t, "X", reply.Error)
	assert.True(t, ReplyOK().Success)
}
