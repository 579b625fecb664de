package domain

import "context"

// Downloader fetches clips with an external tool
type Downloader interface {
	// Download fetches the clip and returns the final file path
	Download(ctx context.Context, req DownloadRequest) (*FetchResult, error)

	// Inspect returns metadata about a clip without downloading it
	Inspect(ctx context.Context, url string) (*ClipMetadata, error)
}

// FetchResult represents the result of a download operation
type FetchResult struct {
	FilePath string
	Output   string
}
