package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

var downloadClient = &http.Client{Timeout: 30 * time.Second}

// DownloadFileFromURL fetches a remote file and returns its bytes, a file
// name derived from the URL path and the reported content type. Bodies
// larger than maxSize are rejected.
func DownloadFileFromURL(ctx context.Context, url string, maxSize int64) ([]byte, string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid url: %w", err)
	}

	resp, err := downloadClient.Do(req)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", "", fmt.Errorf("failed to download %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", "", fmt.Errorf("file exceeds max download size of %d bytes", maxSize)
	}

	fileName := path.Base(req.URL.Path)
	if fileName == "/" || fileName == "." {
		fileName = "file"
	}

	mimeType := resp.Header.Get("Content-Type")
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}

	return data, fileName, mimeType, nil
}
