package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxDownloadSize caps the size of a downloaded image.
const maxDownloadSize = 32 << 20

// DownloadImage retrieves the image found at the url and returns its content.
func DownloadImage(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image URI %s: %w", uri, err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to download image file from URI: %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download image file from URI: %s, status %v", uri, res.Status)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("the downloaded file exceeds %d bytes", maxDownloadSize)
	}
	if !IsImage(data) {
		return nil, fmt.Errorf("the downloaded file is not a valid image type")
	}
	return data, nil
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	_, err := url.ParseRequestURI(uri)
	if err != nil {
		return false
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	return true
}
