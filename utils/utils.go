package utils

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DetectContentType sniffs the MIME type of a byte slice.
// Only the first 512 bytes are used to sniff the content type.
func DetectContentType(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	// Always returns a valid content-type and "application/octet-stream" if no others seemed to match.
	return http.DetectContentType(data)
}

// IsImage reports whether the sniffed content type is an image type.
func IsImage(data []byte) bool {
	return strings.HasPrefix(DetectContentType(data), "image/")
}

// HasExtension checks case-insensitively whether the file name ends with ext.
func HasExtension(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

// ReadDir loads every regular file of a directory (non-recursive) into memory,
// keyed by the base file name.
func ReadDir(dir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read the input directory: %w", err)
	}

	files := make(map[string][]byte, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("unable to read %q: %w", e.Name(), err)
		}
		files[e.Name()] = data
	}
	return files, nil
}
