package utils

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtils_ShouldDownloadImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/glyph.png":
			_, _ = w.Write(buf.Bytes())
		case "/notes.txt":
			_, _ = w.Write([]byte("plain text"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	data, err := DownloadImage(ctx, srv.URL+"/glyph.png")
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), data)

	_, err = DownloadImage(ctx, srv.URL+"/notes.txt")
	assert.ErrorContains(t, err, "not a valid image")

	_, err = DownloadImage(ctx, srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "404")
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	assert.True(t, IsValidUrl("https://github.com/esimov/glyphs/"))
	assert.False(t, IsValidUrl("glyphs/a.png"))
	assert.False(t, IsValidUrl("https://"))
}
