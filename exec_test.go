package glyphcat

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/esimov/glyphcat/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

var filenamePattern = regexp.MustCompile(`^[0-9a-f]{6}_[0-9a-f]{6}_[0-9a-f]{8}\.png$`)

func testProcessor(t *testing.T) *Processor {
	return &Processor{
		Workers:  4,
		Seed:     7,
		Location: store.Location{Owner: "esimov", Name: "glyphs", Branch: "main"},
		Logger:   zaptest.NewLogger(t),
		now: func() time.Time {
			return time.Date(2024, 3, 5, 9, 7, 1, 0, time.UTC)
		},
	}
}

func glyphFiles(t *testing.T, n int) map[string][]byte {
	files := make(map[string][]byte, n)
	for i := 0; i < n; i++ {
		files[fmt.Sprintf("glyph-%02d.png", i)] = twoToneGlyph(t)
	}
	return files
}

func TestProcessor_Analyze(t *testing.T) {
	p := testProcessor(t)

	res, err := p.Analyze("glyph.png", twoToneGlyph(t))
	require.NoError(t, err)

	g := res.Glyph
	assert.Regexp(t, filenamePattern, g.Filename)
	assert.Equal(t, "e61414_1428dc_"+g.ID+".png", g.Filename)
	assert.Len(t, g.ID, 8)
	assert.Equal(t, "https://cdn.jsdelivr.net/gh/esimov/glyphs@main/glyphs/"+g.Filename, g.URL)
	assert.Equal(t, "2024-03-05", g.CreatedAt.Date)
	assert.Equal(t, "09:07:01", g.CreatedAt.Time)
	assert.Equal(t, "red", g.Color.Dominant.Group)
	assert.Equal(t, "blue", g.Color.Secondary.Group)
	assert.Equal(t, [3]int{230, 20, 20}, g.Color.Dominant.RGB)
	assert.Greater(t, g.Color.PaletteContrast, 0.0)
	assert.Contains(t, moodNames[:], g.Mood)

	// The stored image is the full decoded raster, not the cropped one.
	img, err := Decode(res.Image)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
}

func TestProcessor_AnalyzeRejectsInvalidInput(t *testing.T) {
	p := testProcessor(t)

	_, err := p.Analyze("broken.png", []byte("not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestProcessor_SeedIsReproducible(t *testing.T) {
	defer goleak.VerifyNone(t)

	files := glyphFiles(t, 6)
	names := func(rep *Report) []string {
		var out []string
		for _, r := range rep.Results {
			out = append(out, r.Glyph.Filename)
		}
		sort.Strings(out)
		return out
	}

	r1, err := testProcessor(t).Execute(context.Background(), Batch{Files: files})
	require.NoError(t, err)
	r2, err := testProcessor(t).Execute(context.Background(), Batch{Files: files})
	require.NoError(t, err)

	assert.Equal(t, names(r1), names(r2))
	// Every input gets its own id.
	seen := make(map[string]bool)
	for _, n := range names(r1) {
		assert.False(t, seen[n], "duplicate filename %s", n)
		seen[n] = true
	}
}

func TestExecute_EveryInputIsAccountedFor(t *testing.T) {
	defer goleak.VerifyNone(t)

	files := glyphFiles(t, 12)
	files["broken.png"] = []byte("garbage")
	files["notes.txt"] = []byte("hello")
	files["photo.JPG"] = []byte{0xff, 0xd8, 0xff}

	b := Batch{
		Files: files,
		Prior: []Skip{{Reason: SkipFetchError, Filename: "missing.png"}},
	}
	rep, err := testProcessor(t).Execute(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, 16, rep.Total)
	assert.Equal(t, 12, rep.Success())
	assert.Equal(t, 4, rep.Skipped())
	assert.Equal(t, rep.Total, rep.Success()+rep.Skipped())

	assert.ElementsMatch(t, []string{
		"SKIP.FETCH_ERROR :: missing.png",
		"SKIP.INVALID_IMAGE :: broken.png",
		"SKIP.UNSUPPORTED_FORMAT :: notes.txt",
		"SKIP.UNSUPPORTED_FORMAT :: photo.JPG",
	}, rep.Summary())

	for _, r := range rep.Results {
		assert.Regexp(t, filenamePattern, r.Glyph.Filename)
	}
}

func TestExecute_InputCount(t *testing.T) {
	defer goleak.VerifyNone(t)

	rep, err := testProcessor(t).Execute(context.Background(), Batch{
		Files:      glyphFiles(t, 2),
		InputCount: 5,
		Prior: []Skip{
			{Reason: SkipFetchError, Filename: "a.png"},
			{Reason: SkipFetchError, Filename: "b.png"},
			{Reason: SkipInvalidImage, Filename: "c.png"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Total)
	assert.Equal(t, rep.Total, rep.Success()+rep.Skipped())
}

func TestExecute_ReportsProgress(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls [][2]int
	p := testProcessor(t)
	p.Workers = 1
	p.OnProgress = func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}

	_, err := p.Execute(context.Background(), Batch{Files: glyphFiles(t, 3)})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestExecute_WorkersAreClamped(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, workers := range []int{-3, 0, 1000} {
		p := testProcessor(t)
		p.Workers = workers
		rep, err := p.Execute(context.Background(), Batch{Files: glyphFiles(t, 3)})
		require.NoError(t, err)
		assert.Equal(t, 3, rep.Success())
	}
}

func TestExecute_EmptyBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	rep, err := testProcessor(t).Execute(context.Background(), Batch{})
	require.NoError(t, err)
	assert.Zero(t, rep.Total)
	assert.Empty(t, rep.Results)
	assert.Empty(t, rep.Summary())
}

func TestExecute_Canceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := testProcessor(t).Execute(ctx, Batch{Files: glyphFiles(t, 5)})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, rep)
	assert.Empty(t, rep.Results)
	assert.Equal(t, 5, rep.Total)
}

func TestEncodePNG_RoundTrip(t *testing.T) {
	src, err := Decode(twoToneGlyph(t))
	require.NoError(t, err)

	data, err := encodePNG(src)
	require.NoError(t, err)

	dst, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(src.Pix, dst.Pix))
}
