package glyphcat

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/esimov/glyphcat/catalog"
	"github.com/esimov/glyphcat/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultWorkers is the number of glyphs analyzed concurrently when Processor.Workers is unset.
	DefaultWorkers = 10

	// maxWorkers sets the maximum number of concurrently running workers.
	maxWorkers = 64

	// GlyphDir is the collection directory holding the glyph images.
	GlyphDir = "glyphs"
)

// Processor options
type Processor struct {
	// Workers bounds the number of glyphs analyzed at the same time.
	Workers int
	// Clusters is the number of k-means clusters used to find the palette.
	Clusters int
	// Seed makes the color clustering and the record ids reproducible when
	// not zero. Every glyph derives its own generator from Seed and its file
	// name, so results do not depend on the scheduling order. Publishing the
	// same seeded input twice is therefore rejected as a duplicate.
	Seed int64
	// Location is the collection the records will be published to; it is used
	// to build the public glyph URLs.
	Location store.Location
	// Logger receives a debug entry per analyzed glyph. Defaults to a no-op logger.
	Logger *zap.Logger
	// OnProgress, when set, is called from the collecting goroutine after
	// every processed input.
	OnProgress func(done, total int)

	now func() time.Time
}

// Result is a successfully analyzed glyph: its catalog record and the PNG
// bytes to be stored under the record file name.
type Result struct {
	Glyph catalog.Glyph
	Image []byte
}

func (p *Processor) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p *Processor) clock() time.Time {
	if p.now != nil {
		return p.now().UTC()
	}
	return time.Now().UTC()
}

// source returns the random generator used for one glyph.
func (p *Processor) source(name string) *rand.Rand {
	if p.Seed == 0 {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewSource(p.Seed ^ int64(h.Sum64())))
}

// Analyze extracts the features of a single PNG glyph and builds its record.
func (p *Processor) Analyze(name string, data []byte) (*Result, error) {
	g, err := Preprocess(data)
	if err != nil {
		return nil, err
	}
	rng := p.source(name)

	k := p.Clusters
	if k <= 0 {
		k = DefaultClusters
	}
	dom, sec := DominantColors(g, k, rng)
	metrics := measure(g)
	harmony := ColorHarmony(dom, sec)
	mood := ClassifyMood(MoodInput{
		Dominant:    dom,
		Entropy:     metrics.Entropy,
		EdgeDensity: metrics.EdgeDensity,
		Texture:     metrics.Texture,
		Contrast:    metrics.Contrast,
		Circularity: metrics.Circularity,
		AspectRatio: metrics.AspectRatio,
		EdgeAngle:   metrics.EdgeAngle,
		Harmony:     harmony,
	})

	uid := uuid.New()
	if p.Seed != 0 {
		if uid, err = uuid.NewRandomFromReader(rng); err != nil {
			return nil, fmt.Errorf("could not generate glyph id: %w", err)
		}
	}
	id := uid.String()[:8]
	filename := fmt.Sprintf("%s_%s_%s.png", dom.Hex(), sec.Hex(), id)

	img, err := encodePNG(g.Source)
	if err != nil {
		return nil, err
	}
	now := p.clock()

	return &Result{
		Glyph: catalog.Glyph{
			ID:       id,
			Filename: filename,
			URL:      p.Location.CDNURL(GlyphDir + "/" + filename),
			Color: catalog.Color{
				Dominant:        swatch(dom),
				Secondary:       swatch(sec),
				PaletteContrast: PaletteContrast(dom, sec),
			},
			Metrics:      metrics,
			ColorHarmony: harmony,
			Mood:         mood.String(),
			CreatedAt: catalog.Timestamp{
				Date: now.Format("2006-01-02"),
				Time: now.Format("15:04:05"),
			},
		},
		Image: img,
	}, nil
}
