package glyphcat

import (
	"context"
	"fmt"
	"sync"

	"github.com/esimov/glyphcat/utils"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Batch is a set of input files to be analyzed.
type Batch struct {
	// Files maps the input file name to its content.
	Files map[string][]byte
	// InputCount is the number of inputs originally requested, which can be
	// larger than len(Files) when an upstream fetch dropped some of them.
	// When zero, len(Files)+len(Prior) is used.
	InputCount int
	// Prior lists the inputs already skipped upstream.
	Prior []Skip
}

// Report is the outcome of a batch.
type Report struct {
	Total   int
	Results []Result
	Skips   []Skip
}

// Success returns the number of glyphs analyzed successfully.
func (r *Report) Success() int { return len(r.Results) }

// Skipped returns the number of inputs which produced no record.
func (r *Report) Skipped() int { return len(r.Skips) }

// result holds the outcome of analyzing one input.
type result struct {
	name string
	res  *Result
	err  error
}

// Execute analyzes the batch on a bounded pool of workers. Every input either
// yields a Result or a Skip; item failures never abort the batch. Results are
// appended in completion order. When ctx is canceled no new input is started,
// the ones in progress complete and the partial report is returned together
// with the context error.
func (p *Processor) Execute(ctx context.Context, b Batch) (*Report, error) {
	rep := &Report{
		Total: b.InputCount,
		Skips: append([]Skip(nil), b.Prior...),
	}
	if rep.Total <= 0 {
		rep.Total = len(b.Files) + len(b.Prior)
	}

	names := make([]string, 0, len(b.Files))
	for name := range b.Files {
		if !utils.HasExtension(name, ".png") {
			rep.Skips = append(rep.Skips, Skip{Reason: SkipUnsupportedFormat, Filename: name})
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	workers = utils.Clamp(workers, 1, maxWorkers)

	log := p.logger()
	log.Debug("batch started",
		zap.Int("inputs", len(names)),
		zap.Int("workers", workers),
	)

	ch := make(chan result)
	paths := feed(ctx, names)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			p.consumer(b.Files, paths, ch)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	done := 0
	for res := range ch {
		done++
		if res.err != nil {
			skip := skipFor(res.name, res.err)
			rep.Skips = append(rep.Skips, skip)
			log.Debug("glyph skipped", zap.String("file", res.name), zap.Stringer("reason", skip), zap.Error(res.err))
		} else {
			rep.Results = append(rep.Results, *res.res)
			log.Debug("glyph analyzed",
				zap.String("file", res.name),
				zap.String("filename", res.res.Glyph.Filename),
				zap.String("mood", res.res.Glyph.Mood),
			)
		}
		if p.OnProgress != nil {
			p.OnProgress(done, len(names))
		}
	}

	if err := ctx.Err(); err != nil && done < len(names) {
		return rep, fmt.Errorf("batch interrupted after %d of %d glyphs: %w", done, len(names), err)
	}
	return rep, nil
}

// consumer reads the file names from the paths channel and analyzes the matching files.
func (p *Processor) consumer(files map[string][]byte, paths <-chan string, res chan<- result) {
	for name := range paths {
		r, err := p.Analyze(name, files[name])
		res <- result{name: name, res: r, err: err}
	}
}

// feed starts a new goroutine sending the names to the returned channel.
// It stops early when ctx is done.
func feed(ctx context.Context, names []string) <-chan string {
	paths := make(chan string)
	go func() {
		defer close(paths)
		for _, name := range names {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case paths <- name:
			}
		}
	}()
	return paths
}

// Summary returns the skip diagnostics as text lines.
func (r *Report) Summary() []string {
	lines := make([]string, 0, len(r.Skips))
	for _, s := range r.Skips {
		lines = append(lines, s.String())
	}
	return lines
}
