package store

import (
	"context"
	"strings"
)

// FetchFailure describes a source file that could not be fetched or validated.
type FetchFailure struct {
	Name    string
	Invalid bool // true when the bytes were read but failed validation
	Err     error
}

// FetchResult holds the files read from a source collection.
type FetchResult struct {
	// Files maps the file name to its content.
	Files map[string][]byte
	// Failures lists the files which were found but could not be used.
	Failures []FetchFailure
	// Count is the number of matching entries found before any of them was read.
	Count int
}

// Fetch reads every .png file (case-insensitive) directly under dir on the
// collection branch. Each file is passed to validate, when not nil; files
// failing validation or failing to be read are reported in Failures instead
// of aborting the fetch. An error is returned only when the directory itself
// cannot be listed.
func Fetch(ctx context.Context, c *Collection, dir string, validate func([]byte) error) (*FetchResult, error) {
	entries, err := c.List(ctx, strings.Trim(dir, "/"))
	if err != nil {
		return nil, err
	}

	res := &FetchResult{Files: make(map[string][]byte)}
	for _, e := range entries {
		if !e.IsFile || !strings.HasSuffix(strings.ToLower(e.Name), ".png") {
			continue
		}
		res.Count++

		if err := ctx.Err(); err != nil {
			res.Failures = append(res.Failures, FetchFailure{Name: e.Name, Err: err})
			continue
		}
		data, err := c.ReadFile(ctx, e.Path)
		if err != nil {
			res.Failures = append(res.Failures, FetchFailure{Name: e.Name, Err: err})
			continue
		}
		if validate != nil {
			if err := validate(data); err != nil {
				res.Failures = append(res.Failures, FetchFailure{Name: e.Name, Invalid: true, Err: err})
				continue
			}
		}
		res.Files[e.Name] = data
	}
	return res, nil
}
