package store

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// validPath rejects paths that cannot be placed into a git tree.
func validPath(p string) error {
	if p == "" || strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") || path.Clean(p) != p {
		return WrapErrorf(ErrInvalidOptions, "invalid path %q", p)
	}
	for _, part := range strings.Split(p, "/") {
		if part == "." || part == ".." || part == ".git" {
			return WrapErrorf(ErrInvalidOptions, "invalid path %q", p)
		}
	}
	return nil
}

// buildTree writes a new tree that is base with files placed on top of it,
// replacing entries with the same path. Subtrees untouched by files are
// reused as they are. It returns the hash of the new root tree.
func buildTree(s storer.EncodedObjectStorer, base *object.Tree, files map[string]plumbing.Hash) (plumbing.Hash, error) {
	entries := make(map[string]object.TreeEntry)
	if base != nil {
		for _, e := range base.Entries {
			entries[e.Name] = e
		}
	}

	nested := make(map[string]map[string]plumbing.Hash)
	for p, h := range files {
		dir, rest, ok := strings.Cut(p, "/")
		if !ok {
			entries[p] = object.TreeEntry{Name: p, Mode: filemode.Regular, Hash: h}
			continue
		}
		if nested[dir] == nil {
			nested[dir] = make(map[string]plumbing.Hash)
		}
		nested[dir][rest] = h
	}

	for dir, children := range nested {
		var sub *object.Tree
		if e, ok := entries[dir]; ok && e.Mode == filemode.Dir {
			t, err := object.GetTree(s, e.Hash)
			if err != nil {
				return plumbing.ZeroHash, WrapErrorf(err, "failed to load tree %s", dir)
			}
			sub = t
		}
		h, err := buildTree(s, sub, children)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries[dir] = object.TreeEntry{Name: dir, Mode: filemode.Dir, Hash: h}
	}

	tree := &object.Tree{Entries: make([]object.TreeEntry, 0, len(entries))}
	for _, e := range entries {
		tree.Entries = append(tree.Entries, e)
	}
	// Git orders tree entries by name, comparing directories as if they had a trailing slash.
	sort.Slice(tree.Entries, func(i, j int) bool {
		return sortKey(tree.Entries[i]) < sortKey(tree.Entries[j])
	})

	obj := s.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode tree: %w", err)
	}
	h, err := s.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, WrapError(err, "failed to write tree")
	}
	return h, nil
}

func sortKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}
