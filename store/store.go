// Package store keeps glyph collections in git repositories through go-git.
// A collection is one branch of a repository; every publish becomes a single
// commit on that branch, so images and catalogs always change together.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/memory"
)

const (
	// DefaultBranch is used when Options.Branch is empty.
	DefaultBranch = "main"

	// DefaultStorerCacheSize is the default size, in megabytes, of the LRU object cache.
	DefaultStorerCacheSize = 96

	remoteName = "origin"
)

// Signature identifies the author of the commits written by the store.
type Signature struct {
	Name  string
	Email string
}

// Options configures where a collection lives.
type Options struct {
	// Owner and Name identify the collection, e.g. "esimov" and "glyphs".
	Owner string
	Name  string

	// Branch holds the collection. Defaults to DefaultBranch.
	Branch string

	// Dir is the path of an on-disk bare repository. It is created when missing.
	Dir string

	// URL is a remote repository. It is cloned into memory and every commit is
	// pushed back. Dir and URL are mutually exclusive; when both are empty the
	// collection lives only in memory.
	URL string

	// Auth is used for clone and push when URL is set.
	Auth transport.AuthMethod

	// Author signs the commits. Defaults to a glyphcat bot identity.
	Author Signature

	// StorerCacheSize sets the LRU object cache size of on-disk repositories, in megabytes.
	StorerCacheSize int
}

// Validate checks that the Options are properly configured.
func (o *Options) Validate() error {
	if o.Owner == "" || o.Name == "" {
		return WrapError(ErrInvalidOptions, "owner and name are required")
	}
	if o.Dir != "" && o.URL != "" {
		return WrapError(ErrInvalidOptions, "dir and url are mutually exclusive")
	}
	if o.StorerCacheSize < 0 {
		return WrapError(ErrInvalidOptions, "StorerCacheSize cannot be negative")
	}
	return nil
}

// applyDefaults sets default values for any unset fields in Options.
func (o *Options) applyDefaults() {
	if o.Branch == "" {
		o.Branch = DefaultBranch
	}
	if o.StorerCacheSize == 0 {
		o.StorerCacheSize = DefaultStorerCacheSize
	}
	if o.Author.Name == "" {
		o.Author.Name = "glyphcat"
	}
	if o.Author.Email == "" {
		o.Author.Email = "glyphcat@users.noreply.github.com"
	}
}

// Location holds the public coordinates of a collection.
type Location struct {
	Owner  string
	Name   string
	Branch string
}

// CDNURL returns the content delivery address of a path inside the collection.
func (l Location) CDNURL(path string) string {
	return fmt.Sprintf("https://cdn.jsdelivr.net/gh/%s/%s@%s/%s", l.Owner, l.Name, l.Branch, path)
}

// String returns the owner/name form of the location.
func (l Location) String() string {
	return l.Owner + "/" + l.Name
}

// File is a path and its content, staged for a commit.
type File struct {
	Path string
	Data []byte
}

// Entry is one item of a directory listing.
type Entry struct {
	Name   string
	Path   string
	IsFile bool
}

// Collection is an open glyph collection. It is not safe for concurrent
// commits; reads may run concurrently with each other.
type Collection struct {
	repo    *git.Repository
	storer  storage.Storer
	opts    Options
	closers []io.Closer
}

// Open opens the collection described by opts. A missing on-disk repository
// is initialized empty; a missing branch is left for Ensure to create.
func Open(ctx context.Context, opts Options) (*Collection, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	switch {
	case opts.Dir != "":
		st := filesystem.NewStorage(osfs.New(opts.Dir), cache.NewObjectLRU(cache.FileSize(opts.StorerCacheSize)*cache.MiByte))
		c, err := openStorer(st, opts)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, st)
		return c, nil
	case opts.URL != "":
		return cloneRemote(ctx, opts)
	default:
		return openStorer(memory.NewStorage(), opts)
	}
}

// OpenStorer opens a collection on top of an existing go-git storer.
func OpenStorer(st storage.Storer, opts Options) (*Collection, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()
	return openStorer(st, opts)
}

func openStorer(st storage.Storer, opts Options) (*Collection, error) {
	repo, err := git.Open(st, nil)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.Init(st, nil)
	}
	if err != nil {
		return nil, WrapError(err, "failed to open repository")
	}
	return &Collection{repo: repo, storer: st, opts: opts}, nil
}

func cloneRemote(ctx context.Context, opts Options) (*Collection, error) {
	st := memory.NewStorage()
	repo, err := git.CloneContext(ctx, st, nil, &git.CloneOptions{
		URL:           opts.URL,
		Auth:          opts.Auth,
		RemoteName:    remoteName,
		ReferenceName: plumbing.NewBranchReferenceName(opts.Branch),
		SingleBranch:  true,
	})
	switch {
	case err == nil:
		return &Collection{repo: repo, storer: st, opts: opts}, nil
	case errors.Is(err, transport.ErrEmptyRemoteRepository), errors.Is(err, plumbing.ErrReferenceNotFound):
		// The remote exists but the branch does not: start from an empty
		// repository wired to the remote, Ensure creates the branch.
		st = memory.NewStorage()
		repo, err = git.Init(st, nil)
		if err != nil {
			return nil, WrapError(err, "failed to initialize repository")
		}
		if _, err := repo.CreateRemote(&config.RemoteConfig{Name: remoteName, URLs: []string{opts.URL}}); err != nil {
			return nil, WrapError(err, "failed to configure remote")
		}
		return &Collection{repo: repo, storer: st, opts: opts}, nil
	default:
		return nil, WrapErrorf(err, "failed to clone %s", opts.URL)
	}
}

// Location returns the public coordinates of the collection.
func (c *Collection) Location() Location {
	return Location{Owner: c.opts.Owner, Name: c.opts.Name, Branch: c.opts.Branch}
}

// Close releases the resources held by the underlying storage.
func (c *Collection) Close() error {
	var errs []error
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Collection) branchRef() plumbing.ReferenceName {
	return plumbing.NewBranchReferenceName(c.opts.Branch)
}

// Head returns the branch head commit hash.
func (c *Collection) Head(ctx context.Context) (string, error) {
	ref, err := c.head()
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

func (c *Collection) head() (*plumbing.Reference, error) {
	ref, err := c.storer.Reference(c.branchRef())
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, WrapErrorf(ErrBranchMissing, "branch %q", c.opts.Branch)
	}
	if err != nil {
		return nil, WrapError(err, "failed to resolve branch")
	}
	return ref, nil
}

func (c *Collection) headTree() (*object.Commit, *object.Tree, error) {
	ref, err := c.head()
	if err != nil {
		return nil, nil, err
	}
	commit, err := object.GetCommit(c.storer, ref.Hash())
	if err != nil {
		return nil, nil, WrapError(err, "failed to load head commit")
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, nil, WrapError(err, "failed to load head tree")
	}
	return commit, tree, nil
}

// Ensure creates the collection branch with its base layout when it does not
// exist yet. It reports whether the branch was created. Calling it on an
// existing collection does nothing.
func (c *Collection) Ensure(ctx context.Context) (bool, error) {
	if _, err := c.head(); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrBranchMissing) {
		return false, err
	}

	files := []File{
		{Path: "glyphs/.gitkeep"},
		{Path: "data/.gitkeep"},
	}
	hashes, err := c.writeBlobs(files)
	if err != nil {
		return false, err
	}
	tree, err := buildTree(c.storer, nil, hashes)
	if err != nil {
		return false, err
	}
	commit, err := c.writeCommit("init", tree)
	if err != nil {
		return false, err
	}

	ref := plumbing.NewHashReference(c.branchRef(), commit)
	if err := c.storer.CheckAndSetReference(ref, nil); err != nil {
		return false, WrapError(err, "failed to create branch")
	}
	head := plumbing.NewSymbolicReference(plumbing.HEAD, c.branchRef())
	if err := c.storer.SetReference(head); err != nil {
		return false, WrapError(err, "failed to set HEAD")
	}
	if err := c.push(ctx); err != nil {
		_ = c.storer.RemoveReference(c.branchRef())
		return false, err
	}
	return true, nil
}

// ReadFile returns the content of path on the branch head.
func (c *Collection) ReadFile(ctx context.Context, path string) ([]byte, error) {
	_, tree, err := c.headTree()
	if err != nil {
		return nil, err
	}
	f, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
		return nil, WrapErrorf(ErrNotFound, "%s", path)
	}
	if err != nil {
		return nil, WrapErrorf(err, "failed to open %s", path)
	}
	r, err := f.Reader()
	if err != nil {
		return nil, WrapErrorf(err, "failed to read %s", path)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, WrapErrorf(err, "failed to read %s", path)
	}
	return data, nil
}

// List returns the entries of a directory on the branch head. An empty dir
// lists the repository root.
func (c *Collection) List(ctx context.Context, dir string) ([]Entry, error) {
	_, tree, err := c.headTree()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		tree, err = tree.Tree(dir)
		if errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, WrapErrorf(ErrNotFound, "%s", dir)
		}
		if err != nil {
			return nil, WrapErrorf(err, "failed to open %s", dir)
		}
	}

	entries := make([]Entry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		path := e.Name
		if dir != "" {
			path = dir + "/" + e.Name
		}
		entries = append(entries, Entry{Name: e.Name, Path: path, IsFile: e.Mode.IsFile()})
	}
	return entries, nil
}

// Commit writes all files as one new commit on top of the branch head and
// moves the branch to it. Either every file becomes visible together or the
// branch keeps pointing to its previous head.
func (c *Collection) Commit(ctx context.Context, message string, files []File) (string, error) {
	if message == "" {
		return "", WrapError(ErrInvalidOptions, "commit message cannot be empty")
	}
	parent, base, err := c.headTree()
	if err != nil {
		return "", err
	}
	oldRef := plumbing.NewHashReference(c.branchRef(), parent.Hash)

	hashes, err := c.writeBlobs(files)
	if err != nil {
		return "", err
	}
	tree, err := buildTree(c.storer, base, hashes)
	if err != nil {
		return "", err
	}
	commit, err := c.writeCommit(message, tree, parent.Hash)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", WrapError(err, "commit aborted")
	}

	newRef := plumbing.NewHashReference(c.branchRef(), commit)
	if err := c.storer.CheckAndSetReference(newRef, oldRef); err != nil {
		if errors.Is(err, storage.ErrReferenceHasChanged) {
			return "", WrapErrorf(ErrConflict, "branch %q", c.opts.Branch)
		}
		return "", WrapError(err, "failed to update branch")
	}
	if err := c.push(ctx); err != nil {
		if rerr := c.storer.CheckAndSetReference(oldRef, newRef); rerr != nil {
			return "", errors.Join(err, WrapError(rerr, "failed to restore branch"))
		}
		return "", err
	}
	return commit.String(), nil
}

func (c *Collection) writeBlobs(files []File) (map[string]plumbing.Hash, error) {
	hashes := make(map[string]plumbing.Hash, len(files))
	for _, f := range files {
		if err := validPath(f.Path); err != nil {
			return nil, err
		}
		obj := c.storer.NewEncodedObject()
		obj.SetType(plumbing.BlobObject)
		obj.SetSize(int64(len(f.Data)))
		w, err := obj.Writer()
		if err != nil {
			return nil, WrapErrorf(err, "failed to stage %s", f.Path)
		}
		if _, err := w.Write(f.Data); err != nil {
			_ = w.Close()
			return nil, WrapErrorf(err, "failed to stage %s", f.Path)
		}
		if err := w.Close(); err != nil {
			return nil, WrapErrorf(err, "failed to stage %s", f.Path)
		}
		h, err := c.storer.SetEncodedObject(obj)
		if err != nil {
			return nil, WrapErrorf(err, "failed to stage %s", f.Path)
		}
		hashes[f.Path] = h
	}
	return hashes, nil
}

func (c *Collection) writeCommit(message string, tree plumbing.Hash, parents ...plumbing.Hash) (plumbing.Hash, error) {
	sig := object.Signature{
		Name:  c.opts.Author.Name,
		Email: c.opts.Author.Email,
		When:  time.Now(),
	}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     tree,
		ParentHashes: parents,
	}
	obj := c.storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, WrapError(err, "failed to encode commit")
	}
	h, err := c.storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, WrapError(err, "failed to write commit")
	}
	return h, nil
}

// push publishes the branch when the collection has a remote.
func (c *Collection) push(ctx context.Context) error {
	if c.opts.URL == "" {
		return nil
	}
	spec := config.RefSpec(fmt.Sprintf("%s:%s", c.branchRef(), c.branchRef()))
	err := c.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       c.opts.Auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return WrapError(err, "failed to push to remote")
	}
	return nil
}
