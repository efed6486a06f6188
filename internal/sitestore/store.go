// Package sitestore persists generated sites as plain directories of files.
// Each site is a directory under the store root; the empty site name means
// the root itself, matching single-site deployments.
package sitestore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Store reads and writes site directories. All mutating operations on a
// site must run under that site's lock; handlers acquire it once per
// request so bootstrap, injection, and deploy never interleave.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New opens a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, sberrors.ConfigRequired("site.directory")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, sberrors.StoreError("init", err)
	}
	return &Store{root: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Dir returns the directory holding the named site. Names are slugged, so
// callers can pass the business name as given by the user.
func (s *Store) Dir(name string) string {
	slug := site.Slugify(name)
	if slug == "" {
		return s.root
	}
	return filepath.Join(s.root, slug)
}

// Lock acquires the advisory lock for a site and returns its release
// function.
func (s *Store) Lock(name string) func() {
	key := site.Slugify(name)
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Bootstrap writes the given pages into the site directory. It is additive:
// existing files not named in pages are left alone, named ones are
// overwritten. Parent directories (assets/) are created as needed.
func (s *Store) Bootstrap(name string, pages []site.Page) error {
	dir := s.Dir(name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return sberrors.StoreError("bootstrap", err)
	}
	for _, p := range pages {
		if err := s.writeFile(dir, p.Filename, []byte(p.Body)); err != nil {
			return err
		}
	}
	return nil
}

// SaveAsset writes raw asset bytes at a relative path inside the site.
func (s *Store) SaveAsset(name, relPath string, data []byte) error {
	if err := s.writeFile(s.Dir(name), relPath, data); err != nil {
		return sberrors.AssetSaveFailed(relPath, err)
	}
	return nil
}

// ReadPage returns the contents of one page.
func (s *Store) ReadPage(name, filename string) (string, error) {
	if !localName(filename) {
		return "", sberrors.PageNotFound(filename)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir(name), filepath.FromSlash(filename)))
	if err != nil {
		if os.IsNotExist(err) {
			return "", sberrors.PageNotFound(filename)
		}
		return "", sberrors.StoreError("read", err)
	}
	return string(data), nil
}

// ListPages returns the HTML page filenames of a site, sorted.
func (s *Store) ListPages(name string) ([]string, error) {
	entries, err := os.ReadDir(s.Dir(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, sberrors.StoreError("list", err)
	}
	var pages []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".html") {
			pages = append(pages, e.Name())
		}
	}
	return pages, nil
}

// RewritePages applies transform to every HTML page of a site and writes
// back only the pages whose content changed. It returns the number of pages
// rewritten. Transforms must be pure so a second pass is a no-op.
func (s *Store) RewritePages(name string, transform func(filename, body string) (string, error)) (int, error) {
	pages, err := s.ListPages(name)
	if err != nil {
		return 0, err
	}
	dir := s.Dir(name)
	changed := 0
	for _, filename := range pages {
		path := filepath.Join(dir, filename)
		data, err := os.ReadFile(path) // #nosec G304 -- path is store-internal
		if err != nil {
			return changed, sberrors.StoreError("read", err)
		}
		next, err := transform(filename, string(data))
		if err != nil {
			return changed, err
		}
		if next == string(data) {
			continue
		}
		if err := os.WriteFile(path, []byte(next), 0o640); err != nil {
			return changed, sberrors.StoreError("write", err)
		}
		changed++
	}
	return changed, nil
}

// WalkPages visits every HTML page of a site without modifying it.
func (s *Store) WalkPages(name string, visit func(filename, body string) error) error {
	pages, err := s.ListPages(name)
	if err != nil {
		return err
	}
	dir := s.Dir(name)
	for _, filename := range pages {
		data, err := os.ReadFile(filepath.Join(dir, filename)) // #nosec G304
		if err != nil {
			return sberrors.StoreError("read", err)
		}
		if err := visit(filename, string(data)); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether the site directory contains at least one page.
func (s *Store) Exists(name string) bool {
	pages, err := s.ListPages(name)
	return err == nil && len(pages) > 0
}

func (s *Store) writeFile(dir, relPath string, data []byte) error {
	if !localName(relPath) {
		return sberrors.ValidationFailed("filename", fmt.Sprintf("%q escapes the site directory", relPath))
	}
	path := filepath.Join(dir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return sberrors.StoreError("mkdir", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return sberrors.StoreError("write", err)
	}
	return nil
}

// localName accepts slash-separated relative paths that stay inside the
// site directory.
func localName(relPath string) bool {
	if relPath == "" || strings.Contains(relPath, "\\") {
		return false
	}
	if !fs.ValidPath(relPath) {
		return false
	}
	return filepath.IsLocal(filepath.FromSlash(relPath))
}
