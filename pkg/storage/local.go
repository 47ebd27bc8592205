package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local is the local-filesystem driver.
type Local struct {
	root    string // absolute root directory
	baseURL string // public URL prefix for URL()
}

// NewLocal roots the disk at root (made absolute against the working
// directory) and serves files under baseURL.
func NewLocal(root, baseURL string) *Local {
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// abs maps a slash path under root; ".." segments cannot escape it.
func (d *Local) abs(p string) string {
	clean := path.Clean("/" + p)
	return filepath.Join(d.root, filepath.FromSlash(clean))
}

func (d *Local) Put(_ context.Context, p string, r io.Reader, _ string) error {
	full := d.abs(p)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("storage/local: create %s: %w", p, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("storage/local: write %s: %w", p, err)
	}
	return nil
}

func (d *Local) Open(_ context.Context, p string) (io.ReadCloser, error) {
	f, err := os.Open(d.abs(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage/local: open %s: %w", p, err)
	}
	return f, nil
}

func (d *Local) Exists(_ context.Context, p string) bool {
	_, err := os.Stat(d.abs(p))
	return err == nil
}

func (d *Local) Delete(_ context.Context, p string) error {
	err := os.Remove(d.abs(p))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage/local: delete %s: %w", p, err)
	}
	return nil
}

func (d *Local) URL(p string) string {
	return d.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(p), "/")
}

func (d *Local) Driver() string { return "local" }

// Handler serves the disk's files, read-only, without directory listings.
// Mount it with the URL prefix stripped.
func (d *Local) Handler() http.Handler {
	fileServer := http.FileServer(http.Dir(d.root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fileServer.ServeHTTP(w, r)
	})
}
