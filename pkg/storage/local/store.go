// Package local persists uploaded media on the server filesystem and maps
// stored files to the public URLs served under the upload prefix.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ilumina/storefront-backend/pkg/config"
	"github.com/ilumina/storefront-backend/pkg/logger"
)

var unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ErrInvalidName is returned for names that resolve outside the upload dir.
var ErrInvalidName = errors.New("invalid file name")

// Store writes files into a single flat directory.
type Store struct {
	dir    string
	prefix string
	now    func() time.Time
	logg   *logger.Logger
}

// New ensures the upload directory exists and returns a Store rooted there.
func New(cfg config.MediaConfig, logg *logger.Logger) (*Store, error) {
	dir := strings.TrimSpace(cfg.UploadDir)
	if dir == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	prefix := "/" + strings.Trim(strings.TrimSpace(cfg.PublicPrefix), "/")
	if prefix == "/" {
		prefix = "/uploads"
	}
	return &Store{dir: dir, prefix: prefix, now: time.Now, logg: logg}, nil
}

// Dir is the filesystem directory backing the store.
func (s *Store) Dir() string { return s.dir }

// PublicPrefix is the URL path prefix files are served under.
func (s *Store) PublicPrefix() string { return s.prefix }

// Save writes r under "<unix-millis>-<sanitized original name>" and returns
// the stored file name and its public URL.
func (s *Store) Save(ctx context.Context, originalName string, r io.Reader) (string, string, error) {
	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), SanitizeName(originalName))
	full := filepath.Join(s.dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("create %q: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", "", fmt.Errorf("write %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", "", fmt.Errorf("close %q: %w", name, err)
	}

	if s.logg != nil {
		s.logg.Debug(s.logg.WithField(ctx, "file", name), "media stored")
	}
	return name, s.URLFor(name), nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *Store) Remove(ctx context.Context, name string) error {
	name = path.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" || name == ".." {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "file", name), "media remove failed")
	}
	return fmt.Errorf("remove %q: %w", name, err)
}

// URLFor maps a stored file name to its public URL.
func (s *Store) URLFor(name string) string {
	return s.prefix + "/" + name
}

// NameFromURL extracts the stored file name from a public URL, or "" when the
// URL does not point into this store.
func (s *Store) NameFromURL(url string) string {
	rest, ok := strings.CutPrefix(url, s.prefix+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}

// Ping checks the upload directory is still present.
func (s *Store) Ping(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat upload dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("upload path %q is not a directory", s.dir)
	}
	return nil
}

// SanitizeName reduces an uploaded file name to a safe base name.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	name = unsafeNameRe.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}
