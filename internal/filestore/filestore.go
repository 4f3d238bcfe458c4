// Package filestore keeps artwork image blobs outside the database.
// Callers hold only the opaque reference returned by Put.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("blob not found")
	ErrInvalidReference = errors.New("invalid blob reference")
)

// Object describes a stored blob.
type Object struct {
	Reference   string
	ContentType string
	Size        int64
}

type Store interface {
	Put(ctx context.Context, data []byte, filename string) (*Object, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
	// Walk visits every stored reference with its modification time.
	Walk(ctx context.Context, fn func(ref string, modTime time.Time) error) error
}

// Sniff returns the MIME type of data without parameters.
func Sniff(data []byte) string {
	mt := mimetype.Detect(data).String()
	return strings.TrimSpace(strings.Split(mt, ";")[0])
}

// Local stores blobs on disk under baseDir, partitioned by upload date.
type Local struct {
	baseDir string
	now     func() time.Time
}

func NewLocal(baseDir string) (*Local, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &Local{baseDir: baseDir, now: time.Now}, nil
}

func (s *Local) Put(ctx context.Context, data []byte, filename string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contentType := Sniff(data)

	now := s.now().UTC()
	relDir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	absDir := filepath.Join(s.baseDir, filepath.FromSlash(relDir))
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = mimetype.Detect(data).Extension()
	}
	name := fmt.Sprintf("%s_%s%s", uuid.New().String(), sanitizeName(filename), ext)
	ref := path.Join(relDir, name)

	absPath := filepath.Join(absDir, name)
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("write blob: %w", err)
	}

	return &Object{Reference: ref, ContentType: contentType, Size: int64(len(data))}, nil
}

func (s *Local) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	absPath, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Delete removes the blob. A missing blob is not an error.
func (s *Local) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	absPath, err := s.resolve(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(absPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

func (s *Local) Walk(ctx context.Context, fn func(ref string, modTime time.Time) error) error {
	return filepath.WalkDir(s.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel), info.ModTime())
	})
}

// resolve maps a reference to a path inside baseDir, refusing anything that escapes it.
func (s *Local) resolve(ref string) (string, error) {
	if ref == "" || strings.HasPrefix(ref, "/") || strings.Contains(ref, "\\") {
		return "", ErrInvalidReference
	}
	clean := path.Clean(ref)
	if clean != ref || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." {
		return "", ErrInvalidReference
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" || name == "_" {
		return "art"
	}
	return name
}
