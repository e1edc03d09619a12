package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage stores files on the local filesystem under a managed root.
// Layout: {basePath}/{entityType}/{folderID}/{filename}. The returned
// logical path ("files/{entityType}/{folderID}/{filename}") is what gets
// persisted; it is independent of the physical root.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: basePath}
}

// Save writes reader content into managed storage and returns the logical path.
func (s *LocalStorage) Save(_ context.Context, entityType, folderID, filename string, reader io.Reader) (string, error) {
	name := SanitizeFileName(filename)
	dir := filepath.Join(s.basePath, entityType, folderID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return path.Join("files", entityType, folderID, name), nil
}

// StoreFromPath copies an existing file into managed storage and returns the
// logical path. A missing source is not an error: the result is empty and
// the caller skips that one file.
func (s *LocalStorage) StoreFromPath(ctx context.Context, sourcePath, entityType, folderID string) (string, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	return s.Save(ctx, entityType, folderID, filepath.Base(sourcePath), src)
}

// Open returns the content of a previously stored logical path.
func (s *LocalStorage) Open(_ context.Context, logicalPath string) (io.ReadCloser, error) {
	f, err := os.Open(s.resolve(logicalPath))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes a stored file and its folder when empty.
func (s *LocalStorage) Delete(_ context.Context, logicalPath string) error {
	p := s.resolve(logicalPath)
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	_ = os.Remove(filepath.Dir(p))
	return nil
}

func (s *LocalStorage) resolve(logicalPath string) string {
	rel := strings.TrimPrefix(logicalPath, "files/")
	return filepath.Join(s.basePath, filepath.FromSlash(rel))
}

// SanitizeFileName strips path separators and characters that are invalid on
// common filesystems, falling back to a generated name when nothing is left.
func SanitizeFileName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, base)
	sanitized = strings.TrimSpace(sanitized)
	if sanitized == "" || sanitized == "." || sanitized == ".." {
		return fmt.Sprintf("document-%d", time.Now().UnixMilli())
	}
	return sanitized
}
