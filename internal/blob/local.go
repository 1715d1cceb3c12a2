package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local is a filesystem-backed Store rooted at a directory. Paths are
// resolved relative to the root; escaping the root is rejected.
type Local struct{ root string }

// NewLocal returns a Local store rooted at dir.
func NewLocal(dir string) *Local { return &Local{root: dir} }

// Get reads the blob at path. If the context is already canceled the
// filesystem is not touched. A missing file maps onto ErrNotFound while
// remaining inspectable with errors.Is(err, os.ErrNotExist).
func (l *Local) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w (%w)", path, ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Put writes the blob at path, creating parent directories as needed and
// replacing any existing object.
func (l *Local) Put(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (l *Local) resolve(path string) (string, error) {
	full := filepath.Join(l.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(l.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("blob path %q escapes store root", path)
	}
	return full, nil
}
