package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/tuniguard/internal/filex"
)

// FileExporter writes reports below a local directory.
type FileExporter struct {
	dir string
}

func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{dir: dir}
}

// Export writes body atomically to dir/key. Keys escaping dir are rejected.
func (e *FileExporter) Export(ctx context.Context, key string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid report key %q", key)
	}

	root, err := filex.EnsureDir(e.dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(root, rel)
	if err := filex.WriteFileAtomic(path, body, 0o600); err != nil {
		return "", fmt.Errorf("failed to write report[%s]: %w", key, err)
	}
	return path, nil
}
