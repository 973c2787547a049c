// Package pkgstore treats a .docx package as an opaque store of entries: it
// extracts them into a scratch directory and packs a directory back into a
// zip archive.
package pkgstore

import (
	"fmt"
	"os"
	"path/filepath"

	fixerr "github.com/aerissecure/docxfix/internal/errors"
)

// WorkDirPrefix names the per-process scratch directory.
const WorkDirPrefix = "docx_fix_temp_"

// WorkDir is an exclusively owned scratch directory. Close removes it.
type WorkDir struct {
	Path string
}

// NewWorkDir creates <root>/docx_fix_temp_<pid>, removing any stale directory
// left at that path by an earlier failed run. An empty root means the system
// temp directory.
func NewWorkDir(root string) (*WorkDir, error) {
	if root == "" {
		root = os.TempDir()
	}
	path := filepath.Join(root, fmt.Sprintf("%s%d", WorkDirPrefix, os.Getpid()))

	if err := os.RemoveAll(path); err != nil {
		return nil, fixerr.NewIO("remove stale work dir", path, err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fixerr.NewIO("create work dir", path, err)
	}
	return &WorkDir{Path: path}, nil
}

// Join returns a path inside the work directory for a slash-separated entry
// name.
func (w *WorkDir) Join(entry string) string {
	return filepath.Join(w.Path, filepath.FromSlash(entry))
}

// Close removes the directory and everything under it. It is safe to call
// more than once.
func (w *WorkDir) Close() error {
	if w == nil || w.Path == "" {
		return nil
	}
	if err := os.RemoveAll(w.Path); err != nil {
		return fixerr.NewIO("remove work dir", w.Path, err)
	}
	return nil
}
