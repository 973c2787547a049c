package pkgstore

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	fixerr "github.com/aerissecure/docxfix/internal/errors"
)

// Extract unpacks every entry of the zip archive at src into dir, preserving
// relative paths and bytes. It returns the number of files written. Entries
// whose names would land outside dir are rejected.
func Extract(src, dir string) (int, error) {
	reader, err := zip.OpenReader(src)
	if errors.Is(err, zip.ErrInsecurePath) {
		reader.Close()
		return 0, fixerr.NewValidation("package", src, "entry path escapes the package root")
	}
	if err != nil {
		return 0, fixerr.NewIO("open package", src, err)
	}
	defer reader.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, fixerr.NewIO("resolve", dir, err)
	}

	count := 0
	for _, file := range reader.File {
		target, err := entryPath(root, file.Name)
		if err != nil {
			return count, err
		}

		if file.FileInfo().IsDir() || strings.HasSuffix(file.Name, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return count, fixerr.NewIO("create directory", target, err)
			}
			continue
		}

		if err := extractFile(file, target); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

// entryPath maps an archive entry name to a path under root.
func entryPath(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fixerr.NewValidation("entry", name, "path escapes the package root")
	}

	target := filepath.Join(root, cleaned)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fixerr.NewValidation("entry", name, "path escapes the package root")
	}
	return target, nil
}

func extractFile(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fixerr.NewIO("create directory", filepath.Dir(target), err)
	}

	rc, err := file.Open()
	if errors.Is(err, zip.ErrAlgorithm) {
		return &fixerr.ValidationError{
			Field:   "entry",
			Value:   file.Name,
			Message: fmt.Sprintf("unsupported compression method %d", file.Method),
			Err:     fixerr.ErrUnsupported,
		}
	}
	if err != nil {
		return fixerr.NewIO("read entry", file.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fixerr.NewIO("create", target, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fixerr.NewIO("extract", file.Name, err)
	}
	if err := out.Close(); err != nil {
		return fixerr.NewIO("close", target, err)
	}
	return nil
}

// ReadEntries loads the named entries of the archive at src into memory
// without touching the file system. Missing names are absent from the map.
func ReadEntries(src string, names ...string) (map[string][]byte, error) {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return nil, fixerr.NewIO("open package", src, err)
	}
	defer reader.Close()

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	content := make(map[string][]byte)
	for _, file := range reader.File {
		if !want[file.Name] {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fixerr.NewIO("read entry", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read content of %s: %w", file.Name, err)
		}
		content[file.Name] = data
	}
	return content, nil
}
