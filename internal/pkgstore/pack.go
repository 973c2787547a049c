package pkgstore

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	fixerr "github.com/aerissecure/docxfix/internal/errors"
)

// ContentTypesEntry is the package manifest. Some consumers sniff the first
// entry of the archive, so Pack always writes it first.
const ContentTypesEntry = "[Content_Types].xml"

// Pack writes every regular file under dir into a new zip archive at dst,
// using slash-separated paths relative to dir as entry names. It returns the
// number of entries written. Directories get no entries of their own.
//
// The archive is assembled in a temporary file next to dst and renamed into
// place once complete, so dst is either the old file or the full new one.
// dst may be the same path the package was extracted from.
func Pack(dir, dst string) (int, error) {
	entries, err := listFiles(dir)
	if err != nil {
		return 0, err
	}

	outDir := filepath.Dir(dst)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fixerr.NewIO("create output directory", outDir, err)
	}

	tmp, err := os.CreateTemp(outDir, ".docxfix-*.tmp")
	if err != nil {
		return 0, fixerr.NewIO("create temp file in", outDir, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, name := range entries {
		if err := addFile(zw, dir, name); err != nil {
			return 0, err
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fixerr.NewIO("finish archive", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fixerr.NewIO("close", tmpPath, err)
	}

	// Keep the permissions of a file being replaced.
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(dst); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return 0, fixerr.NewIO("chmod", tmpPath, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return 0, fixerr.NewIO("write package", dst, err)
	}
	committed = true
	return len(entries), nil
}

// listFiles returns the entry names for every regular file under dir, with
// the content types manifest first and the rest in lexical order.
func listFiles(dir string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fixerr.NewIO("walk", dir, err)
	}

	sort.SliceStable(names, func(i, j int) bool {
		if (names[i] == ContentTypesEntry) != (names[j] == ContentTypesEntry) {
			return names[i] == ContentTypesEntry
		}
		return names[i] < names[j]
	})
	return names, nil
}

func addFile(zw *zip.Writer, dir, name string) error {
	path := filepath.Join(dir, filepath.FromSlash(name))
	f, err := os.Open(path)
	if err != nil {
		return fixerr.NewIO("open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fixerr.NewIO("stat", path, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fixerr.NewIO("build header for", path, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fixerr.NewIO("create entry", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fixerr.NewIO("write entry", name, err)
	}
	return nil
}
