// Package backup writes the pre-transform copy of an input package.
package backup

import (
	"fmt"
	"io"
	"os"

	fixerr "github.com/aerissecure/docxfix/internal/errors"
)

// Suffix is appended to the input path to name its backup.
const Suffix = ".backup"

// NextPath returns the first unused backup path for input: input.backup,
// then input.backup.1, input.backup.2, and so on.
func NextPath(input string) (string, error) {
	candidate := input + Suffix
	for i := 1; ; i++ {
		_, err := os.Lstat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fixerr.NewIO("stat", candidate, err)
		}
		candidate = fmt.Sprintf("%s%s.%d", input, Suffix, i)
	}
}

// Create copies input to the next unused backup path and returns that path.
// File mode and modification time are carried over. Existing backups are
// never overwritten.
func Create(input string) (string, error) {
	dst, err := NextPath(input)
	if err != nil {
		return "", err
	}
	if err := copyFile(input, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fixerr.NewIO("open", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fixerr.NewIO("stat", src, err)
	}

	// O_EXCL keeps a concurrently created backup intact.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fixerr.NewIO("create backup", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fixerr.NewIO("write backup", dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fixerr.NewIO("close backup", dst, err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fixerr.NewIO("set times on", dst, err)
	}
	return nil
}
