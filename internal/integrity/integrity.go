// Package integrity compares the entries of two packages by content digest.
package integrity

import (
	"archive/zip"
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"github.com/zeebo/blake3"

	fixerr "github.com/aerissecure/docxfix/internal/errors"
)

// Manifest maps entry names to hex-encoded BLAKE3 digests.
type Manifest map[string]string

// Diff lists how two manifests differ. Every slice is sorted.
type Diff struct {
	Added   []string
	Removed []string
	Changed []string
}

// Empty reports whether the manifests were identical.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Unexpected returns every difference that is not a change to one of the
// allowed entries. Added or removed entries are always unexpected.
func (d Diff) Unexpected(allowed ...string) []string {
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}
	var out []string
	for _, name := range d.Added {
		out = append(out, "added "+name)
	}
	for _, name := range d.Removed {
		out = append(out, "removed "+name)
	}
	for _, name := range d.Changed {
		if !ok[name] {
			out = append(out, "changed "+name)
		}
	}
	return out
}

// Digest computes the manifest of the zip archive at path. Directory entries
// are skipped.
func Digest(path string) (Manifest, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fixerr.NewIO("open package", path, err)
	}
	defer r.Close()

	m := make(Manifest, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		sum, err := digestEntry(f)
		if err != nil {
			return nil, err
		}
		m[f.Name] = sum
	}
	return m, nil
}

func digestEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fixerr.NewIO("read entry", f.Name, err)
	}
	defer rc.Close()

	h := blake3.New()
	if _, err := io.Copy(h, rc); err != nil {
		return "", fixerr.NewIO("hash entry", f.Name, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Compare reports the entries added, removed and changed going from before
// to after.
func Compare(before, after Manifest) Diff {
	var d Diff
	for name, sum := range before {
		other, ok := after[name]
		switch {
		case !ok:
			d.Removed = append(d.Removed, name)
		case other != sum:
			d.Changed = append(d.Changed, name)
		}
	}
	for name := range after {
		if _, ok := before[name]; !ok {
			d.Added = append(d.Added, name)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Changed)
	return d
}

// ComparePackages digests both archives and compares them.
func ComparePackages(before, after string) (Diff, error) {
	mb, err := Digest(before)
	if err != nil {
		return Diff{}, err
	}
	ma, err := Digest(after)
	if err != nil {
		return Diff{}, err
	}
	return Compare(mb, ma), nil
}

// Check compares two packages and returns an error naming every difference
// other than changes to the allowed entries.
func Check(before, after string, allowed ...string) (Diff, error) {
	d, err := ComparePackages(before, after)
	if err != nil {
		return d, err
	}
	if bad := d.Unexpected(allowed...); len(bad) > 0 {
		return d, fmt.Errorf("package integrity check failed: %v", bad)
	}
	return d, nil
}
