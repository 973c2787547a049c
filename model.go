package docxfix

import (
	"github.com/aerissecure/docxfix/docx"
	"github.com/aerissecure/docxfix/internal/integrity"
)

// Reporter receives progress while a package is fixed. *report.Reporter
// implements it; a nil Reporter in Options prints nothing.
type Reporter interface {
	Backup(path string)
	Styles(s docx.StyleSummary)
	Runs(st docx.Stats)
	Saved(path string)
}

// Options configure a Fixer.
type Options struct {
	// WorkRoot is the parent of the scratch directory. Empty means the
	// system temp directory.
	WorkRoot string

	// Verify compares the input and output packages after writing and fails
	// if anything other than the document part changed.
	Verify bool

	Reporter Reporter
}

// Result describes one fix.
type Result struct {
	Backup  string // backup path; empty for Transform and FixBytes
	Output  string // where the fixed package was written
	RunID   string // tags the diagnostic log lines of this fix
	Styles  docx.StyleSummary
	Stats   docx.Stats
	Entries int // entries in the written package

	// Integrity is set when Options.Verify is on.
	Integrity *integrity.Diff
}

// Modifications is the number of markers inserted.
func (r Result) Modifications() int {
	return r.Stats.Modifications
}
