// Package docxfix rewrites .docx packages so that every run states the bold
// and italic formatting it inherits from its paragraph style.
//
// Converters that read only direct run properties drop style-level emphasis;
// after a fix the emphasis is visible to them while Word renders the
// document exactly as before.
package docxfix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aerissecure/docxfix/docx"
	"github.com/aerissecure/docxfix/internal/backup"
	fixerr "github.com/aerissecure/docxfix/internal/errors"
	"github.com/aerissecure/docxfix/internal/integrity"
	"github.com/aerissecure/docxfix/internal/logging"
	"github.com/aerissecure/docxfix/internal/pkgstore"
)

// Extension is the accepted input extension, compared case-insensitively.
const Extension = ".docx"

// Fixer runs the extract, resolve, format and repack pipeline.
type Fixer struct {
	opts Options
}

// New returns a Fixer with the given options.
func New(opts Options) *Fixer {
	return &Fixer{opts: opts}
}

// ValidateInput checks that path exists and has the .docx extension.
func ValidateInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fixerr.NewNotFound("Input file", path)
		}
		return fixerr.NewIO("stat", path, err)
	}
	if info.IsDir() {
		return fixerr.NewValidation("input", path, "Input file must be a .docx file")
	}
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return fixerr.NewValidation("input", path, "Input file must be a .docx file")
	}
	return nil
}

// FixFile validates input, backs it up and writes the fixed package to
// output, or over input when output is empty. Nothing is written when
// validation fails. Once the backup exists it is never removed.
func (f *Fixer) FixFile(input, output string) (Result, error) {
	if err := ValidateInput(input); err != nil {
		return Result{}, err
	}

	bak, err := backup.Create(input)
	if err != nil {
		return Result{}, fixerr.Wrapf(err, "backup %s", input)
	}
	logging.Info("backup_created", "input", input, "backup", bak)
	f.report().Backup(bak)

	res, err := f.Transform(input, output)
	res.Backup = bak
	return res, err
}

// Transform fixes the package at input and writes it to output (input when
// empty). It makes no backup. The scratch directory is removed whether or
// not the transform succeeds.
func (f *Fixer) Transform(input, output string) (res Result, err error) {
	if output == "" {
		output = input
	}
	res.Output = output
	res.RunID = uuid.NewString()

	var before integrity.Manifest
	if f.opts.Verify {
		if before, err = integrity.Digest(input); err != nil {
			return res, err
		}
	}

	wd, err := pkgstore.NewWorkDir(f.opts.WorkRoot)
	if err != nil {
		return res, err
	}
	defer func() {
		if cerr := wd.Close(); cerr != nil {
			logging.Warn("workdir_cleanup_failed", "path", wd.Path, "error", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()

	started := time.Now()
	logging.StageStart("extract", input, "work_dir", wd.Path, "run_id", res.RunID)
	n, err := pkgstore.Extract(input, wd.Path)
	if err != nil {
		logging.StageError("extract", err, "path", input, "run_id", res.RunID)
		return res, err
	}
	logging.StageDone("extract", started, "entries", n, "run_id", res.RunID)

	documentXML, err := readPart(wd, docx.DocumentPart)
	if err != nil {
		return res, err
	}
	stylesXML, err := readPart(wd, docx.StylesPart)
	if err != nil {
		return res, err
	}

	started = time.Now()
	logging.StageStart("resolve", docx.StylesPart, "run_id", res.RunID)
	table, err := docx.ResolveStyles(stylesXML)
	if err != nil {
		logging.StageError("resolve", err, "run_id", res.RunID)
		return res, err
	}
	res.Styles = table.Summary()
	logging.StageDone("resolve", started, "styles", len(table), "run_id", res.RunID)
	f.report().Styles(res.Styles)

	started = time.Now()
	logging.StageStart("format", docx.DocumentPart, "run_id", res.RunID)
	doc, err := docx.ParseDocument(documentXML)
	if err != nil {
		logging.StageError("format", err, "run_id", res.RunID)
		return res, err
	}
	res.Stats = doc.ApplyInherited(table)
	logging.StageDone("format", started, "runs", res.Stats.Runs, "modifications", res.Stats.Modifications, "run_id", res.RunID)
	f.report().Runs(res.Stats)

	started = time.Now()
	logging.StageStart("pack", output, "run_id", res.RunID)
	if err := os.WriteFile(wd.Join(docx.DocumentPart), doc.Serialize(), 0o644); err != nil {
		return res, fixerr.NewIO("write", docx.DocumentPart, err)
	}
	if res.Entries, err = pkgstore.Pack(wd.Path, output); err != nil {
		logging.StageError("pack", err, "path", output, "run_id", res.RunID)
		return res, err
	}
	logging.StageDone("pack", started, "entries", res.Entries, "run_id", res.RunID)
	f.report().Saved(output)

	if f.opts.Verify {
		diff, err := verifyOutput(before, output, res.RunID)
		res.Integrity = &diff
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// FixBytes fixes a package held in memory and returns the new package. It
// goes through a private temp directory and makes no backup.
func (f *Fixer) FixBytes(data []byte) ([]byte, Result, error) {
	dir, err := os.MkdirTemp(f.opts.WorkRoot, "docxfix-bytes-")
	if err != nil {
		return nil, Result{}, fixerr.NewIO("create temp dir", f.opts.WorkRoot, err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input"+Extension)
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, Result{}, fixerr.NewIO("write", in, err)
	}
	out := filepath.Join(dir, "output"+Extension)

	inner := *f
	inner.opts.WorkRoot = dir
	res, err := inner.Transform(in, out)
	if err != nil {
		return nil, res, err
	}
	fixed, err := os.ReadFile(out)
	if err != nil {
		return nil, res, fixerr.NewIO("read", out, err)
	}
	res.Output = ""
	return fixed, res, nil
}

func (f *Fixer) report() Reporter {
	if f.opts.Reporter == nil {
		return nopReporter{}
	}
	return f.opts.Reporter
}

// readPart reads an extracted entry. A missing entry is a NotFoundError.
func readPart(wd *pkgstore.WorkDir, entry string) ([]byte, error) {
	data, err := os.ReadFile(wd.Join(entry))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fixerr.NewNotFound("package part", entry)
		}
		return nil, fixerr.NewIO("read", entry, err)
	}
	return data, nil
}

// verifyOutput compares the written package against the manifest taken from
// the input before it could be overwritten.
func verifyOutput(before integrity.Manifest, output, runID string) (integrity.Diff, error) {
	started := time.Now()
	logging.StageStart("verify", output, "run_id", runID)
	after, err := integrity.Digest(output)
	if err != nil {
		return integrity.Diff{}, err
	}
	diff := integrity.Compare(before, after)
	if bad := diff.Unexpected(docx.DocumentPart); len(bad) > 0 {
		err := fmt.Errorf("package integrity check failed: %s", strings.Join(bad, ", "))
		logging.StageError("verify", err, "run_id", runID)
		return diff, err
	}
	logging.StageDone("verify", started, "changed", len(diff.Changed), "run_id", runID)
	return diff, nil
}

type nopReporter struct{}

func (nopReporter) Backup(string)            {}
func (nopReporter) Styles(docx.StyleSummary) {}
func (nopReporter) Runs(docx.Stats)          {}
func (nopReporter) Saved(string)             {}
