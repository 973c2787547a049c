// Command docxfix copies paragraph-style bold and italic onto the runs of a
// .docx file so that converters reading only direct formatting keep it.
//
// Usage:
//
//	docxfix input.docx                 # fix in place (creates a backup)
//	docxfix input.docx output.docx     # save to a new file
//	docxfix -q input.docx              # quiet mode
//	docxfix inspect input.docx --markdown
//	docxfix verify before.docx after.docx
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/aerissecure/docxfix"
	"github.com/aerissecure/docxfix/docx"
	"github.com/aerissecure/docxfix/internal/config"
	fixerr "github.com/aerissecure/docxfix/internal/errors"
	"github.com/aerissecure/docxfix/internal/integrity"
	"github.com/aerissecure/docxfix/internal/pkgstore"
	"github.com/aerissecure/docxfix/internal/report"
)

// CLI defines the command-line interface using Kong.
type CLI struct {
	Config   string `name:"config" short:"c" help:"Config file (default: $DOCXFIX_CONFIG)"`
	Quiet    bool   `name:"quiet" short:"q" help:"Suppress output messages"`
	LogLevel string `name:"log-level" help:"Diagnostic log level: debug, info, warn, error"`

	Fix     FixCmd     `cmd:"" default:"withargs" help:"Fix DOCX formatting by applying inherited style properties"`
	Inspect InspectCmd `cmd:"" help:"Show style formatting and what a fix would change"`
	Verify  VerifyCmd  `cmd:"" help:"Compare two packages entry by entry"`
	Show    ConfigCmd  `cmd:"" name:"config" help:"Print a documented default config file"`
}

// app is bound into every command's Run.
type app struct {
	cfg    config.Config
	quiet  bool
	stdout io.Writer
	stderr io.Writer
}

func (a *app) reporter() *report.Reporter {
	return report.New(a.stdout, a.quiet)
}

// FixCmd is the default command.
type FixCmd struct {
	Input  string `arg:"" help:"Input DOCX file"`
	Output string `arg:"" optional:"" help:"Output DOCX file (default: overwrite input)"`
	Verify bool   `help:"Fail unless word/document.xml is the only entry that changed"`
}

func (c *FixCmd) Run(a *app) error {
	if err := docxfix.ValidateInput(c.Input); err != nil {
		return inputError{err}
	}

	rep := a.reporter()
	fixer := docxfix.New(docxfix.Options{
		WorkRoot: a.cfg.WorkDir,
		Verify:   c.Verify || a.cfg.Verify,
		Reporter: rep,
	})
	res, err := fixer.FixFile(c.Input, c.Output)
	if res.Integrity != nil {
		rep.Integrity(*res.Integrity, docx.DocumentPart)
	}
	if err != nil {
		return err
	}
	rep.Success(res.Modifications())
	return nil
}

// InspectCmd reports without writing anything.
type InspectCmd struct {
	Input    string `arg:"" help:"DOCX file to inspect"`
	Markdown bool   `help:"Print the markdown a style-unaware converter produces"`
	HTML     bool   `name:"html" help:"Print the HTML a style-unaware converter produces"`
}

func (c *InspectCmd) Run(a *app) error {
	if err := docxfix.ValidateInput(c.Input); err != nil {
		return inputError{err}
	}

	parts, err := pkgstore.ReadEntries(c.Input, docx.StylesPart, docx.DocumentPart)
	if err != nil {
		return err
	}
	for _, name := range []string{docx.DocumentPart, docx.StylesPart} {
		if _, ok := parts[name]; !ok {
			return fixerr.NewNotFound("package part", name)
		}
	}
	table, st, err := docx.Analyze(parts[docx.StylesPart], parts[docx.DocumentPart])
	if err != nil {
		return err
	}
	pv, err := docx.PreviewFile(c.Input)
	if err != nil {
		return fixerr.Wrap(err, "preview")
	}

	// Inspection output is the command's result, so -q does not hide it.
	rep := report.New(a.stdout, false)
	rep.Inspect(c.Input, table.Summary(), pv, st)
	if c.Markdown {
		rep.Text("\n" + pv.Markdown())
	}
	if c.HTML {
		rep.Text("\n" + pv.HTML())
	}
	return nil
}

// VerifyCmd compares two packages.
type VerifyCmd struct {
	Before string `arg:"" help:"Original package"`
	After  string `arg:"" help:"Fixed package"`
}

func (c *VerifyCmd) Run(a *app) error {
	diff, err := integrity.Check(c.Before, c.After, docx.DocumentPart)
	var ioErr *fixerr.IOError
	if !fixerr.As(err, &ioErr) {
		report.New(a.stdout, false).Integrity(diff, docx.DocumentPart)
	}
	return err
}

// ConfigCmd prints the default configuration.
type ConfigCmd struct{}

func (c *ConfigCmd) Run(a *app) error {
	_, err := io.WriteString(a.stdout, config.DefaultConfigYAML)
	return err
}

// inputError marks a failed input check. Only its message is printed.
type inputError struct {
	err error
}

func (e inputError) Error() string { return e.err.Error() }
func (e inputError) Unwrap() error { return e.err }

// exitCode carries a status out of kong's Exit hook.
type exitCode int

func run(args []string, stdout, stderr io.Writer) (code int) {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("docxfix"),
		kong.Description("Fix DOCX formatting by applying inherited style properties"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	ctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	cfg.ApplyLogging(stderr)

	a := &app{
		cfg:    cfg,
		quiet:  cli.Quiet || cfg.Quiet,
		stdout: stdout,
		stderr: stderr,
	}
	if err := ctx.Run(a); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

// printError writes the one-line message and, for processing failures, the
// wrapped-error chain.
func printError(w io.Writer, err error) {
	err = unjoin(err)
	var in inputError
	if fixerr.As(err, &in) {
		fmt.Fprintf(w, "Error: %s\n", inputMessage(in.err))
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	fmt.Fprintln(w, "Trace:")
	for i, e := range fixerr.Chain(err) {
		fmt.Fprintf(w, "  %d: %T: %v\n", i, e, e)
	}
}

// unjoin strips the single-element errors.Join kong puts around a command's
// error.
func unjoin(err error) error {
	for {
		j, ok := err.(interface{ Unwrap() []error })
		if !ok {
			return err
		}
		errs := j.Unwrap()
		if len(errs) != 1 {
			return err
		}
		err = errs[0]
	}
}

func inputMessage(err error) string {
	var v *fixerr.ValidationError
	if fixerr.As(err, &v) {
		return v.Message
	}
	return err.Error()
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
