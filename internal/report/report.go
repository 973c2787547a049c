// Package report prints progress and summaries for the docxfix commands.
package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aerissecure/docxfix/docx"
	"github.com/aerissecure/docxfix/internal/integrity"
)

const bannerWidth = 60

// Reporter writes human-readable progress to a writer. The zero value and
// a quiet Reporter print nothing.
type Reporter struct {
	w     io.Writer
	quiet bool

	headingStyle lipgloss.Style
	labelStyle   lipgloss.Style
	pathStyle    lipgloss.Style
	okStyle      lipgloss.Style
	badStyle     lipgloss.Style
}

// New returns a Reporter writing to w. Colours follow what w supports, so
// output piped to a file or buffer is plain text.
func New(w io.Writer, quiet bool) *Reporter {
	re := lipgloss.NewRenderer(w)
	return &Reporter{
		w:     w,
		quiet: quiet,

		headingStyle: re.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		labelStyle:   re.NewStyle().Foreground(lipgloss.Color("#888888")),
		pathStyle:    re.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
		okStyle:      re.NewStyle().Bold(true).Foreground(lipgloss.Color("#6BCB77")),
		badStyle:     re.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
	}
}

func (r *Reporter) enabled() bool {
	return r != nil && r.w != nil && !r.quiet
}

func (r *Reporter) printf(format string, args ...any) {
	if !r.enabled() {
		return
	}
	_, _ = fmt.Fprintf(r.w, format, args...)
}

// Backup announces the backup copy of the input.
func (r *Reporter) Backup(path string) {
	if !r.enabled() {
		return
	}
	r.printf("Created backup: %s\n", r.pathStyle.Render(path))
}

// Styles summarises the style table.
func (r *Reporter) Styles(s docx.StyleSummary) {
	if !r.enabled() {
		return
	}
	r.printf("\nFound %d styles with formatting\n", s.WithFormatting)
	if len(s.Bold) > 0 {
		r.printf("  %d styles with bold\n", len(s.Bold))
	}
	if len(s.Italic) > 0 {
		r.printf("  %d styles with italic\n", len(s.Italic))
	}
}

// Runs summarises the formatter pass.
func (r *Reporter) Runs(st docx.Stats) {
	if !r.enabled() {
		return
	}
	r.printf("\nProcessed %d runs\n", st.Runs)
	r.printf("Applied %d explicit formatting properties\n", st.Modifications)
}

// Saved announces where the fixed package was written.
func (r *Reporter) Saved(path string) {
	if !r.enabled() {
		return
	}
	r.printf("\nFixed DOCX saved to: %s\n", r.pathStyle.Render(path))
}

// Success prints the closing banner.
func (r *Reporter) Success(modifications int) {
	if !r.enabled() {
		return
	}
	rule := strings.Repeat("=", bannerWidth)
	r.printf("\n%s\n%s\n%s\n", rule,
		r.okStyle.Render(fmt.Sprintf("Success! Applied %d formatting fixes", modifications)), rule)
}

// Inspect prints the read-only analysis of a package: the style table, what
// a style-unaware consumer renders today and what fix would add.
func (r *Reporter) Inspect(path string, styles docx.StyleSummary, pv docx.Preview, st docx.Stats) {
	if !r.enabled() {
		return
	}
	r.printf("%s\n", r.headingStyle.Render(path))

	r.printf("\n%s\n", r.headingStyle.Render("Styles"))
	r.row("with formatting", fmt.Sprint(styles.WithFormatting))
	r.row("bold", joinIDs(styles.Bold))
	r.row("italic", joinIDs(styles.Italic))

	r.printf("\n%s\n", r.headingStyle.Render("Direct formatting"))
	r.row("paragraphs", fmt.Sprint(len(pv.Paragraphs)))
	r.row("text runs", fmt.Sprint(pv.Runs))
	r.row("bold runs", fmt.Sprint(pv.BoldRuns))
	r.row("italic runs", fmt.Sprint(pv.ItalicRuns))

	r.printf("\n%s\n", r.headingStyle.Render("Pending fixes"))
	r.row("runs", fmt.Sprint(st.Runs))
	r.row("markers to add", fmt.Sprintf("%d (b=%d bCs=%d i=%d iCs=%d)", st.Modifications, st.Bold, st.BoldCS, st.Italic, st.ItalicCS))
	r.row("rPr to create", fmt.Sprint(st.PropertiesCreated))
}

// Integrity prints a package comparison. Changes to allowed entries are
// listed but not flagged.
func (r *Reporter) Integrity(d integrity.Diff, allowed ...string) {
	if !r.enabled() {
		return
	}
	if d.Empty() {
		r.printf("%s\n", r.okStyle.Render("Packages are identical"))
		return
	}
	for _, name := range d.Added {
		r.printf("  %s %s\n", r.badStyle.Render("added  "), name)
	}
	for _, name := range d.Removed {
		r.printf("  %s %s\n", r.badStyle.Render("removed"), name)
	}
	for _, name := range d.Changed {
		mark := r.badStyle.Render("changed")
		if slices.Contains(allowed, name) {
			mark = r.labelStyle.Render("changed")
		}
		r.printf("  %s %s\n", mark, name)
	}
	if len(d.Unexpected(allowed...)) == 0 {
		r.printf("%s\n", r.okStyle.Render("Only expected entries changed"))
	}
}

// Text writes s verbatim. Used for rendered previews.
func (r *Reporter) Text(s string) {
	r.printf("%s", s)
}

func (r *Reporter) row(label, value string) {
	r.printf("  %s %s\n", r.labelStyle.Render(fmt.Sprintf("%-16s", label+":")), value)
}

func joinIDs(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return fmt.Sprintf("%d (%s)", len(ids), strings.Join(ids, ", "))
}
