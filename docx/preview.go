package docx

import (
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/unidoc/unioffice"
	"github.com/unidoc/unioffice/document"

	fixerr "github.com/aerissecure/docxfix/internal/errors"
	"github.com/aerissecure/docxfix/internal/logging"
)

func init() {
	// unioffice prints through the standard log package by default.
	unioffice.Log = func(format string, args ...interface{}) {
		logging.Debug("unioffice", "message", fmt.Sprintf(format, args...))
	}
}

// ReadPreview reads a DOCX package (from r, with given size) the way a
// converter that ignores style inheritance does: a run is bold or italic only
// if its own run properties say so.
func ReadPreview(r io.ReaderAt, size int64) (Preview, error) {
	doc, err := document.Read(r, size)
	if err != nil {
		return Preview{}, err
	}

	var pv Preview
	for _, para := range doc.Paragraphs() {
		rp := RenderParagraph{Style: para.Style()}
		for _, run := range para.Runs() {
			text := run.Text()
			if text == "" {
				continue
			}
			style := RunStyle{
				Bold:   run.Properties().IsBold(),
				Italic: run.Properties().IsItalic(),
			}
			rp.Runs = append(rp.Runs, RenderRun{Text: text, Style: style})

			pv.Runs++
			if style.Bold {
				pv.BoldRuns++
			}
			if style.Italic {
				pv.ItalicRuns++
			}
		}
		pv.Paragraphs = append(pv.Paragraphs, rp)
	}
	return pv, nil
}

// PreviewFile opens path and calls ReadPreview.
func PreviewFile(path string) (Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preview{}, fixerr.NewIO("open", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return Preview{}, fixerr.NewIO("stat", path, err)
	}
	pv, err := ReadPreview(f, info.Size())
	if err != nil {
		return Preview{}, fixerr.NewIO("read document", path, err)
	}
	return pv, nil
}

// Markdown renders the preview the way pandoc's markdown writer would emit
// direct formatting: **bold**, *italic*, ***both***. Paragraphs are separated
// by a blank line; empty paragraphs are dropped.
func (p Preview) Markdown() string {
	var sb strings.Builder
	for _, para := range p.Paragraphs {
		var line strings.Builder
		for _, run := range para.Runs {
			line.WriteString(emphasize(run.Text, run.Style))
		}
		if strings.TrimSpace(line.String()) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(line.String())
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

// emphasize wraps the non-space core of text in emphasis markers; leading
// and trailing spaces stay outside so the markers still parse.
func emphasize(text string, s RunStyle) string {
	var mark string
	switch {
	case s.Bold && s.Italic:
		mark = "***"
	case s.Bold:
		mark = "**"
	case s.Italic:
		mark = "*"
	default:
		return text
	}
	core := strings.TrimSpace(text)
	if core == "" {
		return text
	}
	start := strings.Index(text, core)
	return text[:start] + mark + core + mark + text[start+len(core):]
}

// HTML renders the preview as a minimal HTML page. Paragraphs whose style
// starts with "Heading" become <h1>, everything else <p>; run emphasis is
// <b> and <i>.
func (p Preview) HTML() string {
	var sb strings.Builder
	sb.WriteString("<html><body>\n")
	for _, para := range p.Paragraphs {
		tag := "p"
		if strings.HasPrefix(para.Style, "Heading") {
			tag = "h1"
		}
		sb.WriteString("<" + tag + ">")
		for _, run := range para.Runs {
			text := html.EscapeString(run.Text)
			if run.Style.Italic {
				text = "<i>" + text + "</i>"
			}
			if run.Style.Bold {
				text = "<b>" + text + "</b>"
			}
			sb.WriteString(text)
		}
		sb.WriteString("</" + tag + ">\n")
	}
	sb.WriteString("</body></html>\n")
	return sb.String()
}
