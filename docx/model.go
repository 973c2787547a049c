package docx

import (
	"fmt"
	"sort"
)

// Types shared by the style resolver, the run formatter and the preview.
//
// Only bold and italic (and their complex-script twins) are modelled; every
// other run property passes through the transform untouched.

// -----------------------------------------------------------------------------
// Style-level information
// -----------------------------------------------------------------------------

// StyleFormatting is the formatting a style states directly in its own run
// properties. Parent styles (w:basedOn) are not consulted.
type StyleFormatting struct {
	Bold     bool // w:b
	BoldCS   bool // w:bCs
	Italic   bool // w:i
	ItalicCS bool // w:iCs
}

// Any reports whether at least one attribute is on.
func (s StyleFormatting) Any() bool {
	return s.Bold || s.BoldCS || s.Italic || s.ItalicCS
}

func (s StyleFormatting) String() string {
	return fmt.Sprintf("Bold: %t, BoldCS: %t, Italic: %t, ItalicCS: %t", s.Bold, s.BoldCS, s.Italic, s.ItalicCS)
}

// StyleTable maps style ids to their formatting. Built once by ResolveStyles
// and read-only afterwards.
type StyleTable map[string]StyleFormatting

// Lookup returns the formatting for id. Unknown ids and the empty id resolve
// to all-false.
func (t StyleTable) Lookup(id string) StyleFormatting {
	if id == "" {
		return StyleFormatting{}
	}
	return t[id]
}

// StyleSummary counts the styles in a table for reporting.
type StyleSummary struct {
	WithFormatting int      // styles that have a run-properties block
	Bold           []string // ids with bold or complex-script bold
	Italic         []string // ids with italic or complex-script italic
}

// Summary returns the counts shown in the progress report. Id lists are
// sorted.
func (t StyleTable) Summary() StyleSummary {
	s := StyleSummary{WithFormatting: len(t)}
	for id, f := range t {
		if f.Bold || f.BoldCS {
			s.Bold = append(s.Bold, id)
		}
		if f.Italic || f.ItalicCS {
			s.Italic = append(s.Italic, id)
		}
	}
	sort.Strings(s.Bold)
	sort.Strings(s.Italic)
	return s
}

// -----------------------------------------------------------------------------
// Transform statistics
// -----------------------------------------------------------------------------

// Stats accumulates what ApplyInherited did.
type Stats struct {
	Paragraphs    int // w:p elements visited
	Styled        int // paragraphs whose style resolves to some formatting
	Runs          int // w:r elements visited
	Modifications int // markers inserted

	// Per-marker breakdown of Modifications.
	Bold     int
	BoldCS   int
	Italic   int
	ItalicCS int

	// PropertiesCreated counts runs that had no w:rPr and received one.
	PropertiesCreated int
}

func (s Stats) String() string {
	return fmt.Sprintf("Paragraphs: %d, Styled: %d, Runs: %d, Modifications: %d (b=%d bCs=%d i=%d iCs=%d), PropertiesCreated: %d",
		s.Paragraphs, s.Styled, s.Runs, s.Modifications, s.Bold, s.BoldCS, s.Italic, s.ItalicCS, s.PropertiesCreated)
}

// -----------------------------------------------------------------------------
// Preview (what a style-unaware consumer sees)
// -----------------------------------------------------------------------------

// RunStyle is the direct formatting of a run, ignoring styles.
type RunStyle struct {
	Bold   bool
	Italic bool
}

// RenderRun is a run as seen through its direct properties only.
type RenderRun struct {
	Text  string
	Style RunStyle
}

// RenderParagraph is a paragraph with its style id and direct-formatted runs.
type RenderParagraph struct {
	Style string
	Runs  []RenderRun
}

// Preview is the document as a style-inheritance-unaware converter renders
// it.
type Preview struct {
	Paragraphs []RenderParagraph

	Runs       int // runs with text
	BoldRuns   int
	ItalicRuns int
}

func (p Preview) String() string {
	return fmt.Sprintf("Paragraphs: %d, Runs: %d, BoldRuns: %d, ItalicRuns: %d", len(p.Paragraphs), p.Runs, p.BoldRuns, p.ItalicRuns)
}
