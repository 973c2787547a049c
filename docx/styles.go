package docx

import (
	"bytes"

	"github.com/antchfx/xmlquery"

	fixerr "github.com/aerissecure/docxfix/internal/errors"
	"github.com/aerissecure/docxfix/internal/logging"
)

// ResolveStyles parses a styles part and returns the bold/italic formatting
// each style states in its own run properties.
//
// Every w:style with a non-empty w:styleId is inspected. The first w:rPr
// found under the style supplies the four markers; a style without one is
// left out of the table, which Lookup treats as all-false. A later style with
// a duplicate id replaces the earlier one.
func ResolveStyles(data []byte) (StyleTable, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fixerr.NewParse("styles", StylesPart, err)
	}
	if rootElement(root) == nil {
		return nil, fixerr.NewParse("styles", StylesPart, nil)
	}

	table := make(StyleTable)
	for _, style := range xmlquery.QuerySelectorAll(root, xpStyles) {
		id, _ := wordAttr(style, "styleId")
		if id == "" {
			continue
		}
		rPr := xmlquery.QuerySelector(style, xpStyleRPr)
		if rPr == nil {
			continue
		}

		f := StyleFormatting{
			Bold:     classifyMarker(rPr, "b").On(),
			BoldCS:   classifyMarker(rPr, "bCs").On(),
			Italic:   classifyMarker(rPr, "i").On(),
			ItalicCS: classifyMarker(rPr, "iCs").On(),
		}
		table[id] = f
		if f.Any() {
			logging.Debug("style_resolved", "style_id", id, "bold", f.Bold, "bold_cs", f.BoldCS, "italic", f.Italic, "italic_cs", f.ItalicCS)
		}
	}
	return table, nil
}
