package docx

import (
	"bytes"
	"encoding/xml"

	"github.com/antchfx/xmlquery"

	fixerr "github.com/aerissecure/docxfix/internal/errors"
)

// Document is a parsed document part, mutated in place by ApplyInherited.
type Document struct {
	root *xmlquery.Node
}

// ParseDocument parses the main document part.
func ParseDocument(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fixerr.NewParse("document", DocumentPart, err)
	}
	if rootElement(root) == nil {
		return nil, fixerr.NewParse("document", DocumentPart, nil)
	}
	restoreXMLPrefix(root)
	return &Document{root: root}, nil
}

// ApplyInherited writes the paragraph style's bold/italic markers onto every
// run that inherits them without stating them.
//
// For each w:p in document order the style id comes from w:pPr/w:pStyle/@w:val.
// Each w:r anywhere under the paragraph (hyperlinks, smart tags and so on
// included) gets a bare marker for every attribute the style switches on and
// the run does not already mention. Existing markers are never touched,
// whatever their value, so applying the table twice adds nothing the second
// time.
func (d *Document) ApplyInherited(table StyleTable) Stats {
	var st Stats
	for _, p := range xmlquery.QuerySelectorAll(d.root, xpParagraphs) {
		st.Paragraphs++
		inherited := table.Lookup(paragraphStyleID(p))
		if inherited.Any() {
			st.Styled++
		}
		for _, r := range xmlquery.QuerySelectorAll(p, xpRuns) {
			st.Runs++
			applyToRun(r, inherited, &st)
		}
	}
	return st
}

// paragraphStyleID returns w:pPr/w:pStyle/@w:val, or "" when any step is
// missing.
func paragraphStyleID(p *xmlquery.Node) string {
	pStyle := childElement(childElement(p, "pPr"), "pStyle")
	if pStyle == nil {
		return ""
	}
	id, _ := wordAttr(pStyle, "val")
	return id
}

func applyToRun(r *xmlquery.Node, inherited StyleFormatting, st *Stats) {
	rPr := childElement(r, "rPr")
	if rPr == nil {
		if !inherited.Any() {
			return
		}
		rPr = newElement(r.Prefix, "rPr")
		prependChild(r, rPr)
		st.PropertiesCreated++
	}

	// Each marker goes to position 0, so the inserted ones end up in reverse
	// check order. Order among them carries no meaning.
	for _, m := range runMarkers {
		if !m.inherited(inherited) || childElement(rPr, m.local) != nil {
			continue
		}
		prependChild(rPr, newElement(rPr.Prefix, m.local))
		st.Modifications++
		m.count(st)
	}
}

// Serialize renders the tree as UTF-8 with an XML declaration. Whitespace is
// kept as parsed and childless elements are written as empty-element tags.
func (d *Document) Serialize() []byte {
	setDeclarationEncoding(d.root, "UTF-8")
	return []byte(d.root.OutputXMLWithOptions(
		xmlquery.WithEmptyTagSupport(),
		xmlquery.WithPreserveSpace(),
	))
}

// setDeclarationEncoding makes sure the tree starts with an <?xml ...?>
// declaration whose encoding attribute is enc.
func setDeclarationEncoding(doc *xmlquery.Node, enc string) {
	decl := doc.FirstChild
	if decl == nil || decl.Type != xmlquery.DeclarationNode || decl.Data != "xml" {
		decl = &xmlquery.Node{
			Type: xmlquery.DeclarationNode,
			Data: "xml",
			Attr: []xmlquery.Attr{{Name: xml.Name{Local: "version"}, Value: "1.0"}},
		}
		prependChild(doc, decl)
	}
	for i := range decl.Attr {
		if decl.Attr[i].Name.Local == "encoding" {
			decl.Attr[i].Value = enc
			return
		}
	}
	// encoding must follow version and precede standalone.
	encAttr := xmlquery.Attr{Name: xml.Name{Local: "encoding"}, Value: enc}
	attrs := make([]xmlquery.Attr, 0, len(decl.Attr)+1)
	inserted := false
	for _, a := range decl.Attr {
		if !inserted && a.Name.Local == "standalone" {
			attrs = append(attrs, encAttr)
			inserted = true
		}
		attrs = append(attrs, a)
	}
	if !inserted {
		attrs = append(attrs, encAttr)
	}
	decl.Attr = attrs
}

// Analyze runs the transform on in-memory copies of the styles and document
// parts and reports what it would change, without producing output.
func Analyze(stylesXML, documentXML []byte) (StyleTable, Stats, error) {
	table, err := ResolveStyles(stylesXML)
	if err != nil {
		return nil, Stats{}, err
	}
	doc, err := ParseDocument(documentXML)
	if err != nil {
		return table, Stats{}, err
	}
	return table, doc.ApplyInherited(table), nil
}
