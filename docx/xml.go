package docx

import (
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// WordNS is the WordprocessingML main namespace. Elements are matched by
// this URI, never by prefix, so documents that bind it to a prefix other than
// "w" (or to the default namespace) work the same way.
const WordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// xmlNS is the namespace reserved for the xml: prefix.
const xmlNS = "http://www.w3.org/XML/1998/namespace"

// Package parts read by the transform.
const (
	DocumentPart = "word/document.xml"
	StylesPart   = "word/styles.xml"
)

var namespaces = map[string]string{"w": WordNS}

var (
	xpParagraphs = mustCompile("//w:p")
	xpRuns       = mustCompile(".//w:r")
	xpStyles     = mustCompile("//w:style")
	xpStyleRPr   = mustCompile(".//w:rPr")
)

func mustCompile(expr string) *xpath.Expr {
	e, err := xpath.CompileWithNS(expr, namespaces)
	if err != nil {
		panic(fmt.Sprintf("docx: compile %q: %v", expr, err))
	}
	return e
}

// -----------------------------------------------------------------------------
// Node helpers
// -----------------------------------------------------------------------------

func isWordElement(n *xmlquery.Node, local string) bool {
	return n.Type == xmlquery.ElementNode && n.Data == local && n.NamespaceURI == WordNS
}

// childElement returns the first direct child w:<local> of n.
func childElement(n *xmlquery.Node, local string) *xmlquery.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isWordElement(c, local) {
			return c
		}
	}
	return nil
}

// wordAttr returns the value of the w:<local> attribute of n.
func wordAttr(n *xmlquery.Node, local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == local && a.NamespaceURI == WordNS {
			return a.Value, true
		}
	}
	return "", false
}

// newElement creates a bare w:<local> element written with prefix.
func newElement(prefix, local string) *xmlquery.Node {
	return &xmlquery.Node{
		Type:         xmlquery.ElementNode,
		Data:         local,
		Prefix:       prefix,
		NamespaceURI: WordNS,
	}
}

// prependChild inserts n as the first child of parent.
func prependChild(parent, n *xmlquery.Node) {
	n.Parent = parent
	n.PrevSibling = nil
	n.NextSibling = parent.FirstChild
	if parent.FirstChild != nil {
		parent.FirstChild.PrevSibling = n
	} else {
		parent.LastChild = n
	}
	parent.FirstChild = n
}

// rootElement returns the document element of a parsed tree.
func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

// restoreXMLPrefix rewrites attributes in the reserved xml namespace (such
// as xml:space on w:t) so they serialise with their xml: prefix.
func restoreXMLPrefix(n *xmlquery.Node) {
	for i := range n.Attr {
		if n.Attr[i].NamespaceURI == xmlNS || n.Attr[i].Name.Space == xmlNS {
			n.Attr[i].Name.Space = "xml"
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			restoreXMLPrefix(c)
		}
	}
}

// -----------------------------------------------------------------------------
// Marker classification
// -----------------------------------------------------------------------------

// markerState is the tri-state reading of an on/off marker such as w:b.
type markerState int

const (
	markerAbsent markerState = iota // no element
	markerBare                      // <w:b/>
	markerOff                       // <w:b w:val="0"/> or w:val="false"
	markerOn                        // any other w:val
)

// classifyMarker reads the direct child w:<local> of props.
func classifyMarker(props *xmlquery.Node, local string) markerState {
	m := childElement(props, local)
	if m == nil {
		return markerAbsent
	}
	val, ok := wordAttr(m, "val")
	if !ok {
		return markerBare
	}
	switch val {
	case "0", "false":
		return markerOff
	}
	return markerOn
}

// On reports whether the marker switches its attribute on.
func (s markerState) On() bool {
	return s == markerBare || s == markerOn
}

func (s markerState) String() string {
	switch s {
	case markerAbsent:
		return "absent"
	case markerBare:
		return "bare"
	case markerOff:
		return "off"
	case markerOn:
		return "on"
	}
	return fmt.Sprintf("markerState(%d)", int(s))
}

// runMarker ties one marker element to its StyleFormatting field and Stats
// counter. runMarkers is in check order.
type runMarker struct {
	local     string
	inherited func(StyleFormatting) bool
	count     func(*Stats)
}

var runMarkers = [...]runMarker{
	{"b", func(f StyleFormatting) bool { return f.Bold }, func(s *Stats) { s.Bold++ }},
	{"bCs", func(f StyleFormatting) bool { return f.BoldCS }, func(s *Stats) { s.BoldCS++ }},
	{"i", func(f StyleFormatting) bool { return f.Italic }, func(s *Stats) { s.Italic++ }},
	{"iCs", func(f StyleFormatting) bool { return f.ItalicCS }, func(s *Stats) { s.ItalicCS++ }},
}
