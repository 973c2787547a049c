package docx

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/antchfx/xmlquery"

	fixerr "github.com/aerissecure/docxfix/internal/errors"
	"github.com/aerissecure/docxfix/internal/testdocx"
)

func TestClassifyMarker(t *testing.T) {
	tests := []struct {
		name string
		rPr  string
		want markerState
		isOn bool
	}{
		{"absent", `<w:i/>`, markerAbsent, false},
		{"bare", `<w:b/>`, markerBare, true},
		{"zero", `<w:b w:val="0"/>`, markerOff, false},
		{"false", `<w:b w:val="false"/>`, markerOff, false},
		{"one", `<w:b w:val="1"/>`, markerOn, true},
		{"true", `<w:b w:val="true"/>`, markerOn, true},
		// Only "0" and "false" switch a marker off.
		{"off keyword", `<w:b w:val="off"/>`, markerOn, true},
		{"upper case FALSE", `<w:b w:val="FALSE"/>`, markerOn, true},
		{"empty value", `<w:b w:val=""/>`, markerOn, true},
		// An unqualified val attribute is not w:val.
		{"unqualified val", `<w:b val="0"/>`, markerBare, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `<w:rPr xmlns:w="` + WordNS + `">` + tt.rPr + `</w:rPr>`
			doc, err := xmlquery.Parse(bytes.NewReader([]byte(src)))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			got := classifyMarker(rootElement(doc), "b")
			if got != tt.want {
				t.Errorf("classifyMarker = %v, want %v", got, tt.want)
			}
			if got.On() != tt.isOn {
				t.Errorf("On() = %t, want %t", got.On(), tt.isOn)
			}
		})
	}
}

func TestResolveStyles(t *testing.T) {
	styles := testdocx.Styles(
		testdocx.ParagraphStyle("Heading1", `<w:b/>`),
		testdocx.ParagraphStyle("Quote", `<w:i/><w:iCs w:val="1"/>`),
		testdocx.ParagraphStyle("Strong", `<w:b/><w:bCs/><w:i w:val="0"/>`),
		testdocx.ParagraphStyle("Plain", `<w:sz w:val="24"/>`),
		testdocx.ParagraphStyle("Normal", ""),
		`<w:style w:type="paragraph"><w:rPr><w:b/></w:rPr></w:style>`,
		`<w:style w:type="paragraph" w:styleId=""><w:rPr><w:b/></w:rPr></w:style>`,
	)

	table, err := ResolveStyles([]byte(styles))
	if err != nil {
		t.Fatalf("ResolveStyles failed: %v", err)
	}

	want := StyleTable{
		"Heading1": {Bold: true},
		"Quote":    {Italic: true, ItalicCS: true},
		"Strong":   {Bold: true, BoldCS: true},
		"Plain":    {},
	}
	if !reflect.DeepEqual(table, want) {
		t.Errorf("table = %v, want %v", table, want)
	}

	if _, ok := table["Normal"]; ok {
		t.Error("style without rPr should be absent from the table")
	}
	if got := table.Lookup("Normal"); got.Any() {
		t.Errorf("Lookup(Normal) = %v, want all-false", got)
	}
	if got := table.Lookup(""); got.Any() {
		t.Errorf("Lookup(\"\") = %v, want all-false", got)
	}
}

func TestResolveStyles_FirstRunPropertiesWins(t *testing.T) {
	// The paragraph-mark properties under w:pPr come first in document order.
	styles := testdocx.Styles(
		`<w:style w:type="paragraph" w:styleId="Mixed"><w:pPr><w:rPr><w:i/></w:rPr></w:pPr><w:rPr><w:b/></w:rPr></w:style>`,
	)
	table, err := ResolveStyles([]byte(styles))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := table["Mixed"], (StyleFormatting{Italic: true}); got != want {
		t.Errorf("Mixed = %v, want %v", got, want)
	}
}

func TestResolveStyles_NoCascade(t *testing.T) {
	styles := testdocx.Styles(
		testdocx.ParagraphStyle("Base", `<w:b/>`),
		`<w:style w:type="paragraph" w:styleId="Child"><w:basedOn w:val="Base"/><w:rPr><w:i/></w:rPr></w:style>`,
	)
	table, err := ResolveStyles([]byte(styles))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := table["Child"], (StyleFormatting{Italic: true}); got != want {
		t.Errorf("Child = %v, want %v (parent style must not be merged in)", got, want)
	}
}

func TestResolveStyles_DuplicateIDLastWins(t *testing.T) {
	styles := testdocx.Styles(
		testdocx.ParagraphStyle("Dup", `<w:b/>`),
		testdocx.ParagraphStyle("Dup", `<w:i/>`),
	)
	table, err := ResolveStyles([]byte(styles))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := table["Dup"], (StyleFormatting{Italic: true}); got != want {
		t.Errorf("Dup = %v, want %v", got, want)
	}
}

func TestResolveStyles_OtherPrefix(t *testing.T) {
	styles := `<?xml version="1.0"?><ns0:styles xmlns:ns0="` + WordNS + `">` +
		`<ns0:style ns0:styleId="Heading1"><ns0:rPr><ns0:b/></ns0:rPr></ns0:style></ns0:styles>`
	table, err := ResolveStyles([]byte(styles))
	if err != nil {
		t.Fatal(err)
	}
	if !table["Heading1"].Bold {
		t.Errorf("Heading1 = %v, want bold", table["Heading1"])
	}
}

func TestResolveStyles_ForeignNamespaceIgnored(t *testing.T) {
	styles := `<w:styles xmlns:w="` + WordNS + `" xmlns:x="urn:example">` +
		`<x:style w:styleId="Fake"><w:rPr><w:b/></w:rPr></x:style>` +
		`<w:style w:styleId="Real"><w:rPr><x:b/></w:rPr></w:style></w:styles>`
	table, err := ResolveStyles([]byte(styles))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := table["Fake"]; ok {
		t.Error("x:style should not be treated as a style")
	}
	if table["Real"].Bold {
		t.Error("x:b should not count as a bold marker")
	}
}

func TestResolveStyles_Malformed(t *testing.T) {
	for _, data := range []string{`<w:styles xmlns:w="` + WordNS + `"><w:style>`, ``} {
		_, err := ResolveStyles([]byte(data))
		var pe *fixerr.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("ResolveStyles(%q) err = %v, want ParseError", data, err)
		}
		if pe.Path != StylesPart {
			t.Errorf("ParseError.Path = %q, want %q", pe.Path, StylesPart)
		}
	}
}

func TestStyleTableSummary(t *testing.T) {
	table := StyleTable{
		"Heading1": {Bold: true},
		"Heading2": {BoldCS: true, Italic: true},
		"Quote":    {ItalicCS: true},
		"Plain":    {},
	}
	s := table.Summary()
	if s.WithFormatting != 4 {
		t.Errorf("WithFormatting = %d, want 4", s.WithFormatting)
	}
	if !reflect.DeepEqual(s.Bold, []string{"Heading1", "Heading2"}) {
		t.Errorf("Bold = %v", s.Bold)
	}
	if !reflect.DeepEqual(s.Italic, []string{"Heading2", "Quote"}) {
		t.Errorf("Italic = %v", s.Italic)
	}
}
