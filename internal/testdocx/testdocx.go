// Package testdocx builds small but valid .docx packages for tests.
package testdocx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// WordNS is the WordprocessingML main namespace.
const WordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Default Extension="png" ContentType="image/png"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/></Types>`

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/" TargetMode="External"/></Relationships>`

// Media is a stand-in binary part used to check pass-through of non-XML
// entries.
var Media = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0x00, 0x00, 0x0d, 0xff, 0xfe}

// Document wraps body paragraphs in a w:document/w:body element using the
// conventional "w" prefix.
func Document(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="` + WordNS + `" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<w:body>` + body + `</w:body></w:document>`
}

// Styles wraps style elements in a w:styles element.
func Styles(styles ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:styles xmlns:w="` + WordNS + `">` + strings.Join(styles, "") + `</w:styles>`
}

// ParagraphStyle returns a paragraph style whose run properties are rPr
// (the inner markers, e.g. `<w:b/>`). An empty rPr omits the block.
func ParagraphStyle(id, rPr string) string {
	s := fmt.Sprintf(`<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="%s"/>`, id, strings.ToLower(id))
	if rPr != "" {
		s += `<w:rPr>` + rPr + `</w:rPr>`
	}
	return s + `</w:style>`
}

// Paragraph returns a paragraph referencing style (empty for none) that
// contains runs.
func Paragraph(style string, runs ...string) string {
	p := `<w:p>`
	if style != "" {
		p += `<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`
	}
	return p + strings.Join(runs, "") + `</w:p>`
}

// Run returns a run with text. rPr is the inner run properties; pass "-" to
// omit the rPr block entirely and "" for an empty block.
func Run(rPr, text string) string {
	r := `<w:r>`
	if rPr != "-" {
		r += `<w:rPr>` + rPr + `</w:rPr>`
	}
	return r + `<w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

// Files returns the entries of a package with the given document and styles
// parts plus the standard relationship parts and one media file.
func Files(document, styles string) map[string][]byte {
	return map[string][]byte{
		"[Content_Types].xml":          []byte(contentTypes),
		"_rels/.rels":                  []byte(rootRels),
		"word/_rels/document.xml.rels": []byte(documentRels),
		"word/document.xml":            []byte(document),
		"word/styles.xml":              []byte(styles),
		"word/media/image1.png":        Media,
	}
}

// Write stores files as a zip archive at path. Entries are written with the
// content types manifest first and the rest sorted.
func Write(t testing.TB, path string, files map[string][]byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("testdocx: mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("testdocx: create %s: %v", path, err)
	}
	defer f.Close()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if (names[i] == "[Content_Types].xml") != (names[j] == "[Content_Types].xml") {
			return names[i] == "[Content_Types].xml"
		}
		return names[i] < names[j]
	})

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("testdocx: create entry %s: %v", name, err)
		}
		if _, err := w.Write(files[name]); err != nil {
			t.Fatalf("testdocx: write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("testdocx: close zip: %v", err)
	}
}

// Read returns every entry of the zip archive at path.
func Read(t testing.TB, path string) map[string][]byte {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("testdocx: open %s: %v", path, err)
	}
	defer r.Close()

	out := make(map[string][]byte)
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("testdocx: open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("testdocx: read entry %s: %v", f.Name, err)
		}
		out[f.Name] = data
	}
	return out
}

// Names returns the entry names of the archive at path in archive order.
func Names(t testing.TB, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("testdocx: open %s: %v", path, err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}
