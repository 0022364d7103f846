package export

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

type wordDocument struct {
	XMLName xml.Name `xml:"w:document"`
	Xmlns   string   `xml:"xmlns:w,attr"`
	Body    wordBody `xml:"w:body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"w:p"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"w:r"`
}

type wordRun struct {
	Text wordText `xml:"w:t"`
}

type wordText struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

// Paragraphs splits text on line breaks. N lines give N paragraphs in order,
// blank lines included.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// DOCX writes a word-processor package with one paragraph per line of text.
func DOCX(w io.Writer, text string) error {
	lines := Paragraphs(text)
	doc := wordDocument{Xmlns: wordNamespace}
	doc.Body.Paragraphs = make([]wordParagraph, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		doc.Body.Paragraphs[i].Runs = []wordRun{{Text: wordText{Space: "preserve", Value: line}}}
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypes)},
		{"_rels/.rels", []byte(packageRels)},
		{"word/document.xml", append([]byte(xml.Header), body...)},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := f.Write(p.data); err != nil {
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	return zw.Close()
}
