// Package export renders a generated draft into downloadable formats.
package export

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	bodyFont   = "Helvetica"
	monoFont   = "Courier"
	bodySize   = 11.0
	lineHeight = 5.5
	listIndent = 6.0
)

var headingSizes = map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 11}

var (
	markdownOnce   sync.Once
	markdownParser goldmark.Markdown
)

func parser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParser
}

type PDFOptions struct {
	Title     string
	CreatedAt time.Time
}

// PDF renders markdown as an A4 document. The source string is only read.
func PDF(w io.Writer, markdown string, opts PDFOptions) error {
	doc, err := buildPDF(markdown, opts)
	if err != nil {
		return err
	}
	return doc.Output(w)
}

func buildPDF(markdown string, opts PDFOptions) (*fpdf.Fpdf, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	if opts.Title != "" {
		doc.SetTitle(opts.Title, true)
	}
	if !opts.CreatedAt.IsZero() {
		doc.SetCreationDate(opts.CreatedAt)
	}
	doc.AddPage()

	left, _, _, _ := doc.GetMargins()
	source := []byte(markdown)
	r := &pdfRenderer{
		doc:        doc,
		source:     source,
		translate:  doc.UnicodeTranslatorFromDescriptor(""),
		size:       bodySize,
		leftMargin: left,
	}
	r.applyFont()

	document := parser().Parser().Parse(text.NewReader(source))
	if err := ast.Walk(document, r.walk); err != nil {
		return nil, err
	}
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return doc, nil
}

type pdfList struct {
	ordered bool
	counter int
}

type pdfRenderer struct {
	doc        *fpdf.Fpdf
	source     []byte
	translate  func(string) string
	size       float64
	boldCount  int
	italicCnt  int
	monoCount  int
	lists      []pdfList
	quoteDepth int
	leftMargin float64
	cellIndex  int
}

func (r *pdfRenderer) applyFont() {
	family := bodyFont
	if r.monoCount > 0 {
		family = monoFont
	}
	style := ""
	if r.boldCount > 0 {
		style += "B"
	}
	if r.italicCnt > 0 {
		style += "I"
	}
	r.doc.SetFont(family, style, r.size)
}

func (r *pdfRenderer) write(s string) {
	if s == "" {
		return
	}
	r.doc.Write(lineHeight, r.translate(s))
}

func (r *pdfRenderer) indent() {
	depth := float64(len(r.lists) + r.quoteDepth)
	r.doc.SetLeftMargin(r.leftMargin + depth*listIndent)
	r.doc.SetX(r.leftMargin + depth*listIndent)
}

func (r *pdfRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {
	case ast.KindDocument:

	case ast.KindHeading:
		heading := node.(*ast.Heading)
		if entering {
			r.doc.Ln(2)
			r.size = headingSizes[heading.Level]
			r.boldCount++
		} else {
			r.doc.Ln(lineHeight + 2)
			r.size = bodySize
			r.boldCount--
		}
		r.applyFont()

	case ast.KindParagraph:
		if !entering {
			r.doc.Ln(lineHeight)
			if len(r.lists) == 0 {
				r.doc.Ln(2)
			}
		}

	case ast.KindTextBlock:
		if !entering {
			r.doc.Ln(lineHeight)
		}

	case ast.KindBlockquote:
		if entering {
			r.quoteDepth++
			r.italicCnt++
		} else {
			r.quoteDepth--
			r.italicCnt--
		}
		r.applyFont()
		r.indent()

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			r.lists = append(r.lists, pdfList{ordered: list.IsOrdered(), counter: list.Start})
		} else {
			r.lists = r.lists[:len(r.lists)-1]
			if len(r.lists) == 0 {
				r.doc.Ln(2)
			}
		}
		r.indent()

	case ast.KindListItem:
		if entering {
			top := &r.lists[len(r.lists)-1]
			if top.ordered {
				r.write(fmt.Sprintf("%d. ", top.counter))
				top.counter++
			} else {
				r.write("• ")
			}
		}

	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		if entering {
			r.monoCount++
			r.applyFont()
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				segment := lines.At(i)
				line := strings.TrimRight(string(segment.Value(r.source)), "\r\n")
				r.doc.MultiCell(0, lineHeight, r.translate(line), "", "L", false)
			}
			r.monoCount--
			r.applyFont()
			r.doc.Ln(2)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindThematicBreak:
		if entering {
			pageWidth, _ := r.doc.GetPageSize()
			_, _, right, _ := r.doc.GetMargins()
			y := r.doc.GetY() + 2
			r.doc.Line(r.leftMargin, y, pageWidth-right, y)
			r.doc.Ln(6)
		}

	case ast.KindHTMLBlock:
		return ast.WalkSkipChildren, nil

	case ast.KindText:
		if entering {
			t := node.(*ast.Text)
			r.write(string(t.Segment.Value(r.source)))
			if t.HardLineBreak() {
				r.doc.Ln(lineHeight)
			} else if t.SoftLineBreak() {
				r.write(" ")
			}
		}

	case ast.KindString:
		if entering {
			r.write(string(node.(*ast.String).Value))
		}

	case ast.KindEmphasis:
		emphasis := node.(*ast.Emphasis)
		delta := 1
		if !entering {
			delta = -1
		}
		if emphasis.Level >= 2 {
			r.boldCount += delta
		} else {
			r.italicCnt += delta
		}
		r.applyFont()

	case ast.KindCodeSpan:
		if entering {
			r.monoCount++
		} else {
			r.monoCount--
		}
		r.applyFont()

	case ast.KindAutoLink:
		if entering {
			r.write(string(node.(*ast.AutoLink).URL(r.source)))
		}

	case ast.KindRawHTML:
		return ast.WalkSkipChildren, nil

	case extast.KindTaskCheckBox:
		if entering {
			if node.(*extast.TaskCheckBox).IsChecked {
				r.write("[x] ")
			} else {
				r.write("[ ] ")
			}
		}

	case extast.KindTableHeader, extast.KindTableRow:
		if entering {
			r.cellIndex = 0
			if node.Kind() == extast.KindTableHeader {
				r.boldCount++
				r.applyFont()
			}
		} else {
			if node.Kind() == extast.KindTableHeader {
				r.boldCount--
				r.applyFont()
			}
			r.doc.Ln(lineHeight)
		}

	case extast.KindTableCell:
		if entering {
			if r.cellIndex > 0 {
				r.write(" | ")
			}
			r.cellIndex++
		}

	case extast.KindTable:
		if !entering {
			r.doc.Ln(2)
		}
	}
	return ast.WalkContinue, nil
}
