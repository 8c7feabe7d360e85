// Package pdftext extracts plain text from PDF fee statements via
// pdfcpu content streams. Layout is not reconstructed; strings come out
// in stream order with line breaks at text-positioning operators.
package pdftext

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Extractor implements port.PDFExtractor.
type Extractor struct {
	conf *model.Configuration
}

// New creates an extractor with the relaxed validation pdfcpu
// recommends for third-party PDFs.
func New() *Extractor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Extractor{conf: conf}
}

// ExtractText returns the text content of every page, pages separated
// by newlines.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("pdftext.ExtractText: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, e.conf)
	if err != nil {
		return "", fmt.Errorf("pdftext.ExtractText: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("pdftext.ExtractText: %w", err)
	}
	e.conf.Cmd = model.EXTRACTCONTENT
	pdfCtx, err := api.ReadValidateAndOptimize(f, e.conf)
	if err != nil {
		return "", fmt.Errorf("pdftext.ExtractText: %w", err)
	}

	var b strings.Builder
	for page := 1; page <= count; page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r, err := pdfcpu.ExtractPageContent(pdfCtx, page)
		if err != nil {
			return "", fmt.Errorf("pdftext.ExtractText: page %d: %w", page, err)
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("pdftext.ExtractText: page %d: %w", page, err)
		}
		b.WriteString(decodeContent(content))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// decodeContent pulls literal strings out of a page content stream.
// Strings on the same text line are space-joined; Td, TD, T* and ET
// start a new line.
func decodeContent(content []byte) string {
	var out strings.Builder
	var line []string

	flush := func() {
		if len(line) > 0 {
			out.WriteString(strings.Join(line, " "))
			out.WriteByte('\n')
			line = nil
		}
	}

	i := 0
	for i < len(content) {
		c := content[i]
		switch c {
		case '(':
			s, next := literalString(content, i)
			if s != "" {
				line = append(line, s)
			}
			i = next
		case 'T':
			if i+1 < len(content) {
				switch content[i+1] {
				case 'd', 'D', '*':
					flush()
				}
			}
			i++
		case 'E':
			if i+1 < len(content) && content[i+1] == 'T' {
				flush()
			}
			i++
		default:
			i++
		}
	}
	flush()
	return out.String()
}

// literalString reads a parenthesized PDF string starting at open and
// returns the decoded text plus the index after the closing paren.
func literalString(content []byte, open int) (string, int) {
	var b strings.Builder
	depth := 0
	i := open
	for i < len(content) {
		c := content[i]
		switch c {
		case '\\':
			if i+1 < len(content) {
				b.WriteString(unescape(content[i+1]))
				i += 2
				continue
			}
			i++
		case '(':
			depth++
			if depth > 1 {
				b.WriteByte(c)
			}
			i++
		case ')':
			depth--
			if depth == 0 {
				return b.String(), i + 1
			}
			b.WriteByte(c)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), i
}

func unescape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r', 'b', 'f':
		return ""
	case '(', ')', '\\':
		return string(c)
	default:
		return string(c)
	}
}
