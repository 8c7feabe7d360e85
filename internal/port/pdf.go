package port

import "context"

// PDFExtractor abstracts text extraction from text-extractable PDFs.
// Scanned images are out of scope; extractors do not OCR.
type PDFExtractor interface {
	// ExtractText returns the plain text of every page, in page order.
	ExtractText(ctx context.Context, path string) (string, error)
}
