package expense

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"tallyflow/internal/domain"
	"tallyflow/internal/port"
)

// LineItem is one fee line read from a statement, before classification.
type LineItem struct {
	VendorInvoiceNo string
	InvoiceDate     time.Time
	Description     string
	TaxableValue    decimal.Decimal
	GSTRate         decimal.Decimal
	VendorGSTIN     string
}

var statementRequired = []string{"invoice number", "invoice date", "description", "taxable value"}

const headerScanLimit = 10

// ParseStatement reads a seller fee statement. Workbooks and CSVs are
// parsed by header; PDFs go through text extraction first.
func ParseStatement(ctx context.Context, path string, pdf port.PDFExtractor) ([]LineItem, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		if pdf == nil {
			return nil, fmt.Errorf("expense.ParseStatement: no pdf extractor configured")
		}
		text, err := pdf.ExtractText(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("expense.ParseStatement: %w", err)
		}
		return parsePDFText(text, path)
	}
	return parseTabular(path)
}

func parseTabular(path string) ([]LineItem, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	var cols map[string]int
	var first int
	limit := headerScanLimit
	if limit > len(records) {
		limit = len(records)
	}
	for i := 0; i < limit; i++ {
		c := indexHeader(records[i])
		if hasAll(c, statementRequired) {
			cols, first = c, i+1
			break
		}
	}
	if cols == nil {
		return nil, fmt.Errorf("expense %s: %w: need columns %s",
			filepath.Base(path), domain.ErrSchemaMismatch, strings.Join(statementRequired, ", "))
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var items []LineItem
	for _, row := range records[first:] {
		desc := cell(row, "description")
		if desc == "" {
			continue
		}
		date, err := parseDate(cell(row, "invoice date"))
		if err != nil {
			continue
		}
		taxable, err := parseAmount(cell(row, "taxable value"))
		if err != nil {
			continue
		}
		rate, _ := parseRatePct(cell(row, "gst rate"))

		items = append(items, LineItem{
			VendorInvoiceNo: cell(row, "invoice number"),
			InvoiceDate:     date,
			Description:     desc,
			TaxableValue:    taxable,
			GSTRate:         rate,
			VendorGSTIN:     cell(row, "vendor gstin"),
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("expense %s: %w", filepath.Base(path), domain.ErrEmptyInput)
	}
	return items, nil
}

// Fee lines in extracted PDF text look like
// "Weight Handling Fee    1,234.00    18%".
var (
	pdfLineRe    = regexp.MustCompile(`^(.+?)\s+([0-9,]+\.\d{2})\s+(\d+(?:\.\d+)?)%\s*$`)
	pdfInvNoRe   = regexp.MustCompile(`(?i)invoice\s+(?:no\.?|number)\s*[:.]?\s*(\S+)`)
	pdfInvDateRe = regexp.MustCompile(`(?i)invoice\s+date\s*[:.]?\s*(\S+)`)
	pdfGSTINRe   = regexp.MustCompile(`(?i)gstin\s*[:.]?\s*([0-9]{2}[A-Z0-9]{13})`)
)

func parsePDFText(text, path string) ([]LineItem, error) {
	var (
		invNo  string
		date   time.Time
		vendor string
		items  []LineItem
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := pdfInvNoRe.FindStringSubmatch(line); m != nil && invNo == "" {
			invNo = m[1]
		}
		if m := pdfInvDateRe.FindStringSubmatch(line); m != nil && date.IsZero() {
			if d, err := parseDate(m[1]); err == nil {
				date = d
			}
		}
		if m := pdfGSTINRe.FindStringSubmatch(line); m != nil && vendor == "" {
			vendor = m[1]
		}
		if m := pdfLineRe.FindStringSubmatch(line); m != nil {
			taxable, err := parseAmount(m[2])
			if err != nil {
				continue
			}
			rate, err := parseRatePct(m[3])
			if err != nil {
				continue
			}
			items = append(items, LineItem{
				Description:  strings.TrimSpace(m[1]),
				TaxableValue: taxable,
				GSTRate:      rate,
			})
		}
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("expense %s: %w", filepath.Base(path), domain.ErrEmptyInput)
	}
	for i := range items {
		items[i].VendorInvoiceNo = invNo
		items[i].InvoiceDate = date
		items[i].VendorGSTIN = vendor
	}
	return items, nil
}

func readRecords(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("expense: open workbook: %w", err)
		}
		defer func() { _ = f.Close() }()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("expense: read sheet: %w", err)
		}
		return rows, nil
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("expense: open csv: %w", err)
		}
		defer f.Close()
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		records, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("expense: read csv: %w", err)
		}
		return records, nil
	}
}

func indexHeader(row []string) map[string]int {
	cols := make(map[string]int, len(row))
	for i, h := range row {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, seen := cols[key]; !seen {
			cols[key] = i
		}
	}
	return cols
}

func hasAll(cols map[string]int, required []string) bool {
	for _, r := range required {
		if _, ok := cols[r]; !ok {
			return false
		}
	}
	return true
}

var statementDateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range statementDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "₹"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q", s)
	}
	return d.Round(2), nil
}

var hundred = decimal.NewFromInt(100)

// parseRatePct accepts "18", "18%", or "0.18"; blank maps to zero so the
// rule engine's default applies.
func parseRatePct(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable gst rate %q", s)
	}
	if d.GreaterThan(decimal.NewFromInt(1)) {
		d = d.Div(hundred)
	}
	return d, nil
}
