// Package normalize converts raw marketplace reports into canonical
// transaction rows. One normalizer per report type; all share the table
// scanning and data cleaning rules here.
package normalize

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"tallyflow/internal/domain"
)

// Input carries the raw file and the run header values.
type Input struct {
	Path           string
	ReturnsPath    string // sibling returns file (pepperfry only)
	Channel        domain.Channel
	GSTIN          string
	Month          string
	DefaultGSTRate decimal.Decimal
}

// Result is the outcome of a normalization: ordered canonical rows plus
// the per-row failures that were recorded and skipped.
type Result struct {
	Rows    []domain.CanonicalRow
	Dropped []domain.RowError
}

// Normalizer reads one raw report type and emits canonical rows.
type Normalizer interface {
	ReportType() domain.ReportType
	Normalize(ctx context.Context, in Input) (*Result, error)
}

// ForReportType returns the normalizer for a report type.
func ForReportType(rt domain.ReportType) (Normalizer, error) {
	switch rt {
	case domain.ReportTypeSalesMTR:
		return &amazonMTR{}, nil
	case domain.ReportTypeSettlementSTR:
		return &amazonSTR{}, nil
	case domain.ReportTypeFlipkartSales:
		return &flipkartSales{}, nil
	case domain.ReportTypePepperfrySales:
		return &pepperfrySales{}, nil
	default:
		return nil, fmt.Errorf("normalize: %w: %s", domain.ErrUnknownReportType, rt)
	}
}

// table is a raw report loaded into memory: a header index plus data rows.
type table struct {
	cols map[string]int
	rows [][]string
	// firstLine is the 1-based source line of rows[0], for error messages.
	firstLine int
}

// headerScanLimit bounds how deep we look for the header row; marketplace
// exports put preamble banners above it.
const headerScanLimit = 10

// loadTable reads an xlsx or CSV file and locates the header row containing
// every required column (case-insensitive). Missing columns are a
// SchemaMismatch.
func loadTable(path string, required []string) (*table, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	limit := headerScanLimit
	if limit > len(records) {
		limit = len(records)
	}
	for i := 0; i < limit; i++ {
		cols := indexHeader(records[i])
		if hasAll(cols, required) {
			return &table{cols: cols, rows: records[i+1:], firstLine: i + 2}, nil
		}
	}
	return nil, fmt.Errorf("normalize %s: %w: need columns %s",
		filepath.Base(path), domain.ErrSchemaMismatch, strings.Join(required, ", "))
}

func readRecords(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("normalize: open workbook: %w", err)
		}
		defer func() { _ = f.Close() }()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("normalize: read sheet: %w", err)
		}
		return rows, nil
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("normalize: open csv: %w", err)
		}
		defer f.Close()
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		records, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("normalize: read csv: %w", err)
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

// cell returns the trimmed value of a named column, or "" when the row is
// ragged or the column absent.
func (t *table) cell(row []string, name string) string {
	idx, ok := t.cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// dateLayouts covers the formats seen across marketplace exports.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006-01-02T15:04:05Z",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// parseAmount parses a money value, tolerating thousands separators and a
// currency marker, and rounds to 2 decimal places.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
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

// parseRate coerces a GST rate to decimal form. Percent-integers ("18",
// "18%") become 0.18; decimal form ("0.18") passes through; blank falls
// back to the default.
func parseRate(s string, def decimal.Decimal) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable gst rate %q", s)
	}
	if d.GreaterThan(decimal.NewFromInt(1)) {
		d = d.Div(hundred)
	}
	if !domain.ValidGSTRate(d) {
		return decimal.Zero, fmt.Errorf("gst rate %s outside allowed set", d)
	}
	return d, nil
}

func parseQuantity(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("unparseable quantity %q", s)
	}
	return d.IntPart(), nil
}

func decimalFromSign(sign int64) decimal.Decimal {
	return decimal.NewFromInt(sign)
}

func dropRow(res *Result, line int, err error) {
	res.Dropped = append(res.Dropped, domain.RowError{Line: line, Message: err.Error()})
}

// finish applies the EmptyInput rule after a normalizer has walked its rows.
func finish(res *Result, path string) (*Result, error) {
	if len(res.Rows) == 0 {
		return nil, fmt.Errorf("normalize %s: %w", filepath.Base(path), domain.ErrEmptyInput)
	}
	return res, nil
}
