// Package template loads and validates the per-GSTIN X2Beta voucher
// templates. The layout is declarative: the schema is read from the
// template's own header row, never hard-coded by cell index.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tallyflow/internal/domain"
)

// Kind distinguishes the sales and expense template variants.
type Kind string

const (
	KindSales   Kind = "sales"
	KindExpense Kind = "expense"
)

// Canonical header names used when writing vouchers.
const (
	ColDate          = "Date"
	ColVoucherNo     = "Voucher No."
	ColVoucherType   = "Voucher Type"
	ColPartyLedger   = "Party Ledger"
	ColPartyName     = "Party Name"
	ColItemName      = "Item Name"
	ColQuantity      = "Quantity"
	ColRate          = "Rate"
	ColTaxableAmount = "Taxable Amount"
	ColCGSTLedger    = "Output CGST Ledger"
	ColCGSTAmount    = "CGST Amount"
	ColSGSTLedger    = "Output SGST Ledger"
	ColSGSTAmount    = "SGST Amount"
	ColIGSTLedger    = "Output IGST Ledger"
	ColIGSTAmount    = "IGST Amount"
	ColTotalAmount   = "Total Amount"
	ColNarration     = "Narration"
	ColLedgerName    = "Ledger Name"
)

var salesRequired = []string{
	ColDate, ColVoucherNo, ColVoucherType, ColPartyLedger, ColPartyName,
	ColItemName, ColQuantity, ColRate, ColTaxableAmount,
	ColCGSTLedger, ColCGSTAmount, ColSGSTLedger, ColSGSTAmount,
	ColIGSTLedger, ColIGSTAmount, ColTotalAmount, ColNarration,
}

var expenseRequired = []string{
	ColDate, ColVoucherNo, ColVoucherType, ColLedgerName,
	ColTotalAmount, ColNarration,
}

// headerScanRows bounds the search for the header row.
const headerScanRows = 10

// Schema is the validated layout of one template workbook. Extra
// columns beyond the required set are preserved in Order.
type Schema struct {
	Kind      Kind
	Path      string
	Name      string
	Sheet     string
	HeaderRow int
	Order     []string
	columns   map[string]int
}

// Col returns the 1-based column index of a header, or 0 when the
// template does not carry it.
func (s *Schema) Col(name string) int {
	return s.columns[name]
}

// CellName returns the A1-style cell reference for a header at a row.
func (s *Schema) CellName(row int, name string) (string, error) {
	col := s.Col(name)
	if col == 0 {
		return "", fmt.Errorf("template %s has no column %q", s.Name, name)
	}
	return excelize.CoordinatesToCellName(col, row)
}

// Registry resolves GSTINs to template schemas on disk. Templates live
// in one directory, named {gstin}_sales.xlsx and {gstin}_expense.xlsx.
type Registry struct {
	dir string
}

// NewRegistry creates a registry over a template directory.
func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

// Sales loads and validates the sales template for a GSTIN.
func (r *Registry) Sales(gstin string) (*Schema, error) {
	return r.load(gstin, KindSales, salesRequired)
}

// Expense loads and validates the expense template for a GSTIN.
func (r *Registry) Expense(gstin string) (*Schema, error) {
	return r.load(gstin, KindExpense, expenseRequired)
}

func (r *Registry) load(gstin string, kind Kind, required []string) (*Schema, error) {
	name := fmt.Sprintf("%s_%s.xlsx", gstin, kind)
	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: template %s not found in %s",
			domain.ErrTemplateInvalid, name, r.dir)
	}
	s, err := Load(path, kind, required)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Load parses a template workbook and validates its header row against
// the required header set for the kind.
func Load(path string, kind Kind, required []string) (*Schema, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrTemplateInvalid, filepath.Base(path), err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: %s has no sheets", domain.ErrTemplateInvalid, filepath.Base(path))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrTemplateInvalid, filepath.Base(path), err)
	}

	s := &Schema{
		Kind:  kind,
		Path:  path,
		Name:  filepath.Base(path),
		Sheet: sheet,
	}
	for i, row := range rows {
		if i >= headerScanRows {
			break
		}
		if cols := indexHeaders(row); cols[ColVoucherNo] != 0 {
			s.HeaderRow = i + 1
			s.columns = cols
			s.Order = trimmedHeaders(row)
			break
		}
	}
	if s.HeaderRow == 0 {
		return nil, fmt.Errorf("%w: %s: no header row within the first %d rows",
			domain.ErrTemplateInvalid, s.Name, headerScanRows)
	}

	var missing []string
	for _, h := range required {
		if s.columns[h] == 0 {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: missing headers %s",
			domain.ErrTemplateInvalid, s.Name, strings.Join(missing, ", "))
	}
	return s, nil
}

func indexHeaders(row []string) map[string]int {
	cols := make(map[string]int, len(row))
	for i, h := range row {
		h = strings.TrimSpace(h)
		if h != "" && cols[h] == 0 {
			cols[h] = i + 1
		}
	}
	return cols
}

func trimmedHeaders(row []string) []string {
	out := make([]string, 0, len(row))
	for _, h := range row {
		if t := strings.TrimSpace(h); t != "" {
			out = append(out, t)
		}
	}
	return out
}
