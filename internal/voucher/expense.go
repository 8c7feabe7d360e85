package voucher

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"tallyflow/internal/domain"
	"tallyflow/internal/template"
)

// balanceTolerance is the largest absolute imbalance a written expense
// voucher may carry after rounding.
var balanceTolerance = decimal.NewFromFloat(0.01)

// ExpenseInput is one fee statement to render as a balanced voucher.
type ExpenseInput struct {
	Schema       *template.Schema
	Month        string
	VoucherNo    string
	VendorLedger string
	Invoices     []domain.SellerInvoice
	OutPath      string
}

// ExpenseResult summarizes a written expense workbook.
type ExpenseResult struct {
	RecordCount  int
	TotalTaxable decimal.Decimal
	TotalTax     decimal.Decimal
}

// expenseLine is one ledger posting within the voucher, signed.
type expenseLine struct {
	ledger string
	amount decimal.Decimal
}

// WriteExpense renders one multi-row voucher: a debit per expense
// ledger, a debit per input-GST ledger, and one credit to the vendor
// payable ledger. Rows must sum to zero before the file is written.
func WriteExpense(in ExpenseInput) (*ExpenseResult, error) {
	lines, res := expenseLines(in)

	if err := checkBalanced(lines); err != nil {
		return nil, fmt.Errorf("voucher.WriteExpense: %w", err)
	}

	f, err := excelize.OpenFile(in.Schema.Path)
	if err != nil {
		return nil, fmt.Errorf("voucher.WriteExpense: %w", err)
	}
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("voucher.WriteExpense: %w", err)
	}

	date := firstOfMonth(in.Month)
	narration := fmt.Sprintf("Marketplace fees - %s", in.Month)

	for i, l := range lines {
		w := writer{f: f, schema: in.Schema, row: in.Schema.HeaderRow + 1 + i, styles: st}
		w.date(template.ColDate, date)
		w.text(template.ColVoucherNo, in.VoucherNo)
		w.text(template.ColVoucherType, "Journal")
		w.text(template.ColLedgerName, l.ledger)
		w.amount(template.ColTotalAmount, l.amount)
		w.text(template.ColNarration, narration)
		if w.err != nil {
			return nil, fmt.Errorf("voucher.WriteExpense: %w", w.err)
		}
	}

	if err := f.SaveAs(in.OutPath); err != nil {
		return nil, fmt.Errorf("voucher.WriteExpense: %w", err)
	}
	return res, nil
}

// expenseLines aggregates the statement into signed ledger postings:
// expense debits in first-seen ledger order, then input-GST debits,
// then the vendor credit for the negated grand total.
func expenseLines(in ExpenseInput) ([]expenseLine, *ExpenseResult) {
	res := &ExpenseResult{}

	debits := make(map[string]decimal.Decimal)
	var order []string
	add := func(ledger string, amount decimal.Decimal) {
		if amount.IsZero() {
			return
		}
		if _, ok := debits[ledger]; !ok {
			order = append(order, ledger)
		}
		debits[ledger] = debits[ledger].Add(amount)
	}

	total := decimal.Zero
	for _, inv := range in.Invoices {
		add(inv.LedgerName, inv.TaxableValue)
		add("Input CGST", inv.CGST)
		add("Input SGST", inv.SGST)
		add("Input IGST", inv.IGST)

		res.TotalTaxable = res.TotalTaxable.Add(inv.TaxableValue)
		res.TotalTax = res.TotalTax.Add(inv.CGST).Add(inv.SGST).Add(inv.IGST)
		total = total.Add(inv.TotalValue)
	}

	lines := make([]expenseLine, 0, len(order)+1)
	for _, ledger := range order {
		lines = append(lines, expenseLine{ledger: ledger, amount: debits[ledger].Round(2)})
	}
	lines = append(lines, expenseLine{ledger: in.VendorLedger, amount: total.Round(2).Neg()})

	res.RecordCount = len(lines)
	res.TotalTaxable = res.TotalTaxable.Round(2)
	res.TotalTax = res.TotalTax.Round(2)
	return lines, res
}

func checkBalanced(lines []expenseLine) error {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.amount)
	}
	if sum.Abs().GreaterThan(balanceTolerance) {
		return fmt.Errorf("%w: expense voucher off balance by %s",
			domain.ErrIntegrityCheckFailed, sum)
	}
	return nil
}
