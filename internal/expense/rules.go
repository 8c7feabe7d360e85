// Package expense turns seller fee statements into classified seller
// invoice records and feeds the expense voucher assembler.
package expense

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Rule declares how one expense type maps to books: the ledger it
// posts to, the rate used when the statement omits one, and whether the
// GST on it is claimable input tax.
type Rule struct {
	Keyword     string
	ExpenseType string
	LedgerName  string
	DefaultRate decimal.Decimal
	InputGST    bool
}

// Engine classifies fee descriptions by keyword, first match wins.
type Engine struct {
	rules    []Rule
	fallback Rule
}

var rate18 = decimal.NewFromFloat(0.18)

// DefaultEngine covers the fee types marketplaces bill sellers for.
func DefaultEngine() *Engine {
	return &Engine{
		rules: []Rule{
			{Keyword: "closing", ExpenseType: "Closing Fee", LedgerName: "Marketplace Closing Fees", DefaultRate: rate18, InputGST: true},
			{Keyword: "commission", ExpenseType: "Commission Fee", LedgerName: "Marketplace Commission", DefaultRate: rate18, InputGST: true},
			{Keyword: "referral", ExpenseType: "Commission Fee", LedgerName: "Marketplace Commission", DefaultRate: rate18, InputGST: true},
			{Keyword: "shipping", ExpenseType: "Shipping Fee", LedgerName: "Marketplace Shipping Fees", DefaultRate: rate18, InputGST: true},
			{Keyword: "weight handling", ExpenseType: "Shipping Fee", LedgerName: "Marketplace Shipping Fees", DefaultRate: rate18, InputGST: true},
			{Keyword: "pick & pack", ExpenseType: "Fulfilment Fee", LedgerName: "Marketplace Fulfilment Fees", DefaultRate: rate18, InputGST: true},
			{Keyword: "pick and pack", ExpenseType: "Fulfilment Fee", LedgerName: "Marketplace Fulfilment Fees", DefaultRate: rate18, InputGST: true},
			{Keyword: "storage", ExpenseType: "Storage Fee", LedgerName: "Marketplace Storage Fees", DefaultRate: rate18, InputGST: true},
			{Keyword: "advertis", ExpenseType: "Advertising Fee", LedgerName: "Marketplace Advertising", DefaultRate: rate18, InputGST: true},
			{Keyword: "fixed", ExpenseType: "Fixed Fee", LedgerName: "Marketplace Fixed Fees", DefaultRate: rate18, InputGST: true},
			{Keyword: "refund", ExpenseType: "Refund Administration Fee", LedgerName: "Marketplace Refund Fees", DefaultRate: rate18, InputGST: true},
		},
		fallback: Rule{
			ExpenseType: "Other Marketplace Fee",
			LedgerName:  "Marketplace Other Fees",
			DefaultRate: rate18,
			InputGST:    true,
		},
	}
}

// Classify matches a fee description against the rule keywords,
// case-insensitively. Unmatched descriptions get the fallback rule.
func (e *Engine) Classify(description string) Rule {
	d := strings.ToLower(description)
	for _, r := range e.rules {
		if strings.Contains(d, r.Keyword) {
			return r
		}
	}
	return e.fallback
}
