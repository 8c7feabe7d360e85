package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"tallyflow/internal/csvexport"
	"tallyflow/internal/domain"
	"tallyflow/internal/expense"
	"tallyflow/internal/invoice"
	"tallyflow/internal/voucher"
)

// expenseSequenceChannel keys the per-(gstin, month) expense voucher
// counter separately from the sales channels.
const expenseSequenceChannel = domain.Channel("expense")

// runExpense executes the seller-invoice flow: parse the fee statement,
// classify and split it, then write one balanced expense voucher.
func (c *Coordinator) runExpense(ctx context.Context, st *runState) error {
	var invoices []domain.SellerInvoice

	if err := c.stage(ctx, st, domain.StageNormalize, func(ctx context.Context) (int, error) {
		if err := c.persistRawInput(ctx, st); err != nil {
			return 0, err
		}
		items, err := expense.ParseStatement(ctx, st.req.InputPath, c.deps.PDF)
		if err != nil {
			return 0, err
		}
		invoices = expense.Process(items, expense.DefaultEngine(), st.run.ID,
			st.req.Channel, st.req.GSTIN, filepath.Base(st.req.InputPath))
		if err := c.deps.Exports.InsertSellerInvoices(ctx, invoices); err != nil {
			return 0, err
		}
		return len(invoices), nil
	}); err != nil {
		return err
	}

	return c.stage(ctx, st, domain.StageExpense, func(ctx context.Context) (int, error) {
		schema, err := c.deps.Templates.Expense(st.req.GSTIN)
		if err != nil {
			return 0, err
		}

		seqKey := domain.InvoiceSequence{
			GSTIN:   st.req.GSTIN,
			Channel: expenseSequenceChannel,
			Month:   st.req.Month,
		}
		seq, err := st.alloc.Next(ctx, seqKey)
		if err != nil {
			return 0, err
		}
		voucherNo := invoice.ExpenseVoucherNo(st.req.GSTIN, st.req.Month, seq)

		name := csvexport.ExpenseFileName(st.req.Channel, st.req.GSTIN, st.req.Month)
		outPath := filepath.Join(st.workDir, name)
		res, err := voucher.WriteExpense(voucher.ExpenseInput{
			Schema:       schema,
			Month:        st.req.Month,
			VoucherNo:    voucherNo,
			VendorLedger: vendorLedger(st.req.Channel),
			Invoices:     invoices,
			OutPath:      outPath,
		})
		if err != nil {
			st.alloc.Release()
			return 0, err
		}
		if err := st.alloc.Commit(ctx); err != nil {
			return 0, err
		}

		hash, err := csvexport.HashFile(outPath)
		if err != nil {
			return 0, err
		}
		if err := c.persistArtifact(ctx, st, domain.RoleVoucher, outPath, hash); err != nil {
			return 0, err
		}
		if _, err := os.Stat(outPath); err != nil {
			return 0, err
		}

		if err := c.deps.Exports.InsertExpenseExport(ctx, &domain.ExpenseExport{
			ID:           uuid.New(),
			RunID:        st.run.ID,
			Channel:      st.req.Channel,
			GSTIN:        st.req.GSTIN,
			Month:        st.req.Month,
			FilePath:     name,
			RecordCount:  res.RecordCount,
			TotalTaxable: res.TotalTaxable,
			TotalTax:     res.TotalTax,
			ExportStatus: domain.ExportStatusSuccess,
		}); err != nil {
			return 0, err
		}
		return res.RecordCount, nil
	})
}

// vendorLedger is the payable ledger credited by the expense voucher.
func vendorLedger(channel domain.Channel) string {
	switch channel {
	case domain.ChannelAmazonMTR, domain.ChannelAmazonSTR:
		return "Amazon Seller Services Payable"
	case domain.ChannelFlipkart:
		return "Flipkart Internet Payable"
	case domain.ChannelPepperfry:
		return "Pepperfry Payable"
	default:
		return "Marketplace Payable"
	}
}
