package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tallyflow/internal/batch"
	"tallyflow/internal/csvexport"
	"tallyflow/internal/domain"
	"tallyflow/internal/gst"
	"tallyflow/internal/invoice"
	"tallyflow/internal/normalize"
	"tallyflow/internal/pivot"
	"tallyflow/internal/resolver"
	"tallyflow/internal/voucher"
)

// runSales executes the six sales stages in order, stopping at the
// first fatal failure.
func (c *Coordinator) runSales(ctx context.Context, st *runState) error {
	stages := []struct {
		name domain.Stage
		fn   func(context.Context, *runState) (int, error)
	}{
		{domain.StageNormalize, c.stageNormalize},
		{domain.StageResolve, c.stageResolve},
		{domain.StageTax, c.stageTax},
		{domain.StagePivot, c.stagePivot},
		{domain.StageBatch, c.stageBatch},
		{domain.StageVoucher, c.stageVoucher},
	}
	for _, s := range stages {
		fn := s.fn
		if err := c.stage(ctx, st, s.name, func(ctx context.Context) (int, error) {
			return fn(ctx, st)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) stageNormalize(ctx context.Context, st *runState) (int, error) {
	if err := c.persistRawInput(ctx, st); err != nil {
		return 0, err
	}

	n, err := normalize.ForReportType(st.req.ReportType)
	if err != nil {
		return 0, err
	}
	res, err := n.Normalize(ctx, normalize.Input{
		Path:           st.req.InputPath,
		ReturnsPath:    st.req.ReturnsPath,
		Channel:        st.req.Channel,
		GSTIN:          st.req.GSTIN,
		Month:          st.req.Month,
		DefaultGSTRate: c.opts.DefaultGSTRate,
	})
	if err != nil {
		return 0, err
	}
	st.rows = res.Rows

	if len(res.Dropped) > 0 {
		st.addException(domain.StageNormalize, domain.KindUnparseableRow,
			len(res.Dropped), res.Dropped[0].Message)
	}

	name := fmt.Sprintf("%s_%s_%s_normalized.csv", st.req.Channel, st.req.GSTIN, st.req.Month)
	if err := c.writeAndPersist(ctx, st, domain.RoleNormalized, name, func(w io.Writer) error {
		return csvexport.WriteCanonical(w, st.rows)
	}); err != nil {
		return 0, err
	}
	return len(st.rows), nil
}

func (c *Coordinator) persistRawInput(ctx context.Context, st *runState) error {
	return c.persistArtifact(ctx, st, domain.RoleRaw, st.req.InputPath, st.run.InputHash)
}

func (c *Coordinator) stageResolve(ctx context.Context, st *runState) (int, error) {
	items, err := c.deps.Masters.SnapshotItems(ctx)
	if err != nil {
		return 0, err
	}
	ledgers, err := c.deps.Masters.SnapshotLedgers(ctx)
	if err != nil {
		return 0, err
	}

	itemRes := resolver.ResolveItems(st.rows, resolver.NewItemSnapshot(items))
	ledgerRes := resolver.ResolveLedgers(itemRes.Rows, resolver.NewLedgerSnapshot(ledgers))
	st.enrich = ledgerRes.Rows

	for _, m := range itemRes.Misses {
		if _, err := c.deps.Approvals.EnqueueItem(ctx, m); err != nil {
			return 0, err
		}
	}
	for _, m := range ledgerRes.Misses {
		if _, err := c.deps.Approvals.EnqueueLedger(ctx, m); err != nil {
			return 0, err
		}
	}
	if n := len(itemRes.Misses) + len(ledgerRes.Misses); n > 0 {
		if err := c.deps.Approvals.NotifyPending(ctx, c.opts.ApproverEmail); err != nil {
			c.deps.Log.WithError(err).WithField("run_id", st.run.ID).
				Warn("approval digest not sent")
		}
		if c.opts.StrictMapping {
			return 0, fmt.Errorf("%w: %d mappings pending approval",
				domain.ErrUnresolvedMasterData, n)
		}
		st.addException(domain.StageResolve, domain.KindUnresolvedMasterData,
			n, "mappings queued for approval")
	}

	name := fmt.Sprintf("%s_%s_%s_enriched.csv", st.req.Channel, st.req.GSTIN, st.req.Month)
	if err := c.writeAndPersist(ctx, st, domain.RoleEnriched, name, func(w io.Writer) error {
		return csvexport.WriteEnriched(w, st.enrich)
	}); err != nil {
		return 0, err
	}
	return len(st.enrich), nil
}

func (c *Coordinator) stageTax(ctx context.Context, st *runState) (int, error) {
	forceIGST := st.req.Channel == domain.ChannelAmazonSTR

	var (
		priced   []domain.PricedRow
		taxAudit []domain.TaxComputation
		registry []domain.InvoiceRegistryEntry
	)
	for i := range st.enrich {
		er := st.enrich[i]

		// Settlement rows carry a returned quantity against a positive
		// sale; negative return rows are already net and skip this.
		taxable := er.TaxableValue
		if er.ReturnedQty > 0 && taxable.IsPositive() {
			taxable = gst.AdjustForReturns(taxable, er.ReturnedQty, er.TotalQty)
		}

		split := gst.Compute(taxable, er.ShippingValue, er.GSTRate,
			er.GSTIN, er.BuyerState, forceIGST)
		if err := gst.Validate(split); err != nil {
			st.alloc.Release()
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}

		seqKey := domain.InvoiceSequence{
			GSTIN:      er.GSTIN,
			Channel:    er.Channel,
			BuyerState: gst.CanonicalState(er.BuyerState),
			Month:      er.Month,
		}
		seq, err := st.alloc.Next(ctx, seqKey)
		if err != nil {
			st.alloc.Release()
			return 0, err
		}
		invNo := invoice.Format(er.Channel, er.BuyerState, er.Month, seq)

		er.TaxableValue = taxable
		priced = append(priced, domain.PricedRow{
			EnrichedRow: er,
			CGST:        split.CGST,
			SGST:        split.SGST,
			IGST:        split.IGST,
			TotalTax:    split.TotalTax,
			TotalAmount: split.TotalAmount,
			InvoiceNo:   invNo,
		})
		taxAudit = append(taxAudit, domain.TaxComputation{
			ID:           uuid.New(),
			RunID:        st.run.ID,
			RowRef:       i,
			TaxableValue: taxable,
			CGST:         split.CGST,
			SGST:         split.SGST,
			IGST:         split.IGST,
			TotalTax:     split.TotalTax,
			TotalAmount:  split.TotalAmount,
		})
		registry = append(registry, domain.InvoiceRegistryEntry{
			InvoiceNo:      invNo,
			RunID:          st.run.ID,
			GSTIN:          er.GSTIN,
			Channel:        er.Channel,
			BuyerState:     seqKey.BuyerState,
			Month:          er.Month,
			SequenceNumber: seq,
			RowRef:         i,
		})
	}

	if err := st.alloc.Commit(ctx); err != nil {
		return 0, err
	}
	st.priced = priced

	if err := c.deps.Audit.InsertTaxComputations(ctx, taxAudit); err != nil {
		return 0, err
	}
	if err := c.deps.Audit.InsertInvoiceRegistry(ctx, registry); err != nil {
		return 0, err
	}

	name := fmt.Sprintf("%s_%s_%s_with_tax.csv", st.req.Channel, st.req.GSTIN, st.req.Month)
	if err := c.writeAndPersist(ctx, st, domain.RoleWithTax, name, func(w io.Writer) error {
		return csvexport.WritePriced(w, st.priced)
	}); err != nil {
		return 0, err
	}
	return len(st.priced), nil
}

func (c *Coordinator) stagePivot(ctx context.Context, st *runState) (int, error) {
	st.pivots = pivot.Aggregate(st.priced, pivot.PolicyFor(st.req.Channel))

	summaries := make([]domain.PivotSummary, 0, len(st.pivots))
	for i := range st.pivots {
		p := &st.pivots[i]
		var state *string
		if p.BuyerState != "" {
			s := p.BuyerState
			state = &s
		}
		summaries = append(summaries, domain.PivotSummary{
			ID:            uuid.New(),
			RunID:         st.run.ID,
			GSTIN:         p.GSTIN,
			Month:         p.Month,
			GSTRate:       p.GSTRate,
			LedgerName:    p.LedgerName,
			FG:            p.FG,
			BuyerState:    state,
			TotalQuantity: p.TotalQuantity,
			TotalTaxable:  p.TotalTaxable,
			TotalCGST:     p.TotalCGST,
			TotalSGST:     p.TotalSGST,
			TotalIGST:     p.TotalIGST,
		})
	}
	if err := c.deps.Audit.InsertPivotSummaries(ctx, summaries); err != nil {
		return 0, err
	}

	name := fmt.Sprintf("%s_%s_%s_pivot.csv", st.req.Channel, st.req.GSTIN, st.req.Month)
	if err := c.writeAndPersist(ctx, st, domain.RolePivot, name, func(w io.Writer) error {
		return csvexport.WritePivot(w, st.pivots)
	}); err != nil {
		return 0, err
	}
	return len(st.pivots), nil
}

func (c *Coordinator) stageBatch(ctx context.Context, st *runState) (int, error) {
	groups := batch.Split(st.pivots)
	if err := batch.Reconcile(st.pivots, groups); err != nil {
		return 0, err
	}

	records := make([]domain.BatchRecord, 0, len(groups))
	for _, g := range groups {
		g := g
		name := csvexport.BatchFileName(st.req.Channel, st.req.GSTIN, st.req.Month, g.GSTRate)
		if err := c.writeAndPersist(ctx, st, domain.RoleBatch, name, func(w io.Writer) error {
			return csvexport.WritePivot(w, g.Rows)
		}); err != nil {
			return 0, err
		}
		records = append(records, domain.BatchRecord{
			ID:          uuid.New(),
			RunID:       st.run.ID,
			Channel:     st.req.Channel,
			GSTIN:       st.req.GSTIN,
			Month:       st.req.Month,
			GSTRate:     g.GSTRate,
			FilePath:    name,
			RecordCount: len(g.Rows),
		})
	}
	if err := c.deps.Audit.InsertBatchRecords(ctx, records); err != nil {
		return 0, err
	}
	return len(groups), nil
}

func (c *Coordinator) stageVoucher(ctx context.Context, st *runState) (int, error) {
	schema, err := c.deps.Templates.Sales(st.req.GSTIN)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, g := range batch.Split(st.pivots) {
		name := csvexport.VoucherFileName(st.req.Channel, st.req.GSTIN, st.req.Month, g.GSTRate)
		outPath := st.workDir + string(os.PathSeparator) + name

		res, err := voucher.WriteSales(voucher.SalesInput{
			Schema:  schema,
			Channel: st.req.Channel,
			GSTIN:   st.req.GSTIN,
			Month:   st.req.Month,
			Rows:    g.Rows,
			OutPath: outPath,
		})
		if err != nil {
			return 0, err
		}
		hash, err := csvexport.HashFile(outPath)
		if err != nil {
			return 0, err
		}
		if err := c.persistArtifact(ctx, st, domain.RoleVoucher, outPath, hash); err != nil {
			return 0, err
		}

		info, err := os.Stat(outPath)
		if err != nil {
			return 0, err
		}
		if err := c.deps.Exports.InsertTallyExport(ctx, &domain.TallyExport{
			ID:           uuid.New(),
			RunID:        st.run.ID,
			Channel:      st.req.Channel,
			GSTIN:        st.req.GSTIN,
			Month:        st.req.Month,
			GSTRate:      g.GSTRate,
			TemplateName: schema.Name,
			FilePath:     name,
			FileSize:     info.Size(),
			RecordCount:  res.RecordCount,
			TotalTaxable: res.TotalTaxable,
			TotalTax:     res.TotalTax,
			ExportStatus: domain.ExportStatusSuccess,
		}); err != nil {
			return 0, err
		}

		c.deps.Log.WithFields(logrus.Fields{
			"run_id": st.run.ID, "rate": g.GSTRate, "rows": res.RecordCount,
		}).Info("voucher workbook written")
		written++
	}
	return written, nil
}
