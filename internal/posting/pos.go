package posting

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/events"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	posdomain "github.com/smallbiznis/bookkeeper/internal/pos/domain"
	taxdomain "github.com/smallbiznis/bookkeeper/internal/tax/domain"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"gorm.io/gorm"
)

// postSale debits the tender account with the ticket total and credits
// revenue and intrastate output GST per line.
func (e *Engine) postSale(ctx context.Context, tenantID snowflake.ID, doc PosSaleDoc) (*Result, error) {
	sale, err := e.sales.FindByID(ctx, e.db, tenantID, doc.SaleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, notFound("pos sale", doc.SaleID)
	}
	if sale.Status != posdomain.StatusDraft {
		return nil, alreadyPosted("pos sale", sale.ID, string(sale.Status))
	}
	lines, err := e.sales.FindLines(ctx, e.db, sale.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, validation("pos sale has no lines")
	}

	breakdowns := make([]taxdomain.Breakdown, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		bd, rate, cessRate, err := e.computeTax(ctx, tenantID, taxLine{
			number:   line.LineNumber,
			amount:   line.Amount(),
			rate:     line.TaxRate,
			cessRate: line.CessRate,
			code:     line.TaxCode,
		}, false, sale.IsInclusive)
		if err != nil {
			return nil, err
		}
		line.TaxRate = rate
		line.CessRate = cessRate
		line.BaseAmount = bd.BaseAmount
		line.CGST = bd.CGST
		line.SGST = bd.SGST
		line.Cess = bd.Cess
		line.TotalAmount = bd.TotalAmount
		breakdowns = append(breakdowns, bd)
	}
	sum := taxdomain.Summarize(breakdowns)

	p := &plan{}
	p.debit(accountdomain.NormalizeKey(sale.TenderKey), sum.TotalAmount, "POS sale "+sale.SaleNumber)
	for _, line := range lines {
		p.credit(accountdomain.KeySalesRevenue, line.BaseAmount, line.Description)
	}
	for _, line := range lines {
		p.credit(accountdomain.KeyOutputCGST, line.CGST, "CGST on "+line.Description)
		p.credit(accountdomain.KeyOutputSGST, line.SGST, "SGST on "+line.Description)
		p.credit(accountdomain.KeyOutputCess, line.Cess, "Cess on "+line.Description)
	}
	ids, err := e.resolve(ctx, tenantID, p)
	if err != nil {
		return nil, err
	}

	var entry *ledgerdomain.EntryWithLines
	err = db.WithinTx(ctx, e.db, func(tx *gorm.DB) error {
		recorded, err := e.ledger.Record(ctx, tx, ledgerdomain.Draft{
			TenantID:  tenantID,
			EntryType: ledgerdomain.EntryTypePOS,
			EntryDate: e.entryDate(sale.SaleDate),
			Source:    ledgerdomain.PosSaleRef(sale.ID),
			Memo:      "POS sale " + sale.SaleNumber,
			AutoPost:  true,
			Lines:     p.lines(ids),
		})
		if err != nil {
			return err
		}
		entry = recorded

		for i := range lines {
			if err := e.sales.UpdateLineTaxes(ctx, tx, &lines[i]); err != nil {
				return err
			}
		}

		sale.Subtotal = sum.BaseAmount
		sale.CGST = sum.CGST
		sale.SGST = sum.SGST
		sale.Cess = sum.Cess
		sale.TotalAmount = sum.TotalAmount
		sale.JournalEntryID = &recorded.ID
		sale.PostedAt = recorded.PostedAt
		sale.UpdatedAt = e.clock.Now()
		ok, err := e.sales.MarkPosted(ctx, tx, sale)
		if err != nil {
			return err
		}
		if !ok {
			return alreadyPosted("pos sale", sale.ID, "no longer a draft")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emitter.Emit(ctx, events.TypePosSalePosted, tenantID, sale.ID, map[string]any{
		"sale_number":      sale.SaleNumber,
		"tender_key":       sale.TenderKey,
		"journal_entry_id": entry.ID.String(),
		"entry_number":     entry.EntryNumber,
		"total_amount":     sum.TotalAmount.StringFixed(2),
	})
	return newResult(entry, sale.ID), nil
}
