package posting

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/events"
	invoicedomain "github.com/smallbiznis/bookkeeper/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	taxdomain "github.com/smallbiznis/bookkeeper/internal/tax/domain"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// postInvoice debits receivables with the invoice total and credits
// revenue and output GST per line.
func (e *Engine) postInvoice(ctx context.Context, tenantID snowflake.ID, doc InvoiceDoc) (*Result, error) {
	invoice, err := e.invoices.FindByID(ctx, e.db, tenantID, doc.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, notFound("invoice", doc.InvoiceID)
	}
	if invoice.Status != invoicedomain.StatusDraft {
		return nil, alreadyPosted("invoice", invoice.ID, string(invoice.Status))
	}
	lines, err := e.invoices.FindLines(ctx, e.db, invoice.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, validation("invoice has no lines")
	}

	breakdowns := make([]taxdomain.Breakdown, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		bd, rate, cessRate, err := e.computeTax(ctx, tenantID, taxLine{
			number:   line.LineNumber,
			amount:   line.Amount,
			rate:     line.TaxRate,
			cessRate: line.CessRate,
			code:     line.TaxCode,
		}, invoice.IsInterstate, invoice.IsInclusive)
		if err != nil {
			return nil, err
		}
		line.TaxRate = rate
		line.CessRate = cessRate
		line.BaseAmount = bd.BaseAmount
		line.CGST = bd.CGST
		line.SGST = bd.SGST
		line.IGST = bd.IGST
		line.Cess = bd.Cess
		line.TotalAmount = bd.TotalAmount
		breakdowns = append(breakdowns, bd)
	}
	sum := taxdomain.Summarize(breakdowns)

	p := &plan{}
	p.debit(accountdomain.KeyAccountsReceivable, sum.TotalAmount, "Invoice "+invoice.InvoiceNumber)
	for _, line := range lines {
		p.credit(keyOr(line.RevenueKey, accountdomain.KeySalesRevenue), line.BaseAmount, line.Description)
	}
	for _, line := range lines {
		p.credit(accountdomain.KeyOutputCGST, line.CGST, "CGST on "+line.Description)
		p.credit(accountdomain.KeyOutputSGST, line.SGST, "SGST on "+line.Description)
		p.credit(accountdomain.KeyOutputIGST, line.IGST, "IGST on "+line.Description)
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
			EntryType: ledgerdomain.EntryTypeInvoice,
			EntryDate: e.entryDate(invoice.InvoiceDate),
			Source:    ledgerdomain.InvoiceRef(invoice.ID),
			Memo:      "Invoice " + invoice.InvoiceNumber,
			AutoPost:  true,
			Lines:     p.lines(ids),
		})
		if err != nil {
			return err
		}
		entry = recorded

		for i := range lines {
			if err := e.invoices.UpdateLineTaxes(ctx, tx, &lines[i]); err != nil {
				return err
			}
		}

		invoice.Subtotal = sum.BaseAmount
		invoice.CGST = sum.CGST
		invoice.SGST = sum.SGST
		invoice.IGST = sum.IGST
		invoice.Cess = sum.Cess
		invoice.TotalAmount = sum.TotalAmount
		invoice.BalanceDue = sum.TotalAmount
		invoice.JournalEntryID = &recorded.ID
		invoice.PostedAt = recorded.PostedAt
		invoice.UpdatedAt = e.clock.Now()
		ok, err := e.invoices.MarkPosted(ctx, tx, invoice)
		if err != nil {
			return err
		}
		if !ok {
			return alreadyPosted("invoice", invoice.ID, "no longer a draft")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("invoice posted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("entry_number", entry.EntryNumber),
		zap.String("total", sum.TotalAmount.StringFixed(2)),
	)
	e.emitter.Emit(ctx, events.TypeInvoicePosted, tenantID, invoice.ID, map[string]any{
		"invoice_number":   invoice.InvoiceNumber,
		"journal_entry_id": entry.ID.String(),
		"entry_number":     entry.EntryNumber,
		"total_amount":     sum.TotalAmount.StringFixed(2),
	})
	return newResult(entry, invoice.ID), nil
}

// postReceipt settles part or all of a posted invoice. The customer keeps
// back TDS, so the deposit account receives amount less TDS.
func (e *Engine) postReceipt(ctx context.Context, tenantID snowflake.ID, doc ReceiptDoc) (*Result, error) {
	if !doc.Amount.IsPositive() {
		return nil, validation("receipt amount must be positive")
	}
	if doc.TDS.IsNegative() || doc.TDS.GreaterThan(doc.Amount) {
		return nil, validation("tds must be between zero and the receipt amount")
	}
	deposit := accountdomain.NormalizeKey(string(doc.DepositKey))
	if deposit == "" {
		deposit = accountdomain.KeyBank
	}

	invoice, err := e.invoices.FindByID(ctx, e.db, tenantID, doc.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, notFound("invoice", doc.InvoiceID)
	}
	if invoice.Status == invoicedomain.StatusDraft {
		return nil, validation("invoice " + invoice.InvoiceNumber + " is not posted")
	}
	if doc.Amount.GreaterThan(invoice.BalanceDue) {
		return nil, overpayment(doc.Amount, invoice.BalanceDue)
	}

	p := &plan{}
	p.debit(deposit, doc.Amount.Sub(doc.TDS), "Receipt for "+invoice.InvoiceNumber)
	p.debit(accountdomain.KeyTDSReceivable, doc.TDS, "TDS deducted on "+invoice.InvoiceNumber)
	p.credit(accountdomain.KeyAccountsReceivable, doc.Amount, "Settlement of "+invoice.InvoiceNumber)
	ids, err := e.resolve(ctx, tenantID, p)
	if err != nil {
		return nil, err
	}

	receipt := invoicedomain.Receipt{
		ID:          e.genID.Generate(),
		TenantID:    tenantID,
		InvoiceID:   invoice.ID,
		ReceiptDate: e.entryDate(doc.ReceiptDate),
		Amount:      doc.Amount,
		TDSDeducted: doc.TDS,
		DepositKey:  string(deposit),
	}
	if ref := strings.TrimSpace(doc.Reference); ref != "" {
		receipt.Reference = &ref
	}

	var entry *ledgerdomain.EntryWithLines
	err = db.WithinTx(ctx, e.db, func(tx *gorm.DB) error {
		recorded, err := e.ledger.Record(ctx, tx, ledgerdomain.Draft{
			TenantID:  tenantID,
			EntryType: ledgerdomain.EntryTypeReceipt,
			EntryDate: receipt.ReceiptDate,
			Source:    ledgerdomain.ReceiptRef(receipt.ID),
			Memo:      "Receipt for invoice " + invoice.InvoiceNumber,
			AutoPost:  true,
			Lines:     p.lines(ids),
		})
		if err != nil {
			return err
		}
		entry = recorded

		now := e.clock.Now()
		ok, err := e.invoices.ApplyReceipt(ctx, tx, tenantID, invoice.ID, doc.Amount, now)
		if err != nil {
			return err
		}
		if !ok {
			return overpayment(doc.Amount, invoice.BalanceDue)
		}

		receipt.JournalEntryID = recorded.ID
		receipt.CreatedAt = now
		return e.invoices.InsertReceipt(ctx, tx, &receipt)
	})
	if err != nil {
		return nil, err
	}

	e.emitter.Emit(ctx, events.TypeReceiptCreated, tenantID, receipt.ID, map[string]any{
		"invoice_id":       invoice.ID.String(),
		"journal_entry_id": entry.ID.String(),
		"entry_number":     entry.EntryNumber,
		"amount":           doc.Amount.StringFixed(2),
		"tds":              doc.TDS.StringFixed(2),
		"reference":        strings.TrimSpace(doc.Reference),
		"balance_due":      invoice.BalanceDue.Sub(doc.Amount).StringFixed(2),
	})
	return newResult(entry, receipt.ID), nil
}
