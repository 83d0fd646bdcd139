package posting

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/events"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	purchasedomain "github.com/smallbiznis/bookkeeper/internal/purchase/domain"
	taxdomain "github.com/smallbiznis/bookkeeper/internal/tax/domain"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// postPurchase credits payables with the bill total, then debits expense
// and input GST per line.
func (e *Engine) postPurchase(ctx context.Context, tenantID snowflake.ID, doc PurchaseDoc) (*Result, error) {
	bill, err := e.purchases.FindByID(ctx, e.db, tenantID, doc.BillID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, notFound("purchase bill", doc.BillID)
	}
	if bill.Status != purchasedomain.StatusDraft {
		return nil, alreadyPosted("purchase bill", bill.ID, string(bill.Status))
	}
	lines, err := e.purchases.FindLines(ctx, e.db, bill.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, validation("purchase bill has no lines")
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
		}, bill.IsInterstate, bill.IsInclusive)
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
	p.credit(accountdomain.KeyAccountsPayable, sum.TotalAmount, "Bill "+bill.BillNumber)
	for _, line := range lines {
		p.debit(keyOr(line.ExpenseKey, accountdomain.KeyPurchaseExpense), line.BaseAmount, line.Description)
	}
	for _, line := range lines {
		p.debit(accountdomain.KeyInputCGST, line.CGST, "CGST on "+line.Description)
		p.debit(accountdomain.KeyInputSGST, line.SGST, "SGST on "+line.Description)
		p.debit(accountdomain.KeyInputIGST, line.IGST, "IGST on "+line.Description)
		p.debit(accountdomain.KeyInputCess, line.Cess, "Cess on "+line.Description)
	}
	ids, err := e.resolve(ctx, tenantID, p)
	if err != nil {
		return nil, err
	}

	var entry *ledgerdomain.EntryWithLines
	err = db.WithinTx(ctx, e.db, func(tx *gorm.DB) error {
		recorded, err := e.ledger.Record(ctx, tx, ledgerdomain.Draft{
			TenantID:  tenantID,
			EntryType: ledgerdomain.EntryTypePurchase,
			EntryDate: e.entryDate(bill.BillDate),
			Source:    ledgerdomain.PurchaseRef(bill.ID),
			Memo:      "Purchase bill " + bill.BillNumber,
			AutoPost:  true,
			Lines:     p.lines(ids),
		})
		if err != nil {
			return err
		}
		entry = recorded

		for i := range lines {
			if err := e.purchases.UpdateLineTaxes(ctx, tx, &lines[i]); err != nil {
				return err
			}
		}

		bill.Subtotal = sum.BaseAmount
		bill.CGST = sum.CGST
		bill.SGST = sum.SGST
		bill.IGST = sum.IGST
		bill.Cess = sum.Cess
		bill.TotalAmount = sum.TotalAmount
		bill.BalanceDue = sum.TotalAmount
		bill.JournalEntryID = &recorded.ID
		bill.PostedAt = recorded.PostedAt
		bill.UpdatedAt = e.clock.Now()
		ok, err := e.purchases.MarkPosted(ctx, tx, bill)
		if err != nil {
			return err
		}
		if !ok {
			return alreadyPosted("purchase bill", bill.ID, "no longer a draft")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("purchase bill posted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bill_id", bill.ID.String()),
		zap.String("entry_number", entry.EntryNumber),
	)
	e.emitter.Emit(ctx, events.TypePurchasePosted, tenantID, bill.ID, map[string]any{
		"bill_number":      bill.BillNumber,
		"vendor_id":        bill.VendorID.String(),
		"journal_entry_id": entry.ID.String(),
		"entry_number":     entry.EntryNumber,
		"total_amount":     sum.TotalAmount.StringFixed(2),
	})
	return newResult(entry, bill.ID), nil
}

// postPayment settles a posted bill. TDS withheld is owed to the tax
// authority, so only amount less TDS leaves the paying account.
func (e *Engine) postPayment(ctx context.Context, tenantID snowflake.ID, doc PaymentDoc) (*Result, error) {
	if !doc.Amount.IsPositive() {
		return nil, validation("payment amount must be positive")
	}
	if doc.TDS.IsNegative() || doc.TDS.GreaterThan(doc.Amount) {
		return nil, validation("tds must be between zero and the payment amount")
	}
	paidFrom := accountdomain.NormalizeKey(string(doc.PaidFromKey))
	if paidFrom == "" {
		paidFrom = accountdomain.KeyBank
	}

	bill, err := e.purchases.FindByID(ctx, e.db, tenantID, doc.BillID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, notFound("purchase bill", doc.BillID)
	}
	if bill.Status == purchasedomain.StatusDraft {
		return nil, validation("purchase bill " + bill.BillNumber + " is not posted")
	}
	if doc.Amount.GreaterThan(bill.BalanceDue) {
		return nil, overpayment(doc.Amount, bill.BalanceDue)
	}

	p := &plan{}
	p.debit(accountdomain.KeyAccountsPayable, doc.Amount, "Payment of "+bill.BillNumber)
	p.credit(paidFrom, doc.Amount.Sub(doc.TDS), "Paid to vendor for "+bill.BillNumber)
	p.credit(accountdomain.KeyTDSPayable, doc.TDS, "TDS withheld on "+bill.BillNumber)
	ids, err := e.resolve(ctx, tenantID, p)
	if err != nil {
		return nil, err
	}

	payment := purchasedomain.VendorPayment{
		ID:          e.genID.Generate(),
		TenantID:    tenantID,
		BillID:      bill.ID,
		PaymentDate: e.entryDate(doc.PaymentDate),
		Amount:      doc.Amount,
		TDSWithheld: doc.TDS,
		PaidFromKey: string(paidFrom),
	}
	if ref := strings.TrimSpace(doc.Reference); ref != "" {
		payment.Reference = &ref
	}

	var entry *ledgerdomain.EntryWithLines
	err = db.WithinTx(ctx, e.db, func(tx *gorm.DB) error {
		recorded, err := e.ledger.Record(ctx, tx, ledgerdomain.Draft{
			TenantID:  tenantID,
			EntryType: ledgerdomain.EntryTypePayment,
			EntryDate: payment.PaymentDate,
			Source:    ledgerdomain.VendorPaymentRef(payment.ID),
			Memo:      "Payment for bill " + bill.BillNumber,
			AutoPost:  true,
			Lines:     p.lines(ids),
		})
		if err != nil {
			return err
		}
		entry = recorded

		now := e.clock.Now()
		ok, err := e.purchases.ApplyPayment(ctx, tx, tenantID, bill.ID, doc.Amount, now)
		if err != nil {
			return err
		}
		if !ok {
			return overpayment(doc.Amount, bill.BalanceDue)
		}

		payment.JournalEntryID = recorded.ID
		payment.CreatedAt = now
		return e.purchases.InsertPayment(ctx, tx, &payment)
	})
	if err != nil {
		return nil, err
	}

	e.emitter.Emit(ctx, events.TypePaymentCreated, tenantID, payment.ID, map[string]any{
		"bill_id":          bill.ID.String(),
		"journal_entry_id": entry.ID.String(),
		"entry_number":     entry.EntryNumber,
		"amount":           doc.Amount.StringFixed(2),
		"tds":              doc.TDS.StringFixed(2),
		"reference":        strings.TrimSpace(doc.Reference),
	})
	return newResult(entry, payment.ID), nil
}
