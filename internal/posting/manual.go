package posting

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookkeeper/internal/events"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"gorm.io/gorm"
)

// postManual records caller-supplied legs against accounts of the tenant.
// The entry must balance before a number is allocated.
func (e *Engine) postManual(ctx context.Context, tenantID snowflake.ID, doc ManualDoc) (*Result, error) {
	lines := make([]ledgerdomain.DraftLine, 0, len(doc.Lines))
	checked := make(map[snowflake.ID]struct{}, len(doc.Lines))
	for i, item := range doc.Lines {
		if _, ok := checked[item.AccountID]; !ok && item.AccountID != 0 {
			account, err := e.accountRepo.FindByID(ctx, e.db, tenantID, item.AccountID)
			if err != nil {
				return nil, err
			}
			if account == nil {
				return nil, validation(fmt.Sprintf("line %d: account %s not found", i+1, item.AccountID))
			}
			checked[item.AccountID] = struct{}{}
		}
		lines = append(lines, ledgerdomain.DraftLine{
			AccountID:   item.AccountID,
			Debit:       item.Debit,
			Credit:      item.Credit,
			Description: item.Description,
		})
	}
	if err := ledgerdomain.ValidateLines(lines); err != nil {
		return nil, err
	}
	if _, err := ledgerdomain.ValidateBalanced(lines); err != nil {
		return nil, err
	}

	var entry *ledgerdomain.EntryWithLines
	err := db.WithinTx(ctx, e.db, func(tx *gorm.DB) error {
		recorded, err := e.ledger.Record(ctx, tx, ledgerdomain.Draft{
			TenantID:  tenantID,
			EntryType: ledgerdomain.EntryTypeStandard,
			EntryDate: e.entryDate(doc.EntryDate),
			Source:    ledgerdomain.ManualRef{},
			Memo:      doc.Memo,
			AutoPost:  !doc.Draft,
			Lines:     lines,
		})
		if err != nil {
			return err
		}
		entry = recorded
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entry.Status == ledgerdomain.StatusPosted {
		e.emitter.Emit(ctx, events.TypeJournalPosted, tenantID, entry.ID, map[string]any{
			"entry_number": entry.EntryNumber,
			"entry_type":   string(entry.EntryType),
			"total":        entry.TotalDebit.StringFixed(2),
		})
	}
	return newResult(entry, entry.ID), nil
}
