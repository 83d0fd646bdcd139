package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/bookkeeper/internal/observability/metrics"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"github.com/smallbiznis/bookkeeper/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        ledgerdomain.Repository
	AccountRepo accountdomain.Repository
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        ledgerdomain.Repository
	accountRepo accountdomain.Repository
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("ledger.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		accountRepo: p.AccountRepo,
		obsMetrics:  p.ObsMetrics,
	}
}

// Record allocates the entry number, writes header and lines, recomputes
// the totals from what was stored and, for auto-posting drafts, posts the
// entry and moves account balances. Any failure leaves tx to be rolled
// back by the caller.
func (s *Service) Record(ctx context.Context, tx *gorm.DB, draft ledgerdomain.Draft) (*ledgerdomain.EntryWithLines, error) {
	if draft.TenantID == 0 {
		return nil, ledgerdomain.ErrInvalidTenant
	}
	if !draft.EntryType.Valid() {
		return nil, ledgerdomain.ErrInvalidEntryType
	}
	if draft.EntryDate.IsZero() {
		return nil, ledgerdomain.ErrInvalidEntryDate
	}
	if draft.Source == nil {
		return nil, ledgerdomain.ErrInvalidSource
	}
	if err := ledgerdomain.ValidateLines(draft.Lines); err != nil {
		return nil, err
	}

	seq, err := s.repo.NextEntryNumber(ctx, tx, draft.TenantID)
	if err != nil {
		return nil, fmt.Errorf("allocate entry number: %w", err)
	}

	now := s.clock.Now()
	entry := ledgerdomain.JournalEntry{
		ID:          s.genID.Generate(),
		TenantID:    draft.TenantID,
		EntryNumber: formatEntryNumber(draft.EntryType, seq),
		EntryDate:   draft.EntryDate.UTC(),
		EntryType:   draft.EntryType,
		Status:      ledgerdomain.StatusDraft,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		CreatedAt:   now,
	}
	if refType, refID := draft.Source.Reference(); refType != "" {
		typ := string(refType)
		id := refID
		entry.ReferenceType = &typ
		entry.ReferenceID = &id
	}
	if memo := strings.TrimSpace(draft.Memo); memo != "" {
		entry.Memo = &memo
	}
	if err := s.repo.InsertEntry(ctx, tx, &entry); err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}

	lines := make([]ledgerdomain.JournalLine, 0, len(draft.Lines))
	for i, leg := range draft.Lines {
		line := ledgerdomain.JournalLine{
			ID:             s.genID.Generate(),
			JournalEntryID: entry.ID,
			LineNumber:     i + 1,
			AccountID:      leg.AccountID,
			DebitAmount:    leg.Debit,
			CreditAmount:   leg.Credit,
			CostCenterID:   leg.CostCenterID,
			CreatedAt:      now,
		}
		if desc := strings.TrimSpace(leg.Description); desc != "" {
			line.Description = &desc
		}
		lines = append(lines, line)
	}
	if err := s.repo.InsertLines(ctx, tx, lines); err != nil {
		return nil, fmt.Errorf("insert journal lines: %w", err)
	}

	stored, err := s.repo.FindLines(ctx, tx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("reload journal lines: %w", err)
	}
	totals := ledgerdomain.SumLines(stored)
	if err := s.repo.UpdateTotals(ctx, tx, entry.ID, totals); err != nil {
		return nil, fmt.Errorf("update journal totals: %w", err)
	}
	entry.TotalDebit = totals.Debit
	entry.TotalCredit = totals.Credit
	entry.IsBalanced = totals.Balanced

	if !totals.Balanced {
		s.log.Error("refusing to record unbalanced journal entry",
			zap.String("tenant_id", entry.TenantID.String()),
			zap.String("entry_number", entry.EntryNumber),
			zap.String("entry_type", string(entry.EntryType)),
			zap.String("total_debit", totals.Debit.String()),
			zap.String("total_credit", totals.Credit.String()),
			zap.Int("lines", len(stored)),
		)
		return nil, ledgerdomain.ErrNotBalanced
	}

	if draft.AutoPost {
		if err := s.post(ctx, tx, &entry, stored); err != nil {
			return nil, err
		}
	}

	return &ledgerdomain.EntryWithLines{JournalEntry: entry, Lines: stored}, nil
}

func (s *Service) PostEntry(ctx context.Context, tenantID, entryID snowflake.ID) (*ledgerdomain.EntryWithLines, error) {
	if tenantID == 0 {
		return nil, ledgerdomain.ErrInvalidTenant
	}

	var result *ledgerdomain.EntryWithLines
	err := db.WithinTx(ctx, s.db, func(tx *gorm.DB) error {
		entry, err := s.repo.FindByID(ctx, tx, tenantID, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return ledgerdomain.ErrNotFound
		}
		if entry.Status != ledgerdomain.StatusDraft {
			return ledgerdomain.ErrAlreadyPosted
		}

		lines, err := s.repo.FindLines(ctx, tx, entry.ID)
		if err != nil {
			return err
		}
		totals := ledgerdomain.SumLines(lines)
		if !totals.Balanced {
			s.log.Error("refusing to post unbalanced journal entry",
				zap.String("tenant_id", tenantID.String()),
				zap.String("entry_number", entry.EntryNumber),
				zap.String("total_debit", totals.Debit.String()),
				zap.String("total_credit", totals.Credit.String()),
			)
			return ledgerdomain.ErrNotBalanced
		}

		if err := s.post(ctx, tx, entry, lines); err != nil {
			return err
		}
		result = &ledgerdomain.EntryWithLines{JournalEntry: *entry, Lines: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// post flips a draft to posted and applies debit minus credit of every
// line to its account. Accounts are updated in id order so concurrent
// postings lock rows in the same sequence.
func (s *Service) post(ctx context.Context, tx *gorm.DB, entry *ledgerdomain.JournalEntry, lines []ledgerdomain.JournalLine) error {
	postedAt := s.clock.Now()
	ok, err := s.repo.MarkPosted(ctx, tx, entry.TenantID, entry.ID, postedAt)
	if err != nil {
		return fmt.Errorf("mark journal entry posted: %w", err)
	}
	if !ok {
		return ledgerdomain.ErrAlreadyPosted
	}

	deltas := make(map[snowflake.ID]decimal.Decimal, len(lines))
	for _, line := range lines {
		deltas[line.AccountID] = deltas[line.AccountID].Add(line.DebitAmount.Sub(line.CreditAmount))
	}
	accountIDs := make([]snowflake.ID, 0, len(deltas))
	for id := range deltas {
		accountIDs = append(accountIDs, id)
	}
	sort.Slice(accountIDs, func(i, j int) bool { return accountIDs[i] < accountIDs[j] })

	for _, accountID := range accountIDs {
		delta := deltas[accountID]
		if delta.IsZero() {
			continue
		}
		if err := s.accountRepo.ApplyBalance(ctx, tx, accountID, delta, postedAt); err != nil {
			return fmt.Errorf("apply balance to account %s: %w", accountID, err)
		}
	}

	entry.Status = ledgerdomain.StatusPosted
	entry.PostedAt = &postedAt
	s.obsMetrics.RecordJournalEntry(ctx, string(entry.EntryType))
	return nil
}

func (s *Service) GetEntry(ctx context.Context, tenantID, entryID snowflake.ID) (*ledgerdomain.EntryWithLines, error) {
	if tenantID == 0 {
		return nil, ledgerdomain.ErrInvalidTenant
	}
	entry, err := s.repo.FindByID(ctx, s.db, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ledgerdomain.ErrNotFound
	}
	lines, err := s.repo.FindLines(ctx, s.db, entry.ID)
	if err != nil {
		return nil, err
	}
	return &ledgerdomain.EntryWithLines{JournalEntry: *entry, Lines: lines}, nil
}

func (s *Service) ListEntries(ctx context.Context, req ledgerdomain.ListRequest) (ledgerdomain.ListResponse, error) {
	if req.TenantID == 0 {
		return ledgerdomain.ListResponse{}, ledgerdomain.ErrInvalidTenant
	}

	filter := ledgerdomain.ListFilter{
		TenantID: req.TenantID,
		From:     req.From,
		To:       req.To,
		Limit:    pagination.NormalizeSize(req.PageSize),
	}
	if raw := strings.TrimSpace(req.EntryType); raw != "" {
		entryType := ledgerdomain.EntryType(strings.ToUpper(raw))
		if !entryType.Valid() {
			return ledgerdomain.ListResponse{}, ledgerdomain.ErrInvalidEntryType
		}
		filter.EntryType = entryType
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		filter.Status = ledgerdomain.Status(strings.ToLower(raw))
	}

	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := decodeEntryCursor(token)
		if err != nil {
			return ledgerdomain.ListResponse{}, err
		}
		filter.Cursor = cursor
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return ledgerdomain.ListResponse{}, err
	}

	items, pageInfo, err := pagination.Trim(items, filter.Limit, func(item ledgerdomain.JournalEntry) pagination.Cursor {
		return pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})
	if err != nil {
		return ledgerdomain.ListResponse{}, err
	}
	if items == nil {
		items = []ledgerdomain.JournalEntry{}
	}
	return ledgerdomain.ListResponse{PageInfo: pageInfo, Entries: items}, nil
}

func decodeEntryCursor(token string) (*ledgerdomain.EntryCursor, error) {
	decoded, err := pagination.DecodeCursor(token)
	if err != nil {
		return nil, ledgerdomain.ErrInvalidPageToken
	}
	createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
	if err != nil {
		return nil, ledgerdomain.ErrInvalidPageToken
	}
	id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
	if err != nil || id == 0 {
		return nil, ledgerdomain.ErrInvalidPageToken
	}
	return &ledgerdomain.EntryCursor{ID: id, CreatedAt: createdAt.UTC()}, nil
}

func formatEntryNumber(entryType ledgerdomain.EntryType, seq int64) string {
	return fmt.Sprintf("%s-%06d", entryType, seq)
}
