package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"github.com/smallbiznis/bookkeeper/internal/events"
	obsmetrics "github.com/smallbiznis/bookkeeper/internal/observability/metrics"
	"github.com/smallbiznis/bookkeeper/internal/observability/tracing"
	recdomain "github.com/smallbiznis/bookkeeper/internal/reconciliation/domain"
	"github.com/smallbiznis/bookkeeper/internal/reconciliation/matcher"
	"github.com/smallbiznis/bookkeeper/pkg/apperror"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// balanceTolerance is the largest difference between the calculated and
// the statement balance that completes without force.
var balanceTolerance = decimal.New(1, -2)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Config         config.Config
	Repo           recdomain.Repository
	AccountRepo    accountdomain.Repository
	Emitter        *events.Emitter            `optional:"true"`
	PostingMetrics *obsmetrics.PostingMetrics `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics        `optional:"true"`
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	clock           clock.Clock
	repo            recdomain.Repository
	accountRepo     accountdomain.Repository
	emitter         *events.Emitter
	postingMetrics  *obsmetrics.PostingMetrics
	obsMetrics      *obsmetrics.Metrics
	tracer          trace.Tracer
	dateTolerance   int
	amountTolerance decimal.Decimal
}

func NewService(p Params) recdomain.Service {
	log := p.Log.Named("reconciliation.service")

	amountTolerance := decimal.Zero
	if raw := strings.TrimSpace(p.Config.Reconciliation.AmountTolerance); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			log.Warn("ignoring invalid amount tolerance", zap.String("value", raw))
		} else {
			amountTolerance = parsed
		}
	}
	dateTolerance := p.Config.Reconciliation.DateToleranceDays
	if dateTolerance < 0 {
		dateTolerance = 0
	}

	return &Service{
		db:              p.DB,
		log:             log,
		genID:           p.GenID,
		clock:           p.Clock,
		repo:            p.Repo,
		accountRepo:     p.AccountRepo,
		emitter:         p.Emitter,
		postingMetrics:  p.PostingMetrics,
		obsMetrics:      p.ObsMetrics,
		tracer:          otel.Tracer("bookkeeper/reconciliation"),
		dateTolerance:   dateTolerance,
		amountTolerance: amountTolerance,
	}
}

func (s *Service) ImportStatement(ctx context.Context, tenantID, bankAccountID snowflake.ID, rows []recdomain.StatementRow) ([]recdomain.BankTransaction, error) {
	if tenantID == 0 {
		return nil, invalid(recdomain.ErrInvalidTenant)
	}
	if len(rows) == 0 {
		return nil, invalid(recdomain.ErrInvalidRows)
	}
	if err := s.checkBankAccount(ctx, tenantID, bankAccountID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	txns := make([]recdomain.BankTransaction, 0, len(rows))
	for i, row := range rows {
		txn, err := s.buildTransaction(tenantID, bankAccountID, row, now)
		if err != nil {
			return nil, apperror.Wrap(apperror.CodeValidation, fmt.Sprintf("row %d", i+1), err)
		}
		txns = append(txns, txn)
	}

	if err := db.WithinTx(ctx, s.db, func(tx *gorm.DB) error {
		return s.repo.InsertTransactions(ctx, tx, txns)
	}); err != nil {
		return nil, dbError(err)
	}

	s.log.Info("bank statement imported",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bank_account_id", bankAccountID.String()),
		zap.Int("rows", len(txns)),
	)
	return txns, nil
}

func (s *Service) buildTransaction(tenantID, bankAccountID snowflake.ID, row recdomain.StatementRow, now time.Time) (recdomain.BankTransaction, error) {
	if row.Date.IsZero() {
		return recdomain.BankTransaction{}, recdomain.ErrInvalidDate
	}
	kind, err := recdomain.ParseTransactionType(string(row.Type))
	if err != nil {
		return recdomain.BankTransaction{}, err
	}
	if !row.Amount.IsPositive() {
		return recdomain.BankTransaction{}, recdomain.ErrInvalidAmount
	}

	txn := recdomain.BankTransaction{
		ID:              s.genID.Generate(),
		TenantID:        tenantID,
		BankAccountID:   bankAccountID,
		TransactionDate: dateOnly(row.Date),
		TransactionType: kind,
		Amount:          row.Amount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if v := strings.TrimSpace(row.Description); v != "" {
		txn.Description = &v
	}
	if v := strings.TrimSpace(row.Reference); v != "" {
		txn.Reference = &v
	}
	return txn, nil
}

func (s *Service) ListTransactions(ctx context.Context, tenantID, bankAccountID snowflake.ID, unreconciledOnly bool) ([]recdomain.BankTransaction, error) {
	if tenantID == 0 {
		return nil, invalid(recdomain.ErrInvalidTenant)
	}
	txns, err := s.repo.ListTransactions(ctx, s.db, tenantID, bankAccountID, unreconciledOnly)
	if err != nil {
		return nil, dbError(err)
	}
	if txns == nil {
		txns = []recdomain.BankTransaction{}
	}
	return txns, nil
}

// Start opens a reconciliation for one bank account and claims the
// statement lines it covers. Only one reconciliation per account may be in
// progress; the partial unique index backs the in-transaction check.
func (s *Service) Start(ctx context.Context, tenantID snowflake.ID, req recdomain.StartRequest) (*recdomain.Detail, error) {
	if tenantID == 0 {
		return nil, invalid(recdomain.ErrInvalidTenant)
	}
	if req.StatementDate.IsZero() {
		return nil, invalid(recdomain.ErrInvalidDate)
	}
	if err := s.checkBankAccount(ctx, tenantID, req.BankAccountID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	rec := recdomain.Reconciliation{
		ID:                      s.genID.Generate(),
		TenantID:                tenantID,
		BankAccountID:           req.BankAccountID,
		StatementDate:           dateOnly(req.StatementDate),
		StatementOpeningBalance: req.OpeningBalance,
		StatementEndingBalance:  req.EndingBalance,
		Status:                  recdomain.StatusInProgress,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	var claimed []recdomain.BankTransaction
	err := db.WithinTx(ctx, s.db, func(tx *gorm.DB) error {
		existing, err := s.repo.FindInProgress(ctx, tx, tenantID, req.BankAccountID)
		if err != nil {
			return err
		}
		if existing != nil {
			return recdomain.ErrInProgress.WithDetail("reconciliation_id", existing.ID.String())
		}
		if err := s.repo.Insert(ctx, tx, &rec); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return recdomain.ErrInProgress
			}
			return err
		}
		if _, err := s.repo.ClaimTransactions(ctx, tx, &rec); err != nil {
			return err
		}
		claimed, err = s.repo.ListClaimed(ctx, tx, rec.ID)
		return err
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.log.Info("reconciliation started",
		zap.String("tenant_id", tenantID.String()),
		zap.String("reconciliation_id", rec.ID.String()),
		zap.String("bank_account_id", rec.BankAccountID.String()),
		zap.Int("claimed", len(claimed)),
	)
	return &recdomain.Detail{Reconciliation: rec, Transactions: nonNil(claimed)}, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id snowflake.ID) (*recdomain.Detail, error) {
	rec, err := s.load(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	txns, err := s.repo.ListClaimed(ctx, s.db, rec.ID)
	if err != nil {
		return nil, dbError(err)
	}
	return &recdomain.Detail{Reconciliation: *rec, Transactions: nonNil(txns)}, nil
}

func (s *Service) List(ctx context.Context, tenantID, bankAccountID snowflake.ID) ([]recdomain.Reconciliation, error) {
	if tenantID == 0 {
		return nil, invalid(recdomain.ErrInvalidTenant)
	}
	recs, err := s.repo.List(ctx, s.db, tenantID, bankAccountID)
	if err != nil {
		return nil, dbError(err)
	}
	if recs == nil {
		recs = []recdomain.Reconciliation{}
	}
	return recs, nil
}

// AutoMatch proposes matches for the unmatched lines of an in-progress
// reconciliation. Nothing is written; callers persist the proposals they
// accept with ApplyMatches.
func (s *Service) AutoMatch(ctx context.Context, tenantID, id snowflake.ID, tol recdomain.Tolerances) (*matcher.Result, error) {
	dateTolerance, amountTolerance := s.dateTolerance, s.amountTolerance
	if tol.DateDays != nil {
		dateTolerance = *tol.DateDays
	}
	if tol.Amount != nil {
		amountTolerance = *tol.Amount
	}
	if dateTolerance < 0 || amountTolerance.IsNegative() {
		return nil, invalid(recdomain.ErrInvalidTolerance)
	}

	rec, err := s.loadInProgress(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	claimed, err := s.repo.ListClaimed(ctx, s.db, rec.ID)
	if err != nil {
		return nil, dbError(err)
	}
	upTo := rec.StatementDate.AddDate(0, 0, dateTolerance)
	candidates, err := s.repo.LedgerCandidates(ctx, s.db, tenantID, rec.BankAccountID, upTo)
	if err != nil {
		return nil, dbError(err)
	}

	bank := make([]matcher.BankTxn, 0, len(claimed))
	for _, txn := range claimed {
		if txn.MatchedLedgerEntryID != nil {
			continue
		}
		bank = append(bank, matcher.BankTxn{
			ID:     txn.ID,
			Date:   txn.TransactionDate,
			Side:   matcher.Side(txn.TransactionType),
			Amount: txn.Amount,
		})
	}
	ledger := make([]matcher.LedgerEntry, 0, len(candidates))
	for _, c := range candidates {
		if entry, ok := ledgerEntry(c); ok {
			ledger = append(ledger, entry)
		}
	}

	result := matcher.AutoMatch(bank, ledger, dateTolerance, amountTolerance)
	s.postingMetrics.ObserveMatchRun(result.CountByConfidence(), len(result.UnmatchedBank), len(result.UnmatchedLedger))

	s.log.Info("auto-match proposed",
		zap.String("reconciliation_id", rec.ID.String()),
		zap.Int("matches", len(result.Matches)),
		zap.Int("unmatched_bank", len(result.UnmatchedBank)),
		zap.Int("unmatched_ledger", len(result.UnmatchedLedger)),
	)
	return &result, nil
}

// ApplyMatches persists pairs in one transaction. A pair that is already
// stored is skipped; any pair that would double-match a statement line or
// a ledger entry rejects the whole batch.
func (s *Service) ApplyMatches(ctx context.Context, tenantID, id snowflake.ID, pairs []recdomain.MatchPair) (int, error) {
	if len(pairs) == 0 {
		return 0, nil
	}

	applied := 0
	err := db.WithinTx(ctx, s.db, func(tx *gorm.DB) error {
		rec, err := s.loadInProgress(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		for _, pair := range pairs {
			changed, err := s.applyPair(ctx, tx, rec, pair, now)
			if err != nil {
				return err
			}
			if changed {
				applied++
			}
		}
		return nil
	})
	if err != nil {
		return 0, dbError(err)
	}

	s.log.Info("matches applied",
		zap.String("reconciliation_id", id.String()),
		zap.Int("requested", len(pairs)),
		zap.Int("applied", applied),
	)
	return applied, nil
}

func (s *Service) ManualMatch(ctx context.Context, tenantID, id snowflake.ID, pair recdomain.MatchPair) error {
	_, err := s.ApplyMatches(ctx, tenantID, id, []recdomain.MatchPair{pair})
	return err
}

func (s *Service) applyPair(ctx context.Context, tx *gorm.DB, rec *recdomain.Reconciliation, pair recdomain.MatchPair, now time.Time) (bool, error) {
	txn, err := s.claimedTransaction(ctx, tx, rec, pair.BankTransactionID)
	if err != nil {
		return false, err
	}
	if txn.MatchedLedgerEntryID != nil {
		if *txn.MatchedLedgerEntryID == pair.LedgerEntryID {
			return false, nil
		}
		return false, conflict(pair, "bank transaction is matched to another entry")
	}

	candidate, err := s.repo.FindCandidate(ctx, tx, rec.TenantID, rec.BankAccountID, pair.LedgerEntryID)
	if err != nil {
		return false, err
	}
	if candidate == nil {
		return false, apperror.Wrap(apperror.CodeValidation,
			fmt.Sprintf("entry %s is not a posted entry on the bank account", pair.LedgerEntryID),
			recdomain.ErrInvalidCandidate)
	}
	entry, ok := ledgerEntry(*candidate)
	if !ok || string(entry.Side) == string(txn.TransactionType) {
		return false, apperror.Wrap(apperror.CodeValidation,
			fmt.Sprintf("entry %s moves the bank account in the wrong direction", pair.LedgerEntryID),
			recdomain.ErrInvalidCandidate)
	}

	other, err := s.repo.FindTransactionByEntry(ctx, tx, rec.TenantID, pair.LedgerEntryID)
	if err != nil {
		return false, err
	}
	if other != nil {
		return false, conflict(pair, "ledger entry is matched to another bank transaction")
	}

	if err := s.repo.SetMatch(ctx, tx, txn.ID, &pair.LedgerEntryID, now); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return false, conflict(pair, "ledger entry is matched to another bank transaction")
		}
		return false, err
	}
	return true, nil
}

func (s *Service) Unmatch(ctx context.Context, tenantID, id, bankTransactionID snowflake.ID) error {
	err := db.WithinTx(ctx, s.db, func(tx *gorm.DB) error {
		rec, err := s.loadInProgress(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		txn, err := s.claimedTransaction(ctx, tx, rec, bankTransactionID)
		if err != nil {
			return err
		}
		if txn.MatchedLedgerEntryID == nil {
			return nil
		}
		return s.repo.SetMatch(ctx, tx, txn.ID, nil, s.clock.Now())
	})
	return dbError(err)
}

// Complete closes the reconciliation when the matched lines explain the
// statement: opening plus matched credits minus matched debits must land
// within a cent of the ending balance unless force is set. A forced
// completion keeps the difference for audit.
func (s *Service) Complete(ctx context.Context, tenantID, id snowflake.ID, force bool) (*recdomain.Reconciliation, error) {
	ctx, span := s.tracer.Start(ctx, "reconciliation.Complete", trace.WithAttributes(
		attribute.String("tenant_id", tenantID.String()),
		attribute.String("reconciliation_id", id.String()),
		attribute.Bool("force", force),
	))
	defer span.End()

	var (
		rec     *recdomain.Reconciliation
		matched int
	)
	err := db.WithinTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		rec, err = s.loadInProgress(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		claimed, err := s.repo.ListClaimed(ctx, tx, rec.ID)
		if err != nil {
			return err
		}

		credits, debits := decimal.Zero, decimal.Zero
		for _, txn := range claimed {
			if txn.MatchedLedgerEntryID == nil {
				continue
			}
			matched++
			if txn.TransactionType == recdomain.TransactionCredit {
				credits = credits.Add(txn.Amount)
			} else {
				debits = debits.Add(txn.Amount)
			}
		}
		calculated := rec.StatementOpeningBalance.Add(credits).Sub(debits)
		difference := rec.StatementEndingBalance.Sub(calculated)
		outOfBalance := difference.Abs().GreaterThan(balanceTolerance)
		if outOfBalance && !force {
			return recdomain.ErrUnbalanced.
				WithDetail("calculated_balance", calculated.StringFixed(2)).
				WithDetail("statement_ending_balance", rec.StatementEndingBalance.StringFixed(2)).
				WithDetail("difference", difference.StringFixed(2))
		}

		now := s.clock.Now()
		rec.Status = recdomain.StatusCompleted
		rec.ReconciledBalance = &calculated
		rec.DifferenceAmount = &difference
		rec.Forced = outOfBalance
		rec.CompletedAt = &now
		rec.UpdatedAt = now

		ok, err := s.repo.MarkCompleted(ctx, tx, rec)
		if err != nil {
			return err
		}
		if !ok {
			return recdomain.ErrNotInProgress
		}
		return s.repo.FinalizeClaims(ctx, tx, rec.ID, now)
	})
	if err != nil {
		err = dbError(err)
		code, _ := apperror.CodeOf(err)
		if code == apperror.CodeUnbalancedReconciliation {
			s.obsMetrics.RecordReconciliation(ctx, "unbalanced", false)
		}
		s.log.Warn("reconciliation not completed",
			zap.String("reconciliation_id", id.String()),
			zap.String("code", string(code)),
			zap.Error(err),
		)
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, string(code))
		return nil, err
	}

	s.obsMetrics.RecordReconciliation(ctx, string(rec.Status), rec.Forced)
	s.log.Info("reconciliation completed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("reconciliation_id", rec.ID.String()),
		zap.Int("matched", matched),
		zap.String("difference", rec.DifferenceAmount.StringFixed(2)),
		zap.Bool("forced", rec.Forced),
	)
	s.emitter.Emit(ctx, events.TypeReconciliationCompleted, tenantID, rec.ID, map[string]any{
		"bank_account_id":    rec.BankAccountID.String(),
		"statement_date":     rec.StatementDate.Format(time.DateOnly),
		"reconciled_balance": rec.ReconciledBalance.StringFixed(2),
		"difference_amount":  rec.DifferenceAmount.StringFixed(2),
		"forced":             rec.Forced,
		"matched":            matched,
	})
	return rec, nil
}

// Cancel abandons an in-progress reconciliation and releases its claims
// and the matches made under it.
func (s *Service) Cancel(ctx context.Context, tenantID, id snowflake.ID) (*recdomain.Reconciliation, error) {
	var rec *recdomain.Reconciliation
	err := db.WithinTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		rec, err = s.loadInProgress(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		rec.Status = recdomain.StatusCancelled
		rec.CancelledAt = &now
		rec.UpdatedAt = now

		ok, err := s.repo.MarkCancelled(ctx, tx, rec)
		if err != nil {
			return err
		}
		if !ok {
			return recdomain.ErrNotInProgress
		}
		return s.repo.ReleaseClaims(ctx, tx, rec.ID, now)
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.obsMetrics.RecordReconciliation(ctx, string(rec.Status), false)
	s.log.Info("reconciliation cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("reconciliation_id", rec.ID.String()),
	)
	return rec, nil
}

func (s *Service) checkBankAccount(ctx context.Context, tenantID, bankAccountID snowflake.ID) error {
	if bankAccountID == 0 {
		return invalid(recdomain.ErrInvalidBankAccount)
	}
	account, err := s.accountRepo.FindByID(ctx, s.db, tenantID, bankAccountID)
	if err != nil {
		return dbError(err)
	}
	if account == nil || account.Category != accountdomain.CategoryAsset {
		return invalid(recdomain.ErrInvalidBankAccount)
	}
	return nil
}

func (s *Service) load(ctx context.Context, conn *gorm.DB, tenantID, id snowflake.ID) (*recdomain.Reconciliation, error) {
	if tenantID == 0 {
		return nil, invalid(recdomain.ErrInvalidTenant)
	}
	if id == 0 {
		return nil, invalid(recdomain.ErrInvalidID)
	}
	rec, err := s.repo.FindByID(ctx, conn, tenantID, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperror.Wrap(apperror.CodeNotFound, fmt.Sprintf("reconciliation %s not found", id), recdomain.ErrNotFound)
	}
	return rec, nil
}

func (s *Service) loadInProgress(ctx context.Context, conn *gorm.DB, tenantID, id snowflake.ID) (*recdomain.Reconciliation, error) {
	rec, err := s.load(ctx, conn, tenantID, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != recdomain.StatusInProgress {
		return nil, recdomain.ErrNotInProgress.WithDetail("status", string(rec.Status))
	}
	return rec, nil
}

func (s *Service) claimedTransaction(ctx context.Context, tx *gorm.DB, rec *recdomain.Reconciliation, txnID snowflake.ID) (*recdomain.BankTransaction, error) {
	txn, err := s.repo.FindTransaction(ctx, tx, rec.TenantID, txnID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperror.Wrap(apperror.CodeNotFound, fmt.Sprintf("bank transaction %s not found", txnID), recdomain.ErrNotFound)
	}
	if txn.ReconciliationID == nil || *txn.ReconciliationID != rec.ID {
		return nil, apperror.Newf(apperror.CodeValidation, "bank transaction %s is not part of reconciliation %s", txnID, rec.ID)
	}
	return txn, nil
}

// ledgerEntry turns a candidate's net bank movement into a matcher entry.
// Entries that net to zero on the bank account cannot be matched.
func ledgerEntry(c recdomain.LedgerCandidate) (matcher.LedgerEntry, bool) {
	entry := matcher.LedgerEntry{ID: c.JournalEntryID, Date: c.EntryDate}
	switch {
	case c.Net.IsPositive():
		entry.Side, entry.Amount = matcher.Debit, c.Net
	case c.Net.IsNegative():
		entry.Side, entry.Amount = matcher.Credit, c.Net.Neg()
	default:
		return entry, false
	}
	return entry, true
}

func conflict(pair recdomain.MatchPair, reason string) error {
	return recdomain.ErrMatchConflict.
		WithDetail("bank_transaction_id", pair.BankTransactionID.String()).
		WithDetail("ledger_entry_id", pair.LedgerEntryID.String()).
		WithDetail("reason", reason)
}

func invalid(err error) error {
	return apperror.Wrap(apperror.CodeValidation, err.Error(), err)
}

// dbError leaves coded errors alone and marks the rest as storage failures.
func dbError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.CodeOf(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperror.Wrap(apperror.CodeDBError, "reconciliation transaction failed", err)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nonNil(txns []recdomain.BankTransaction) []recdomain.BankTransaction {
	if txns == nil {
		return []recdomain.BankTransaction{}
	}
	return txns
}
