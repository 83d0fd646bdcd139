package posting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/events"
	invoicedomain "github.com/smallbiznis/bookkeeper/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/bookkeeper/internal/observability/metrics"
	"github.com/smallbiznis/bookkeeper/internal/observability/tracing"
	posdomain "github.com/smallbiznis/bookkeeper/internal/pos/domain"
	purchasedomain "github.com/smallbiznis/bookkeeper/internal/purchase/domain"
	taxdomain "github.com/smallbiznis/bookkeeper/internal/tax/domain"
	"github.com/smallbiznis/bookkeeper/pkg/apperror"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Ledger         ledgerdomain.Service
	Accounts       accountdomain.Resolver
	AccountRepo    accountdomain.Repository
	Rates          taxdomain.RateResolver
	Invoices       invoicedomain.Repository
	Purchases      purchasedomain.Repository
	Sales          posdomain.Repository
	Emitter        *events.Emitter            `optional:"true"`
	PostingMetrics *obsmetrics.PostingMetrics `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics        `optional:"true"`
}

type Engine struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	ledger         ledgerdomain.Service
	accounts       accountdomain.Resolver
	accountRepo    accountdomain.Repository
	rates          taxdomain.RateResolver
	invoices       invoicedomain.Repository
	purchases      purchasedomain.Repository
	sales          posdomain.Repository
	emitter        *events.Emitter
	postingMetrics *obsmetrics.PostingMetrics
	obsMetrics     *obsmetrics.Metrics
	tracer         trace.Tracer
}

func NewEngine(p Params) *Engine {
	return &Engine{
		db:             p.DB,
		log:            p.Log.Named("posting.engine"),
		genID:          p.GenID,
		clock:          p.Clock,
		ledger:         p.Ledger,
		accounts:       p.Accounts,
		accountRepo:    p.AccountRepo,
		rates:          p.Rates,
		invoices:       p.Invoices,
		purchases:      p.Purchases,
		sales:          p.Sales,
		emitter:        p.Emitter,
		postingMetrics: p.PostingMetrics,
		obsMetrics:     p.ObsMetrics,
		tracer:         otel.Tracer("bookkeeper/posting"),
	}
}

// Post writes the journal entry for doc. Nothing is written when any
// account or tax rate fails to resolve.
func (e *Engine) Post(ctx context.Context, tenantID snowflake.ID, doc Document) (*Result, error) {
	if doc == nil {
		return nil, validation("document is required")
	}
	entryType := doc.entryType()
	ctx, span := e.tracer.Start(ctx, "posting.Post", trace.WithAttributes(
		attribute.String("entry_type", string(entryType)),
		attribute.String("tenant_id", tenantID.String()),
	))
	defer span.End()

	if tenantID == 0 {
		return nil, e.fail(ctx, span, entryType, validation("tenant is required"))
	}

	start := time.Now()
	var (
		result *Result
		err    error
	)
	switch d := doc.(type) {
	case InvoiceDoc:
		result, err = e.postInvoice(ctx, tenantID, d)
	case ReceiptDoc:
		result, err = e.postReceipt(ctx, tenantID, d)
	case PurchaseDoc:
		result, err = e.postPurchase(ctx, tenantID, d)
	case PaymentDoc:
		result, err = e.postPayment(ctx, tenantID, d)
	case PosSaleDoc:
		result, err = e.postSale(ctx, tenantID, d)
	case ManualDoc:
		result, err = e.postManual(ctx, tenantID, d)
	default:
		err = validation(fmt.Sprintf("unsupported document %T", doc))
	}
	if err != nil {
		return nil, e.fail(ctx, span, entryType, err)
	}

	e.postingMetrics.ObservePosting(string(entryType), obsmetrics.PostingResultCommitted, time.Since(start))
	span.SetAttributes(attribute.String("entry_number", result.EntryNumber))
	return result, nil
}

// PostDraft posts a manual entry that was recorded as a draft.
func (e *Engine) PostDraft(ctx context.Context, tenantID, entryID snowflake.ID) (*Result, error) {
	entryType := ledgerdomain.EntryTypeStandard
	ctx, span := e.tracer.Start(ctx, "posting.PostDraft", trace.WithAttributes(
		attribute.String("tenant_id", tenantID.String()),
		attribute.String("journal_entry_id", entryID.String()),
	))
	defer span.End()

	start := time.Now()
	entry, err := e.ledger.PostEntry(ctx, tenantID, entryID)
	if err != nil {
		if errors.Is(err, ledgerdomain.ErrNotFound) {
			err = notFound("journal entry", entryID)
		}
		return nil, e.fail(ctx, span, entryType, err)
	}

	e.postingMetrics.ObservePosting(string(entry.EntryType), obsmetrics.PostingResultCommitted, time.Since(start))
	e.emitter.Emit(ctx, events.TypeJournalPosted, tenantID, entry.ID, map[string]any{
		"entry_number": entry.EntryNumber,
		"entry_type":   string(entry.EntryType),
		"total":        entry.TotalDebit.StringFixed(2),
	})
	return newResult(entry, entry.ID), nil
}

// fail converts err to a coded error and records it on every signal.
func (e *Engine) fail(ctx context.Context, span trace.Span, entryType ledgerdomain.EntryType, err error) error {
	err = classify(err)
	code, _ := apperror.CodeOf(err)

	result := obsmetrics.PostingResultRejected
	if code == apperror.CodeDBError {
		result = obsmetrics.PostingResultFailed
		e.postingMetrics.IncDBError(errors.Unwrap(err))
		e.log.Error("posting failed",
			zap.String("entry_type", string(entryType)),
			zap.String("code", string(code)),
			zap.Error(err),
		)
	} else {
		e.log.Warn("posting rejected",
			zap.String("entry_type", string(entryType)),
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}
	e.postingMetrics.ObservePosting(string(entryType), result, 0)
	e.obsMetrics.RecordPostingFailure(ctx, string(entryType), string(code))

	span.RecordError(tracing.SafeError(err))
	span.SetStatus(codes.Error, string(code))
	return err
}

var validationErrors = []error{
	ledgerdomain.ErrInvalidTenant,
	ledgerdomain.ErrInvalidEntryType,
	ledgerdomain.ErrInvalidEntryDate,
	ledgerdomain.ErrInvalidEntryLines,
	ledgerdomain.ErrInvalidAccount,
	ledgerdomain.ErrInvalidLineAmount,
	ledgerdomain.ErrInvalidSource,
	taxdomain.ErrInvalidAmount,
	taxdomain.ErrInvalidTaxRate,
	accountdomain.ErrInvalidTenant,
	accountdomain.ErrInvalidKey,
}

// classify leaves coded errors alone, turns input errors into VALIDATION
// and everything else into DB_ERROR.
func classify(err error) error {
	if _, ok := apperror.CodeOf(err); ok {
		return err
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return apperror.Wrap(apperror.CodeValidation, target.Error(), err)
		}
	}
	return apperror.Wrap(apperror.CodeDBError, "posting transaction failed", err)
}

func validation(message string) error {
	return apperror.New(apperror.CodeValidation, message)
}

func notFound(kind string, id snowflake.ID) error {
	return apperror.Newf(apperror.CodeNotFound, "%s %s not found", kind, id)
}

func alreadyPosted(kind string, id snowflake.ID, status string) error {
	return apperror.Newf(apperror.CodeAlreadyPosted, "%s %s is %s", kind, id, status)
}

func overpayment(amount, balance decimal.Decimal) error {
	return apperror.Newf(apperror.CodeOverpayment, "amount %s exceeds balance due %s",
		amount.StringFixed(2), balance.StringFixed(2)).
		WithDetail("balance_due", balance.StringFixed(2))
}

// taxLine is the tax-relevant view of one document line.
type taxLine struct {
	number   int
	amount   decimal.Decimal
	rate     *decimal.Decimal
	cessRate decimal.Decimal
	code     *string
}

// computeTax resolves the line's rate (explicit rate first, then tax code)
// and splits the amount. It returns the rates actually applied so they can
// be stored on the line.
func (e *Engine) computeTax(ctx context.Context, tenantID snowflake.ID, line taxLine, interstate, inclusive bool) (taxdomain.Breakdown, *decimal.Decimal, decimal.Decimal, error) {
	rate, cessRate := line.rate, line.cessRate
	if rate == nil && line.code != nil {
		def, err := e.rates.Resolve(ctx, tenantID, *line.code)
		if err != nil {
			if errors.Is(err, taxdomain.ErrMissingRate) {
				return taxdomain.Breakdown{}, nil, decimal.Zero, missingRate(line.number)
			}
			return taxdomain.Breakdown{}, nil, decimal.Zero, err
		}
		resolved := def.Rate
		rate = &resolved
		if cessRate.IsZero() {
			cessRate = def.CessRate
		}
	}

	bd, err := taxdomain.Compute(taxdomain.Input{
		Amount:       line.amount,
		Rate:         rate,
		CessRate:     cessRate,
		IsInterstate: interstate,
		IsInclusive:  inclusive,
	})
	if err != nil {
		if errors.Is(err, taxdomain.ErrMissingRate) {
			return taxdomain.Breakdown{}, nil, decimal.Zero, missingRate(line.number)
		}
		return taxdomain.Breakdown{}, nil, decimal.Zero, err
	}
	return bd, rate, cessRate, nil
}

func missingRate(lineNumber int) error {
	return apperror.Newf(apperror.CodeMissingRate, "line %d has no tax rate and no enabled tax code", lineNumber).
		WithDetail("line_number", lineNumber)
}

// entryDate truncates t to a calendar date, defaulting to today.
func (e *Engine) entryDate(t time.Time) time.Time {
	if t.IsZero() {
		t = e.clock.Now()
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
