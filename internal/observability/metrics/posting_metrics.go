package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	PostingResultCommitted = "committed"
	PostingResultRejected  = "rejected"
	PostingResultFailed    = "failed"
)

const (
	DBErrorReasonDeadlineExceeded     = "deadline_exceeded"
	DBErrorReasonLockTimeout          = "db_lock_timeout"
	DBErrorReasonSerializationFailure = "serialization_failure"
	DBErrorReasonDeadlock             = "deadlock"
	DBErrorReasonUniqueViolation      = "unique_violation"
	DBErrorReasonUnknown              = "unknown"
)

// PostingMetrics captures posting engine and matcher health for scraping.
type PostingMetrics struct {
	postings        *prometheus.CounterVec
	postingDuration *prometheus.HistogramVec
	dbErrors        *prometheus.CounterVec
	matchConfidence *prometheus.CounterVec
	unmatched       *prometheus.CounterVec
}

var (
	postingMetricsOnce sync.Once
	postingMetrics     *PostingMetrics
)

// NewPostingMetrics returns the process-wide posting metrics registered on
// the default Prometheus registry.
func NewPostingMetrics(cfg Config) *PostingMetrics {
	postingMetricsOnce.Do(func() {
		postingMetrics = newPostingMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return postingMetrics
}

func newPostingMetrics(registerer prometheus.Registerer, cfg Config) *PostingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "bookkeeper"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	postings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "bookkeeper_postings_total",
		Help:        "Posting attempts by entry type and result.",
		ConstLabels: constLabels,
	}, []string{"entry_type", "result"})
	postingDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "bookkeeper_posting_duration_seconds",
		Help:        "Posting transaction latency by entry type.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	}, []string{"entry_type"})
	dbErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "bookkeeper_db_errors_total",
		Help:        "Database failures by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"reason"})
	matchConfidence := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "bookkeeper_reconciliation_matches_total",
		Help:        "Auto-match suggestions by confidence.",
		ConstLabels: constLabels,
	}, []string{"confidence"})
	unmatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "bookkeeper_reconciliation_unmatched_total",
		Help:        "Items left unmatched after auto-match by side.",
		ConstLabels: constLabels,
	}, []string{"side"})

	registerer.MustRegister(postings, postingDuration, dbErrors, matchConfidence, unmatched)

	return &PostingMetrics{
		postings:        postings,
		postingDuration: postingDuration,
		dbErrors:        dbErrors,
		matchConfidence: matchConfidence,
		unmatched:       unmatched,
	}
}

// ObservePosting records one posting attempt.
func (m *PostingMetrics) ObservePosting(entryType, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.postings.WithLabelValues(entryType, result).Inc()
	if result == PostingResultCommitted {
		m.postingDuration.WithLabelValues(entryType).Observe(duration.Seconds())
	}
}

// IncDBError counts a database failure by its classified reason.
func (m *PostingMetrics) IncDBError(err error) {
	if m == nil || err == nil {
		return
	}
	m.dbErrors.WithLabelValues(ClassifyDBError(err)).Inc()
}

// ObserveMatchRun records the outcome of one auto-match run.
func (m *PostingMetrics) ObserveMatchRun(byConfidence map[string]int, unmatchedBank, unmatchedLedger int) {
	if m == nil {
		return
	}
	for confidence, count := range byConfidence {
		if count > 0 {
			m.matchConfidence.WithLabelValues(confidence).Add(float64(count))
		}
	}
	if unmatchedBank > 0 {
		m.unmatched.WithLabelValues("bank").Add(float64(unmatchedBank))
	}
	if unmatchedLedger > 0 {
		m.unmatched.WithLabelValues("ledger").Add(float64(unmatchedLedger))
	}
}

// ClassifyDBError maps storage errors to low-cardinality reasons.
func ClassifyDBError(err error) string {
	if err == nil {
		return DBErrorReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return DBErrorReasonDeadlineExceeded
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return DBErrorReasonUniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03":
			return DBErrorReasonLockTimeout
		case "40001":
			return DBErrorReasonSerializationFailure
		case "40P01":
			return DBErrorReasonDeadlock
		case "23505":
			return DBErrorReasonUniqueViolation
		}
	}
	return DBErrorReasonUnknown
}

// IsRetryableDBError reports whether a failed transaction may be retried.
func IsRetryableDBError(err error) bool {
	switch ClassifyDBError(err) {
	case DBErrorReasonLockTimeout, DBErrorReasonSerializationFailure, DBErrorReasonDeadlock:
		return true
	default:
		return false
	}
}
