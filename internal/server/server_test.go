package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	accountrepo "github.com/smallbiznis/bookkeeper/internal/account/repository"
	accountservice "github.com/smallbiznis/bookkeeper/internal/account/service"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	auditrepo "github.com/smallbiznis/bookkeeper/internal/audit/repository"
	auditservice "github.com/smallbiznis/bookkeeper/internal/audit/service"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/config"
	invoicerepo "github.com/smallbiznis/bookkeeper/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/bookkeeper/internal/invoice/service"
	ledgerrepo "github.com/smallbiznis/bookkeeper/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/bookkeeper/internal/ledger/service"
	posrepo "github.com/smallbiznis/bookkeeper/internal/pos/repository"
	posservice "github.com/smallbiznis/bookkeeper/internal/pos/service"
	"github.com/smallbiznis/bookkeeper/internal/posting"
	purchaserepo "github.com/smallbiznis/bookkeeper/internal/purchase/repository"
	purchaseservice "github.com/smallbiznis/bookkeeper/internal/purchase/service"
	recdomain "github.com/smallbiznis/bookkeeper/internal/reconciliation/domain"
	recrepo "github.com/smallbiznis/bookkeeper/internal/reconciliation/repository"
	recservice "github.com/smallbiznis/bookkeeper/internal/reconciliation/service"
	taxrepo "github.com/smallbiznis/bookkeeper/internal/tax/repository"
	taxservice "github.com/smallbiznis/bookkeeper/internal/tax/service"
	"github.com/smallbiznis/bookkeeper/internal/testutil"
	"github.com/smallbiznis/bookkeeper/pkg/apperror"
	"github.com/smallbiznis/bookkeeper/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	t        *testing.T
	db       *gorm.DB
	node     *snowflake.Node
	engine   *gin.Engine
	audit    auditdomain.Service
	tenantID snowflake.ID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := testutil.OpenDB(t)
	node := testutil.Node(t)
	fake := clock.NewFakeClock(testutil.Epoch)
	log := zap.NewNop()
	tenantID := testutil.SeedTenant(t, conn, node)

	accounts := accountrepo.Provide()
	taxRepo := taxrepo.NewRepository(conn)
	ledger := ledgerservice.NewService(ledgerservice.Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Clock:       fake,
		Repo:        ledgerrepo.Provide(),
		AccountRepo: accounts,
	})
	engine := posting.NewEngine(posting.Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Clock:       fake,
		Ledger:      ledger,
		AccountRepo: accounts,
		Accounts: accountservice.NewResolver(accountservice.ResolverParams{
			DB:      conn,
			Log:     log,
			Repo:    accounts,
			Mapping: testutil.MappingHolder(),
		}),
		Rates:     taxservice.NewResolver(taxservice.ResolverParams{Repository: taxRepo}),
		Invoices:  invoicerepo.Provide(),
		Purchases: purchaserepo.Provide(),
		Sales:     posrepo.Provide(),
	})

	audit := auditservice.NewService(auditservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fake, Repo: auditrepo.Provide(),
	})

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	srv := NewServer(ServerParams{
		Gin: r,
		Cfg: config.Config{},
		Log: log,
		AccountSvc: accountservice.NewService(accountservice.Params{
			DB: conn, Log: log, GenID: node, Repo: accounts, Clock: fake,
		}),
		TaxSvc: taxservice.NewService(taxservice.ServiceParams{Log: log, GenID: node, Repo: taxRepo}),
		InvoiceSvc: invoiceservice.NewService(invoiceservice.Params{
			DB: conn, Log: log, GenID: node, Clock: fake, Repo: invoicerepo.Provide(),
		}),
		PurchaseSvc: purchaseservice.NewService(purchaseservice.Params{
			DB: conn, Log: log, GenID: node, Clock: fake, Repo: purchaserepo.Provide(),
		}),
		PosSvc: posservice.NewService(posservice.Params{
			DB: conn, Log: log, GenID: node, Clock: fake, Repo: posrepo.Provide(),
		}),
		LedgerSvc: ledger,
		Posting:   engine,
		ReconcileSvc: recservice.NewService(recservice.Params{
			DB:          conn,
			Log:         log,
			GenID:       node,
			Clock:       fake,
			Config:      config.Config{Reconciliation: config.ReconciliationConfig{DateToleranceDays: 3, AmountTolerance: "0"}},
			Repo:        recrepo.Provide(),
			AccountRepo: accounts,
		}),
		AuditSvc: audit,
	})
	srv.RegisterAPIRoutes()

	return &testServer{t: t, db: conn, node: node, engine: r, audit: audit, tenantID: tenantID}
}

type envelope struct {
	Data     json.RawMessage `json:"data"`
	PageInfo json.RawMessage `json:"page_info"`
	Error    errorPayload    `json:"error"`
}

func (s *testServer) do(method, path string, body any) (int, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderTenant, s.tenantID.String())
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (int, envelope) {
	s.t.Helper()
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (s *testServer) accountID(key accountdomain.Key) string {
	return testutil.AccountID(s.t, s.db, s.tenantID, key).String()
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

type idResponse struct {
	ID     snowflake.ID `json:"id"`
	Status string       `json:"status"`
}

func TestTenantHeaderRequired(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	status, body := s.serve(req)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body.Error.Type)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set(HeaderTenant, "abc")
	status, body = s.serve(req)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", body.Error.Type)
}

func TestAccountsAndTaxCodes(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(http.MethodPost, "/api/v1/accounts", gin.H{"code": "1150", "name": "Petty Cash", "category": "asset"})
	require.Equal(t, http.StatusCreated, status, body.Error.Message)
	account := decode[accountdomain.Account](t, body.Data)
	assert.Equal(t, accountdomain.CategoryAsset, account.Category)

	status, body = s.do(http.MethodPost, "/api/v1/accounts", gin.H{"code": "1150", "name": "Again", "category": "asset"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.do(http.MethodPost, "/api/v1/accounts", gin.H{"name": "No code"})
	require.Equal(t, http.StatusBadRequest, status)
	fields := make([]string, 0, len(body.Error.Errors))
	for _, e := range body.Error.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"code", "category"}, fields)

	status, body = s.do(http.MethodPost, "/api/v1/tax_codes", gin.H{"code": "GST18", "name": "GST 18%", "rate": "18"})
	require.Equal(t, http.StatusCreated, status, body.Error.Message)

	status, body = s.do(http.MethodGet, "/api/v1/tax_codes?is_enabled=true", nil)
	require.Equal(t, http.StatusOK, status)
	codes := decode[[]map[string]any](t, body.Data)
	require.Len(t, codes, 1)
	assert.Equal(t, "GST18", codes[0]["code"])

	status, _ = s.do(http.MethodGet, "/api/v1/tax_codes?is_enabled=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestInvoicePostAndReceipt(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(http.MethodPost, "/api/v1/invoices", gin.H{
		"customer_id":    s.node.Generate().String(),
		"invoice_number": "INV-1",
		"invoice_date":   "2024-04-02",
		"lines": []gin.H{
			{"description": "Consulting", "amount": "1000", "tax_rate": "18"},
		},
	})
	require.Equal(t, http.StatusCreated, status, body.Error.Message)
	invoice := decode[idResponse](t, body.Data)
	assert.Equal(t, "draft", invoice.Status)

	path := "/api/v1/invoices/" + invoice.ID.String()
	status, body = s.do(http.MethodPost, path+"/post", nil)
	require.Equal(t, http.StatusOK, status, body.Error.Message)
	result := decode[posting.Result](t, body.Data)
	assert.Equal(t, "INV-000001", result.EntryNumber)

	status, body = s.do(http.MethodPost, path+"/post", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, string(apperror.CodeAlreadyPosted), body.Error.Code)

	status, body = s.do(http.MethodPost, path+"/receipts", gin.H{"date": "2024-04-05", "amount": "5000"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, string(apperror.CodeOverpayment), body.Error.Code)

	status, body = s.do(http.MethodPost, path+"/receipts", gin.H{"date": "2024-04-05", "amount": "1180", "reference": "UTR-1"})
	require.Equal(t, http.StatusCreated, status, body.Error.Message)

	status, body = s.do(http.MethodGet, path+"/receipts", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, body.Data), 1)

	status, body = s.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "paid", decode[idResponse](t, body.Data).Status)
	assert.Equal(t, "1180.00", testutil.Balance(t, s.db, testutil.AccountID(t, s.db, s.tenantID, accountdomain.KeyBank)))
}

func TestInvoiceValidation(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(http.MethodPost, "/api/v1/invoices", gin.H{
		"customer_id":    s.node.Generate().String(),
		"invoice_number": "INV-1",
		"invoice_date":   "2024-04-02",
		"lines":          []gin.H{{"description": "Bad", "amount": "-5"}},
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Len(t, body.Error.Errors, 1)
	assert.Equal(t, "lines[0].amount", body.Error.Errors[0].Field)
	assert.Equal(t, "invalid_amount", body.Error.Errors[0].Code)

	status, body = s.do(http.MethodPost, "/api/v1/invoices", gin.H{
		"customer_id":    s.node.Generate().String(),
		"invoice_number": "INV-2",
		"invoice_date":   "02/04/2024",
		"lines":          []gin.H{{"description": "Consulting", "amount": "100"}},
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invoice_date", body.Error.Errors[0].Field)

	status, _ = s.do(http.MethodPost, "/api/v1/invoices/not-an-id/post", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(http.MethodPost, "/api/v1/invoices/12345/post", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, string(apperror.CodeNotFound), body.Error.Code)
}

func TestManualJournalDraftAndList(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(http.MethodPost, "/api/v1/journal_entries", gin.H{
		"entry_date": "2024-04-03",
		"memo":       "owner capital",
		"draft":      true,
		"lines": []gin.H{
			{"account_id": s.accountID(accountdomain.KeyBank), "debit": "250"},
			{"account_id": s.accountID(accountdomain.KeySalesRevenue), "credit": "250"},
		},
	})
	require.Equal(t, http.StatusCreated, status, body.Error.Message)
	draft := decode[posting.Result](t, body.Data)
	assert.Equal(t, "draft", string(draft.Status))

	status, body = s.do(http.MethodPost, "/api/v1/journal_entries", gin.H{
		"entry_date": "2024-04-03",
		"lines": []gin.H{
			{"account_id": s.accountID(accountdomain.KeyBank), "debit": "100"},
			{"account_id": s.accountID(accountdomain.KeySalesRevenue), "credit": "90"},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, string(apperror.CodeNotBalanced), body.Error.Code)

	path := "/api/v1/journal_entries/" + draft.JournalEntryID.String()
	status, body = s.do(http.MethodPost, path+"/post", nil)
	require.Equal(t, http.StatusOK, status, body.Error.Message)
	assert.Equal(t, "posted", string(decode[posting.Result](t, body.Data).Status))

	status, body = s.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	entry := decode[map[string]any](t, body.Data)
	assert.Len(t, entry["lines"], 2)

	status, body = s.do(http.MethodGet, "/api/v1/journal_entries?page_size=10&status=posted", nil)
	require.Equal(t, http.StatusOK, status, body.Error.Message)
	assert.Len(t, decode[[]map[string]any](t, body.Data), 1)

	status, _ = s.do(http.MethodGet, "/api/v1/journal_entries?page_size=0", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReconciliationFlow(t *testing.T) {
	s := newTestServer(t)
	bankID := s.accountID(accountdomain.KeyBank)

	status, body := s.do(http.MethodPost, "/api/v1/journal_entries", gin.H{
		"entry_date": "2024-04-09",
		"lines": []gin.H{
			{"account_id": bankID, "debit": "500"},
			{"account_id": s.accountID(accountdomain.KeySalesRevenue), "credit": "500"},
		},
	})
	require.Equal(t, http.StatusCreated, status, body.Error.Message)
	entry := decode[posting.Result](t, body.Data)

	status, body = s.do(http.MethodPost, "/api/v1/bank_accounts/"+bankID+"/transactions", gin.H{
		"rows": []gin.H{{"date": "2024-04-10", "type": "credit", "amount": "500", "description": "NEFT"}},
	})
	require.Equal(t, http.StatusCreated, status, body.Error.Message)
	txns := decode[[]recdomain.BankTransaction](t, body.Data)
	require.Len(t, txns, 1)

	status, body = s.do(http.MethodPost, "/api/v1/reconciliations", gin.H{
		"bank_account_id": bankID,
		"statement_date":  "2024-04-30",
		"opening_balance": "0",
		"ending_balance":  "500",
	})
	require.Equal(t, http.StatusCreated, status, body.Error.Message)
	rec := decode[idResponse](t, body.Data)
	path := "/api/v1/reconciliations/" + rec.ID.String()

	status, body = s.do(http.MethodPost, "/api/v1/reconciliations", gin.H{
		"bank_account_id": bankID,
		"statement_date":  "2024-04-30",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, string(apperror.CodeInProgress), body.Error.Code)

	status, body = s.do(http.MethodPost, path+"/auto_match", nil)
	require.Equal(t, http.StatusOK, status, body.Error.Message)
	proposal := decode[struct {
		Matches []recdomain.MatchPair `json:"matches"`
	}](t, body.Data)
	require.Len(t, proposal.Matches, 1)
	assert.Equal(t, txns[0].ID, proposal.Matches[0].BankTransactionID)
	assert.Equal(t, entry.JournalEntryID, proposal.Matches[0].LedgerEntryID)

	status, body = s.do(http.MethodPost, path+"/matches", gin.H{
		"matches": []gin.H{{
			"bank_transaction_id": txns[0].ID.String(),
			"ledger_entry_id":     entry.JournalEntryID.String(),
		}},
	})
	require.Equal(t, http.StatusOK, status, body.Error.Message)
	assert.JSONEq(t, `{"applied":1}`, string(body.Data))

	status, body = s.do(http.MethodPost, path+"/complete", gin.H{})
	require.Equal(t, http.StatusOK, status, body.Error.Message)
	completed := decode[recdomain.Reconciliation](t, body.Data)
	assert.Equal(t, recdomain.StatusCompleted, completed.Status)
	require.NotNil(t, completed.DifferenceAmount)
	assertAmount(t, "0", *completed.DifferenceAmount)

	status, body = s.do(http.MethodPost, path+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, string(apperror.CodeNotInProgress), body.Error.Code)
}

func TestReconciliationUnbalancedComplete(t *testing.T) {
	s := newTestServer(t)
	bankID := s.accountID(accountdomain.KeyBank)

	status, body := s.do(http.MethodPost, "/api/v1/reconciliations", gin.H{
		"bank_account_id": bankID,
		"statement_date":  "2024-04-30",
		"opening_balance": "100",
		"ending_balance":  "150",
	})
	require.Equal(t, http.StatusCreated, status, body.Error.Message)
	path := "/api/v1/reconciliations/" + decode[idResponse](t, body.Data).ID.String()

	status, body = s.do(http.MethodPost, path+"/complete", nil)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, string(apperror.CodeUnbalancedReconciliation), body.Error.Code)
	assert.Contains(t, body.Error.Details, "difference")

	status, body = s.do(http.MethodPost, path+"/complete", gin.H{"force": true})
	require.Equal(t, http.StatusOK, status, body.Error.Message)
	assert.True(t, decode[recdomain.Reconciliation](t, body.Data).Forced)
}

func TestUploadBankStatement(t *testing.T) {
	s := newTestServer(t)
	bankID := s.accountID(accountdomain.KeyBank)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Date", "Narration", "Withdrawal", "Deposit"},
		{"2024-04-10", "NEFT IN", "", "500"},
		{"2024-04-11", "Rent", "200", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "april.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bank_accounts/"+bankID+"/statements", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(HeaderTenant, s.tenantID.String())
	status, body := s.serve(req)
	require.Equal(t, http.StatusCreated, status, body.Error.Message)
	assert.Len(t, decode[[]recdomain.BankTransaction](t, body.Data), 2)

	status, body = s.do(http.MethodGet, "/api/v1/bank_accounts/"+bankID+"/transactions?unreconciled=true", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]recdomain.BankTransaction](t, body.Data), 2)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/bank_accounts/"+bankID+"/statements", nil)
	req.Header.Set(HeaderTenant, s.tenantID.String())
	status, _ = s.serve(req)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestListAuditLogs(t *testing.T) {
	s := newTestServer(t)

	for _, action := range []string{"invoice.posted", "receipt.created"} {
		require.NoError(t, s.audit.Record(context.Background(), auditdomain.Entry{
			TenantID:   s.tenantID,
			Action:     action,
			TargetType: strings.SplitN(action, ".", 2)[0],
			Metadata:   map[string]any{"reference": "NEFT-00001234"},
		}))
	}

	status, body := s.do(http.MethodGet, "/api/v1/audit_logs?target_type=receipt", nil)
	require.Equal(t, http.StatusOK, status)
	logs := decode[[]auditdomain.AuditLog](t, body.Data)
	require.Len(t, logs, 1)
	assert.Equal(t, "receipt.created", logs[0].Action)
	assert.Equal(t, "NEFT-****1234", logs[0].Metadata["reference"])

	status, body = s.do(http.MethodGet, "/api/v1/audit_logs?page_size=1", nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[pagination.PageInfo](t, body.PageInfo)
	assert.True(t, page.HasMore)

	status, body = s.do(http.MethodGet, "/api/v1/audit_logs?start_at=nope", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, body.Error.Errors, 1)
	assert.Equal(t, "start_at", body.Error.Errors[0].Field)

	status, body = s.do(http.MethodGet, "/api/v1/audit_logs?start_at=2024-05-02&end_at=2024-05-01", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, body.Error.Errors, 1)
	assert.Equal(t, "time_range", body.Error.Errors[0].Field)
	assert.Equal(t, "invalid_time_range", body.Error.Errors[0].Code)
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperror.New(apperror.CodeValidation, "bad"), http.StatusBadRequest, "VALIDATION"},
		{apperror.New(apperror.CodeMissingRate, "rate"), http.StatusBadRequest, "MISSING_RATE"},
		{fmt.Errorf("load: %w", apperror.New(apperror.CodeNotFound, "x")), http.StatusNotFound, "NOT_FOUND"},
		{apperror.New(apperror.CodeMatchConflict, "x"), http.StatusConflict, "MATCH_CONFLICT"},
		{apperror.New(apperror.CodeCategoryLocked, "x"), http.StatusConflict, "CATEGORY_LOCKED"},
		{apperror.New(apperror.CodeMissingAccountMapping, "x"), http.StatusUnprocessableEntity, "MISSING_ACCOUNT_MAPPING"},
		{apperror.New(apperror.CodeDBError, "x"), http.StatusServiceUnavailable, "DB_ERROR"},
		{recdomain.ErrInvalidTolerance, http.StatusBadRequest, "VALIDATION"},
		{recdomain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{auditdomain.ErrInvalidTimeRange, http.StatusBadRequest, "VALIDATION"},
		{accountdomain.ErrDuplicateCode, http.StatusConflict, "duplicate_account_code"},
		{errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		status, payload := mapError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, payload.Code, tc.err.Error())
	}

	_, payload := mapError(apperror.New(apperror.CodeDBError, "insert failed: pq: secret"))
	assert.Equal(t, "storage unavailable", payload.Message)
}

func TestClassifyErrorForLog(t *testing.T) {
	kind, code := classifyErrorForLog(apperror.New(apperror.CodeOverpayment, "x"))
	assert.Equal(t, "unprocessable", kind)
	assert.Equal(t, "OVERPAYMENT", code)

	kind, code = classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal", kind)
	assert.Equal(t, "INTERNAL_ERROR", code)
}
