package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	recdomain "github.com/smallbiznis/bookkeeper/internal/reconciliation/domain"
	"github.com/smallbiznis/bookkeeper/internal/reconciliation/statement"
	"github.com/smallbiznis/bookkeeper/pkg/apperror"
	"go.uber.org/zap"
)

const maxStatementUpload = 10 << 20

type importTransactionsRequest struct {
	Rows []statementRowRequest `json:"rows" validate:"required,min=1,dive"`
}

type statementRowRequest struct {
	Date        string          `json:"date" validate:"required"`
	Type        string          `json:"type" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"positive_decimal"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}

type startReconciliationRequest struct {
	BankAccountID  string          `json:"bank_account_id" validate:"required"`
	StatementDate  string          `json:"statement_date" validate:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	EndingBalance  decimal.Decimal `json:"ending_balance"`
}

type autoMatchRequest struct {
	DateToleranceDays *int             `json:"date_tolerance_days" validate:"omitempty,min=0,max=365"`
	AmountTolerance   *decimal.Decimal `json:"amount_tolerance" validate:"omitempty,nonnegative_decimal"`
}

type matchPairRequest struct {
	BankTransactionID string `json:"bank_transaction_id" validate:"required"`
	LedgerEntryID     string `json:"ledger_entry_id" validate:"required"`
}

type applyMatchesRequest struct {
	Matches []matchPairRequest `json:"matches" validate:"required,min=1,dive"`
}

type completeReconciliationRequest struct {
	Force bool `json:"force"`
}

func (s *Server) ListBankTransactions(c *gin.Context) {
	bankAccountID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	unreconciled, err := parseOptionalBool(c.Query("unreconciled"))
	if err != nil {
		AbortWithError(c, newValidationError("unreconciled", "invalid_unreconciled", "invalid unreconciled"))
		return
	}

	txns, err := s.reconcileSvc.ListTransactions(c.Request.Context(), tenantID(c), bankAccountID, unreconciled != nil && *unreconciled)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": txns})
}

func (s *Server) ImportBankTransactions(c *gin.Context) {
	bankAccountID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req importTransactionsRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	rows := make([]recdomain.StatementRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		date, err := requestDate("date", row.Date)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		txnType, err := recdomain.ParseTransactionType(row.Type)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		rows = append(rows, recdomain.StatementRow{
			Date:        date,
			Type:        txnType,
			Amount:      row.Amount,
			Description: row.Description,
			Reference:   row.Reference,
		})
	}

	txns, err := s.reconcileSvc.ImportStatement(c.Request.Context(), tenantID(c), bankAccountID, rows)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": txns})
}

// UploadBankStatement imports the first sheet of an xlsx statement sent
// as the multipart field "file".
func (s *Server) UploadBankStatement(c *gin.Context) {
	bankAccountID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxStatementUpload)
	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "invalid_file", "statement file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		AbortWithError(c, newValidationError("file", "invalid_file", "statement file cannot be read"))
		return
	}
	defer file.Close()

	rows, err := statement.ParseXLSX(file)
	if err != nil {
		AbortWithError(c, apperror.Wrap(apperror.CodeValidation, "statement file", err))
		return
	}

	txns, err := s.reconcileSvc.ImportStatement(c.Request.Context(), tenantID(c), bankAccountID, rows)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.log.Info("bank statement uploaded",
		zap.String("bank_account_id", bankAccountID.String()),
		zap.String("filename", header.Filename),
		zap.Int("rows", len(txns)),
	)
	c.JSON(http.StatusCreated, gin.H{"data": txns})
}

func (s *Server) ListReconciliations(c *gin.Context) {
	bankAccountID, err := parseOptionalSnowflakeID(c.Query("bank_account_id"))
	if err != nil {
		AbortWithError(c, newValidationError("bank_account_id", "invalid_bank_account_id", "invalid bank_account_id"))
		return
	}
	var filter snowflake.ID
	if bankAccountID != nil {
		filter = *bankAccountID
	}

	recs, err := s.reconcileSvc.List(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": recs})
}

func (s *Server) StartReconciliation(c *gin.Context) {
	var req startReconciliationRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	bankAccountID, ok := parseSnowflakeID(req.BankAccountID)
	if !ok {
		AbortWithError(c, newValidationError("bank_account_id", "invalid_bank_account_id", "invalid bank_account_id"))
		return
	}
	statementDate, err := requestDate("statement_date", req.StatementDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.reconcileSvc.Start(c.Request.Context(), tenantID(c), recdomain.StartRequest{
		BankAccountID:  bankAccountID,
		StatementDate:  statementDate,
		OpeningBalance: req.OpeningBalance,
		EndingBalance:  req.EndingBalance,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": detail})
}

func (s *Server) GetReconciliationByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.reconcileSvc.Get(c.Request.Context(), tenantID(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) AutoMatchReconciliation(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req autoMatchRequest
	if hasBody(c) {
		if err := bindJSON(c, &req); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	result, err := s.reconcileSvc.AutoMatch(c.Request.Context(), tenantID(c), id, recdomain.Tolerances{
		DateDays: req.DateToleranceDays,
		Amount:   req.AmountTolerance,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    result,
		"summary": result.CountByConfidence(),
	})
}

func (s *Server) ApplyReconciliationMatches(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req applyMatchesRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	pairs := make([]recdomain.MatchPair, 0, len(req.Matches))
	for _, m := range req.Matches {
		pair, err := m.toPair()
		if err != nil {
			AbortWithError(c, err)
			return
		}
		pairs = append(pairs, pair)
	}

	applied, err := s.reconcileSvc.ApplyMatches(c.Request.Context(), tenantID(c), id, pairs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"applied": applied}})
}

func (s *Server) ManualMatchReconciliation(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req matchPairRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	pair, err := req.toPair()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.reconcileSvc.ManualMatch(c.Request.Context(), tenantID(c), id, pair); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pair})
}

func (s *Server) UnmatchBankTransaction(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	txnID, err := pathID(c, "transactionId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.reconcileSvc.Unmatch(c.Request.Context(), tenantID(c), id, txnID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) CompleteReconciliation(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req completeReconciliationRequest
	if hasBody(c) {
		if err := bindJSON(c, &req); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	rec, err := s.reconcileSvc.Complete(c.Request.Context(), tenantID(c), id, req.Force)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rec})
}

func (s *Server) CancelReconciliation(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rec, err := s.reconcileSvc.Cancel(c.Request.Context(), tenantID(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rec})
}

func (m matchPairRequest) toPair() (recdomain.MatchPair, error) {
	txnID, ok := parseSnowflakeID(m.BankTransactionID)
	if !ok {
		return recdomain.MatchPair{}, newValidationError("bank_transaction_id", "invalid_bank_transaction_id", "invalid bank_transaction_id")
	}
	entryID, ok := parseSnowflakeID(m.LedgerEntryID)
	if !ok {
		return recdomain.MatchPair{}, newValidationError("ledger_entry_id", "invalid_ledger_entry_id", "invalid ledger_entry_id")
	}
	return recdomain.MatchPair{BankTransactionID: txnID, LedgerEntryID: entryID}, nil
}

func hasBody(c *gin.Context) bool {
	return c.Request.Body != nil && c.Request.Body != http.NoBody && c.Request.ContentLength != 0
}
