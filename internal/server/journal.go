package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	"github.com/smallbiznis/bookkeeper/internal/posting"
	"github.com/smallbiznis/bookkeeper/pkg/db/pagination"
)

type createJournalEntryRequest struct {
	EntryDate string                    `json:"entry_date" validate:"required"`
	Memo      string                    `json:"memo" validate:"max=1024"`
	Draft     bool                      `json:"draft"`
	Lines     []journalEntryLineRequest `json:"lines" validate:"required,min=2,dive"`
}

type journalEntryLineRequest struct {
	AccountID   string          `json:"account_id" validate:"required"`
	Debit       decimal.Decimal `json:"debit" validate:"nonnegative_decimal"`
	Credit      decimal.Decimal `json:"credit" validate:"nonnegative_decimal"`
	Description string          `json:"description"`
}

func (s *Server) ListJournalEntries(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.ledgerSvc.ListEntries(c.Request.Context(), ledgerdomain.ListRequest{
		Pagination: page,
		TenantID:   tenantID(c),
		EntryType:  strings.TrimSpace(c.Query("entry_type")),
		Status:     strings.TrimSpace(c.Query("status")),
		From:       from,
		To:         to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Entries,
		"page_info": resp.PageInfo,
	})
}

func (s *Server) CreateJournalEntry(c *gin.Context) {
	var req createJournalEntryRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	entryDate, err := requestDate("entry_date", req.EntryDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	lines := make([]posting.ManualLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		accountID, ok := parseSnowflakeID(line.AccountID)
		if !ok {
			AbortWithError(c, newValidationError("lines.account_id", "invalid_account_id", "invalid account_id"))
			return
		}
		lines = append(lines, posting.ManualLine{
			AccountID:   accountID,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: line.Description,
		})
	}

	result, err := s.posting.Post(c.Request.Context(), tenantID(c), posting.ManualDoc{
		EntryDate: entryDate,
		Memo:      req.Memo,
		Lines:     lines,
		Draft:     req.Draft,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (s *Server) GetJournalEntryByID(c *gin.Context) {
	entryID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entry, err := s.ledgerSvc.GetEntry(c.Request.Context(), tenantID(c), entryID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (s *Server) PostJournalEntry(c *gin.Context) {
	entryID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.posting.PostDraft(c.Request.Context(), tenantID(c), entryID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
