package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	invoicedomain "github.com/smallbiznis/bookkeeper/internal/invoice/domain"
	"github.com/smallbiznis/bookkeeper/internal/posting"
)

type createInvoiceRequest struct {
	CustomerID    string               `json:"customer_id" validate:"required"`
	InvoiceNumber string               `json:"invoice_number" validate:"required,max=64"`
	InvoiceDate   string               `json:"invoice_date" validate:"required"`
	IsInterstate  bool                 `json:"is_interstate"`
	IsInclusive   bool                 `json:"is_inclusive"`
	Lines         []invoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type invoiceLineRequest struct {
	Description string           `json:"description" validate:"required"`
	Amount      decimal.Decimal  `json:"amount" validate:"positive_decimal"`
	TaxRate     *decimal.Decimal `json:"tax_rate" validate:"omitempty,nonnegative_decimal"`
	CessRate    decimal.Decimal  `json:"cess_rate" validate:"nonnegative_decimal"`
	TaxCode     string           `json:"tax_code"`
	RevenueKey  string           `json:"revenue_key"`
}

// settlementRequest is the body of receipts and vendor payments.
type settlementRequest struct {
	Date       string          `json:"date" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"positive_decimal"`
	TDS        decimal.Decimal `json:"tds" validate:"nonnegative_decimal"`
	AccountKey string          `json:"account_key"`
	Reference  string          `json:"reference" validate:"max=255"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	invoiceDate, err := requestDate("invoice_date", req.InvoiceDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	lines := make([]invoicedomain.LineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, invoicedomain.LineRequest{
			Description: line.Description,
			Amount:      line.Amount,
			TaxRate:     line.TaxRate,
			CessRate:    line.CessRate,
			TaxCode:     line.TaxCode,
			RevenueKey:  line.RevenueKey,
		})
	}

	invoice, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateRequest{
		CustomerID:    req.CustomerID,
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   invoiceDate,
		IsInterstate:  req.IsInterstate,
		IsInclusive:   req.IsInclusive,
		Lines:         lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": invoice})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	invoice, err := s.invoiceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) PostInvoice(c *gin.Context) {
	invoiceID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.posting.Post(c.Request.Context(), tenantID(c), posting.InvoiceDoc{InvoiceID: invoiceID})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ListReceipts(c *gin.Context) {
	receipts, err := s.invoiceSvc.ListReceipts(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": receipts})
}

func (s *Server) CreateReceipt(c *gin.Context) {
	invoiceID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req settlementRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	receiptDate, err := requestDate("date", req.Date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.posting.Post(c.Request.Context(), tenantID(c), posting.ReceiptDoc{
		InvoiceID:   invoiceID,
		ReceiptDate: receiptDate,
		Amount:      req.Amount,
		TDS:         req.TDS,
		DepositKey:  accountdomain.NormalizeKey(req.AccountKey),
		Reference:   req.Reference,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}
