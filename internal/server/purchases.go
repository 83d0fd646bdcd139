package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/posting"
	purchasedomain "github.com/smallbiznis/bookkeeper/internal/purchase/domain"
)

type createPurchaseBillRequest struct {
	VendorID     string            `json:"vendor_id" validate:"required"`
	BillNumber   string            `json:"bill_number" validate:"required,max=64"`
	BillDate     string            `json:"bill_date" validate:"required"`
	IsInterstate bool              `json:"is_interstate"`
	IsInclusive  bool              `json:"is_inclusive"`
	Lines        []billLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type billLineRequest struct {
	Description string           `json:"description" validate:"required"`
	Amount      decimal.Decimal  `json:"amount" validate:"positive_decimal"`
	TaxRate     *decimal.Decimal `json:"tax_rate" validate:"omitempty,nonnegative_decimal"`
	CessRate    decimal.Decimal  `json:"cess_rate" validate:"nonnegative_decimal"`
	TaxCode     string           `json:"tax_code"`
	ExpenseKey  string           `json:"expense_key"`
}

func (s *Server) CreatePurchaseBill(c *gin.Context) {
	var req createPurchaseBillRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	billDate, err := requestDate("bill_date", req.BillDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	lines := make([]purchasedomain.LineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, purchasedomain.LineRequest{
			Description: line.Description,
			Amount:      line.Amount,
			TaxRate:     line.TaxRate,
			CessRate:    line.CessRate,
			TaxCode:     line.TaxCode,
			ExpenseKey:  line.ExpenseKey,
		})
	}

	bill, err := s.purchaseSvc.Create(c.Request.Context(), purchasedomain.CreateRequest{
		VendorID:     req.VendorID,
		BillNumber:   req.BillNumber,
		BillDate:     billDate,
		IsInterstate: req.IsInterstate,
		IsInclusive:  req.IsInclusive,
		Lines:        lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": bill})
}

func (s *Server) GetPurchaseBillByID(c *gin.Context) {
	bill, err := s.purchaseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bill})
}

func (s *Server) PostPurchaseBill(c *gin.Context) {
	billID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.posting.Post(c.Request.Context(), tenantID(c), posting.PurchaseDoc{BillID: billID})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ListVendorPayments(c *gin.Context) {
	payments, err := s.purchaseSvc.ListPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payments})
}

func (s *Server) CreateVendorPayment(c *gin.Context) {
	billID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req settlementRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	paymentDate, err := requestDate("date", req.Date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.posting.Post(c.Request.Context(), tenantID(c), posting.PaymentDoc{
		BillID:      billID,
		PaymentDate: paymentDate,
		Amount:      req.Amount,
		TDS:         req.TDS,
		PaidFromKey: accountdomain.NormalizeKey(req.AccountKey),
		Reference:   req.Reference,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}
