package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	posdomain "github.com/smallbiznis/bookkeeper/internal/pos/domain"
	"github.com/smallbiznis/bookkeeper/internal/posting"
)

type createPosSaleRequest struct {
	SaleNumber  string               `json:"sale_number" validate:"required,max=64"`
	SaleDate    string               `json:"sale_date" validate:"required"`
	TenderKey   string               `json:"tender_key"`
	IsInclusive *bool                `json:"is_inclusive"`
	Lines       []posSaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type posSaleLineRequest struct {
	Description string           `json:"description" validate:"required"`
	Quantity    decimal.Decimal  `json:"quantity" validate:"positive_decimal"`
	UnitPrice   decimal.Decimal  `json:"unit_price" validate:"nonnegative_decimal"`
	TaxRate     *decimal.Decimal `json:"tax_rate" validate:"omitempty,nonnegative_decimal"`
	CessRate    decimal.Decimal  `json:"cess_rate" validate:"nonnegative_decimal"`
	TaxCode     string           `json:"tax_code"`
}

func (s *Server) CreatePosSale(c *gin.Context) {
	var req createPosSaleRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	saleDate, err := requestDate("sale_date", req.SaleDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	lines := make([]posdomain.LineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, posdomain.LineRequest{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TaxRate:     line.TaxRate,
			CessRate:    line.CessRate,
			TaxCode:     line.TaxCode,
		})
	}

	sale, err := s.posSvc.Create(c.Request.Context(), posdomain.CreateRequest{
		SaleNumber:  req.SaleNumber,
		SaleDate:    saleDate,
		TenderKey:   req.TenderKey,
		IsInclusive: req.IsInclusive,
		Lines:       lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sale})
}

func (s *Server) GetPosSaleByID(c *gin.Context) {
	sale, err := s.posSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale})
}

func (s *Server) PostPosSale(c *gin.Context) {
	saleID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.posting.Post(c.Request.Context(), tenantID(c), posting.PosSaleDoc{SaleID: saleID})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
