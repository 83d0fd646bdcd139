package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/bookkeeper/internal/tax/domain"
)

type createTaxCodeRequest struct {
	Code      string          `json:"code" validate:"required,max=32"`
	Name      string          `json:"name" validate:"required,max=255"`
	Rate      decimal.Decimal `json:"rate" validate:"nonnegative_decimal"`
	CessRate  decimal.Decimal `json:"cess_rate" validate:"nonnegative_decimal"`
	IsEnabled *bool           `json:"is_enabled"`
}

func (s *Server) ListTaxCodes(c *gin.Context) {
	isEnabled, err := parseOptionalBool(c.Query("is_enabled"))
	if err != nil {
		AbortWithError(c, newValidationError("is_enabled", "invalid_is_enabled", "invalid is_enabled"))
		return
	}

	codes, err := s.taxSvc.List(c.Request.Context(), taxdomain.ListRequest{
		Code:      strings.TrimSpace(c.Query("code")),
		IsEnabled: isEnabled,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": codes})
}

func (s *Server) CreateTaxCode(c *gin.Context) {
	var req createTaxCodeRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	code, err := s.taxSvc.Create(c.Request.Context(), taxdomain.CreateRequest{
		Code:      req.Code,
		Name:      req.Name,
		Rate:      req.Rate,
		CessRate:  req.CessRate,
		IsEnabled: req.IsEnabled,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": code})
}

func (s *Server) DisableTaxCode(c *gin.Context) {
	code, err := s.taxSvc.Disable(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": code})
}
