package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
)

type createAccountRequest struct {
	Code     string `json:"code" validate:"required,max=32"`
	Name     string `json:"name" validate:"required,max=255"`
	Category string `json:"category" validate:"required"`
}

type changeCategoryRequest struct {
	Category string `json:"category" validate:"required"`
}

type accountMappingRequest struct {
	Key       string `json:"key" validate:"required"`
	AccountID string `json:"account_id" validate:"required"`
}

func (s *Server) ListAccounts(c *gin.Context) {
	accounts, err := s.accountSvc.List(c.Request.Context(), accountdomain.ListRequest{
		Category: strings.TrimSpace(c.Query("category")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accounts})
}

func (s *Server) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	account, err := s.accountSvc.Create(c.Request.Context(), accountdomain.CreateRequest{
		Code:     req.Code,
		Name:     req.Name,
		Category: req.Category,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": account})
}

func (s *Server) GetAccountByID(c *gin.Context) {
	account, err := s.accountSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": account})
}

func (s *Server) ChangeAccountCategory(c *gin.Context) {
	var req changeCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	account, err := s.accountSvc.ChangeCategory(c.Request.Context(), c.Param("id"), req.Category)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": account})
}

func (s *Server) SetAccountMapping(c *gin.Context) {
	var req accountMappingRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.accountSvc.SetMapping(c.Request.Context(), accountdomain.MappingRequest{
		Key:       req.Key,
		AccountID: req.AccountID,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
