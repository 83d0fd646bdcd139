package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	invoicedomain "github.com/smallbiznis/bookkeeper/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	posdomain "github.com/smallbiznis/bookkeeper/internal/pos/domain"
	purchasedomain "github.com/smallbiznis/bookkeeper/internal/purchase/domain"
	recdomain "github.com/smallbiznis/bookkeeper/internal/reconciliation/domain"
	"github.com/smallbiznis/bookkeeper/internal/reconciliation/statement"
	taxdomain "github.com/smallbiznis/bookkeeper/internal/tax/domain"
	"github.com/smallbiznis/bookkeeper/pkg/apperror"
	"github.com/smallbiznis/bookkeeper/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Details map[string]any    `json:"details,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

var internalPayload = errorPayload{
	Type:    "internal_error",
	Message: "internal server error",
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, internalPayload
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    string(apperror.CodeValidation),
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return mapAppError(appErr)
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "missing " + HeaderTenant + " header",
		}
	case isValidationError(err):
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    string(apperror.CodeValidation),
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    string(apperror.CodeNotFound),
			Message: "not found",
		}
	case isDuplicateError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Code:    err.Error(),
			Message: "conflict",
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "request cancelled",
		}
	default:
		return http.StatusInternalServerError, internalPayload
	}
}

func mapAppError(err *apperror.Error) (int, errorPayload) {
	payload := errorPayload{
		Type:    appErrorType(err.Code),
		Code:    string(err.Code),
		Message: err.Message,
		Details: err.Details,
	}
	switch err.Code {
	case apperror.CodeValidation, apperror.CodeMissingRate:
		return http.StatusBadRequest, payload
	case apperror.CodeNotFound:
		return http.StatusNotFound, payload
	case apperror.CodeAlreadyPosted,
		apperror.CodeInProgress,
		apperror.CodeNotInProgress,
		apperror.CodeMatchConflict,
		apperror.CodeCategoryLocked:
		return http.StatusConflict, payload
	case apperror.CodeOverpayment,
		apperror.CodeNotBalanced,
		apperror.CodeMissingAccountMapping,
		apperror.CodeUnbalancedReconciliation:
		return http.StatusUnprocessableEntity, payload
	case apperror.CodeDBError:
		payload.Message = "storage unavailable"
		return http.StatusServiceUnavailable, payload
	default:
		return http.StatusInternalServerError, internalPayload
	}
}

func appErrorType(code apperror.Code) string {
	switch code {
	case apperror.CodeValidation, apperror.CodeMissingRate:
		return "validation_error"
	case apperror.CodeNotFound:
		return "not_found"
	case apperror.CodeDBError:
		return "service_unavailable"
	case apperror.CodeAlreadyPosted,
		apperror.CodeInProgress,
		apperror.CodeNotInProgress,
		apperror.CodeMatchConflict,
		apperror.CodeCategoryLocked:
		return "conflict"
	default:
		return "unprocessable"
	}
}

// classifyErrorForLog feeds the request logger a type and code for err.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Code
	if code == "" {
		code = strings.ToUpper(payload.Type)
	}
	if status >= http.StatusInternalServerError && payload.Type == "internal_error" {
		return "internal", code
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

var validationErrors = []error{
	ErrInvalidRequest,
	pagination.ErrInvalidPageToken,
	statement.ErrEmptyStatement,
	statement.ErrMissingColumns,

	accountdomain.ErrInvalidTenant,
	accountdomain.ErrInvalidID,
	accountdomain.ErrInvalidCode,
	accountdomain.ErrInvalidName,
	accountdomain.ErrInvalidCategory,
	accountdomain.ErrInvalidKey,

	taxdomain.ErrInvalidTenant,
	taxdomain.ErrInvalidName,
	taxdomain.ErrInvalidID,
	taxdomain.ErrInvalidTaxCode,
	taxdomain.ErrInvalidTaxRate,
	taxdomain.ErrInvalidAmount,

	invoicedomain.ErrInvalidTenant,
	invoicedomain.ErrInvalidID,
	invoicedomain.ErrInvalidCustomer,
	invoicedomain.ErrInvalidInvoiceNumber,
	invoicedomain.ErrInvalidInvoiceDate,
	invoicedomain.ErrInvalidLines,
	invoicedomain.ErrInvalidDescription,
	invoicedomain.ErrInvalidAmount,
	invoicedomain.ErrInvalidRate,

	purchasedomain.ErrInvalidTenant,
	purchasedomain.ErrInvalidID,
	purchasedomain.ErrInvalidVendor,
	purchasedomain.ErrInvalidBillNumber,
	purchasedomain.ErrInvalidBillDate,
	purchasedomain.ErrInvalidLines,
	purchasedomain.ErrInvalidDescription,
	purchasedomain.ErrInvalidAmount,
	purchasedomain.ErrInvalidRate,

	posdomain.ErrInvalidTenant,
	posdomain.ErrInvalidID,
	posdomain.ErrInvalidSaleNumber,
	posdomain.ErrInvalidSaleDate,
	posdomain.ErrInvalidTender,
	posdomain.ErrInvalidLines,
	posdomain.ErrInvalidDescription,
	posdomain.ErrInvalidQuantity,
	posdomain.ErrInvalidPrice,
	posdomain.ErrInvalidRate,

	ledgerdomain.ErrInvalidTenant,
	ledgerdomain.ErrInvalidID,
	ledgerdomain.ErrInvalidEntryType,
	ledgerdomain.ErrInvalidEntryDate,
	ledgerdomain.ErrInvalidEntryLines,
	ledgerdomain.ErrInvalidAccount,
	ledgerdomain.ErrInvalidLineAmount,
	ledgerdomain.ErrInvalidSource,
	ledgerdomain.ErrInvalidPageToken,

	recdomain.ErrInvalidTenant,
	recdomain.ErrInvalidID,
	recdomain.ErrInvalidBankAccount,
	recdomain.ErrInvalidDate,
	recdomain.ErrInvalidRows,
	recdomain.ErrInvalidType,
	recdomain.ErrInvalidAmount,
	recdomain.ErrInvalidTolerance,
	recdomain.ErrInvalidCandidate,

	auditdomain.ErrInvalidTenant,
	auditdomain.ErrInvalidPageToken,
	auditdomain.ErrInvalidTimeRange,
	auditdomain.ErrInvalidAction,
}

var notFoundErrors = []error{
	ErrNotFound,
	gorm.ErrRecordNotFound,
	accountdomain.ErrNotFound,
	taxdomain.ErrNotFound,
	invoicedomain.ErrNotFound,
	purchasedomain.ErrNotFound,
	posdomain.ErrNotFound,
	ledgerdomain.ErrNotFound,
	recdomain.ErrNotFound,
}

var duplicateErrors = []error{
	accountdomain.ErrDuplicateCode,
	taxdomain.ErrDuplicateCode,
	invoicedomain.ErrDuplicateNumber,
	purchasedomain.ErrDuplicateNumber,
	posdomain.ErrDuplicateNumber,
}

func isValidationError(err error) bool {
	return matchesAny(err, validationErrors)
}

func isNotFoundError(err error) bool {
	return matchesAny(err, notFoundErrors)
}

func isDuplicateError(err error) bool {
	return matchesAny(err, duplicateErrors)
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationErrorField(code string) string {
	switch {
	case code == "invalid_request":
		return "request"
	case strings.HasPrefix(code, "invalid_"):
		return strings.TrimPrefix(code, "invalid_")
	default:
		return ""
	}
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
