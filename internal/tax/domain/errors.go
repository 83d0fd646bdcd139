package domain

import (
	"errors"

	"github.com/smallbiznis/bookkeeper/pkg/apperror"
)

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidTaxCode = errors.New("invalid_tax_code")
	ErrInvalidTaxRate = errors.New("invalid_tax_rate")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrDuplicateCode  = errors.New("duplicate_tax_code")

	// ErrMissingRate is returned when a line has no rate and no tax code
	// resolves one. Callers must never treat it as a zero rate.
	ErrMissingRate = apperror.New(apperror.CodeMissingRate, "tax rate missing and no tax code resolves")
)
