package domain

import (
	"errors"

	"github.com/smallbiznis/bookkeeper/pkg/apperror"
)

var (
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCode     = errors.New("invalid_code")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidKey      = errors.New("invalid_mapping_key")
	ErrDuplicateCode   = errors.New("duplicate_account_code")
	ErrNotFound        = errors.New("not_found")

	ErrCategoryLocked = apperror.New(apperror.CodeCategoryLocked, "account category cannot change once postings exist")
)
