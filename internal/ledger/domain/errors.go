package domain

import (
	"errors"

	"github.com/smallbiznis/bookkeeper/pkg/apperror"
)

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidEntryType  = errors.New("invalid_entry_type")
	ErrInvalidEntryDate  = errors.New("invalid_entry_date")
	ErrInvalidEntryLines = errors.New("invalid_entry_lines")
	ErrInvalidAccount    = errors.New("invalid_account")
	ErrInvalidLineAmount = errors.New("invalid_line_amount")
	ErrInvalidSource     = errors.New("invalid_source")
	ErrInvalidPageToken  = errors.New("invalid_page_token")
	ErrNotFound          = errors.New("not_found")

	ErrNotBalanced   = apperror.New(apperror.CodeNotBalanced, "journal entry debits and credits differ")
	ErrAlreadyPosted = apperror.New(apperror.CodeAlreadyPosted, "journal entry is already posted")
)
