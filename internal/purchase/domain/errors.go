package domain

import "errors"

var (
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidVendor      = errors.New("invalid_vendor")
	ErrInvalidBillNumber  = errors.New("invalid_bill_number")
	ErrInvalidBillDate    = errors.New("invalid_bill_date")
	ErrInvalidLines       = errors.New("invalid_bill_lines")
	ErrInvalidDescription = errors.New("invalid_line_description")
	ErrInvalidAmount      = errors.New("invalid_line_amount")
	ErrInvalidRate        = errors.New("invalid_line_rate")
	ErrDuplicateNumber    = errors.New("duplicate_bill_number")
	ErrNotFound           = errors.New("not_found")
)
