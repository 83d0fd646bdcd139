package domain

import "errors"

var (
	ErrInvalidTenant        = errors.New("invalid_tenant")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidCustomer      = errors.New("invalid_customer")
	ErrInvalidInvoiceNumber = errors.New("invalid_invoice_number")
	ErrInvalidInvoiceDate   = errors.New("invalid_invoice_date")
	ErrInvalidLines         = errors.New("invalid_invoice_lines")
	ErrInvalidDescription   = errors.New("invalid_line_description")
	ErrInvalidAmount        = errors.New("invalid_line_amount")
	ErrInvalidRate          = errors.New("invalid_line_rate")
	ErrDuplicateNumber      = errors.New("duplicate_invoice_number")
	ErrNotFound             = errors.New("not_found")
)
