package domain

import "errors"

var (
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidSaleNumber  = errors.New("invalid_sale_number")
	ErrInvalidSaleDate    = errors.New("invalid_sale_date")
	ErrInvalidTender      = errors.New("invalid_tender")
	ErrInvalidLines       = errors.New("invalid_sale_lines")
	ErrInvalidDescription = errors.New("invalid_line_description")
	ErrInvalidQuantity    = errors.New("invalid_line_quantity")
	ErrInvalidPrice       = errors.New("invalid_line_price")
	ErrInvalidRate        = errors.New("invalid_line_rate")
	ErrDuplicateNumber    = errors.New("duplicate_sale_number")
	ErrNotFound           = errors.New("not_found")
)
