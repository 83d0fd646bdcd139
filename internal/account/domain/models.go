package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Category is the accounting class of an account. It fixes the sign
// convention of current_balance and cannot change once lines exist.
type Category string

const (
	CategoryAsset     Category = "ASSET"
	CategoryLiability Category = "LIABILITY"
	CategoryEquity    Category = "EQUITY"
	CategoryRevenue   Category = "REVENUE"
	CategoryExpense   Category = "EXPENSE"
)

func ParseCategory(raw string) (Category, error) {
	switch c := Category(strings.ToUpper(strings.TrimSpace(raw))); c {
	case CategoryAsset, CategoryLiability, CategoryEquity, CategoryRevenue, CategoryExpense:
		return c, nil
	default:
		return "", ErrInvalidCategory
	}
}

// Key is a semantic account role such as accounts_receivable. Posting
// code asks for keys, never for concrete account codes.
type Key string

const (
	KeyAccountsReceivable Key = "accounts_receivable"
	KeyAccountsPayable    Key = "accounts_payable"
	KeySalesRevenue       Key = "sales_revenue"
	KeyPurchaseExpense    Key = "purchase_expense"
	KeyCash               Key = "cash"
	KeyBank               Key = "bank"
	KeyCardClearing       Key = "card_clearing"
	KeyOutputCGST         Key = "output_cgst"
	KeyOutputSGST         Key = "output_sgst"
	KeyOutputIGST         Key = "output_igst"
	KeyOutputCess         Key = "output_cess"
	KeyInputCGST          Key = "input_cgst"
	KeyInputSGST          Key = "input_sgst"
	KeyInputIGST          Key = "input_igst"
	KeyInputCess          Key = "input_cess"
	KeyTDSReceivable      Key = "tds_receivable"
	KeyTDSPayable         Key = "tds_payable"
)

func NormalizeKey(raw string) Key {
	return Key(strings.ToLower(strings.TrimSpace(raw)))
}

// ChartEntry describes one account of the default chart.
type ChartEntry struct {
	Key      Key
	Name     string
	Category Category
}

// DefaultChart lists the accounts every posting type may need.
var DefaultChart = []ChartEntry{
	{KeyAccountsReceivable, "Accounts Receivable", CategoryAsset},
	{KeyCash, "Cash in Hand", CategoryAsset},
	{KeyBank, "Bank", CategoryAsset},
	{KeyCardClearing, "Card Clearing", CategoryAsset},
	{KeyInputCGST, "Input CGST", CategoryAsset},
	{KeyInputSGST, "Input SGST", CategoryAsset},
	{KeyInputIGST, "Input IGST", CategoryAsset},
	{KeyInputCess, "Input Cess", CategoryAsset},
	{KeyTDSReceivable, "TDS Receivable", CategoryAsset},
	{KeyAccountsPayable, "Accounts Payable", CategoryLiability},
	{KeyOutputCGST, "Output CGST", CategoryLiability},
	{KeyOutputSGST, "Output SGST", CategoryLiability},
	{KeyOutputIGST, "Output IGST", CategoryLiability},
	{KeyOutputCess, "Output Cess", CategoryLiability},
	{KeyTDSPayable, "TDS Payable", CategoryLiability},
	{KeySalesRevenue, "Sales Revenue", CategoryRevenue},
	{KeyPurchaseExpense, "Purchases", CategoryExpense},
}

// Account is a chart-of-accounts entry scoped to one tenant.
type Account struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID    `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Code           string          `gorm:"type:text;not null" json:"code"`
	Name           string          `gorm:"type:text;not null" json:"name"`
	Category       Category        `gorm:"type:text;not null" json:"category"`
	CurrentBalance decimal.Decimal `gorm:"column:current_balance;type:numeric(20,4);not null" json:"current_balance"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

// Mapping binds a semantic key to a concrete account for one tenant and
// takes precedence over the configured code table.
type Mapping struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	TenantID   snowflake.ID `gorm:"column:tenant_id;not null"`
	MappingKey Key          `gorm:"column:mapping_key;type:text;not null"`
	AccountID  snowflake.ID `gorm:"column:account_id;not null"`
	CreatedAt  time.Time    `gorm:"not null"`
	UpdatedAt  time.Time    `gorm:"not null"`
}

func (Mapping) TableName() string { return "account_mappings" }
