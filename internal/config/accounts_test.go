package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAccountMappingCodeFor(t *testing.T) {
	mapping := DefaultAccountMapping()
	mapping.Tenants["42"] = map[string]string{"sales_revenue": "REV-042"}
	mapping = normalizeAccountMapping(mapping)

	code, ok := mapping.CodeFor("42", "sales_revenue")
	assert.True(t, ok)
	assert.Equal(t, "REV-042", code)

	code, ok = mapping.CodeFor("42", "accounts_receivable")
	assert.True(t, ok)
	assert.Equal(t, "AR-001", code)

	code, ok = mapping.CodeFor("7", " Sales_Revenue ")
	assert.True(t, ok)
	assert.Equal(t, "REV-001", code)

	_, ok = mapping.CodeFor("7", "unknown_role")
	assert.False(t, ok)
}

func TestNewAccountMappingHolderFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.yml")
	content := `accounts:
  defaults:
    accounts_receivable: AR-900
    sales_revenue: REV-900
  tenants:
    "42":
      sales_revenue: REV-042
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	holder, err := NewAccountMappingHolder(Config{AccountsConfigPath: path}, zap.NewNop())
	require.NoError(t, err)

	mapping := holder.Get()
	code, ok := mapping.CodeFor("1", "accounts_receivable")
	assert.True(t, ok)
	assert.Equal(t, "AR-900", code)

	code, ok = mapping.CodeFor("42", "sales_revenue")
	assert.True(t, ok)
	assert.Equal(t, "REV-042", code)
}

func TestNewAccountMappingHolderRejectsEmptyDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.yml")
	require.NoError(t, os.WriteFile(path, []byte("accounts:\n  tenants: {}\n"), 0o600))

	_, err := NewAccountMappingHolder(Config{AccountsConfigPath: path}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewAccountMappingHolderFallsBackToDefaults(t *testing.T) {
	holder, err := NewAccountMappingHolder(Config{}, zap.NewNop())
	require.NoError(t, err)

	code, ok := holder.Get().CodeFor("1", "output_cgst")
	assert.True(t, ok)
	assert.Equal(t, "GST-OUT-CGST", code)
}
