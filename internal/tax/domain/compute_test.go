package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bookkeeper/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rate(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestComputeIntrastateExclusive(t *testing.T) {
	got, err := Compute(Input{Amount: dec("1000"), Rate: rate("18")})
	require.NoError(t, err)

	assert.Equal(t, "1000.00", got.BaseAmount.StringFixed(2))
	assert.Equal(t, "90.00", got.CGST.StringFixed(2))
	assert.Equal(t, "90.00", got.SGST.StringFixed(2))
	assert.True(t, got.IGST.IsZero())
	assert.True(t, got.Cess.IsZero())
	assert.Equal(t, "180.00", got.TaxAmount.StringFixed(2))
	assert.Equal(t, "1180.00", got.TotalAmount.StringFixed(2))
}

func TestComputeInterstateExclusive(t *testing.T) {
	got, err := Compute(Input{Amount: dec("1000"), Rate: rate("18"), IsInterstate: true})
	require.NoError(t, err)

	assert.True(t, got.CGST.IsZero())
	assert.True(t, got.SGST.IsZero())
	assert.Equal(t, "180.00", got.IGST.StringFixed(2))
	assert.Equal(t, "1180.00", got.TotalAmount.StringFixed(2))
}

func TestComputeInclusive(t *testing.T) {
	got, err := Compute(Input{Amount: dec("1180"), Rate: rate("18"), IsInclusive: true})
	require.NoError(t, err)

	assert.Equal(t, "1000.00", got.BaseAmount.StringFixed(2))
	assert.Equal(t, "90.00", got.CGST.StringFixed(2))
	assert.Equal(t, "90.00", got.SGST.StringFixed(2))
	assert.Equal(t, "1180.00", got.TotalAmount.StringFixed(2))
}

func TestComputeInclusiveRoundingKeepsTotal(t *testing.T) {
	got, err := Compute(Input{Amount: dec("99.99"), Rate: rate("18"), IsInclusive: true})
	require.NoError(t, err)

	assert.Equal(t, "99.99", got.TotalAmount.StringFixed(2))
	assert.True(t, got.BaseAmount.Add(got.TaxAmount).Equal(got.TotalAmount))
}

func TestComputeCessIsAdditive(t *testing.T) {
	t.Run("intrastate", func(t *testing.T) {
		got, err := Compute(Input{Amount: dec("1000"), Rate: rate("28"), CessRate: dec("12")})
		require.NoError(t, err)

		assert.Equal(t, "140.00", got.CGST.StringFixed(2))
		assert.Equal(t, "140.00", got.SGST.StringFixed(2))
		assert.Equal(t, "120.00", got.Cess.StringFixed(2))
		assert.Equal(t, "400.00", got.TaxAmount.StringFixed(2))
		assert.Equal(t, "1400.00", got.TotalAmount.StringFixed(2))
	})

	t.Run("interstate", func(t *testing.T) {
		got, err := Compute(Input{Amount: dec("1000"), Rate: rate("28"), CessRate: dec("12"), IsInterstate: true})
		require.NoError(t, err)

		assert.Equal(t, "280.00", got.IGST.StringFixed(2))
		assert.Equal(t, "120.00", got.Cess.StringFixed(2))
		assert.Equal(t, "1400.00", got.TotalAmount.StringFixed(2))
	})

	t.Run("inclusive", func(t *testing.T) {
		got, err := Compute(Input{Amount: dec("1400"), Rate: rate("28"), CessRate: dec("12"), IsInclusive: true})
		require.NoError(t, err)

		assert.Equal(t, "1000.00", got.BaseAmount.StringFixed(2))
		assert.Equal(t, "120.00", got.Cess.StringFixed(2))
	})
}

func TestComputeZeroRate(t *testing.T) {
	got, err := Compute(Input{Amount: dec("250"), Rate: rate("0")})
	require.NoError(t, err)

	assert.True(t, got.TaxAmount.IsZero())
	assert.Equal(t, "250.00", got.TotalAmount.StringFixed(2))
}

func TestComputeMissingRate(t *testing.T) {
	_, err := Compute(Input{Amount: dec("100")})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingRate))
}

func TestComputeRejectsNegatives(t *testing.T) {
	_, err := Compute(Input{Amount: dec("-1"), Rate: rate("18")})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Compute(Input{Amount: dec("1"), Rate: rate("-18")})
	assert.ErrorIs(t, err, ErrInvalidTaxRate)

	_, err = Compute(Input{Amount: dec("1"), Rate: rate("18"), CessRate: dec("-1")})
	assert.ErrorIs(t, err, ErrInvalidTaxRate)
}

func TestComputeHalfUpRounding(t *testing.T) {
	got, err := Compute(Input{Amount: dec("12.50"), Rate: rate("18")})
	require.NoError(t, err)
	// 12.50 * 18 / 200 = 1.125 -> 1.13
	assert.Equal(t, "1.13", got.CGST.StringFixed(2))
	assert.Equal(t, "14.76", got.TotalAmount.StringFixed(2))
}

func TestSummarizeMatchesAggregate(t *testing.T) {
	amounts := []string{"100.10", "250.25", "649.65"}

	t.Run("intrastate", func(t *testing.T) {
		var lines []Breakdown
		for _, a := range amounts {
			b, err := Compute(Input{Amount: dec(a), Rate: rate("18")})
			require.NoError(t, err)
			lines = append(lines, b)
		}
		sum := Summarize(lines)
		whole, err := Compute(Input{Amount: dec("1000.00"), Rate: rate("18")})
		require.NoError(t, err)

		assert.Equal(t, whole.CGST.StringFixed(2), sum.CGST.StringFixed(2))
		assert.Equal(t, "1000.00", sum.BaseAmount.StringFixed(2))
		assert.True(t, sum.BaseAmount.Add(sum.TaxAmount).Equal(sum.TotalAmount))
	})

	t.Run("interstate within a cent per line", func(t *testing.T) {
		var lines []Breakdown
		for _, a := range amounts {
			b, err := Compute(Input{Amount: dec(a), Rate: rate("18"), IsInterstate: true})
			require.NoError(t, err)
			lines = append(lines, b)
		}
		sum := Summarize(lines)
		whole, err := Compute(Input{Amount: dec("1000.00"), Rate: rate("18"), IsInterstate: true})
		require.NoError(t, err)

		diff := sum.IGST.Sub(whole.IGST).Abs()
		assert.True(t, diff.LessThanOrEqual(dec("0.01")), "diff %s", diff)
		assert.True(t, sum.BaseAmount.Add(sum.TaxAmount).Equal(sum.TotalAmount))
	})
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	assert.True(t, sum.TotalAmount.IsZero())
	assert.True(t, sum.TaxAmount.IsZero())
}
