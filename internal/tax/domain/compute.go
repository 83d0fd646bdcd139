package domain

import "github.com/shopspring/decimal"

var (
	one        = decimal.NewFromInt(1)
	hundred    = decimal.NewFromInt(100)
	twoHundred = decimal.NewFromInt(200)
)

// Input describes one taxable amount. Rate and CessRate are percentages.
// A nil Rate means no rate was supplied.
type Input struct {
	Amount       decimal.Decimal
	Rate         *decimal.Decimal
	CessRate     decimal.Decimal
	IsInterstate bool
	IsInclusive  bool
}

// Breakdown is the GST split of one amount, every field rounded to
// two decimal places.
type Breakdown struct {
	BaseAmount  decimal.Decimal `json:"base_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	IGST        decimal.Decimal `json:"igst"`
	Cess        decimal.Decimal `json:"cess"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Compute splits amount into CGST/SGST (intrastate) or IGST (interstate)
// plus cess. Components are derived from the unrounded base and rounded
// half-up to 2dp once. TaxAmount is the sum of the rounded components, so
// BaseAmount + TaxAmount == TotalAmount always holds exactly.
func Compute(in Input) (Breakdown, error) {
	if in.Rate == nil {
		return Breakdown{}, ErrMissingRate
	}
	rate := *in.Rate
	if in.Amount.IsNegative() {
		return Breakdown{}, ErrInvalidAmount
	}
	if rate.IsNegative() || in.CessRate.IsNegative() {
		return Breakdown{}, ErrInvalidTaxRate
	}

	base := in.Amount
	if in.IsInclusive {
		divisor := one.Add(rate.Add(in.CessRate).Div(hundred))
		base = in.Amount.Div(divisor)
	}

	var out Breakdown
	if in.IsInterstate {
		out.CGST = decimal.Zero
		out.SGST = decimal.Zero
		out.IGST = round2(base.Mul(rate).Div(hundred))
	} else {
		half := round2(base.Mul(rate).Div(twoHundred))
		out.CGST = half
		out.SGST = half
		out.IGST = decimal.Zero
	}
	// cess is never split between centre and state.
	out.Cess = round2(base.Mul(in.CessRate).Div(hundred))
	out.TaxAmount = out.CGST.Add(out.SGST).Add(out.IGST).Add(out.Cess)

	if in.IsInclusive {
		out.TotalAmount = round2(in.Amount)
		out.BaseAmount = out.TotalAmount.Sub(out.TaxAmount)
	} else {
		out.BaseAmount = round2(in.Amount)
		out.TotalAmount = out.BaseAmount.Add(out.TaxAmount)
	}
	return out, nil
}

// Summarize adds per-line breakdowns into a document-level summary.
func Summarize(lines []Breakdown) Breakdown {
	sum := Breakdown{
		BaseAmount:  decimal.Zero,
		TaxAmount:   decimal.Zero,
		CGST:        decimal.Zero,
		SGST:        decimal.Zero,
		IGST:        decimal.Zero,
		Cess:        decimal.Zero,
		TotalAmount: decimal.Zero,
	}
	for _, line := range lines {
		sum.BaseAmount = sum.BaseAmount.Add(line.BaseAmount)
		sum.TaxAmount = sum.TaxAmount.Add(line.TaxAmount)
		sum.CGST = sum.CGST.Add(line.CGST)
		sum.SGST = sum.SGST.Add(line.SGST)
		sum.IGST = sum.IGST.Add(line.IGST)
		sum.Cess = sum.Cess.Add(line.Cess)
		sum.TotalAmount = sum.TotalAmount.Add(line.TotalAmount)
	}
	return sum
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
