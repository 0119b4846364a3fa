package lineitem

import "github.com/shopspring/decimal"

// Totals holds the derived per-line and order totals for an aggregated
// line item set. Values are plain decimals; currency formatting is the
// caller's concern.
type Totals struct {
	PerLine    map[string]decimal.Decimal
	OrderTotal decimal.Decimal
}

// ComputeTotals derives per-line totals (unit price × quantity) and the
// order total from aggregated line items. Lines whose base price is not
// positive are treated as invalid on this display path: they contribute
// zero instead of blocking the render. Validation-time rejection of such
// lines belongs to cart submission, not here.
func ComputeTotals(items map[string]*LineItem) Totals {
	t := Totals{PerLine: make(map[string]decimal.Decimal, len(items))}

	for key, li := range items {
		if li.BasePrice.LessThanOrEqual(decimal.Zero) {
			t.PerLine[key] = decimal.Zero
			continue
		}
		line := li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))
		t.PerLine[key] = line
		t.OrderTotal = t.OrderTotal.Add(line)
	}

	t.OrderTotal = t.OrderTotal.Round(2)
	return t
}

// CartUnitPrice computes the unit price of a new cart line before
// submission, where surcharges are not yet embedded: base price plus the
// chosen supplement plus every selected option.
func CartUnitPrice(basePrice, supplementPrice decimal.Decimal, optionPrices []decimal.Decimal) decimal.Decimal {
	unit := basePrice.Add(supplementPrice)
	for _, p := range optionPrices {
		unit = unit.Add(p)
	}
	return unit
}
