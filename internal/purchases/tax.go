package purchases

import "github.com/shopspring/decimal"

// TaxRate is the Chilean IVA applied to every purchase.
var TaxRate = decimal.RequireFromString("0.19")

// ComputeTotals returns the IVA and total for a subtotal in whole pesos.
// IVA is rounded half away from zero to the peso.
func ComputeTotals(subtotal int64) (tax, total int64) {
	base := decimal.NewFromInt(subtotal)
	iva := base.Mul(TaxRate).Round(0)
	return iva.IntPart(), base.Add(iva).IntPart()
}
