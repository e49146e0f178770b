package domain

import "github.com/shopspring/decimal"

var (
	FreeShippingThreshold = decimal.RequireFromString("50.00")
	ShippingFee           = decimal.RequireFromString("5.99")
	TaxRate               = decimal.RequireFromString("0.08")
)

type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// PriceSubtotal applies the shipping and tax rules to a subtotal.
// Shipping is free strictly above the threshold; tax is rounded half away
// from zero to cents.
func PriceSubtotal(subtotal decimal.Decimal) Totals {
	shipping := ShippingFee
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal.Round(2),
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax).Round(2),
	}
}

func PriceLines(lines []OrderLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	return PriceSubtotal(subtotal)
}
