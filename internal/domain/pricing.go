package domain

import "github.com/shopspring/decimal"

// ServiceFeePercent is the fixed surcharge applied to the subtotal.
const ServiceFeePercent = 20

var serviceFeeRate = decimal.New(ServiceFeePercent, -2)

// OrderTotals is derived from cart contents and never stored.
type OrderTotals struct {
	Subtotal   decimal.Decimal
	ServiceFee decimal.Decimal
	Total      decimal.Decimal
}

// ComputeTotals keeps full precision; round only when presenting.
func ComputeTotals(items []CartItem) OrderTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.PriceValue.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	fee := subtotal.Mul(serviceFeeRate)

	return OrderTotals{
		Subtotal:   subtotal,
		ServiceFee: fee,
		Total:      subtotal.Add(fee),
	}
}

// FormattedTotals holds the totals rounded to 2 decimals for presentation.
type FormattedTotals struct {
	Subtotal   string `json:"subtotal"`
	ServiceFee string `json:"service_fee"`
	Total      string `json:"total"`
}

func (t OrderTotals) Formatted() FormattedTotals {
	return FormattedTotals{
		Subtotal:   FormatMoney(t.Subtotal),
		ServiceFee: FormatMoney(t.ServiceFee),
		Total:      FormatMoney(t.Total),
	}
}

func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
