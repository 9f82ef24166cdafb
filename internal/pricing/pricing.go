// Package pricing computes order totals from a product, a group-buy
// discount, and a quantity. It is pure: no state, no I/O, inputs are
// validated upstream.
package pricing

import (
	"commerce-console/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Quote is the result of a total computation. Resolved is false when an
// input was missing or the quantity was below one, which keeps that case
// distinguishable from a legitimately zero total (discount of exactly 100).
type Quote struct {
	Total    decimal.Decimal
	Resolved bool
}

// Submittable reports whether the quote may back an order submission: it
// must be resolved and strictly positive.
func (q Quote) Submittable() bool {
	return q.Resolved && q.Total.Sign() > 0
}

// ComputeTotal returns price * quantity * (1 - discount/100). A nil product
// or group-buy, or a quantity below one, yields an unresolved quote.
func ComputeTotal(product *models.Product, gb *models.GroupBuy, quantity int) Quote {
	if product == nil || gb == nil || quantity < 1 {
		return Quote{}
	}

	total := product.Price.
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(hundred.Sub(gb.Discount)).
		Div(hundred)

	return Quote{Total: total, Resolved: true}
}
