package pricing

import (
	"errors"
	"fmt"
	"math"

	"bakeshop/backend/internal/domain"
)

var ErrInvalidCart = errors.New("invalid cart")

// Item is one cart line with its catalog price already resolved.
type Item struct {
	ProductID string
	Qty       int
	UnitPrice int64
	Discount  domain.Discount
}

// ComputeTotals prices a cart in a fixed order: per-item discounts first,
// then the order discount against the item-discounted subtotal, then tax
// on the remaining base. All rounding is half-up to whole rupiah.
func ComputeTotals(items []Item, orderDiscount domain.Discount, taxRatePercent float64) (domain.Totals, error) {
	if len(items) == 0 {
		return domain.Totals{}, fmt.Errorf("%w: empty cart", ErrInvalidCart)
	}
	if taxRatePercent < 0 || taxRatePercent > 100 {
		return domain.Totals{}, fmt.Errorf("%w: tax rate %.2f out of range", ErrInvalidCart, taxRatePercent)
	}
	if err := validateDiscount(orderDiscount); err != nil {
		return domain.Totals{}, err
	}

	totals := domain.Totals{Lines: make([]domain.PricedLine, 0, len(items))}
	for _, it := range items {
		if it.Qty <= 0 {
			return domain.Totals{}, fmt.Errorf("%w: quantity %d for product %s", ErrInvalidCart, it.Qty, it.ProductID)
		}
		if it.UnitPrice < 0 {
			return domain.Totals{}, fmt.Errorf("%w: negative unit price for product %s", ErrInvalidCart, it.ProductID)
		}
		if err := validateDiscount(it.Discount); err != nil {
			return domain.Totals{}, err
		}

		gross := it.UnitPrice * int64(it.Qty)
		discount := discountAmount(it.Discount, gross)
		totals.Lines = append(totals.Lines, domain.PricedLine{
			ProductID:      it.ProductID,
			Qty:            it.Qty,
			UnitPrice:      it.UnitPrice,
			Gross:          gross,
			DiscountAmount: discount,
			Net:            gross - discount,
			Discount:       it.Discount,
		})
		totals.Subtotal += gross
		totals.ItemDiscountTotal += discount
	}

	itemDiscounted := totals.Subtotal - totals.ItemDiscountTotal
	totals.OrderDiscountAmount = discountAmount(orderDiscount, itemDiscounted)
	totals.TaxableBase = itemDiscounted - totals.OrderDiscountAmount
	totals.TaxAmount = roundHalfUp(float64(totals.TaxableBase) * taxRatePercent / 100)
	totals.Total = totals.TaxableBase + totals.TaxAmount
	return totals, nil
}

// discountAmount resolves a discount against a base amount. Percent values
// round half-up; fixed values are capped at the base so no line or order
// ever goes negative.
func discountAmount(d domain.Discount, base int64) int64 {
	switch d.Type {
	case domain.DiscountPercent:
		amount := roundHalfUp(float64(base) * float64(d.Value) / 100)
		if amount > base {
			return base
		}
		return amount
	case domain.DiscountFixed:
		if d.Value > base {
			return base
		}
		return d.Value
	default:
		return 0
	}
}

func validateDiscount(d domain.Discount) error {
	switch d.Type {
	case "", domain.DiscountNone:
		return nil
	case domain.DiscountPercent:
		if d.Value < 0 || d.Value > 100 {
			return fmt.Errorf("%w: percent discount %d out of range", ErrInvalidCart, d.Value)
		}
	case domain.DiscountFixed:
		if d.Value < 0 {
			return fmt.Errorf("%w: negative fixed discount", ErrInvalidCart)
		}
	default:
		return fmt.Errorf("%w: unknown discount type %q", ErrInvalidCart, d.Type)
	}
	return nil
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
