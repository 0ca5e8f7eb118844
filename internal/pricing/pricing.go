package pricing

import (
	"github.com/shopspring/decimal"

	"bistro/internal/config"
	"bistro/internal/domain"
)

// Bill is the customer-facing breakdown of an order subtotal. All amounts
// are in the minor currency unit.
type Bill struct {
	Subtotal      int64
	Tax           int64
	ServiceCharge int64
	Total         int64
	LoyaltyPoints int64
}

type Calculator struct {
	taxRate           decimal.Decimal
	serviceChargeRate decimal.Decimal
	loyaltyPointsRate decimal.Decimal
}

func NewCalculator(cfg config.PricingConfig) *Calculator {
	return &Calculator{
		taxRate:           decimal.NewFromFloat(cfg.TaxRate),
		serviceChargeRate: decimal.NewFromFloat(cfg.ServiceChargeRate),
		loyaltyPointsRate: decimal.NewFromFloat(cfg.LoyaltyPointsRate),
	}
}

// Tax rounds amount*taxRate to the nearest unit, halves away from zero.
func (c *Calculator) Tax(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(c.taxRate).Round(0).IntPart()
}

func (c *Calculator) ServiceCharge(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(c.serviceChargeRate).Round(0).IntPart()
}

func (c *Calculator) TotalWithTaxAndService(subtotal int64) int64 {
	return subtotal + c.Tax(subtotal) + c.ServiceCharge(subtotal)
}

func (c *Calculator) LoyaltyPoints(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(c.loyaltyPointsRate).Floor().IntPart()
}

func (c *Calculator) Bill(subtotal int64) Bill {
	tax := c.Tax(subtotal)
	service := c.ServiceCharge(subtotal)
	return Bill{
		Subtotal:      subtotal,
		Tax:           tax,
		ServiceCharge: service,
		Total:         subtotal + tax + service,
		LoyaltyPoints: c.LoyaltyPoints(subtotal),
	}
}

// Subtotal sums item prices, counting every occurrence.
func Subtotal(items []domain.MenuItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Price
	}
	return total
}
