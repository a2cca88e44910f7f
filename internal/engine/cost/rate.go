package cost

import "github.com/shopspring/decimal"

// RateModel charges a fixed rate of the executed notional for both
// commission and slippage.
type RateModel struct {
	commissionRate decimal.Decimal
	slippageRate   decimal.Decimal
}

// NewRateModel creates a rate-based cost model.
func NewRateModel(commissionRate, slippageRate float64) Model {
	return &RateModel{
		commissionRate: decimal.NewFromFloat(commissionRate),
		slippageRate:   decimal.NewFromFloat(slippageRate),
	}
}

// Commission returns commissionRate * price * quantity.
func (m *RateModel) Commission(price, quantity float64) float64 {
	notional := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(quantity))
	fee, _ := m.commissionRate.Mul(notional).Float64()

	return fee
}

// Slippage returns slippageRate * price * quantity.
func (m *RateModel) Slippage(price, quantity float64) float64 {
	notional := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(quantity))
	cost, _ := m.slippageRate.Mul(notional).Float64()

	return cost
}
