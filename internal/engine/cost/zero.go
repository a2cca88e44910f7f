package cost

// ZeroModel implements Model with no transaction costs.
type ZeroModel struct{}

// NewZeroModel creates a new zero-cost model.
func NewZeroModel() Model {
	return &ZeroModel{}
}

// Commission returns 0 for any execution.
func (m *ZeroModel) Commission(price, quantity float64) float64 {
	return 0.0
}

// Slippage returns 0 for any execution.
func (m *ZeroModel) Slippage(price, quantity float64) float64 {
	return 0.0
}
