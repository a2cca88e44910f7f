package cost

// Model computes the transaction costs charged when a position is closed.
type Model interface {
	// Commission returns the commission in USD for an execution at the given
	// price and quantity.
	Commission(price, quantity float64) float64
	// Slippage returns the slippage cost in USD for an execution at the given
	// price and quantity.
	Slippage(price, quantity float64) float64
}

type ModelName string

const (
	ModelNameRate ModelName = "rate"
	ModelNameZero ModelName = "zero"
)

var AllModels = []any{
	ModelNameRate,
	ModelNameZero,
}

// GetModel returns the cost model for the given name, defaulting to zero cost.
func GetModel(name ModelName, commissionRate, slippageRate float64) Model {
	switch name {
	case ModelNameRate:
		return NewRateModel(commissionRate, slippageRate)
	case ModelNameZero:
		return NewZeroModel()
	default:
		return NewZeroModel()
	}
}
