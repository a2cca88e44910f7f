package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide is the direction of a trade. The simulator is long only.
type TradeSide string

const (
	TradeSideLong TradeSide = "long"
)

// Position represents the single live holding of the simulator. It is
// refreshed daily while open and dropped when the closing Trade is created.
type Position struct {
	// Date is the bar date of the latest snapshot refresh.
	Date time.Time `yaml:"date" json:"date"`
	// Symbol is the held instrument.
	Symbol string `yaml:"symbol" json:"symbol"`
	// Quantity is the number of units held.
	Quantity float64 `yaml:"quantity" json:"quantity"`
	// Price is the latest close used for the snapshot.
	Price float64 `yaml:"price" json:"price"`
	// MarketValue is Quantity * Price.
	MarketValue float64 `yaml:"market_value" json:"market_value"`
	// Weight is the fraction of capital the position represents.
	Weight float64 `yaml:"weight" json:"weight"`
	// SignalType is the signal family that opened the position.
	SignalType SignalType `yaml:"signal_type" json:"signal_type"`
	// Confidence is the signal confidence at entry.
	Confidence float64 `yaml:"confidence" json:"confidence"`
	// EntryDate is the bar date the position was opened on.
	EntryDate time.Time `yaml:"entry_date" json:"entry_date"`
	// EntryPrice is the fill price at entry.
	EntryPrice float64 `yaml:"entry_price" json:"entry_price"`
}

// Refresh returns a snapshot of the position marked to the given bar.
func (p Position) Refresh(date time.Time, price, capital float64) Position {
	snapshot := p
	snapshot.Date = date
	snapshot.Price = price
	snapshot.MarketValue = p.Quantity * price

	if capital > 0 {
		snapshot.Weight = snapshot.MarketValue / capital
	}

	return snapshot
}

// Trade records one closed round trip. Created exactly once per position
// close, including the forced close at the end of a window.
type Trade struct {
	// EntryDate is when the position was opened.
	EntryDate time.Time `yaml:"entry_date" json:"entry_date"`
	// ExitDate is when the position was closed.
	ExitDate time.Time `yaml:"exit_date" json:"exit_date"`
	// Symbol is the traded instrument.
	Symbol string `yaml:"symbol" json:"symbol"`
	// Side is the trade direction.
	Side TradeSide `yaml:"side" json:"side"`
	// EntryPrice is the fill price at entry.
	EntryPrice float64 `yaml:"entry_price" json:"entry_price"`
	// ExitPrice is the fill price at exit.
	ExitPrice float64 `yaml:"exit_price" json:"exit_price"`
	// Quantity is the number of units traded.
	Quantity float64 `yaml:"quantity" json:"quantity"`
	// PnL is the realized profit and loss net of commission and slippage.
	PnL float64 `yaml:"pnl" json:"pnl"`
	// PnLPercent is PnL relative to the entry amount.
	PnLPercent float64 `yaml:"pnl_percent" json:"pnl_percent"`
	// Commission is the commission charged at exit.
	Commission float64 `yaml:"commission" json:"commission"`
	// Slippage is the slippage cost charged at exit.
	Slippage float64 `yaml:"slippage" json:"slippage"`
	// HoldingDays is the holding period length in days.
	HoldingDays int `yaml:"holding_days" json:"holding_days"`
}

// NewTrade builds the closing trade for a position. PnL arithmetic uses
// decimals so repeated runs stay numerically consistent.
func NewTrade(pos Position, exitDate time.Time, exitPrice, commission, slippage float64) Trade {
	qtyDec := decimal.NewFromFloat(pos.Quantity)
	grossDec := decimal.NewFromFloat(exitPrice).Sub(decimal.NewFromFloat(pos.EntryPrice)).Mul(qtyDec)
	costDec := decimal.NewFromFloat(commission).Add(decimal.NewFromFloat(slippage))
	pnlDec := grossDec.Sub(costDec)

	entryAmountDec := decimal.NewFromFloat(pos.EntryPrice).Mul(qtyDec)

	pnl, _ := pnlDec.Float64()

	pnlPercent := 0.0
	if !entryAmountDec.IsZero() {
		pnlPercent, _ = pnlDec.Div(entryAmountDec).Float64()
	}

	return Trade{
		EntryDate:   pos.EntryDate,
		ExitDate:    exitDate,
		Symbol:      pos.Symbol,
		Side:        TradeSideLong,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   exitPrice,
		Quantity:    pos.Quantity,
		PnL:         pnl,
		PnLPercent:  pnlPercent,
		Commission:  commission,
		Slippage:    slippage,
		HoldingDays: int(exitDate.Sub(pos.EntryDate).Hours() / 24),
	}
}
