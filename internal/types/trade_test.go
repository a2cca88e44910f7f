package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeTestSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (s *TradeTestSuite) TestNewTrade() {
	entry := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	pos := Position{
		Symbol:     "SPY",
		Quantity:   10,
		EntryDate:  entry,
		EntryPrice: 100,
		SignalType: SignalTypeMovingAverage,
	}

	tests := []struct {
		name           string
		exitPrice      float64
		commission     float64
		slippage       float64
		holdingDays    int
		wantPnL        float64
		wantPnLPercent float64
	}{
		{
			name:           "profitable exit net of costs",
			exitPrice:      110,
			commission:     1.1,
			slippage:       0.55,
			holdingDays:    5,
			wantPnL:        98.35,
			wantPnLPercent: 0.09835,
		},
		{
			name:           "losing exit",
			exitPrice:      95,
			commission:     0.95,
			slippage:       0,
			holdingDays:    3,
			wantPnL:        -50.95,
			wantPnLPercent: -0.05095,
		},
		{
			name:           "flat exit still pays costs",
			exitPrice:      100,
			commission:     1,
			slippage:       0.5,
			holdingDays:    1,
			wantPnL:        -1.5,
			wantPnLPercent: -0.0015,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			exit := entry.AddDate(0, 0, tt.holdingDays)
			trade := NewTrade(pos, exit, tt.exitPrice, tt.commission, tt.slippage)

			s.Equal("SPY", trade.Symbol)
			s.Equal(TradeSideLong, trade.Side)
			s.Equal(entry, trade.EntryDate)
			s.Equal(exit, trade.ExitDate)
			s.Equal(tt.holdingDays, trade.HoldingDays)
			s.InDelta(tt.wantPnL, trade.PnL, 1e-9)
			s.InDelta(tt.wantPnLPercent, trade.PnLPercent, 1e-9)
		})
	}
}

func (s *TradeTestSuite) TestNewTradeZeroEntryAmount() {
	trade := NewTrade(Position{Quantity: 0, EntryPrice: 0}, time.Now(), 100, 1, 0)
	s.Equal(0.0, trade.PnLPercent)
	s.InDelta(-1.0, trade.PnL, 1e-9)
}

func (s *TradeTestSuite) TestPositionRefresh() {
	pos := Position{
		Symbol:     "SPY",
		Quantity:   10,
		EntryPrice: 100,
	}

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	snapshot := pos.Refresh(date, 105, 10000)

	s.Equal(date, snapshot.Date)
	s.Equal(105.0, snapshot.Price)
	s.Equal(1050.0, snapshot.MarketValue)
	s.InDelta(0.105, snapshot.Weight, 1e-9)

	// Receiver stays untouched.
	s.Zero(pos.Price)
	s.Zero(pos.MarketValue)

	noCapital := pos.Refresh(date, 105, 0)
	s.Zero(noCapital.Weight)
}
