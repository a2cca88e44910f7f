package engine

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/quantfolio/walkforward/internal/types"
	"github.com/quantfolio/walkforward/pkg/errors"
)

type SignalGeneratorTestSuite struct {
	suite.Suite
}

func TestSignalGeneratorTestSuite(t *testing.T) {
	suite.Run(t, new(SignalGeneratorTestSuite))
}

func (s *SignalGeneratorTestSuite) TestLookbackFollowsParameter() {
	tests := []struct {
		name     string
		strategy types.StrategyDefinition
		want     int
	}{
		{name: "default lookback without parameters", strategy: staticStrategy(), want: 20},
		{name: "lookback from spec default", strategy: maCrossStrategy(), want: 20},
		{name: "lookback from override", strategy: maCrossStrategy().WithParameters(map[string]float64{"ma_period": 10}), want: 10},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, NewSignalGenerator(tt.strategy).Lookback())
		})
	}
}

func (s *SignalGeneratorTestSuite) TestGenerateEmptySeries() {
	_, err := NewSignalGenerator(staticStrategy()).Generate(nil)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeEmptyPriceSlice))
}

func (s *SignalGeneratorTestSuite) TestGenerateCountAndWarmup() {
	generator := NewSignalGenerator(staticStrategy())

	// Not enough history: no signals, no error.
	signals, err := generator.Generate(flatThenRisingSeries(15))
	s.Require().NoError(err)
	s.Empty(signals)

	signals, err = generator.Generate(testSeries("SPY", 50))
	s.Require().NoError(err)
	s.Len(signals, 30)
}

func (s *SignalGeneratorTestSuite) TestGenerateDirectionAndStrength() {
	generator := NewSignalGenerator(staticStrategy())

	// 20 flat bars at 100, then 110: deviation +10% over the trailing mean.
	signals, err := generator.Generate(flatThenRisingSeries(20, 110))
	s.Require().NoError(err)
	s.Require().Len(signals, 1)

	signal := signals[0]
	s.Equal(types.SignalRiskOn, signal.Direction)
	s.Equal(types.SignalStrong, signal.Strength)
	s.InDelta(0.10, signal.RawValue, 1e-9)
	// Confidence is capped at 0.9 even though 10 * |deviation| = 1.0.
	s.InDelta(0.9, signal.Confidence, 1e-9)

	// A small dip below the trailing mean reads as a moderate risk-off signal.
	signals, err = generator.Generate(flatThenRisingSeries(20, 99))
	s.Require().NoError(err)
	s.Require().Len(signals, 1)

	signal = signals[0]
	s.Equal(types.SignalRiskOff, signal.Direction)
	s.Equal(types.SignalModerate, signal.Strength)
	s.InDelta(-0.01, signal.RawValue, 1e-9)
	s.InDelta(0.1, signal.Confidence, 1e-9)
}

func (s *SignalGeneratorTestSuite) TestGenerateUsesFirstSignalType() {
	strategy := staticStrategy()
	strategy.SignalTypes = []types.SignalType{types.SignalTypeUtilitiesSpy, types.SignalTypeMovingAverage}

	signals, err := NewSignalGenerator(strategy).Generate(flatThenRisingSeries(20, 110))
	s.Require().NoError(err)
	s.Require().Len(signals, 1)
	s.Equal(types.SignalTypeUtilitiesSpy, signals[0].Type)
}
