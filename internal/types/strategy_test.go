package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type StrategyTestSuite struct {
	suite.Suite
	strategy StrategyDefinition
}

func TestStrategyTestSuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (s *StrategyTestSuite) SetupTest() {
	s.strategy = StrategyDefinition{
		Name:        "ma-cross",
		SignalTypes: []SignalType{SignalTypeMovingAverage},
		Parameters: map[string]ParameterSpec{
			"ma_period": {Type: "int", Min: 10, Max: 30, Step: 10, Default: 20},
		},
		PositionSizing: PositionSizingEqualWeight,
	}
}

func (s *StrategyTestSuite) TestGridSize() {
	tests := []struct {
		name string
		spec ParameterSpec
		want int
	}{
		{name: "three points", spec: ParameterSpec{Min: 10, Max: 30, Step: 10}, want: 3},
		{name: "step not dividing range", spec: ParameterSpec{Min: 0, Max: 1, Step: 0.3}, want: 4},
		{name: "single point", spec: ParameterSpec{Min: 5, Max: 5, Step: 1}, want: 1},
		{name: "zero step falls back to one", spec: ParameterSpec{Min: 0, Max: 10, Step: 0}, want: 1},
		{name: "inverted bounds fall back to one", spec: ParameterSpec{Min: 10, Max: 5, Step: 1}, want: 1},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, tt.spec.GridSize())
		})
	}
}

func (s *StrategyTestSuite) TestWithParametersDoesNotMutateReceiver() {
	snapshot := s.strategy.WithParameters(map[string]float64{"ma_period": 30})

	s.Nil(s.strategy.Overrides)
	s.Equal(30.0, snapshot.Overrides["ma_period"])

	// Layered overrides keep earlier values for keys not overridden again.
	second := snapshot.WithParameters(map[string]float64{"threshold": 0.5})
	s.Equal(30.0, second.Overrides["ma_period"])
	s.Equal(0.5, second.Overrides["threshold"])
	s.NotContains(snapshot.Overrides, "threshold")
}

func (s *StrategyTestSuite) TestParameterValue() {
	v, ok := s.strategy.ParameterValue("ma_period")
	s.True(ok)
	s.Equal(20.0, v)

	overridden := s.strategy.WithParameters(map[string]float64{"ma_period": 10})
	v, ok = overridden.ParameterValue("ma_period")
	s.True(ok)
	s.Equal(10.0, v)

	_, ok = s.strategy.ParameterValue("unknown")
	s.False(ok)
}

func (s *StrategyTestSuite) TestHasNumericParameters() {
	s.True(s.strategy.HasNumericParameters())

	bare := StrategyDefinition{Name: "static"}
	s.False(bare.HasNumericParameters())
}
