package engine

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/quantfolio/walkforward/internal/types"
)

type StabilityTestSuite struct {
	suite.Suite
}

func TestStabilityTestSuite(t *testing.T) {
	suite.Run(t, new(StabilityTestSuite))
}

func (s *StabilityTestSuite) TestIsOverfit() {
	tests := []struct {
		name      string
		inReturn  float64
		outReturn float64
		inSharpe  float64
		outSharpe float64
		want      bool
	}{
		{name: "no degradation", inReturn: 0.10, outReturn: 0.10, inSharpe: 1, outSharpe: 1, want: false},
		{name: "return degradation exactly at the threshold", inReturn: 0.10, outReturn: 0.05, inSharpe: 1, outSharpe: 1, want: false},
		{name: "return degradation above the threshold", inReturn: 0.10, outReturn: 0.04, inSharpe: 1, outSharpe: 1, want: true},
		{name: "sharpe degradation alone flags", inReturn: 0.10, outReturn: 0.10, inSharpe: 1, outSharpe: 0.4, want: true},
		{name: "zero in-sample has no baseline", inReturn: 0, outReturn: -0.10, inSharpe: 0, outSharpe: -1, want: false},
		{name: "negative in-sample getting worse flags", inReturn: -0.05, outReturn: -0.15, inSharpe: 0.1, outSharpe: 0.1, want: true},
		{name: "out-of-sample improvement never flags", inReturn: 0.05, outReturn: 0.15, inSharpe: 0.5, outSharpe: 1.5, want: false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, IsOverfit(tt.inReturn, tt.outReturn, tt.inSharpe, tt.outSharpe))
		})
	}
}

func periodsWithParameter(name string, values ...float64) []types.WalkForwardPeriod {
	periods := make([]types.WalkForwardPeriod, len(values))
	for i, v := range values {
		periods[i] = types.WalkForwardPeriod{
			Sequence:   i,
			Parameters: map[string]float64{name: v},
		}
	}

	return periods
}

func (s *StabilityTestSuite) TestAnalyzeStabilityConstantParameter() {
	report := AnalyzeStability(periodsWithParameter("ma_period", 10, 10, 10))

	stability := report.Parameters["ma_period"]
	s.Equal([]float64{10, 10, 10}, stability.Values)
	s.Equal(1.0, stability.Stability)
	s.Zero(stability.Drift)
	s.Equal(1.0, report.OverallStability)
}

func (s *StabilityTestSuite) TestAnalyzeStabilityVolatileParameter() {
	report := AnalyzeStability(periodsWithParameter("ma_period", 5, 50, 5))

	stability := report.Parameters["ma_period"]
	s.Less(stability.Stability, 0.5)
	s.Positive(stability.Stability)
}

func (s *StabilityTestSuite) TestAnalyzeStabilityDrift() {
	// A strictly monotonic parameter walk is pure drift.
	report := AnalyzeStability(periodsWithParameter("ma_period", 10, 20, 30, 40))
	s.InDelta(1.0, report.Parameters["ma_period"].Drift, 1e-9)

	// Direction does not matter: a downward walk drifts just as hard.
	report = AnalyzeStability(periodsWithParameter("ma_period", 40, 30, 20, 10))
	s.InDelta(1.0, report.Parameters["ma_period"].Drift, 1e-9)
}

func (s *StabilityTestSuite) TestAnalyzeStabilityEmpty() {
	report := AnalyzeStability(nil)
	s.Empty(report.Parameters)
	s.Zero(report.OverallStability)
}

func (s *StabilityTestSuite) TestAnalyzeDegradation() {
	periods := []types.WalkForwardPeriod{
		{InSampleReturn: 0.10, OutOfSampleReturn: 0.05, InSampleSharpe: 1.0, OutOfSampleSharpe: 0.5},
		{InSampleReturn: 0.20, OutOfSampleReturn: 0.04, InSampleSharpe: 1.0, OutOfSampleSharpe: 0.2, Overfit: true},
	}

	report := AnalyzeDegradation(periods)

	// Window degradations: 0.5 and 0.8 on return, 0.5 and 0.8 on Sharpe.
	s.InDelta(0.65, report.MeanReturnDegradation, 1e-9)
	s.InDelta(0.65, report.MeanSharpeDegradation, 1e-9)
	s.Equal(1, report.OverfitWindowCount)
	s.False(report.ConsistentOverperformance)
}

func (s *StabilityTestSuite) TestAnalyzeDegradationTrend() {
	// Degradation worsening window over window yields a positive trend.
	periods := []types.WalkForwardPeriod{
		{InSampleReturn: 0.10, OutOfSampleReturn: 0.09},
		{InSampleReturn: 0.10, OutOfSampleReturn: 0.07},
		{InSampleReturn: 0.10, OutOfSampleReturn: 0.05},
		{InSampleReturn: 0.10, OutOfSampleReturn: 0.03},
	}

	report := AnalyzeDegradation(periods)
	s.InDelta(1.0, report.DegradationTrend, 1e-9)
}

func (s *StabilityTestSuite) TestConsistentOverperformance() {
	overperforming := types.WalkForwardPeriod{InSampleReturn: 0.02, OutOfSampleReturn: 0.08}
	degrading := types.WalkForwardPeriod{InSampleReturn: 0.08, OutOfSampleReturn: 0.02}

	// 3 of 4 windows overperforming crosses the 70% share.
	report := AnalyzeDegradation([]types.WalkForwardPeriod{overperforming, overperforming, overperforming, degrading})
	s.True(report.ConsistentOverperformance)

	// 2 of 4 does not.
	report = AnalyzeDegradation([]types.WalkForwardPeriod{overperforming, overperforming, degrading, degrading})
	s.False(report.ConsistentOverperformance)
}
