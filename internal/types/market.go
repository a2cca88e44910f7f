package types

import (
	"time"

	"github.com/quantfolio/walkforward/pkg/errors"
)

// MarketDataPoint represents a single daily bar for a symbol.
// Series are supplied by an external data layer and are read-only to the engine.
type MarketDataPoint struct {
	// Date is the bar date.
	Date time.Time `yaml:"date" json:"date" csv:"date"`
	// Symbol is the instrument the bar belongs to.
	Symbol string `yaml:"symbol" json:"symbol" csv:"symbol"`
	// Close is the closing price of the bar.
	Close float64 `yaml:"close" json:"close" csv:"close"`
	// Volume is the traded volume of the bar.
	Volume float64 `yaml:"volume" json:"volume" csv:"volume"`
}

// ValidateSeries checks that a price series is ordered ascending by date
// with no duplicate dates and no non-positive closes.
func ValidateSeries(series []MarketDataPoint) error {
	for i := range series {
		if series[i].Close <= 0 {
			return errors.Newf(errors.ErrCodeDataParseFailed,
				"non-positive close %f at bar %d", series[i].Close, i)
		}

		if i == 0 {
			continue
		}

		if series[i].Date.Equal(series[i-1].Date) {
			return errors.Newf(errors.ErrCodeDuplicateBarDate,
				"duplicate bar date %s at index %d", series[i].Date.Format("2006-01-02"), i)
		}

		if series[i].Date.Before(series[i-1].Date) {
			return errors.Newf(errors.ErrCodeDataNotOrdered,
				"bar date %s at index %d precedes previous bar", series[i].Date.Format("2006-01-02"), i)
		}
	}

	return nil
}

// Closes extracts the close prices of a series.
func Closes(series []MarketDataPoint) []float64 {
	closes := make([]float64, len(series))
	for i, bar := range series {
		closes[i] = bar.Close
	}

	return closes
}
