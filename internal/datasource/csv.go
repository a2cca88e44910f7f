// Package datasource loads price series for the CLI. The engine itself only
// consumes in-memory series; nothing here is reachable from the core loop.
package datasource

import (
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/quantfolio/walkforward/internal/types"
	"github.com/quantfolio/walkforward/pkg/errors"
)

// csvBar is the on-disk row format: date,symbol,close,volume with the date
// in ISO format.
type csvBar struct {
	Date   string  `csv:"date"`
	Symbol string  `csv:"symbol"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// dateLayouts are accepted date formats, tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// LoadCSV reads a price CSV into per-symbol series. Rows must already be
// ordered ascending by date; ordering is verified, not repaired.
func LoadCSV(path string) (map[string][]types.MarketDataPoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open price file %s", path)
	}
	defer file.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "failed to parse price file %s", path)
	}

	data := make(map[string][]types.MarketDataPoint)

	for i, row := range rows {
		date, err := parseDate(row.Date)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "bad date %q at row %d", row.Date, i+1)
		}

		data[row.Symbol] = append(data[row.Symbol], types.MarketDataPoint{
			Date:   date,
			Symbol: row.Symbol,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	for symbol, series := range data {
		if err := types.ValidateSeries(series); err != nil {
			return nil, errors.Wrapf(errors.GetCode(err), err, "invalid series for symbol %s", symbol)
		}
	}

	return data, nil
}

func parseDate(value string) (time.Time, error) {
	var lastErr error

	for _, layout := range dateLayouts {
		date, err := time.Parse(layout, value)
		if err == nil {
			return date, nil
		}

		lastErr = err
	}

	return time.Time{}, lastErr
}
