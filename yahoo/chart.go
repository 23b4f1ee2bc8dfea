package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/book/date"
	"github.com/etnz/book/quotes"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DefaultChartURL is the base URL of the chart API.
const DefaultChartURL = "https://query1.finance.yahoo.com"

// Chart fetches quotes from the chart API.
type Chart struct {
	BaseURL string       // DefaultChartURL if empty
	HTTP    *http.Client // a daily caching client if nil
}

/*
	{
	  "chart": {
	    "result": [{
	      "meta": {"currency": "AUD", "symbol": "BHP.AX", "gmtoffset": 36000, ...},
	      "timestamp": [1704236400, ...],
	      "indicators": {
	        "quote": [{"open": [...], "high": [...], "low": [...], "close": [...], "volume": [...]}]
	      }
	    }],
	    "error": null
	  }
	}
*/

func (c *Chart) Fetch(ctx context.Context, symbol string, r date.Range) ([]quotes.Quote, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultChartURL
	}
	q := url.Values{}
	q.Set("period1", fmt.Sprint(r.From.Time().Unix()))
	q.Set("period2", fmt.Sprint(r.To.Add(1).Time().Unix())) // exclusive
	q.Set("interval", "1d")
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?%s", base, url.PathEscape(symbol), q.Encode())

	body, err := quotes.Get(ctx, client(c.HTTP), addr, header())
	var status *quotes.StatusError
	if err != nil && !errors.As(err, &status) {
		return nil, err
	}
	var jobj any
	if jerr := json.Unmarshal(body, &jobj); jerr != nil {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("cannot parse chart of %s: %w", symbol, jerr)
	}
	if desc, ok := lookup(jobj, "$.chart.error.description").(string); ok && desc != "" {
		return nil, fmt.Errorf("cannot get chart of %s: %s", symbol, desc)
	}
	if err != nil {
		return nil, err
	}

	offset, _ := lookup(jobj, "$.chart.result[0].meta.gmtoffset").(float64)
	timestamps, _ := lookup(jobj, "$.chart.result[0].timestamp").([]any)
	series := make(map[string][]any)
	for _, name := range []string{"open", "high", "low", "close", "volume"} {
		series[name], _ = lookup(jobj, "$.chart.result[0].indicators.quote[0]."+name).([]any)
	}

	var result []quotes.Quote
	for i, ts := range timestamps {
		sec, ok := ts.(float64)
		if !ok {
			continue
		}
		// dates are local to the exchange
		day := date.FromTime(time.Unix(int64(sec+offset), 0).UTC())
		close, ok := at(series["close"], i)
		if !ok {
			log.Debug().Msgf("%s: no close on %s", symbol, day)
			continue
		}
		if !r.Contains(day) {
			continue
		}
		quote := quotes.Quote{Symbol: symbol, Date: day, Close: decimal.NewFromFloat(close)}
		if v, ok := at(series["open"], i); ok {
			quote.Open = decimal.NewFromFloat(v)
		}
		if v, ok := at(series["high"], i); ok {
			quote.High = decimal.NewFromFloat(v)
		}
		if v, ok := at(series["low"], i); ok {
			quote.Low = decimal.NewFromFloat(v)
		}
		if v, ok := at(series["volume"], i); ok {
			quote.Volume = int64(v)
		}
		result = append(result, quote)
	}
	log.Debug().Msgf("Got %d quotes for %s.", len(result), symbol)
	return result, nil
}

// lookup returns the value at path or nil.
func lookup(jobj any, path string) any {
	v, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil
	}
	return v
}

// at returns values[i] if it is a number. Missing points are null.
func at(values []any, i int) (float64, bool) {
	if i >= len(values) {
		return 0, false
	}
	v, ok := values[i].(float64)
	return v, ok
}
