// Package eodhd fetches end of day quotes from EOD Historical Data.
//
// See https://eodhd.com/financial-apis/api-for-historical-data-and-volumes
package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/etnz/book/date"
	"github.com/etnz/book/quotes"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DefaultURL is the base URL of the API.
const DefaultURL = "https://eodhd.com"

// APIKeyEnv is the environment variable holding the API key.
const APIKeyEnv = "EODHD_API_KEY"

// Client fetches quotes from the eod endpoint.
//
// Tickers are SYMBOL.EXCHANGE, e.g. BHP.AU or MCD.US.
type Client struct {
	APIKey  string       // required, "demo" works for a few tickers
	BaseURL string       // DefaultURL if empty
	HTTP    *http.Client // a daily caching client if nil
}

// Fetch returns the quotes of ticker, bounds included.
func (c *Client) Fetch(ctx context.Context, ticker string, r date.Range) ([]quotes.Quote, error) {
	// https://eodhd.com/api/eod/MCD.US?api_token=demo&fmt=json&from=2024-01-02&to=2024-01-10
	// [
	//	{
	//		"date": "2024-01-02",
	//		"open": 295.2,
	//		"high": 297.56,
	//		"low": 293.81,
	//		"close": 296.47,
	//		"adjusted_close": 289.6,
	//		"volume": 2925200
	//	},
	if c.APIKey == "" {
		return nil, errors.New("missing eodhd api key, set " + APIKeyEnv)
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultURL
	}
	client := c.HTTP
	if client == nil {
		client = quotes.NewCachingClient(date.Daily)
	}
	q := url.Values{}
	q.Set("api_token", c.APIKey)
	q.Set("fmt", "json")
	q.Set("from", r.From.String())
	q.Set("to", r.To.String())
	addr := fmt.Sprintf("%s/api/eod/%s?%s", base, url.PathEscape(ticker), q.Encode())

	type Info struct {
		Date   date.Date       `json:"date"`
		Open   decimal.Decimal `json:"open"`
		High   decimal.Decimal `json:"high"`
		Low    decimal.Decimal `json:"low"`
		Close  decimal.Decimal `json:"close"`
		Volume decimal.Decimal `json:"volume"`
	}
	content := make([]Info, 0)
	if err := quotes.GetJSON(ctx, client, addr, nil, &content); err != nil {
		return nil, fmt.Errorf("cannot get quotes of %s: %w", ticker, err)
	}

	result := make([]quotes.Quote, 0, len(content))
	for _, info := range content {
		if !r.Contains(info.Date) {
			continue
		}
		result = append(result, quotes.Quote{
			Symbol: ticker,
			Date:   info.Date,
			Open:   info.Open,
			High:   info.High,
			Low:    info.Low,
			Close:  info.Close,
			Volume: info.Volume.IntPart(),
		})
	}
	log.Debug().Msgf("Got %d quotes for %s.", len(result), ticker)
	return result, nil
}
