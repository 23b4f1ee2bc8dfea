// Package quotes reads and writes daily stock quotes in CSV format and
// defines the Fetcher interface implemented by the quote sources.
package quotes

import (
	"context"

	"github.com/etnz/book/date"
	"github.com/shopspring/decimal"
)

// Quote is the summary of a day of trading of a symbol.
type Quote struct {
	Symbol string
	Date   date.Date
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// Columns are the CSV column names of a Quote, in output order.
var Columns = []string{"Symbol", "Date", "Open", "High", "Low", "Close", "Volume"}

// Fetcher retrieves the daily quotes of a symbol.
type Fetcher interface {
	// Fetch returns the quotes of symbol within r in chronological order.
	Fetch(ctx context.Context, symbol string, r date.Range) ([]Quote, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, symbol string, r date.Range) ([]Quote, error)

func (f FetcherFunc) Fetch(ctx context.Context, symbol string, r date.Range) ([]Quote, error) {
	return f(ctx, symbol, r)
}
