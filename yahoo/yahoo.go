// Package yahoo fetches daily quotes from Yahoo! Finance.
//
// Two endpoints are supported: the chart API, which serves JSON, and the
// legacy table.csv download.
package yahoo

import (
	"net/http"

	"github.com/etnz/book/date"
	"github.com/etnz/book/quotes"
)

// userAgent is sent with every request, Yahoo! rejects requests without one.
const userAgent = "Mozilla/5.0 (compatible; bk/1.0)"

func header() http.Header { return http.Header{"User-Agent": {userAgent}} }

func client(c *http.Client) *http.Client {
	if c == nil {
		return quotes.NewCachingClient(date.Daily)
	}
	return c
}
