package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/book/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-02T23:00:00Z and the next two days, i.e. 09:00 in Sydney.
const chartResponse = `{"chart":{"result":[{
  "meta":{"currency":"AUD","symbol":"BHP.AX","gmtoffset":36000},
  "timestamp":[1704236400,1704322800,1704409200],
  "indicators":{"quote":[{
    "open":[45.1,null,46.0],
    "high":[45.8,null,46.5],
    "low":[44.9,null,45.7],
    "close":[45.5,null,46.25],
    "volume":[1000,null,1500]
  }]}
}],"error":null}}`

func TestChart_Fetch(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/BHP.AX", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		fmt.Fprint(w, chartResponse)
	}))
	defer srv.Close()

	c := &Chart{BaseURL: srv.URL, HTTP: srv.Client()}
	r, err := date.Between(date.New(2024, 1, 1), date.New(2024, 1, 10))
	require.NoError(t, err)
	got, err := c.Fetch(context.Background(), "BHP.AX", r)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"period1": "1704067200", "period2": "1704931200", "interval": "1d"}, query)
	require.Len(t, got, 2, "null points are skipped")
	assert.Equal(t, "2024-01-03", got[0].Date.String(), "dates are local to the exchange")
	assert.Equal(t, "45.5", got[0].Close.String())
	assert.Equal(t, "45.1", got[0].Open.String())
	assert.Equal(t, int64(1000), got[0].Volume)
	assert.Equal(t, "BHP.AX", got[0].Symbol)
	assert.Equal(t, "2024-01-05", got[1].Date.String())
	assert.Equal(t, "46.25", got[1].Close.String())
}

func TestChart_Range(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartResponse)
	}))
	defer srv.Close()

	c := &Chart{BaseURL: srv.URL, HTTP: srv.Client()}
	got, err := c.Fetch(context.Background(), "BHP.AX", date.NewRange(date.New(2024, 1, 3), date.Daily))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-03", got[0].Date.String())
}

func TestChart_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/NOPE":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := &Chart{BaseURL: srv.URL, HTTP: srv.Client()}
	r := date.NewRange(date.New(2024, 1, 3), date.Monthly)

	_, err := c.Fetch(context.Background(), "NOPE", r)
	assert.ErrorContains(t, err, "No data found, symbol may be delisted")

	_, err = c.Fetch(context.Background(), "BOOM", r)
	assert.ErrorContains(t, err, "500")
}
