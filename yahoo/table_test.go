package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/book/date"
	"github.com/etnz/book/quotes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableCSV = `Date,Open,High,Low,Close,Volume,Adj Close
2024-01-03,45.50,46.00,45.20,45.95,1200,45.95
2024-01-02,45.10,45.80,44.90,45.50,1000,45.50
`

func TestTable_Fetch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"csv", tableCSV},
		{"html", "<html><head><title>x</title></head><body><p>" + tableCSV + "</p><p>ignored</p></body></html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var query string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/table.csv", r.URL.Path)
				query = r.URL.RawQuery
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			tbl := &Table{BaseURL: srv.URL, HTTP: srv.Client()}
			r, err := date.Between(date.New(2024, 1, 2), date.New(2024, 12, 31))
			require.NoError(t, err)
			got, err := tbl.Fetch(context.Background(), "BHP.AX", r)
			require.NoError(t, err)

			assert.Equal(t, "a=0&b=2&c=2024&d=11&e=31&f=2024&g=d&ignore=.csv&s=BHP.AX", query)
			require.Len(t, got, 2)
			assert.Equal(t, "2024-01-02", got[0].Date.String(), "chronological order")
			assert.Equal(t, "45.5", got[0].Close.String())
			assert.Equal(t, int64(1000), got[0].Volume)
			assert.Equal(t, "2024-01-03", got[1].Date.String())
			assert.Equal(t, "BHP.AX", got[1].Symbol)
		})
	}
}

func TestTable_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("s") {
		case "HTML":
			fmt.Fprint(w, "<html><body><div>nothing</div></body></html>")
		case "BAD":
			fmt.Fprint(w, "Date,Close\n2024-01-02,abc\n")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	tbl := &Table{BaseURL: srv.URL, HTTP: srv.Client()}
	r := date.NewRange(date.New(2024, 1, 2), date.Yearly)

	_, err := tbl.Fetch(context.Background(), "MISSING", r)
	var status *quotes.StatusError
	require.True(t, errors.As(err, &status), "got %v", err)
	assert.Equal(t, http.StatusNotFound, status.Code)

	_, err = tbl.Fetch(context.Background(), "HTML", r)
	assert.ErrorContains(t, err, "no <p> element")

	_, err = tbl.Fetch(context.Background(), "BAD", r)
	assert.ErrorContains(t, err, `line 2: invalid close "abc"`)
}
