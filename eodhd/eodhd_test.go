package eodhd

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

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/eod/MCD.US", r.URL.Path)
		assert.Equal(t, "demo", r.URL.Query().Get("api_token"))
		assert.Equal(t, "2024-01-02", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-01-03", r.URL.Query().Get("to"))
		fmt.Fprint(w, `[
			{"date":"2024-01-02","open":295.2,"high":297.56,"low":293.81,"close":296.47,"adjusted_close":289.6,"volume":2925200},
			{"date":"2024-01-03","open":296.0,"high":297.0,"low":292.5,"close":293.1,"adjusted_close":286.3,"volume":3100000}
		]`)
	}))
	defer srv.Close()

	c := &Client{APIKey: "demo", BaseURL: srv.URL, HTTP: srv.Client()}
	r, err := date.Between(date.New(2024, 1, 2), date.New(2024, 1, 3))
	require.NoError(t, err)
	got, err := c.Fetch(context.Background(), "MCD.US", r)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "MCD.US", got[0].Symbol)
	assert.Equal(t, "2024-01-02", got[0].Date.String())
	assert.Equal(t, "296.47", got[0].Close.String())
	assert.Equal(t, int64(2925200), got[0].Volume)
	assert.Equal(t, "292.5", got[1].Low.String())
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthenticated", http.StatusUnauthorized)
	}))
	defer srv.Close()
	r := date.NewRange(date.New(2024, 1, 2), date.Monthly)

	_, err := (&Client{BaseURL: srv.URL, HTTP: srv.Client()}).Fetch(context.Background(), "MCD.US", r)
	assert.ErrorContains(t, err, "missing eodhd api key")

	_, err = (&Client{APIKey: "bad", BaseURL: srv.URL, HTTP: srv.Client()}).Fetch(context.Background(), "MCD.US", r)
	assert.ErrorContains(t, err, "401")
}
