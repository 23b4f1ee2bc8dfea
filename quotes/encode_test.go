package quotes

import (
	"strings"
	"testing"

	"github.com/etnz/book/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder(t *testing.T) {
	q := Quote{
		Symbol: "BHP.AX",
		Date:   date.New(2024, 1, 2),
		Open:   decimal.RequireFromString("45.1"),
		High:   decimal.RequireFromString("45.8"),
		Low:    decimal.RequireFromString("44.9"),
		Close:  decimal.RequireFromString("45.5"),
		Volume: 1000,
	}
	tests := []struct {
		name string
		opts EncodeOptions
		want string
	}{
		{"default", EncodeOptions{}, "Symbol,Date,Open,High,Low,Close,Volume\nBHP.AX,2024-01-02,45.1,45.8,44.9,45.5,1000\n"},
		{"lowercase", EncodeOptions{Lowercase: true}, "symbol,date,open,high,low,close,volume\nBHP.AX,2024-01-02,45.1,45.8,44.9,45.5,1000\n"},
		{"no header", EncodeOptions{NoHeader: true}, "BHP.AX,2024-01-02,45.1,45.8,44.9,45.5,1000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			e := NewEncoder(&buf, tt.opts)
			require.NoError(t, e.WriteHeader())
			require.NoError(t, e.Encode(q))
			require.NoError(t, e.Flush())
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestEncoder_ReadBack(t *testing.T) {
	var buf strings.Builder
	e := NewEncoder(&buf, EncodeOptions{Lowercase: true})
	require.NoError(t, e.WriteHeader())
	require.NoError(t, e.Encode(Quote{Symbol: "ABC", Date: date.New(2024, 5, 6), Close: decimal.RequireFromString("3.14")}))
	require.NoError(t, e.Flush())

	series, _, err := Decode(strings.NewReader(buf.String()), DecodeOptions{})
	require.NoError(t, err)
	v, ok := series["ABC"].Get(date.New(2024, 5, 6))
	require.True(t, ok)
	assert.Equal(t, "3.14", v.String())
}
