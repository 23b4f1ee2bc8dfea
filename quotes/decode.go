package quotes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/book/date"
	"github.com/shopspring/decimal"
)

// Series holds closing prices per symbol.
type Series map[string]*date.History[decimal.Decimal]

// Add records the closing price of symbol on day, replacing a previous one.
func (s Series) Add(symbol string, day date.Date, close decimal.Decimal) {
	h, ok := s[symbol]
	if !ok {
		h = new(date.History[decimal.Decimal])
		s[symbol] = h
	}
	h.Append(day, close)
}

// Symbols returns the symbols of the series in sorted order.
func (s Series) Symbols() []string {
	return slices.Sorted(maps.Keys(s))
}

// Len returns the number of prices in the series.
func (s Series) Len() int {
	n := 0
	for _, h := range s {
		n += h.Len()
	}
	return n
}

// DecodeOptions controls the CSV dialect.
type DecodeOptions struct {
	// Comma is the field delimiter, ',' if zero.
	Comma rune
}

// Decode reads quotes in CSV format.
//
// The first row is a header naming the columns, in any order and case.
// Columns Symbol, Date and Close are required, others are ignored.
// It returns the closing prices and the number of rows read.
func Decode(r io.Reader, opts DecodeOptions) (Series, int, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, errors.New("missing header row")
	}
	if err != nil {
		return nil, 0, err
	}
	index := make(map[string]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	var cols [3]int
	for i, name := range []string{"Symbol", "Date", "Close"} {
		col, ok := index[strings.ToLower(name)]
		if !ok {
			return nil, 0, fmt.Errorf("line 1: missing column %q", name)
		}
		cols[i] = col
	}

	series := make(Series)
	rows := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rows, err
		}
		line, _ := cr.FieldPos(0)
		field := func(i int) string {
			if cols[i] >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[cols[i]])
		}
		symbol := field(0)
		if symbol == "" {
			return nil, rows, fmt.Errorf("line %d: missing symbol", line)
		}
		day, err := date.Parse(field(1))
		if err != nil {
			return nil, rows, fmt.Errorf("line %d: %w", line, err)
		}
		close, err := decimal.NewFromString(field(2))
		if err != nil {
			return nil, rows, fmt.Errorf("line %d: invalid close price %q", line, field(2))
		}
		series.Add(symbol, day, close)
		rows++
	}
	return series, rows, nil
}
