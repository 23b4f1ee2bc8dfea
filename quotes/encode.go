package quotes

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// EncodeOptions controls the CSV output.
type EncodeOptions struct {
	Lowercase bool // lowercase column names
	NoHeader  bool // suppress the header row
}

// Encoder writes quotes in CSV format.
type Encoder struct {
	w    *csv.Writer
	opts EncodeOptions
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, opts EncodeOptions) *Encoder {
	return &Encoder{w: csv.NewWriter(w), opts: opts}
}

// WriteHeader writes the column names, unless disabled by the options.
func (e *Encoder) WriteHeader() error {
	if e.opts.NoHeader {
		return nil
	}
	header := make([]string, len(Columns))
	for i, c := range Columns {
		if e.opts.Lowercase {
			c = strings.ToLower(c)
		}
		header[i] = c
	}
	return e.w.Write(header)
}

// Encode writes a quote.
func (e *Encoder) Encode(q Quote) error {
	return e.w.Write([]string{
		q.Symbol,
		q.Date.String(),
		q.Open.String(),
		q.High.String(),
		q.Low.String(),
		q.Close.String(),
		strconv.FormatInt(q.Volume, 10),
	})
}

// Flush writes buffered data and reports any write error.
func (e *Encoder) Flush() error {
	e.w.Flush()
	return e.w.Error()
}
