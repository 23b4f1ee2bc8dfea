package yahoo

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/book/date"
	"github.com/etnz/book/quotes"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

// DefaultTableURL is the base URL of the legacy table.csv download.
const DefaultTableURL = "http://ichart.yahoo.com"

// Table fetches quotes from the table.csv download.
type Table struct {
	BaseURL string       // DefaultTableURL if empty
	HTTP    *http.Client // a daily caching client if nil
}

// Fetch downloads http://ichart.yahoo.com/table.csv?s=SYM&a=..&b=..&c=..&d=..&e=..&f=..&g=d&ignore=.csv
// where months (a and d) count from 0.
func (t *Table) Fetch(ctx context.Context, symbol string, r date.Range) ([]quotes.Quote, error) {
	base := t.BaseURL
	if base == "" {
		base = DefaultTableURL
	}
	q := url.Values{}
	q.Set("s", symbol)
	q.Set("a", strconv.Itoa(int(r.From.Month())-1))
	q.Set("b", strconv.Itoa(r.From.Day()))
	q.Set("c", strconv.Itoa(r.From.Year()))
	q.Set("d", strconv.Itoa(int(r.To.Month())-1))
	q.Set("e", strconv.Itoa(r.To.Day()))
	q.Set("f", strconv.Itoa(r.To.Year()))
	q.Set("g", "d")
	q.Set("ignore", ".csv")

	body, err := quotes.Get(ctx, client(t.HTTP), base+"/table.csv?"+q.Encode(), header())
	if err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '<' {
		text, err := firstParagraph(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("cannot read quotes of %s: %w", symbol, err)
		}
		body = []byte(text)
	}
	result, err := readTable(bytes.NewReader(body), symbol)
	if err != nil {
		return nil, fmt.Errorf("cannot read quotes of %s: %w", symbol, err)
	}
	log.Debug().Msgf("Got %d quotes for %s.", len(result), symbol)
	return result, nil
}

// firstParagraph returns the text of the first <p> element of an HTML document.
func firstParagraph(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	p := find(doc, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "p" })
	if p == nil {
		return "", errors.New("no <p> element in HTML response")
	}
	var sb strings.Builder
	var text func(*html.Node)
	text = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			text(c)
		}
	}
	text(p)
	return sb.String(), nil
}

// find returns the first node in depth-first order that matches.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// readTable reads Date,Open,High,Low,Close,Volume[,Adj Close] rows, newest
// first, and returns them in chronological order.
func readTable(r io.Reader, symbol string) ([]quotes.Quote, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := index["date"]; !ok {
		return nil, fmt.Errorf("missing column %q", "Date")
	}

	var result []quotes.Quote
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		number := func(name string) (decimal.Decimal, error) {
			v := field(name)
			if v == "" {
				return decimal.Zero, nil
			}
			d, err := decimal.NewFromString(v)
			if err != nil {
				return d, fmt.Errorf("line %d: invalid %s %q", line, name, v)
			}
			return d, nil
		}

		q := quotes.Quote{Symbol: symbol}
		if q.Date, err = date.Parse(field("date")); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var volume decimal.Decimal
		for _, f := range []struct {
			name string
			dst  *decimal.Decimal
		}{{"open", &q.Open}, {"high", &q.High}, {"low", &q.Low}, {"close", &q.Close}, {"volume", &volume}} {
			if *f.dst, err = number(f.name); err != nil {
				return nil, err
			}
		}
		q.Volume = volume.IntPart()
		result = append(result, q)
	}
	slices.SortStableFunc(result, func(a, b quotes.Quote) int { return a.Date.Compare(b.Date) })
	return result, nil
}
