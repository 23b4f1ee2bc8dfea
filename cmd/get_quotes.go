package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"

	"github.com/etnz/book/date"
	"github.com/etnz/book/eodhd"
	"github.com/etnz/book/quotes"
	"github.com/etnz/book/yahoo"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

// Quote sources.
const (
	sourceChart = "chart"
	sourceTable = "table"
	sourceEODHD = "eodhd"
)

var sources = []string{sourceChart, sourceTable, sourceEODHD}

type getQuotesCmd struct {
	dryRun    bool
	start     string
	end       string
	reverse   bool
	lowercase bool
	noHeader  bool
	output    string
	source    string
	url       string
	cache     string
}

func (*getQuotesCmd) Name() string     { return "get-quotes" }
func (*getQuotesCmd) Synopsis() string { return "fetch historical share price quotes in csv format" }
func (*getQuotesCmd) Usage() string {
	return `bk get-quotes [-n] [-s <yyyy-mm-dd>] [-e <yyyy-mm-dd>] [-r] [-l] [-no-header] [-o <file>] [-source chart|table|eodhd] SYM...

  Fetches the daily quotes of each symbol from start to end, inclusive, and
  writes them in csv format with the columns Symbol,Date,Open,High,Low,Close,Volume.
  The output can be read back by add-quotes.

  Quotes are written oldest first, -r writes them newest first.
  A symbol that cannot be fetched is skipped with a warning, and the command fails
  once all the other symbols are written.

`
}

func (c *getQuotesCmd) SetFlags(f *flag.FlagSet) {
	today := date.Today().String()
	f.BoolVar(&c.dryRun, "n", false, "perform a dry run, no quotes retrieved")
	f.BoolVar(&c.dryRun, "dry-run", false, "alias for -n")
	f.StringVar(&c.start, "s", today, "start date (yyyy-mm-dd)")
	f.StringVar(&c.start, "start", today, "alias for -s")
	f.StringVar(&c.end, "e", today, "end date (yyyy-mm-dd)")
	f.StringVar(&c.end, "end", today, "alias for -e")
	f.BoolVar(&c.reverse, "r", false, "output quotes in reverse order")
	f.BoolVar(&c.reverse, "reverse", false, "alias for -r")
	f.BoolVar(&c.lowercase, "l", false, "output header in lowercase")
	f.BoolVar(&c.lowercase, "lowercase", false, "alias for -l")
	f.BoolVar(&c.noHeader, "no-header", false, "suppress output of the header line")
	f.StringVar(&c.output, "o", "", "write quotes to `FILE` in csv format (default stdout)")
	f.StringVar(&c.output, "output", "", "alias for -o")
	f.StringVar(&c.source, "source", cfg.QuoteSource, "quote source: chart, table or eodhd")
	f.StringVar(&c.url, "url", cfg.QuoteURL, "base URL of the quote source")
	f.StringVar(&c.cache, "cache", cfg.QuoteCache, "keep responses for a day, week, month, quarter or year, none to disable")
}

func (c *getQuotesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := f.Args()
	if len(symbols) == 0 {
		log.Error().Msg("Missing symbol.")
		return subcommands.ExitUsageError
	}
	start, err := date.Parse(c.start)
	if err != nil {
		log.Error().Msgf("Invalid start date, %v.", err)
		return subcommands.ExitFailure
	}
	end, err := date.Parse(c.end)
	if err != nil {
		log.Error().Msgf("Invalid end date, %v.", err)
		return subcommands.ExitFailure
	}
	r, err := date.Between(start, end)
	if err != nil {
		log.Error().Msg("START must precede END!")
		return subcommands.ExitFailure
	}
	client, err := httpClient(c.cache)
	if err != nil {
		log.Error().Msgf("Invalid cache period, %v.", err)
		return subcommands.ExitUsageError
	}
	fetcher, err := newFetcher(c.source, c.url, client)
	if err != nil {
		log.Error().Msgf("%v.", err)
		return subcommands.ExitUsageError
	}
	log.Debug().Msgf("symbols = %v", symbols)

	if c.dryRun {
		return subcommands.ExitSuccess
	}

	var out io.Writer = stdout
	if c.output != "" && c.output != "-" {
		file, err := os.Create(c.output)
		if err != nil {
			log.Error().Msgf("Failed to create %s, %v.", c.output, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		out = file
	}

	enc := quotes.NewEncoder(out, quotes.EncodeOptions{Lowercase: c.lowercase, NoHeader: c.noHeader})
	if err := enc.WriteHeader(); err != nil {
		log.Error().Msgf("%v.", err)
		return subcommands.ExitFailure
	}

	var errs error
	for _, symbol := range symbols {
		qs, err := fetcher.Fetch(ctx, symbol, r)
		if err != nil {
			log.Warn().Msgf("Failed to get quotes for %s. %v", symbol, err)
			errs = errors.Join(errs, err)
			continue
		}
		if c.reverse {
			slices.Reverse(qs)
		}
		for _, q := range qs {
			if err := enc.Encode(q); err != nil {
				log.Error().Msgf("%v.", err)
				return subcommands.ExitFailure
			}
		}
	}
	if err := enc.Flush(); err != nil {
		log.Error().Msgf("%v.", err)
		return subcommands.ExitFailure
	}
	if errs != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// httpClient returns a client caching responses for the period, or not caching with "none".
func httpClient(cache string) (*http.Client, error) {
	if cache == "none" {
		return &http.Client{}, nil
	}
	period, err := date.ParsePeriod(cache)
	if err != nil {
		return nil, err
	}
	return quotes.NewCachingClient(period), nil
}

// sourceFetchers builds a quote source from its URL, empty for the default, and http client.
var sourceFetchers = map[string]func(url string, client *http.Client) (quotes.Fetcher, error){
	sourceChart: func(url string, client *http.Client) (quotes.Fetcher, error) {
		return &yahoo.Chart{BaseURL: url, HTTP: client}, nil
	},
	sourceTable: func(url string, client *http.Client) (quotes.Fetcher, error) {
		return &yahoo.Table{BaseURL: url, HTTP: client}, nil
	},
	sourceEODHD: func(url string, client *http.Client) (quotes.Fetcher, error) {
		if cfg.EODHDAPIKey == "" {
			return nil, fmt.Errorf("missing api key for %s, set %s", sourceEODHD, eodhd.APIKeyEnv)
		}
		return &eodhd.Client{APIKey: cfg.EODHDAPIKey, BaseURL: url, HTTP: client}, nil
	},
}

// newFetcher returns the quote source by name.
func newFetcher(source, url string, client *http.Client) (quotes.Fetcher, error) {
	build, ok := sourceFetchers[source]
	if !ok {
		return nil, fmt.Errorf("unknown quote source %q, want one of %v", source, sources)
	}
	return build(url, client)
}
